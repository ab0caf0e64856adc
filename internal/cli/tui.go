package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/matzehuels/infragraph/pkg/session"
)

const (
	maxScrollback = 500
	outputLines   = 8
	maxHistory    = 100
)

var (
	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleFrame  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
	stylePrompt = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	styleCursor = lipgloss.NewStyle().Reverse(true)
)

// runWorkbench opens the given project files (or an empty project) and
// runs the workbench: full screen on a terminal, line by line from stdin
// otherwise.
func (c *CLI) runWorkbench(ctx context.Context, paths ...string) error {
	logger := loggerFromContext(ctx)

	mgr := session.NewManager(c.sessionOptions("", ""))
	if recent, err := session.NewRecentStore(""); err != nil {
		logger.Warnf("Recent files disabled: %v", err)
	} else {
		mgr.SetRecent(recent)
	}
	for _, p := range paths {
		if _, err := mgr.Open(ctx, p); err != nil {
			return err
		}
	}
	if mgr.Len() == 0 {
		if _, err := mgr.New(); err != nil {
			return err
		}
	}

	if !isatty.IsTerminal(os.Stdin.Fd()) || !isatty.IsTerminal(os.Stdout.Fd()) {
		return runScript(ctx, newWorkbench(mgr, c.importers(), logger, os.Stdout), os.Stdin)
	}

	var out bytes.Buffer
	wb := newWorkbench(mgr, c.importers(), newLogger(&out, logger.GetLevel()), &out)
	m := newWorkbenchModel(ctx, wb, &out)
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx)).Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("workbench: %w", err)
	}
	return nil
}

// runScript executes workbench commands read from r, one per line. Errors
// are reported and do not stop the script. At end of input unsaved changes
// are discarded with a warning.
func runScript(ctx context.Context, wb *Workbench, r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := wb.Exec(ctx, sc.Text()); err != nil {
			wb.println(ErrorMessage(err))
		}
		if wb.Done() {
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	for _, s := range wb.Manager().Unsaved() {
		wb.logger.Warnf("Discarding unsaved changes in %s", s.Title())
	}
	return nil
}

// =============================================================================
// workbenchModel - full-screen workbench
// =============================================================================

type workbenchModel struct {
	ctx context.Context
	wb  *Workbench
	out *bytes.Buffer

	scrollback []string
	input      []rune
	history    []string
	histPos    int

	width, height int
	canvas        *canvas
	canvasTop     int
}

func newWorkbenchModel(ctx context.Context, wb *Workbench, out *bytes.Buffer) *workbenchModel {
	m := &workbenchModel{ctx: ctx, wb: wb, out: out, width: 100, height: 30}
	m.appendOutput(infoLine("Type %s for the list of commands", styleCommand.Render("help")))
	return m
}

func (m *workbenchModel) Init() tea.Cmd {
	return tea.SetWindowTitle(m.title())
}

func (m *workbenchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			m.exec("quit")
		case tea.KeyEnter:
			line := strings.TrimSpace(string(m.input))
			m.input = m.input[:0]
			if line != "" {
				m.pushHistory(line)
				m.appendOutput(stylePrompt.Render("› ") + line)
				m.exec(line)
			}
		case tea.KeyBackspace:
			if len(m.input) > 0 {
				m.input = m.input[:len(m.input)-1]
			}
		case tea.KeyEsc:
			m.input = m.input[:0]
		case tea.KeyUp:
			m.recall(-1)
		case tea.KeyDown:
			m.recall(1)
		case tea.KeySpace:
			m.input = append(m.input, ' ')
		case tea.KeyRunes:
			m.input = append(m.input, msg.Runes...)
		}
	}
	if m.wb.Done() {
		return m, tea.Quit
	}
	return m, tea.SetWindowTitle(m.title())
}

// exec runs a command line and moves its output into the scrollback.
func (m *workbenchModel) exec(line string) {
	err := m.wb.Exec(m.ctx, line)
	m.flush()
	if err != nil {
		m.appendOutput(ErrorMessage(err))
	}
}

func (m *workbenchModel) handleMouse(msg tea.MouseMsg) {
	s, err := m.wb.Manager().Active()
	if err != nil || m.canvas == nil || msg.Action != tea.MouseActionPress {
		return
	}
	// The canvas sits inside a one-cell border.
	col, row := msg.X-1, msg.Y-m.canvasTop-1
	if !m.canvas.inside(col, row) {
		return
	}
	x, y := m.canvas.screenPoint(s.View, col, row)
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		s.Camera.Scroll(1, x, y)
	case tea.MouseButtonWheelDown:
		s.Camera.Scroll(-1, x, y)
	case tea.MouseButtonLeft:
		id, ok := m.canvas.nodeAt(col, row)
		if !ok {
			id, ok = s.View.NodeAt(x, y)
		}
		if ok {
			m.exec(fmt.Sprintf("info %q", id))
		}
	}
}

func (m *workbenchModel) flush() {
	if m.out.Len() == 0 {
		return
	}
	text := strings.TrimRight(m.out.String(), "\n")
	m.out.Reset()
	m.appendOutput(strings.Split(text, "\n")...)
}

func (m *workbenchModel) appendOutput(lines ...string) {
	m.scrollback = append(m.scrollback, lines...)
	if over := len(m.scrollback) - maxScrollback; over > 0 {
		m.scrollback = m.scrollback[over:]
	}
}

func (m *workbenchModel) pushHistory(line string) {
	if n := len(m.history); n == 0 || m.history[n-1] != line {
		m.history = append(m.history, line)
	}
	if len(m.history) > maxHistory {
		m.history = m.history[1:]
	}
	m.histPos = len(m.history)
}

func (m *workbenchModel) recall(delta int) {
	pos := m.histPos + delta
	if pos < 0 || pos > len(m.history) {
		return
	}
	m.histPos = pos
	if pos == len(m.history) {
		m.input = m.input[:0]
		return
	}
	m.input = []rune(m.history[pos])
}

func (m *workbenchModel) title() string {
	if s, err := m.wb.Manager().Active(); err == nil {
		return appName + " - " + s.Title()
	}
	return appName
}

func (m *workbenchModel) View() string {
	var b strings.Builder

	b.WriteString(m.header())
	b.WriteString("\n")

	// header, frame borders, output, prompt
	canvasRows := m.height - 1 - 2 - outputLines - 1
	m.canvasTop = 1
	m.canvas = nil
	if s, err := m.wb.Manager().Active(); err == nil && canvasRows > 2 {
		m.canvas = drawView(s.View, max(m.width-2, 1), canvasRows)
		b.WriteString(styleFrame.Render(m.canvas.String()))
	} else {
		b.WriteString(styleFrame.Width(max(m.width-2, 1)).Render(StyleDim.Render("No open project")))
	}
	b.WriteString("\n")

	start := max(len(m.scrollback)-outputLines, 0)
	shown := m.scrollback[start:]
	for i := 0; i < outputLines-len(shown); i++ {
		b.WriteString("\n")
	}
	for _, l := range shown {
		b.WriteString(l)
		b.WriteString("\n")
	}

	b.WriteString(stylePrompt.Render("› "))
	b.WriteString(string(m.input))
	b.WriteString(styleCursor.Render(" "))
	return b.String()
}

func (m *workbenchModel) header() string {
	mgr := m.wb.Manager()
	s, err := mgr.Active()
	if err != nil {
		return styleHeader.Render(appName)
	}
	index := 0
	for i, open := range mgr.Sessions() {
		if open == s {
			index = i + 1
		}
	}
	status := fmt.Sprintf("  [%d/%d]  %d objects · %d relationships  %s · %s · %.0f%%",
		index, mgr.Len(), s.Graph.NodeCount(), s.Graph.EdgeCount(),
		s.Scheme(), s.Layout.Engine().Name(), s.Camera.Scale*100)
	return styleHeader.Render(s.Title()) + StyleDim.Render(status)
}
