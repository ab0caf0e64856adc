package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	errs "github.com/matzehuels/infragraph/pkg/errors"
	"github.com/matzehuels/infragraph/pkg/graph"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleTableHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleTableBorder = lipgloss.NewStyle().Foreground(colorDim)
	styleTableCell   = lipgloss.NewStyle().Padding(0, 1)
	styleHighlighted = lipgloss.NewStyle().Padding(0, 1).Foreground(colorRed).Bold(true)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Lines
// =============================================================================

func successLine(format string, args ...any) string {
	return styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...)
}

func errorLine(format string, args ...any) string {
	return styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...)
}

func infoLine(format string, args ...any) string {
	return styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...)
}

func detailLine(format string, args ...any) string {
	return "  " + StyleDim.Render(fmt.Sprintf(format, args...))
}

func fileLine(path string) string {
	return "  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path)
}

func keyValueLine(key, value string) string {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(14)
	return keyStyle.Render(key) + " " + StyleValue.Render(value)
}

// statsLine summarizes a graph on a single line.
func statsLine(nodeCount, edgeCount, warnings int) string {
	parts := []string{
		fmt.Sprintf("%d objects", nodeCount),
		fmt.Sprintf("%d relationships", edgeCount),
	}
	if warnings > 0 {
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("%d warnings", warnings)))
	}
	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	return line
}

// printSuccess prints a success message.
func printSuccess(format string, args ...any) { fmt.Println(successLine(format, args...)) }

// ErrorMessage formats err for the terminal, headed by its category.
func ErrorMessage(err error) string {
	return errorLine("%s: %s", errs.Title(errs.GetCode(err)), errs.UserMessage(err))
}

// printError prints an error message.
func printError(format string, args ...any) { fmt.Println(errorLine(format, args...)) }

// printFile prints a file output line.
func printFile(path string) { fmt.Println(fileLine(path)) }

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) { fmt.Println(keyValueLine(key, value)) }

// printStats prints graph statistics on a single line.
func printStats(nodeCount, edgeCount, warnings int) {
	fmt.Println(statsLine(nodeCount, edgeCount, warnings))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// printNewline prints an empty line.
func printNewline() {
	fmt.Println()
}

// =============================================================================
// Tables
// =============================================================================

// headerRow is the row index lipgloss passes to StyleFunc for the header.
const headerRow = -1

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleTableBorder).
		Headers(headers...)
}

// objectTable renders the nodes of g in insertion order.
func objectTable(g *graph.Graph) string {
	var rows [][]string
	for _, n := range g.Nodes() {
		rows = append(rows, []string{n.ID, string(n.Type), n.Name, truncate(n.Description, 40)})
	}
	return newTable("ID", "Type", "Name", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleTableHeader.Padding(0, 1)
			}
			return styleTableCell
		}).
		Render()
}

// relationshipTable renders the edges of g in insertion order, marking the
// highlighted edge when there is one.
func relationshipTable(g *graph.Graph, highlight *graph.EdgeKey) string {
	edges := g.Edges()
	var rows [][]string
	for _, e := range edges {
		rows = append(rows, []string{e.Source, iconArrow, e.Target, e.Type, truncate(e.Description, 30)})
	}
	return newTable("Source", "", "Target", "Type", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleTableHeader.Padding(0, 1)
			}
			if highlight != nil && row < len(edges) && edges[row].Key() == *highlight {
				return styleHighlighted
			}
			return styleTableCell
		}).
		Render()
}

// typeSummary lists node counts per type in display order, e.g.
// "2 server · 1 database".
func typeSummary(g *graph.Graph) string {
	counts := g.CountByType()
	var parts []string
	for _, t := range graph.NodeTypes {
		if n := counts[t]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, t))
		}
	}
	if len(parts) == 0 {
		return "empty"
	}
	return strings.Join(parts, " · ")
}

// propertyLines renders node properties as sorted "key: value" pairs.
func propertyLines(p graph.Properties) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = k + ": " + p[k]
	}
	return lines
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
