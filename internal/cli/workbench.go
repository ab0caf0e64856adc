package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/infragraph/pkg/errors"
	"github.com/matzehuels/infragraph/pkg/importers"
	"github.com/matzehuels/infragraph/pkg/session"
)

// Workbench interprets workbench command lines against the open projects.
// Each line is parsed by a fresh cobra command tree, so flags never leak
// from one command into the next.
type Workbench struct {
	mgr       *session.Manager
	importers []importers.Importer
	logger    *log.Logger
	out       io.Writer
	done      bool
}

func newWorkbench(mgr *session.Manager, imps []importers.Importer, logger *log.Logger, out io.Writer) *Workbench {
	return &Workbench{mgr: mgr, importers: imps, logger: logger, out: out}
}

// Done reports whether the workbench has been quit.
func (w *Workbench) Done() bool { return w.done }

// Manager returns the session manager.
func (w *Workbench) Manager() *session.Manager { return w.mgr }

// Exec runs one command line. Blank lines and lines starting with '#' are
// ignored.
func (w *Workbench) Exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	args, err := splitArgs(line)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "cannot parse command")
	}
	root := w.commandTree()
	root.SetArgs(args)
	return root.ExecuteContext(withLogger(ctx, w.logger))
}

func (w *Workbench) commandTree() *cobra.Command {
	root := &cobra.Command{
		Use:           "",
		Short:         "Workbench commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(w.out)
	root.SetErr(w.out)

	root.AddGroup(
		&cobra.Group{ID: "project", Title: "Projects:"},
		&cobra.Group{ID: "edit", Title: "Editing:"},
		&cobra.Group{ID: "view", Title: "View:"},
	)
	for _, cmd := range w.projectCommands() {
		cmd.GroupID = "project"
		root.AddCommand(cmd)
	}
	for _, cmd := range w.editCommands() {
		cmd.GroupID = "edit"
		root.AddCommand(cmd)
	}
	for _, cmd := range w.viewCommands() {
		cmd.GroupID = "view"
		root.AddCommand(cmd)
	}
	return root
}

// =============================================================================
// Output
// =============================================================================

func (w *Workbench) println(lines ...string) {
	for _, l := range lines {
		fmt.Fprintln(w.out, l)
	}
}

// active returns the active session.
func (w *Workbench) active() (*session.Session, error) {
	return w.mgr.Active()
}

// refresh places objects that have no position yet. Layout failures are
// reported but do not undo the edit that triggered them.
func (w *Workbench) refresh(ctx context.Context, s *session.Session) {
	if err := s.Refresh(ctx); err != nil {
		w.logger.Warn("layout failed", "err", errs.UserMessage(err))
	}
}

// =============================================================================
// Project Commands
// =============================================================================

func (w *Workbench) projectCommands() []*cobra.Command {
	return []*cobra.Command{
		{
			Use:   "new",
			Short: "Open an empty project",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := w.mgr.New()
				if err != nil {
					return err
				}
				w.println(successLine("Opened %s", s.Title()))
				return nil
			},
		},
		{
			Use:   "open <project.json>",
			Short: "Open a project file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := w.mgr.Open(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				w.println(successLine("Opened %s", s.Title()), statsLine(s.Graph.NodeCount(), s.Graph.EdgeCount(), 0))
				return nil
			},
		},
		w.importCommand(),
		{
			Use:   "save",
			Short: "Save the project to its file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := w.mgr.Save(cmd.Context()); err != nil {
					if errs.Is(err, errs.ErrCodeInvalidPath) {
						return errs.Wrap(errs.ErrCodeInvalidPath, err, "use save-as <file>")
					}
					return err
				}
				s, _ := w.active()
				w.println(successLine("Saved"), fileLine(s.Path()))
				return nil
			},
		},
		{
			Use:   "save-as <project.json>",
			Short: "Save the project to a new file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := w.mgr.SaveAs(cmd.Context(), args[0]); err != nil {
					return err
				}
				w.println(successLine("Saved"), fileLine(args[0]))
				return nil
			},
		},
		w.exportCommand(),
		{
			Use:     "windows",
			Aliases: []string{"projects"},
			Short:   "List open projects",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				active, _ := w.active()
				for i, s := range w.mgr.Sessions() {
					marker := " "
					if s == active {
						marker = StyleHighlight.Render("*")
					}
					w.println(fmt.Sprintf("%s %d  %s  %s  %s", marker, i+1, StyleDim.Render(s.ID[:8]),
						s.Title(), StyleDim.Render(fmt.Sprintf("(%d objects)", s.Graph.NodeCount()))))
				}
				if w.mgr.Len() == 0 {
					w.println(infoLine("No open projects"))
				}
				return nil
			},
		},
		{
			Use:   "switch <n|id>",
			Short: "Activate another open project",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := w.mgr.Switch(args[0])
				if err != nil {
					return err
				}
				w.println(infoLine("Switched to %s", s.Title()))
				return nil
			},
		},
		w.closeCommand(),
		w.quitCommand(),
		{
			Use:   "recent",
			Short: "List recently used project files",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				recent := w.mgr.Recent()
				if len(recent) == 0 {
					w.println(infoLine("No recent projects"))
				}
				for i, p := range recent {
					w.println(fmt.Sprintf("  %d  %s", i+1, p))
				}
				return nil
			},
		},
	}
}

func (w *Workbench) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <compose|kubernetes|godot|auto> <path>",
		Short: "Import a Compose file, Kubernetes manifest or Godot project as a new project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				imp importers.Importer
				err error
			)
			if args[0] == "auto" {
				imp, err = importers.Detect(args[1], w.importers...)
			} else {
				imp, err = importers.Lookup(args[0], w.importers...)
			}
			if err != nil {
				return err
			}
			s, res, err := w.mgr.Import(cmd.Context(), args[1], imp)
			if res != nil {
				logWarnings(w.logger, res)
			}
			if err != nil {
				return err
			}
			w.println(successLine("Imported %s", filepath.Base(args[1])),
				statsLine(s.Graph.NodeCount(), s.Graph.EdgeCount(), len(res.Warnings)))
			return nil
		},
	}
}

func (w *Workbench) exportCommand() *cobra.Command {
	var format string
	var detailed bool
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export the view as PNG (300 DPI), SVG or DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := w.active()
			if err != nil {
				return err
			}
			f := exportFormat(format, args[0])
			if err := s.Export(cmd.Context(), args[0], f, exportOptions(detailed)); err != nil {
				return err
			}
			w.println(successLine("Exported %s", strings.ToUpper(f)), fileLine(args[0]))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "png, svg or dot (default from the file extension)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show types and properties in labels")
	return cmd
}

func (w *Workbench) closeCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "close [n|id]",
		Short: "Close a project (the active one by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := ""
			if len(args) == 1 {
				ref = args[0]
			}
			if err := w.mgr.Close(ref, force); err != nil {
				if errs.Is(err, errs.ErrCodeUnsavedChanges) {
					return errs.Wrap(errs.ErrCodeUnsavedChanges, err, "save it or use close --force")
				}
				return err
			}
			if s, err := w.active(); err == nil {
				w.println(infoLine("Closed; now editing %s", s.Title()))
			} else {
				w.println(infoLine("Closed; no open projects (use new, open or import)"))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "discard unsaved changes")
	return cmd
}

func (w *Workbench) quitCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:     "quit",
		Aliases: []string{"exit"},
		Short:   "Leave the workbench",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if unsaved := w.mgr.Unsaved(); len(unsaved) > 0 && !force {
				titles := make([]string, len(unsaved))
				for i, s := range unsaved {
					titles[i] = s.Title()
				}
				return errs.New(errs.ErrCodeUnsavedChanges, "unsaved changes in %s; save them or use quit --force",
					strings.Join(titles, ", "))
			}
			w.done = true
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "discard unsaved changes")
	return cmd
}
