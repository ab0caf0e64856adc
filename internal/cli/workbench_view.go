package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/infragraph/pkg/errors"
	"github.com/matzehuels/infragraph/pkg/graph"
	"github.com/matzehuels/infragraph/pkg/render/layout"
	"github.com/matzehuels/infragraph/pkg/render/nodelink"
	"github.com/matzehuels/infragraph/pkg/render/styles"
	"github.com/matzehuels/infragraph/pkg/session"
)

func exportOptions(detailed bool) nodelink.Options {
	return nodelink.Options{Detailed: detailed}
}

func parseFloat(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errs.New(errs.ErrCodeInvalidInput, "%s must be a number, got %q", name, s)
	}
	return v, nil
}

func (w *Workbench) viewCommands() []*cobra.Command {
	return []*cobra.Command{
		{
			Use:     "show",
			Aliases: []string{"ls"},
			Short:   "List the objects and relationships of the project",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := w.active()
				if err != nil {
					return err
				}
				w.println(StyleTitle.Render(s.Title()), keyValueLine("Objects", typeSummary(s.Graph)))
				if s.Graph.NodeCount() > 0 {
					w.println(objectTable(s.Graph))
				}
				if s.Graph.EdgeCount() > 0 {
					var hl *graph.EdgeKey
					if key, ok := s.View.Highlighted(); ok {
						hl = &key
					}
					w.println(relationshipTable(s.Graph, hl))
				}
				return nil
			},
		},
		{
			Use:   "info <id>",
			Short: "Show an object with its dependencies and dependents",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := w.active()
				if err != nil {
					return err
				}
				return w.printDetail(s, args[0])
			},
		},
		{
			Use:                "pick <x> <y>",
			Short:              "Show the object drawn at a view position",
			Args:               cobra.ExactArgs(2),
			DisableFlagParsing: true, // negative numbers are not flags
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := w.active()
				if err != nil {
					return err
				}
				x, err := parseFloat("x", args[0])
				if err != nil {
					return err
				}
				y, err := parseFloat("y", args[1])
				if err != nil {
					return err
				}
				id, ok := s.View.NodeAt(x, y)
				if !ok {
					w.println(infoLine("Nothing at %s,%s", args[0], args[1]))
					return nil
				}
				return w.printDetail(s, id)
			},
		},
		{
			Use:                "zoom <factor|in|out>",
			Short:              "Zoom the view about its center",
			Args:               cobra.ExactArgs(1),
			DisableFlagParsing: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := w.active()
				if err != nil {
					return err
				}
				switch args[0] {
				case "in":
					s.Camera.Scroll(1, s.Camera.Width/2, s.Camera.Height/2)
				case "out":
					s.Camera.Scroll(-1, s.Camera.Width/2, s.Camera.Height/2)
				default:
					f, err := parseFloat("factor", args[0])
					if err != nil {
						return err
					}
					if f <= 0 {
						return errs.New(errs.ErrCodeInvalidInput, "zoom factor must be positive")
					}
					s.Camera.Zoom(f)
				}
				w.println(infoLine("Zoom %.0f%%", s.Camera.Scale*100))
				return nil
			},
		},
		{
			Use:                "pan <dx> <dy>",
			Short:              "Move the view by dx,dy points",
			Args:               cobra.ExactArgs(2),
			DisableFlagParsing: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := w.active()
				if err != nil {
					return err
				}
				dx, err := parseFloat("dx", args[0])
				if err != nil {
					return err
				}
				dy, err := parseFloat("dy", args[1])
				if err != nil {
					return err
				}
				s.Camera.Pan(dx, dy)
				return nil
			},
		},
		{
			Use:                "drag <id> <x> <y>",
			Short:              "Move an object to layout position x,y and pin it there",
			Args:               cobra.ExactArgs(3),
			DisableFlagParsing: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := w.active()
				if err != nil {
					return err
				}
				if !s.Graph.HasNode(args[0]) {
					return errs.Wrap(errs.ErrCodeNotFound, graph.ErrNodeNotFound, "node %q", args[0])
				}
				x, err := parseFloat("x", args[1])
				if err != nil {
					return err
				}
				y, err := parseFloat("y", args[2])
				if err != nil {
					return err
				}
				s.Layout.Drag(args[0], x, y)
				w.println(infoLine("Pinned %s at %g,%g", args[0], x, y))
				return nil
			},
		},
		{
			Use:   "unpin <id>",
			Short: "Release a pinned object so the layout places it again",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := w.active()
				if err != nil {
					return err
				}
				if !s.Layout.Unpin(args[0]) {
					w.println(infoLine("%s is not pinned", args[0]))
					return nil
				}
				w.refresh(cmd.Context(), s)
				w.println(infoLine("Unpinned %s", args[0]))
				return nil
			},
		},
		{
			Use:   "reset-view",
			Short: "Fit the view to the drawing",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := w.active()
				if err != nil {
					return err
				}
				return s.ResetView(cmd.Context())
			},
		},
		{
			Use:   "relayout",
			Short: "Place every unpinned object again",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := w.active()
				if err != nil {
					return err
				}
				s.Layout.Relayout()
				return s.ResetView(cmd.Context())
			},
		},
		w.schemeCommand(),
		w.engineCommand(),
		w.highlightCommand(),
	}
}

func (w *Workbench) printDetail(s *session.Session, id string) error {
	d, err := s.View.Detail(id)
	if err != nil {
		return err
	}
	w.println(
		StyleTitle.Render(d.Node.Label()),
		keyValueLine("ID", d.Node.ID),
		keyValueLine("Type", string(d.Node.Type)),
		keyValueLine("Color", d.Color),
	)
	if d.Node.Description != "" {
		w.println(keyValueLine("Description", d.Node.Description))
	}
	if d.Placed {
		pos := fmt.Sprintf("%.0f,%.0f", d.Position.X, d.Position.Y)
		if d.Position.Pinned {
			pos += StyleDim.Render(" (pinned)")
		}
		w.println(keyValueLine("Position", pos))
	}
	for i, line := range propertyLines(d.Node.Properties) {
		key := ""
		if i == 0 {
			key = "Properties"
		}
		w.println(keyValueLine(key, line))
	}
	for i, e := range d.Dependencies {
		key := ""
		if i == 0 {
			key = "Depends on"
		}
		w.println(keyValueLine(key, describeEdge(iconArrow, e.Target, e.Type)))
	}
	for i, e := range d.Dependents {
		key := ""
		if i == 0 {
			key = "Used by"
		}
		w.println(keyValueLine(key, describeEdge("←", e.Source, e.Type)))
	}
	return nil
}

func (w *Workbench) schemeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scheme [name]",
		Short: "Show or change the color scheme",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := w.active()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				return s.SetScheme(args[0])
			}
			w.println(choiceLines(styles.Names(), s.Scheme())...)
			return nil
		},
	}
}

func (w *Workbench) engineCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "engine [name]",
		Short: "Show or change the layout engine",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := w.active()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				w.println(choiceLines(layout.Engines(), s.Layout.Engine().Name())...)
				return nil
			}
			if err := s.SetEngine(args[0]); err != nil {
				return err
			}
			return s.ResetView(cmd.Context())
		},
	}
}

func (w *Workbench) highlightCommand() *cobra.Command {
	var off bool
	cmd := &cobra.Command{
		Use:   "highlight <source> <target> <type>",
		Short: "Highlight a relationship in the drawing",
		Args: func(cmd *cobra.Command, args []string) error {
			if off {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(3)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := w.active()
			if err != nil {
				return err
			}
			if off {
				s.View.ClearHighlight()
				return nil
			}
			return s.View.Highlight(graph.EdgeKey{Source: args[0], Target: args[1], Type: args[2]})
		},
	}
	cmd.Flags().BoolVar(&off, "clear", false, "remove the highlight")
	return cmd
}

// choiceLines lists names, marking the current one.
func choiceLines(names []string, current string) []string {
	lines := make([]string, len(names))
	for i, n := range names {
		if n == current {
			lines[i] = StyleHighlight.Render("* " + n)
		} else {
			lines[i] = "  " + n
		}
	}
	return lines
}

