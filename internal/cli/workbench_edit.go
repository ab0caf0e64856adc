package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/infragraph/pkg/errors"
	"github.com/matzehuels/infragraph/pkg/graph"
)

// nodeFlags holds the flags shared by add-node and edit-node.
type nodeFlags struct {
	typ         string
	name        string
	description string
	props       []string
	unset       []string
}

func (f *nodeFlags) register(cmd *cobra.Command, defaultType string) {
	cmd.Flags().StringVarP(&f.typ, "type", "t", defaultType, "object type: "+nodeTypeNames())
	cmd.Flags().StringVarP(&f.name, "name", "n", "", "display name")
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "description")
	cmd.Flags().StringArrayVarP(&f.props, "prop", "p", nil, "property key=value (repeatable)")
}

func nodeTypeNames() string {
	names := make([]string, len(graph.NodeTypes))
	for i, t := range graph.NodeTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func parseNodeType(s string) (graph.NodeType, error) {
	t, ok := graph.ParseNodeType(s)
	if !ok {
		return "", errs.Wrap(errs.ErrCodeInvalidInput, graph.ErrInvalidNodeType, "unknown object type %q (want one of %s)", s, nodeTypeNames())
	}
	return t, nil
}

// parseProps parses key=value pairs into p, allocating it when nil.
func parseProps(p graph.Properties, pairs []string) (graph.Properties, error) {
	for _, kv := range pairs {
		k, v, ok := strings.Cut(kv, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, errs.New(errs.ErrCodeInvalidInput, "property %q is not key=value", kv)
		}
		if p == nil {
			p = graph.Properties{}
		}
		p[k] = strings.TrimSpace(v)
	}
	return p, nil
}

func (w *Workbench) editCommands() []*cobra.Command {
	return []*cobra.Command{
		w.addNodeCommand(),
		w.editNodeCommand(),
		{
			Use:   "rename-node <id> <new-id>",
			Short: "Change the id of an object, keeping its relationships",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := w.active()
				if err != nil {
					return err
				}
				if err := s.Graph.RenameNode(args[0], args[1]); err != nil {
					return err
				}
				w.println(successLine("Renamed %s to %s", args[0], args[1]))
				return nil
			},
		},
		{
			Use:     "rm-node <id>",
			Aliases: []string{"remove-node"},
			Short:   "Remove an object and its relationships",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := w.active()
				if err != nil {
					return err
				}
				cascaded := len(s.Graph.IncidentEdges(args[0]))
				if err := s.Graph.RemoveNode(args[0]); err != nil {
					return err
				}
				w.println(successLine("Removed %s", args[0]))
				if cascaded > 0 {
					w.println(detailLine("%d relationships removed with it", cascaded))
				}
				return nil
			},
		},
		w.addEdgeCommand(),
		w.editEdgeCommand(),
		{
			Use:     "rm-edge <source> <target> <type>",
			Aliases: []string{"remove-edge"},
			Short:   "Remove a relationship",
			Args:    cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := w.active()
				if err != nil {
					return err
				}
				if err := s.Graph.RemoveEdge(args[0], args[1], args[2]); err != nil {
					return err
				}
				w.println(successLine("Removed %s", graph.EdgeKey{Source: args[0], Target: args[1], Type: args[2]}))
				return nil
			},
		},
	}
}

func (w *Workbench) addNodeCommand() *cobra.Command {
	var f nodeFlags
	cmd := &cobra.Command{
		Use:   "add-node [id]",
		Short: "Add an object; the id defaults to one derived from --name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := w.active()
			if err != nil {
				return err
			}
			t, err := parseNodeType(f.typ)
			if err != nil {
				return err
			}
			props, err := parseProps(nil, f.props)
			if err != nil {
				return err
			}
			n := graph.Node{
				Type:        t,
				Name:        errs.SanitizeText(f.name),
				Description: errs.SanitizeText(f.description),
				Properties:  props,
			}
			switch {
			case len(args) == 1:
				n.ID = args[0]
			case n.Name != "":
				n.ID = errs.SanitizeID(n.Name)
			}
			if n.ID == "" {
				return errs.New(errs.ErrCodeInvalidInput, "give an id or a --name to derive one from")
			}
			if n.Name == "" {
				n.Name = n.ID
			}
			if err := s.Graph.AddNode(n); err != nil {
				return err
			}
			w.refresh(cmd.Context(), s)
			w.println(successLine("Added %s %s", n.Type, n.ID))
			return nil
		},
	}
	f.register(cmd, string(graph.NodeServer))
	return cmd
}

func (w *Workbench) editNodeCommand() *cobra.Command {
	var f nodeFlags
	cmd := &cobra.Command{
		Use:   "edit-node <id>",
		Short: "Change the type, name, description or properties of an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := w.active()
			if err != nil {
				return err
			}
			n, ok := s.Graph.Node(args[0])
			if !ok {
				return errs.Wrap(errs.ErrCodeNotFound, graph.ErrNodeNotFound, "node %q", args[0])
			}
			flags := cmd.Flags()
			if flags.Changed("type") {
				if n.Type, err = parseNodeType(f.typ); err != nil {
					return err
				}
			}
			if flags.Changed("name") {
				n.Name = errs.SanitizeText(f.name)
			}
			if flags.Changed("description") {
				n.Description = errs.SanitizeText(f.description)
			}
			if n.Properties, err = parseProps(n.Properties, f.props); err != nil {
				return err
			}
			for _, k := range f.unset {
				delete(n.Properties, k)
			}
			if err := s.Graph.UpdateNode(n); err != nil {
				return err
			}
			w.println(successLine("Updated %s", n.ID))
			return nil
		},
	}
	f.register(cmd, "")
	cmd.Flags().StringArrayVar(&f.unset, "unset", nil, "remove a property (repeatable)")
	return cmd
}

func (w *Workbench) addEdgeCommand() *cobra.Command {
	var typ, description string
	cmd := &cobra.Command{
		Use:   "add-edge <source> <target>",
		Short: "Add a relationship",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := w.active()
			if err != nil {
				return err
			}
			e := graph.Edge{Source: args[0], Target: args[1], Type: typ, Description: errs.SanitizeText(description)}
			if err := s.Graph.AddEdge(e); err != nil {
				return err
			}
			w.println(successLine("Added %s", e.Key()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", graph.EdgeDependsOn, "relationship type: "+strings.Join(graph.EdgeTypes, ", "))
	cmd.Flags().StringVarP(&description, "description", "d", "", "description")
	return cmd
}

func (w *Workbench) editEdgeCommand() *cobra.Command {
	var source, target, typ, description string
	cmd := &cobra.Command{
		Use:   "edit-edge <source> <target> <type>",
		Short: "Change the endpoints, type or description of a relationship",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := w.active()
			if err != nil {
				return err
			}
			key := graph.EdgeKey{Source: args[0], Target: args[1], Type: args[2]}
			e, ok := s.Graph.Edge(key)
			if !ok {
				return errs.Wrap(errs.ErrCodeNotFound, graph.ErrEdgeNotFound, "edge %s", key)
			}
			flags := cmd.Flags()
			if flags.Changed("source") {
				e.Source = source
			}
			if flags.Changed("target") {
				e.Target = target
			}
			if flags.Changed("type") {
				e.Type = typ
			}
			if flags.Changed("description") {
				e.Description = errs.SanitizeText(description)
			}
			if err := s.Graph.UpdateEdge(key, e); err != nil {
				return err
			}
			w.println(successLine("Updated %s", e.Key()))
			if e.Key() != key {
				w.println(detailLine("was %s", key))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "new source id")
	cmd.Flags().StringVar(&target, "target", "", "new target id")
	cmd.Flags().StringVarP(&typ, "type", "t", "", "new relationship type")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	return cmd
}

// describeEdge formats an edge for info output, e.g. "→ db (depends_on)".
func describeEdge(arrow, other, typ string) string {
	return fmt.Sprintf("%s %s %s", arrow, other, StyleDim.Render("("+typ+")"))
}
