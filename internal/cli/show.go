package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/infragraph/pkg/graph"
	infraio "github.com/matzehuels/infragraph/pkg/io"
)

// showCommand creates the show command, which prints a project as tables.
func (c *CLI) showCommand() *cobra.Command {
	var nodeType string

	cmd := &cobra.Command{
		Use:   "show <project.json>",
		Short: "Print the objects and relationships of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd.Context(), args[0], nodeType)
		},
	}

	cmd.Flags().StringVarP(&nodeType, "type", "t", "", "only show objects of this type")
	cmd.RegisterFlagCompletionFunc("type", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, len(graph.NodeTypes))
		for i, t := range graph.NodeTypes {
			names[i] = string(t)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runShow(ctx context.Context, path, nodeType string) error {
	logger := loggerFromContext(ctx)
	logger.Debugf("Loading %s", path)

	g, err := infraio.ImportProject(path)
	if err != nil {
		return err
	}
	if nodeType != "" {
		t, ok := graph.ParseNodeType(nodeType)
		if !ok {
			return fmt.Errorf("unknown object type %q", nodeType)
		}
		g = filterByType(g, t)
	}

	fmt.Println(StyleTitle.Render(filepath.Base(path)))
	printKeyValue("Objects", typeSummary(g))
	printKeyValue("Relationships", fmt.Sprint(g.EdgeCount()))
	printNewline()
	if g.NodeCount() > 0 {
		fmt.Println(objectTable(g))
	}
	if g.EdgeCount() > 0 {
		fmt.Println(relationshipTable(g, nil))
	}
	return nil
}

// filterByType returns a copy of g restricted to nodes of type t and the
// edges between them.
func filterByType(g *graph.Graph, t graph.NodeType) *graph.Graph {
	out := g.Clone()
	for _, n := range g.Nodes() {
		if n.Type != t {
			_ = out.RemoveNode(n.ID)
		}
	}
	return out
}
