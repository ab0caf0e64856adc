package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/infragraph/pkg/render/layout"
	"github.com/matzehuels/infragraph/pkg/render/nodelink"
	"github.com/matzehuels/infragraph/pkg/render/styles"
	"github.com/matzehuels/infragraph/pkg/session"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string  // output file (derived from the input when empty)
	format    string  // png, svg or dot (derived from the output when empty)
	scheme    string  // color scheme, overrides config
	engine    string  // layout engine, overrides config
	zoom      float64 // zoom factor applied after fitting the drawing
	pan       string  // "dx,dy" screen units applied after zooming
	highlight string  // "source,target,type" edge to highlight
	detailed  bool    // show types and properties in labels
	width     float64 // view width in points, overrides config
	height    float64 // view height in points, overrides config
}

// renderCommand creates the render command, which exports a project as an
// image. The view is fitted to the drawing first, then zoomed and panned.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{zoom: 1}

	cmd := &cobra.Command{
		Use:   "render <project.json>",
		Short: "Render a project to PNG, SVG or DOT",
		Long: `Render a project to PNG, SVG or DOT.

PNG output is rendered at 300 DPI and shows exactly what the camera sees;
SVG and DOT contain the whole drawing.

Examples:
  infragraph render infra.json                        # infra.png
  infragraph render infra.json -o infra.svg --scheme dark
  infragraph render infra.json --zoom 2 --pan 100,0 --highlight web,db,depends_on`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input name with format extension)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: "+strings.Join(nodelink.Formats(), ", "))
	cmd.Flags().StringVar(&opts.scheme, "scheme", "", "color scheme: "+strings.Join(styles.Names(), ", "))
	cmd.Flags().StringVar(&opts.engine, "engine", "", "layout engine: "+strings.Join(layout.Engines(), ", "))
	cmd.Flags().Float64Var(&opts.zoom, "zoom", opts.zoom, "zoom factor relative to the fitted view")
	cmd.Flags().StringVar(&opts.pan, "pan", "", "pan the view by dx,dy points")
	cmd.Flags().StringVar(&opts.highlight, "highlight", "", "highlight the edge source,target,type")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show types and properties in labels")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "view width in points (default from config)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "view height in points (default from config)")

	cmd.RegisterFlagCompletionFunc("scheme", fixedCompletion(styles.Names()))
	cmd.RegisterFlagCompletionFunc("engine", fixedCompletion(layout.Engines()))
	cmd.RegisterFlagCompletionFunc("format", fixedCompletion(nodelink.Formats()))

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	sopts := c.sessionOptions(opts.scheme, opts.engine)
	if opts.width > 0 {
		sopts.Width = opts.width
	}
	if opts.height > 0 {
		sopts.Height = opts.height
	}
	format := exportFormat(opts.format, opts.output)
	output := opts.output
	if output == "" {
		output = outputPath(input, format)
	}

	prog := newProgress(logger)
	spinner := newSpinner(ctx, "Computing layout...")
	spinner.Start()
	s, err := session.NewManager(sopts).Open(ctx, input)
	spinner.Stop()
	if spinner.Cancelled() {
		return ctx.Err()
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Placed %d objects with %s", s.Layout.Len(), s.Layout.Engine().Name()))

	if opts.zoom != 1 {
		s.Camera.Zoom(opts.zoom)
	}
	if opts.pan != "" {
		dx, dy, err := parsePair(opts.pan)
		if err != nil {
			return fmt.Errorf("--pan: %w", err)
		}
		s.Camera.Pan(dx, dy)
	}
	if opts.highlight != "" {
		key, err := parseEdgeKey(opts.highlight)
		if err != nil {
			return fmt.Errorf("--highlight: %w", err)
		}
		if err := s.View.Highlight(key); err != nil {
			return err
		}
	}
	logger.Debug("camera", "scale", s.Camera.Scale, "offset_x", s.Camera.OffsetX, "offset_y", s.Camera.OffsetY)

	spinner = newSpinner(ctx, fmt.Sprintf("Rendering %s...", format))
	spinner.Start()
	err = s.Export(ctx, output, format, nodelink.Options{Detailed: opts.detailed})
	spinner.Stop()
	if err != nil {
		printError("Render failed")
		return err
	}

	printSuccess("Rendered %s", s.Title())
	printFile(output)
	printStats(s.Graph.NodeCount(), s.Graph.EdgeCount(), 0)
	return nil
}

func fixedCompletion(values []string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}
