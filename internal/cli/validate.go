package cli

import (
	"context"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/infragraph/pkg/errors"
	infraio "github.com/matzehuels/infragraph/pkg/io"
)

// validateCommand creates the validate command, which checks that project
// files load. All files are checked; the command fails if any is invalid.
func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <project.json>...",
		Short: "Check that project files are well formed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), args)
		},
	}
}

func runValidate(ctx context.Context, paths []string) error {
	logger := loggerFromContext(ctx)

	var failed int
	var first error
	for _, path := range paths {
		g, err := infraio.ImportProject(path)
		if err != nil {
			failed++
			if first == nil {
				first = err
			}
			logger.Debug("validation failed", "path", path, "code", errs.GetCode(err))
			printError("%s: %s", path, errs.UserMessage(err))
			continue
		}
		printSuccess("%s is valid", path)
		printStats(g.NodeCount(), g.EdgeCount(), 0)
	}
	if failed == 1 && len(paths) == 1 {
		return first
	}
	if failed > 0 {
		return errs.Wrap(errs.GetCode(first), first, "%d of %d projects are invalid", failed, len(paths))
	}
	return nil
}
