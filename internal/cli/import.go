package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/infragraph/pkg/errors"
	"github.com/matzehuels/infragraph/pkg/importers"
	infraio "github.com/matzehuels/infragraph/pkg/io"
)

// importCommand creates the import command, which converts an external
// infrastructure description into a project file.
func (c *CLI) importCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "import <compose|kubernetes|godot|auto> <path>",
		Short: "Import a Compose file, Kubernetes manifest or Godot project",
		Long: `Import an infrastructure description and write it as a project file.

Entries that cannot be imported are reported as warnings; the rest of the
document is still converted. Use "auto" to pick the importer from the file name.

Examples:
  infragraph import compose docker-compose.yml -o app.json
  infragraph import kubernetes k8s/shop.yaml -o shop.json
  infragraph import godot ./my-game -o game.json
  infragraph import auto compose.yaml`,
		Args: cobra.ExactArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return append(c.importFormats(), "auto"), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveDefault
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runImport(cmd.Context(), args[0], args[1], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output project file (stdout if empty)")

	return cmd
}

func (c *CLI) runImport(ctx context.Context, format, path, output string) error {
	logger := loggerFromContext(ctx)

	imp, err := c.lookupImporter(format, path)
	if err != nil {
		return err
	}
	logger.Infof("Importing %s (%s)", path, imp.Format())

	prog := newProgress(logger)
	res, err := importers.ParsePath(ctx, path, imp)
	if err != nil {
		return err
	}
	logWarnings(logger, res)
	if res.Graph.NodeCount() == 0 {
		return errs.New(errs.ErrCodeParse, "%s contains no importable objects", filepath.Base(path))
	}
	prog.done(fmt.Sprintf("Imported %d objects with %d relationships", res.Graph.NodeCount(), res.Graph.EdgeCount()))

	if output == "" {
		return infraio.WriteProject(res.Graph, os.Stdout)
	}
	if err := errs.ValidateFilePath(output); err != nil {
		return err
	}
	if err := infraio.ExportProject(res.Graph, output); err != nil {
		return err
	}

	printSuccess("Import complete")
	printFile(output)
	printStats(res.Graph.NodeCount(), res.Graph.EdgeCount(), len(res.Warnings))
	printNewline()
	printNextStep("Edit", appName+" open "+output)
	return nil
}

// lookupImporter resolves an importer by format name, or by file name when
// format is "auto".
func (c *CLI) lookupImporter(format, path string) (importers.Importer, error) {
	if format == "auto" {
		return importers.Detect(path, c.importers()...)
	}
	imp, err := importers.Lookup(format, c.importers()...)
	if err != nil {
		return nil, fmt.Errorf("%w\n\nSupported: %s", err, strings.Join(c.importFormats(), ", "))
	}
	return imp, nil
}
