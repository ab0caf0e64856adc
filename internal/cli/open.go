package cli

import (
	"github.com/spf13/cobra"
)

// openCommand creates the open command, which starts the workbench on one
// or more project files.
func (c *CLI) openCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "open <project.json>...",
		Short: "Edit projects in the interactive workbench",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWorkbench(cmd.Context(), args...)
		},
	}
}
