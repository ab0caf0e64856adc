// Package cli implements the infragraph command-line interface.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/infragraph/pkg/buildinfo"
	"github.com/matzehuels/infragraph/pkg/config"
	"github.com/matzehuels/infragraph/pkg/importers"
	"github.com/matzehuels/infragraph/pkg/importers/compose"
	"github.com/matzehuels/infragraph/pkg/importers/godot"
	"github.com/matzehuels/infragraph/pkg/importers/kubernetes"
	"github.com/matzehuels/infragraph/pkg/observability"
	"github.com/matzehuels/infragraph/pkg/observability/promfile"
	"github.com/matzehuels/infragraph/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "infragraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        config.Config
	metrics    *promfile.Sink
}

// New creates a new CLI instance with a default logger and the built-in
// configuration. The configuration file is read when a command runs.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// Config returns the active configuration.
func (c *CLI) Config() config.Config { return c.cfg }

// RootCommand creates the root cobra command with all subcommands registered.
// Running it without a subcommand opens an empty project in the workbench.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Infragraph models and visualizes infrastructure dependency graphs",
		Long: `Infragraph models the dependencies between files, containers, routers, switches,
servers and databases. Import Docker Compose files, Kubernetes manifests or Godot
projects, edit the graph in the workbench, save it as JSON and export PNG images.

Run without arguments to start the workbench with an empty project.`,
		Version:       buildinfo.Short(),
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWorkbench(cmd.Context())
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/infragraph/config.toml)")

	root.AddCommand(c.importCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.openCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// Close flushes collected metrics to the configured textfile.
func (c *CLI) Close() error {
	if c.metrics == nil {
		return nil
	}
	defer observability.Reset()
	if err := c.metrics.WriteTo(c.cfg.MetricsFile); err != nil {
		return err
	}
	c.Logger.Debugf("Wrote metrics to %s", c.cfg.MetricsFile)
	return nil
}

// =============================================================================
// Configuration
// =============================================================================

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	for _, key := range cfg.Unknown {
		c.Logger.Warnf("Ignoring unknown config key %q", key)
	}
	c.cfg = cfg
	if cfg.MetricsFile != "" && c.metrics == nil {
		c.metrics = promfile.New()
		c.metrics.Register()
	}
	return nil
}

// sessionOptions returns the configured session options with non-empty
// flag values applied on top.
func (c *CLI) sessionOptions(scheme, engine string) session.Options {
	opts := c.cfg.SessionOptions()
	opts.ListenerPanic = func(v any) {
		c.Logger.Error("Graph listener panicked", "value", v)
	}
	if scheme != "" {
		opts.Scheme = scheme
	}
	if engine != "" {
		opts.Engine = engine
	}
	return opts
}

// importers returns the available import adapters.
func (c *CLI) importers() []importers.Importer {
	return []importers.Importer{
		compose.New(),
		kubernetes.New(),
		godot.New(c.cfg.GodotOptions()),
	}
}

// importFormats lists the import format names.
func (c *CLI) importFormats() []string {
	imps := c.importers()
	names := make([]string, len(imps))
	for i, imp := range imps {
		names[i] = imp.Format()
	}
	return names
}
