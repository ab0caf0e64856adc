// Package config loads user preferences from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/infragraph/config.toml, falling back to
// ~/.config/infragraph/config.toml. A missing file means defaults:
//
//	color_scheme  = "default"   # default, dark, pastel, vibrant
//	layout_engine = "fdp"       # fdp, neato, sfdp
//	export_width  = 1200        # view size in points; PNG pixels = points * 300 / 72
//	export_height = 900
//	metrics_file  = ""          # Prometheus textfile written at exit
//
//	[godot]
//	exclude_textures = true
//	exclude_audio    = false
//	exclude_fonts    = false
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/infragraph/pkg/errors"
	"github.com/matzehuels/infragraph/pkg/importers/godot"
	"github.com/matzehuels/infragraph/pkg/render/layout"
	"github.com/matzehuels/infragraph/pkg/render/styles"
	"github.com/matzehuels/infragraph/pkg/session"
)

const appName = "infragraph"

// Config holds user preferences.
type Config struct {
	ColorScheme  string  `toml:"color_scheme"`
	LayoutEngine string  `toml:"layout_engine"`
	ExportWidth  float64 `toml:"export_width"`
	ExportHeight float64 `toml:"export_height"`
	MetricsFile  string  `toml:"metrics_file"`
	Godot        Godot   `toml:"godot"`

	// Unknown lists keys present in the file that no field consumed.
	Unknown []string `toml:"-"`
}

// Godot holds the Godot importer switches.
type Godot struct {
	ExcludeTextures bool `toml:"exclude_textures"`
	ExcludeAudio    bool `toml:"exclude_audio"`
	ExcludeFonts    bool `toml:"exclude_fonts"`
}

// Default returns the built-in preferences.
func Default() Config {
	g := godot.DefaultOptions()
	return Config{
		ColorScheme:  styles.Default,
		LayoutEngine: layout.DefaultEngine,
		ExportWidth:  1200,
		ExportHeight: 900,
		Godot: Godot{
			ExcludeTextures: g.ExcludeTextures,
			ExcludeAudio:    g.ExcludeAudio,
			ExcludeFonts:    g.ExcludeFonts,
		},
	}
}

// Dir returns the configuration directory using the XDG convention.
func Dir() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// DefaultPath returns the location of config.toml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the configuration at path on top of the defaults. An empty
// path selects DefaultPath, and a missing default file is not an error.
// A file given explicitly must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if explicit {
				return Default(), errs.Wrap(errs.ErrCodeIO, err, "config file %s", path)
			}
			return Default(), nil
		}
		var perr toml.ParseError
		if errors.As(err, &perr) {
			return Default(), errs.Wrap(errs.ErrCodeParse, err, "config file %s", path)
		}
		return Default(), errs.Wrap(errs.ErrCodeInvalidInput, err, "config file %s", path)
	}
	for _, k := range md.Undecoded() {
		cfg.Unknown = append(cfg.Unknown, k.String())
	}
	if err := cfg.Validate(); err != nil {
		return Default(), errs.Wrap(errs.ErrCodeInvalidInput, err, "config file %s", path)
	}
	return cfg, nil
}

// Validate checks that every value names something that exists.
func (c Config) Validate() error {
	if _, err := styles.Lookup(c.ColorScheme); err != nil {
		return err
	}
	if _, err := layout.NewEngine(c.LayoutEngine); err != nil {
		return err
	}
	if c.ExportWidth <= 0 || c.ExportHeight <= 0 {
		return errs.New(errs.ErrCodeInvalidInput, "export size must be positive, got %gx%g", c.ExportWidth, c.ExportHeight)
	}
	if strings.ContainsRune(c.MetricsFile, 0) {
		return errs.New(errs.ErrCodeInvalidPath, "metrics_file contains invalid characters")
	}
	return nil
}

// SessionOptions returns the options for new sessions.
func (c Config) SessionOptions() session.Options {
	return session.Options{
		Scheme: c.ColorScheme,
		Engine: c.LayoutEngine,
		Width:  c.ExportWidth,
		Height: c.ExportHeight,
	}
}

// GodotOptions returns the Godot importer options.
func (c Config) GodotOptions() godot.Options {
	return godot.Options{
		ExcludeTextures: c.Godot.ExcludeTextures,
		ExcludeAudio:    c.Godot.ExcludeAudio,
		ExcludeFonts:    c.Godot.ExcludeFonts,
	}
}
