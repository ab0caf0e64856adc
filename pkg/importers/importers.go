// Package importers defines the contract shared by the import adapters and
// the helpers that drive them.
//
// An importer turns an external description of infrastructure (a Compose
// file, a Kubernetes manifest stream, a Godot project tree) into a fresh
// [graph.Graph]. Structural problems abort the import with a PARSE_ERROR;
// problems with individual entries become [Warning] values and the
// best-effort graph is still returned.
//
// Adapters live in subpackages:
//
//	compose     docker-compose.yml / compose.yaml
//	kubernetes  multi-document Kubernetes YAML
//	godot       Godot 4 project directories
package importers

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	errs "github.com/matzehuels/infragraph/pkg/errors"
	"github.com/matzehuels/infragraph/pkg/graph"
	"github.com/matzehuels/infragraph/pkg/observability"
)

// Importer identifies an import adapter.
type Importer interface {
	// Format returns the importer identifier (e.g., "compose", "kubernetes").
	Format() string
	// Supports reports whether this importer handles the given file name.
	Supports(filename string) bool
}

// StreamImporter parses a single document.
type StreamImporter interface {
	Importer
	Parse(r io.Reader) (*Result, error)
}

// TreeImporter parses a directory tree.
type TreeImporter interface {
	Importer
	ParseFS(fsys fs.FS) (*Result, error)
}

// Warning is a non-fatal problem found while importing.
type Warning struct {
	Entry   string // Offending entry, e.g. "services.web" or "Service/default/api"
	Message string
}

func (w Warning) String() string {
	if w.Entry == "" {
		return w.Message
	}
	return w.Entry + ": " + w.Message
}

// Result is the outcome of a successful import.
type Result struct {
	Graph    *graph.Graph
	Warnings []Warning
	Format   string
	Name     string // Project name, when the source format declares one
}

// NewResult creates an empty result for the given format.
func NewResult(format string) *Result {
	return &Result{Graph: graph.New(), Format: format}
}

// Warnf records a warning against entry.
func (r *Result) Warnf(entry, format string, args ...any) {
	r.Warnings = append(r.Warnings, Warning{Entry: entry, Message: fmt.Sprintf(format, args...)})
}

// AddNode adds n to the graph, recording a warning instead of failing when
// the graph rejects it. It reports whether the node was added.
func (r *Result) AddNode(entry string, n graph.Node) bool {
	if err := r.Graph.AddNode(n); err != nil {
		r.Warnf(entry, "skipped: %s", errs.UserMessage(err))
		return false
	}
	return true
}

// AddEdge adds e to the graph, recording a warning instead of failing when
// the graph rejects it. It reports whether the edge was added.
func (r *Result) AddEdge(entry string, e graph.Edge) bool {
	if err := r.Graph.AddEdge(e); err != nil {
		r.Warnf(entry, "skipped %s: %s", e.Key(), errs.UserMessage(err))
		return false
	}
	return true
}

// ParseError reports a structurally invalid document.
func ParseError(cause error, format string, args ...any) error {
	if cause == nil {
		return errs.New(errs.ErrCodeParse, format, args...)
	}
	return errs.Wrap(errs.ErrCodeParse, cause, format, args...)
}

// Detect finds an importer that supports the given path. Directories are
// matched by the importers' support for the names of the files they contain.
func Detect(path string, importers ...Importer) (Importer, error) {
	name := filepath.Base(path)
	for _, imp := range importers {
		if imp.Supports(name) {
			return imp, nil
		}
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		entries, err := os.ReadDir(path)
		if err == nil {
			for _, imp := range importers {
				for _, e := range entries {
					if imp.Supports(e.Name()) {
						return imp, nil
					}
				}
			}
		}
	}
	return nil, errs.New(errs.ErrCodeUnsupported, "no importer for %s", name)
}

// Lookup returns the importer with the given format name.
func Lookup(format string, importers ...Importer) (Importer, error) {
	for _, imp := range importers {
		if imp.Format() == format {
			return imp, nil
		}
	}
	return nil, errs.New(errs.ErrCodeInvalidFormat, "unknown import format %q", format)
}

// ParsePath runs imp against path. Stream importers read the file; tree
// importers walk the directory (or the directory containing path when path
// names a file). Open failures are IO_ERROR.
//
// The import is reported to the observability import hooks.
func ParsePath(ctx context.Context, path string, imp Importer) (res *Result, err error) {
	hooks := observability.Import()
	hooks.OnImportStart(ctx, imp.Format())
	start := time.Now()
	defer func() {
		var stats observability.ImportStats
		if res != nil {
			stats = observability.ImportStats{
				Nodes:    res.Graph.NodeCount(),
				Edges:    res.Graph.EdgeCount(),
				Warnings: len(res.Warnings),
			}
		}
		hooks.OnImportComplete(ctx, imp.Format(), stats, time.Since(start), err)
	}()

	switch p := imp.(type) {
	case TreeImporter:
		info, err := os.Stat(path)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeIO, err, "open %s", path)
		}
		dir := path
		if !info.IsDir() {
			dir = filepath.Dir(path)
		}
		return p.ParseFS(os.DirFS(dir))
	case StreamImporter:
		f, err := os.Open(path)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeIO, err, "open %s", path)
		}
		defer f.Close()
		return p.Parse(f)
	default:
		return nil, errs.New(errs.ErrCodeUnsupported, "importer %s cannot parse files", imp.Format())
	}
}
