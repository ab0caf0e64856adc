package io

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"time"

	errs "github.com/matzehuels/infragraph/pkg/errors"
	"github.com/matzehuels/infragraph/pkg/graph"
)

// Option customizes project export.
type Option func(*writeOptions)

type writeOptions struct {
	savedAt      time.Time
	omitMetadata bool
}

// WithSavedAt sets the metadata.saved_at timestamp. The default is the
// current time.
func WithSavedAt(t time.Time) Option {
	return func(o *writeOptions) { o.savedAt = t }
}

// WithoutMetadata omits the metadata object, producing the bare
// objects/relationships document.
func WithoutMetadata() Option {
	return func(o *writeOptions) { o.omitMetadata = true }
}

// WriteProject encodes g as an indented project document and writes it to w.
// Objects and relationships appear in insertion order.
func WriteProject(g *graph.Graph, w io.Writer, opts ...Option) error {
	o := writeOptions{savedAt: time.Now()}
	for _, opt := range opts {
		opt(&o)
	}

	out := project{
		Objects:       make([]object, 0, g.NodeCount()),
		Relationships: make([]relationship, 0, g.EdgeCount()),
	}
	for _, n := range g.Nodes() {
		out.Objects = append(out.Objects, object{
			ID:          n.ID,
			Type:        string(n.Type),
			Name:        n.Name,
			Description: n.Description,
			Properties:  n.Properties,
		})
	}
	for _, e := range g.Edges() {
		out.Relationships = append(out.Relationships, relationship{
			Source:      e.Source,
			Target:      e.Target,
			Type:        e.Type,
			Description: e.Description,
		})
	}
	if !o.omitMetadata {
		out.Metadata = &metadata{
			Version: FormatVersion,
			SavedAt: o.savedAt.UTC().Format(time.RFC3339),
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "encode project")
	}
	return nil
}

// MarshalProject converts g to project JSON bytes.
func MarshalProject(g *graph.Graph, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteProject(g, &buf, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportProject writes g to path.
//
// The document is written to a temporary file in the same directory and
// renamed over path, so on failure any existing file at path is untouched.
// All failures are reported as IO_ERROR.
func ExportProject(g *graph.Graph, path string, opts ...Option) error {
	data, err := MarshalProject(g, opts...)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "create %s", path)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return errs.Wrap(errs.ErrCodeIO, err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errs.Wrap(errs.ErrCodeIO, err, "write %s", path)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return errs.Wrap(errs.ErrCodeIO, err, "write %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return errs.Wrap(errs.ErrCodeIO, err, "write %s", path)
	}
	return nil
}
