package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	errs "github.com/matzehuels/infragraph/pkg/errors"
	"github.com/matzehuels/infragraph/pkg/graph"
)

// ReadProject decodes a project document from r into a new graph.
//
// Failures are reported as SCHEMA_ERROR: invalid JSON, a missing objects or
// relationships key, an object without id, type or name, an unknown node
// type, a relationship without source, target or type, duplicate ids or
// edges, dangling edge endpoints, and an unsupported metadata.version.
// Documents over [MaxFileSize] are rejected with IO_ERROR.
//
// ReadProject does not close r.
func ReadProject(r io.Reader) (*graph.Graph, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "read project")
	}
	if len(data) > MaxFileSize {
		return nil, errs.New(errs.ErrCodeIO, "project exceeds %d bytes", MaxFileSize)
	}
	return UnmarshalProject(data)
}

// UnmarshalProject decodes project JSON bytes into a new graph.
// See [ReadProject] for the validation rules.
func UnmarshalProject(data []byte) (*graph.Graph, error) {
	var doc rawProject
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errs.Wrap(errs.ErrCodeSchema, err, "decode project")
	}
	if err := checkVersion(doc.Metadata); err != nil {
		return nil, err
	}

	objects, err := decodeArray[rawObject](doc.Objects, "objects")
	if err != nil {
		return nil, err
	}
	relationships, err := decodeArray[rawRelationship](doc.Relationships, "relationships")
	if err != nil {
		return nil, err
	}

	g := graph.New()
	for i, o := range objects {
		n, err := toNode(o)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeSchema, err, "objects[%d]", i)
		}
		if err := g.AddNode(n); err != nil {
			return nil, errs.Wrap(errs.ErrCodeSchema, err, "objects[%d]", i)
		}
	}
	for i, r := range relationships {
		e, err := toEdge(r)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeSchema, err, "relationships[%d]", i)
		}
		if err := g.AddEdge(e); err != nil {
			return nil, errs.Wrap(errs.ErrCodeSchema, err, "relationships[%d]", i)
		}
	}
	return g, nil
}

// ImportProject reads the project file at path.
//
// Files that cannot be opened or exceed [MaxFileSize] yield IO_ERROR; the
// content is validated as in [ReadProject].
func ImportProject(path string) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "stat %s", path)
	}
	if info.Size() > MaxFileSize {
		return nil, errs.New(errs.ErrCodeIO, "%s is %d bytes (max %d)", path, info.Size(), MaxFileSize)
	}
	return ReadProject(f)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func decodeArray[T any](raw json.RawMessage, key string) ([]T, error) {
	if raw == nil {
		return nil, errs.New(errs.ErrCodeSchema, "missing required key %q", key)
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, errs.New(errs.ErrCodeSchema, "%q must be an array", key)
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errs.Wrap(errs.ErrCodeSchema, err, "decode %q", key)
	}
	return out, nil
}

func toNode(o rawObject) (graph.Node, error) {
	if err := requireKeys(map[string]*string{"id": o.ID, "type": o.Type, "name": o.Name}); err != nil {
		return graph.Node{}, err
	}
	t, ok := graph.ParseNodeType(*o.Type)
	if !ok {
		return graph.Node{}, fmt.Errorf("unknown node type %q", *o.Type)
	}
	return graph.Node{
		ID:          *o.ID,
		Type:        t,
		Name:        *o.Name,
		Description: deref(o.Description),
		Properties:  o.Properties,
	}, nil
}

func toEdge(r rawRelationship) (graph.Edge, error) {
	if err := requireKeys(map[string]*string{"source": r.Source, "target": r.Target, "type": r.Type}); err != nil {
		return graph.Edge{}, err
	}
	return graph.Edge{
		Source:      *r.Source,
		Target:      *r.Target,
		Type:        *r.Type,
		Description: deref(r.Description),
	}, nil
}

// requireKeys reports the first missing key in the fixed order id/type/name
// or source/target/type.
func requireKeys(fields map[string]*string) error {
	for _, k := range []string{"id", "source", "target", "type", "name"} {
		if v, ok := fields[k]; ok && v == nil {
			return fmt.Errorf("missing required key %q", k)
		}
	}
	return nil
}
