package io

import (
	"encoding/json"
	"fmt"

	mm "github.com/Masterminds/semver/v3"

	errs "github.com/matzehuels/infragraph/pkg/errors"
)

const (
	// FormatVersion is written to metadata.version by every export.
	FormatVersion = "1.0"

	// versionConstraint is the range of metadata versions this package reads.
	versionConstraint = "^1"

	// MaxFileSize is the largest project file ImportProject accepts.
	MaxFileSize = 10 << 20
)

var supportedVersions = mustConstraint(versionConstraint)

func mustConstraint(raw string) *mm.Constraints {
	c, err := mm.NewConstraint(raw)
	if err != nil {
		panic(fmt.Sprintf("io: parse constraint %q: %v", raw, err))
	}
	return c
}

// =============================================================================
// Wire Types
// =============================================================================

type project struct {
	Objects       []object       `json:"objects"`
	Relationships []relationship `json:"relationships"`
	Metadata      *metadata      `json:"metadata,omitempty"`
}

type object struct {
	ID          string            `json:"id"`
	Type        string            `json:"type"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Properties  map[string]string `json:"properties,omitempty"`
}

type relationship struct {
	Source      string `json:"source"`
	Target      string `json:"target"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

type metadata struct {
	Version string `json:"version,omitempty"`
	SavedAt string `json:"saved_at,omitempty"`
}

// Incoming documents are decoded into pointer fields so that a missing key
// can be told apart from an empty value.

type rawProject struct {
	Objects       json.RawMessage `json:"objects"`
	Relationships json.RawMessage `json:"relationships"`
	Metadata      *metadata       `json:"metadata"`
}

type rawObject struct {
	ID          *string           `json:"id"`
	Type        *string           `json:"type"`
	Name        *string           `json:"name"`
	Description *string           `json:"description"`
	Properties  map[string]string `json:"properties"`
}

type rawRelationship struct {
	Source      *string `json:"source"`
	Target      *string `json:"target"`
	Type        *string `json:"type"`
	Description *string `json:"description"`
}

func checkVersion(m *metadata) error {
	if m == nil || m.Version == "" {
		return nil
	}
	v, err := mm.NewVersion(m.Version)
	if err != nil {
		return errs.Wrap(errs.ErrCodeSchema, err, "metadata.version %q is not a version", m.Version)
	}
	if !supportedVersions.Check(v) {
		return errs.New(errs.ErrCodeSchema, "unsupported project version %s (want %s)", m.Version, versionConstraint)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
