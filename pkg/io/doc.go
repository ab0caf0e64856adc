// Package io provides JSON import and export for infragraph projects.
//
// # Overview
//
// A project file is the persisted form of a [graph.Graph]. Writing and then
// reading a project yields a graph equal to the original: same nodes, same
// edges, same insertion order.
//
// # JSON Format
//
// The format has two required top-level arrays and an optional metadata
// object:
//
//	{
//	  "objects": [
//	    {"id": "web", "type": "docker_container", "name": "web", "description": "nginx:1.25"},
//	    {"id": "db", "type": "database", "name": "db", "description": ""}
//	  ],
//	  "relationships": [
//	    {"source": "web", "target": "db", "type": "depends_on", "description": ""}
//	  ],
//	  "metadata": {"version": "1.0", "saved_at": "2025-01-02T15:04:05Z"}
//	}
//
// # Object Fields
//
// Required:
//   - id: unique string identifier
//   - type: one of file, docker_container, router, switch, server, database
//   - name: display name
//
// Optional:
//   - description: free text (always written, may be empty)
//   - properties: string map of importer facts (written only when non-empty)
//
// # Relationship Fields
//
// source, target and type are required; type is an open string and is
// preserved verbatim. description is optional.
//
// # Metadata
//
// Exports record the format version and save time. On import, a present
// metadata.version must satisfy ^1 (checked with Masterminds/semver); files
// without metadata are accepted.
//
// # Errors
//
// Content problems are SCHEMA_ERROR, file-system problems and oversized files
// are IO_ERROR (see pkg/errors). [ExportProject] writes through a temporary
// file so a failed save never truncates an existing project.
//
// [graph.Graph]: github.com/matzehuels/infragraph/pkg/graph.Graph
package io
