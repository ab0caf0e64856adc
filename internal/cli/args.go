package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mattn/go-shellwords"

	"github.com/matzehuels/infragraph/pkg/graph"
	"github.com/matzehuels/infragraph/pkg/render/nodelink"
)

// parsePair parses "x,y" into two floats.
func parsePair(s string) (float64, float64, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("expected x,y, got %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid x %q", xs)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid y %q", ys)
	}
	return x, y, nil
}

// parseEdgeKey parses "source,target,type".
func parseEdgeKey(s string) (graph.EdgeKey, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return graph.EdgeKey{}, fmt.Errorf("expected source,target,type, got %q", s)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
		if parts[i] == "" {
			return graph.EdgeKey{}, fmt.Errorf("expected source,target,type, got %q", s)
		}
	}
	return graph.EdgeKey{Source: parts[0], Target: parts[1], Type: parts[2]}, nil
}

// exportFormat picks the export format: the explicit one when set,
// otherwise the output file extension, otherwise PNG.
func exportFormat(explicit, output string) string {
	if explicit != "" {
		return strings.ToLower(explicit)
	}
	if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), "."); ext != "" {
		for _, f := range nodelink.Formats() {
			if f == ext {
				return f
			}
		}
	}
	return nodelink.FormatPNG
}

// outputPath derives the output file for input when none is given,
// e.g. "infra.json" → "infra.png".
func outputPath(input, format string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
}

// splitArgs splits a workbench command line into words with shell quoting
// rules. Shell operators (; & | < >) must be quoted, since the workbench
// runs one command per line.
func splitArgs(line string) ([]string, error) {
	p := shellwords.NewParser()
	args, err := p.Parse(line)
	if err != nil {
		return nil, err
	}
	if p.Position >= 0 {
		return nil, fmt.Errorf("unquoted shell operator after %q", strings.Join(args, " "))
	}
	return args, nil
}
