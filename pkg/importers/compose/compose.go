// Package compose imports Docker Compose files.
//
// Each service becomes a docker_container node and each top-level named
// volume a database node, both keyed by their Compose name. Service
// depends_on entries and named-volume mounts become depends_on edges.
// Nodes appear in document order: services first, then volumes.
package compose

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/infragraph/pkg/graph"
	"github.com/matzehuels/infragraph/pkg/importers"
)

// Format is the importer identifier.
const Format = "compose"

var fileNames = map[string]bool{
	"docker-compose.yml":  true,
	"docker-compose.yaml": true,
	"compose.yml":         true,
	"compose.yaml":        true,
}

// Importer parses Compose documents.
type Importer struct{}

// New creates a Compose importer.
func New() *Importer { return &Importer{} }

// Format returns "compose".
func (*Importer) Format() string { return Format }

// Supports reports whether name is a conventional Compose file name,
// including override files such as docker-compose.prod.yml.
func (*Importer) Supports(name string) bool {
	name = strings.ToLower(path.Base(name))
	if fileNames[name] {
		return true
	}
	ext := path.Ext(name)
	if ext != ".yml" && ext != ".yaml" {
		return false
	}
	return strings.HasPrefix(name, "docker-compose.") || strings.HasPrefix(name, "compose.")
}

// service holds the fields of a service entry this importer reads.
type service struct {
	Image         string        `yaml:"image"`
	ContainerName string        `yaml:"container_name"`
	Build         any           `yaml:"build"`
	Ports         []portSpec    `yaml:"ports"`
	DependsOn     dependsOn     `yaml:"depends_on"`
	Volumes       []volumeMount `yaml:"volumes"`
}

type volume struct {
	Driver   string `yaml:"driver"`
	Name     string `yaml:"name"`
	External any    `yaml:"external"`
}

// entry is a key/value pair of a YAML mapping, kept in document order.
type entry struct {
	key   string
	value *yaml.Node
}

// Parse reads a Compose document from r.
//
// The document must be a mapping with a services or volumes key; anything
// else is a PARSE_ERROR. Problems inside individual services or volumes are
// reported as warnings.
func (*Importer) Parse(r io.Reader) (*importers.Result, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, importers.ParseError(nil, "empty compose document")
		}
		return nil, importers.ParseError(err, "invalid compose YAML")
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, importers.ParseError(nil, "compose document must be a mapping")
	}

	servicesNode := lookup(root, "services")
	volumesNode := lookup(root, "volumes")
	if servicesNode == nil && volumesNode == nil {
		return nil, importers.ParseError(nil, "compose document has neither services nor volumes")
	}
	services, err := mappingEntries(servicesNode, "services")
	if err != nil {
		return nil, err
	}
	volumes, err := mappingEntries(volumesNode, "volumes")
	if err != nil {
		return nil, err
	}

	res := importers.NewResult(Format)
	specs := make([]service, len(services))
	ok := make([]bool, len(services))

	for i, s := range services {
		name := "services." + s.key
		if !mappingOrNull(s.value) {
			res.Warnf(name, "skipping service: definition must be a mapping")
			continue
		}
		if err := s.value.Decode(&specs[i]); err != nil {
			res.Warnf(name, "ignoring malformed service fields: %s", yamlMessage(err))
		}
		ok[i] = res.AddNode(name, serviceNode(s.key, specs[i]))
	}

	declared := make(map[string]bool, len(volumes))
	for _, v := range volumes {
		name := "volumes." + v.key
		if !mappingOrNull(v.value) {
			res.Warnf(name, "skipping volume: definition must be a mapping")
			declared[v.key] = false
			continue
		}
		var spec volume
		if err := v.value.Decode(&spec); err != nil {
			res.Warnf(name, "ignoring malformed volume fields: %s", yamlMessage(err))
		}
		declared[v.key] = res.AddNode(name, volumeNode(v.key, spec))
	}

	serviceNames := make(map[string]bool, len(services))
	for i, s := range services {
		serviceNames[s.key] = ok[i]
	}

	for i, s := range services {
		if !ok[i] {
			continue
		}
		name := "services." + s.key
		for _, dep := range specs[i].DependsOn {
			added, known := serviceNames[dep]
			switch {
			case !known:
				res.Warnf(name, "depends_on references undefined service %q", dep)
			case !added:
				res.Warnf(name, "depends_on references skipped service %q", dep)
			default:
				res.AddEdge(name, graph.Edge{Source: s.key, Target: dep, Type: graph.EdgeDependsOn})
			}
		}
		for _, m := range specs[i].Volumes {
			src, named := m.namedSource()
			if !named {
				continue
			}
			added, known := declared[src]
			switch {
			case !known:
				res.Warnf(name, "mounts undeclared volume %q", src)
			case !added:
				res.Warnf(name, "mounts skipped volume %q", src)
			default:
				res.AddEdge(name, graph.Edge{
					Source:      s.key,
					Target:      src,
					Type:        graph.EdgeDependsOn,
					Description: m.Target,
				})
			}
		}
	}
	return res, nil
}

func serviceNode(name string, s service) graph.Node {
	props := graph.Properties{}
	if s.Image != "" {
		props["image"] = s.Image
	}
	if s.ContainerName != "" {
		props["container_name"] = s.ContainerName
	}
	if len(s.Ports) > 0 {
		ports := make([]string, len(s.Ports))
		for i, p := range s.Ports {
			ports[i] = string(p)
		}
		props["ports"] = strings.Join(ports, ",")
	}
	desc := s.Image
	if desc == "" && s.Build != nil {
		desc = "built from " + buildContext(s.Build)
	}
	return graph.Node{
		ID:          name,
		Type:        graph.NodeDockerContainer,
		Name:        name,
		Description: desc,
		Properties:  props,
	}
}

func volumeNode(name string, v volume) graph.Node {
	props := graph.Properties{}
	if v.Driver != "" {
		props["driver"] = v.Driver
	}
	if v.Name != "" {
		props["volume_name"] = v.Name
	}
	if v.External != nil {
		props["external"] = fmt.Sprint(v.External)
	}
	desc := "volume"
	if v.Driver != "" {
		desc = v.Driver + " volume"
	}
	return graph.Node{
		ID:          name,
		Type:        graph.NodeDatabase,
		Name:        name,
		Description: desc,
		Properties:  props,
	}
}

func buildContext(b any) string {
	switch v := b.(type) {
	case string:
		return v
	case map[string]any:
		if c, ok := v["context"].(string); ok {
			return c
		}
	}
	return "."
}

// lookup returns the value node for key in mapping m, or nil.
func lookup(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// mappingEntries returns the entries of a top-level section. An absent or
// null section is empty; any other non-mapping value is a PARSE_ERROR.
func mappingEntries(n *yaml.Node, section string) ([]entry, error) {
	if n == nil || isNull(n) {
		return nil, nil
	}
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n.Kind != yaml.MappingNode {
		return nil, importers.ParseError(nil, "%s must be a mapping", section)
	}
	out := make([]entry, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		out = append(out, entry{key: n.Content[i].Value, value: n.Content[i+1]})
	}
	return out, nil
}

// mappingOrNull reports whether an entry value can hold a definition.
func mappingOrNull(n *yaml.Node) bool {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n.Kind == yaml.MappingNode || isNull(n)
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

func yamlMessage(err error) string {
	var te *yaml.TypeError
	if errors.As(err, &te) {
		return strings.Join(te.Errors, "; ")
	}
	return err.Error()
}
