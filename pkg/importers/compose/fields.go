package compose

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// dependsOn accepts both the list form and the map form of depends_on:
//
//	depends_on: [db, cache]
//	depends_on:
//	  db:
//	    condition: service_healthy
type dependsOn []string

func (d *dependsOn) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.SequenceNode:
		var names []string
		if err := n.Decode(&names); err != nil {
			return err
		}
		*d = names
	case yaml.MappingNode:
		names := make([]string, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			names = append(names, n.Content[i].Value)
		}
		*d = names
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return nil
		}
		return fmt.Errorf("line %d: depends_on must be a list or a mapping", n.Line)
	default:
		return fmt.Errorf("line %d: depends_on must be a list or a mapping", n.Line)
	}
	return nil
}

// volumeMount is one entry of a service's volumes list, in short
// ("source:target[:mode]") or long ({type, source, target}) syntax.
type volumeMount struct {
	Type   string `yaml:"type"`
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

func (m *volumeMount) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		parts := strings.Split(n.Value, ":")
		switch len(parts) {
		case 1:
			m.Target = parts[0]
		default:
			m.Source, m.Target = parts[0], parts[1]
		}
		return nil
	}
	type plain volumeMount
	return n.Decode((*plain)(m))
}

// namedSource returns the volume name when the mount refers to a named
// volume rather than a bind mount, tmpfs or anonymous volume.
func (m volumeMount) namedSource() (string, bool) {
	switch m.Type {
	case "", "volume":
	default:
		return "", false
	}
	src := m.Source
	if src == "" {
		return "", false
	}
	if strings.ContainsAny(src, `/\`) || strings.HasPrefix(src, ".") || strings.HasPrefix(src, "~") || strings.HasPrefix(src, "$") {
		return "", false
	}
	return src, true
}

// portSpec renders short ("8080:80") and long ({published, target}) port
// syntax as a single string.
type portSpec string

func (p *portSpec) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		*p = portSpec(n.Value)
		return nil
	}
	var long struct {
		Target    any    `yaml:"target"`
		Published any    `yaml:"published"`
		Protocol  string `yaml:"protocol"`
	}
	if err := n.Decode(&long); err != nil {
		return err
	}
	s := fmt.Sprint(long.Target)
	if long.Published != nil {
		s = fmt.Sprint(long.Published) + ":" + s
	}
	if long.Protocol != "" {
		s += "/" + long.Protocol
	}
	*p = portSpec(s)
	return nil
}
