// Package kubernetes imports multi-document Kubernetes manifest streams.
//
// Recognized kinds map to node types:
//
//	Deployment             -> docker_container  (id "deployment/<name>")
//	Service                -> server            (id "service/<name>")
//	PersistentVolumeClaim  -> database          (id "pvc/<name>")
//
// Resources outside the default namespace carry it in the id, e.g.
// "service/shop/api". Other kinds are ignored.
//
// Edges are derived once every document has been read:
//   - Service -> Deployment (connects_to) when the Deployment's pod template
//     labels satisfy every key/value of the Service selector, within a namespace.
//   - Deployment -> PVC (depends_on) for each persistentVolumeClaim volume whose
//     claimName names a PVC in the same namespace.
package kubernetes

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
	utilyaml "k8s.io/apimachinery/pkg/util/yaml"
	"sigs.k8s.io/yaml"

	"github.com/matzehuels/infragraph/pkg/graph"
	"github.com/matzehuels/infragraph/pkg/importers"
)

// Format is the importer identifier.
const Format = "kubernetes"

const defaultNamespace = "default"

// Importer parses Kubernetes manifests.
type Importer struct{}

// New creates a Kubernetes importer.
func New() *Importer { return &Importer{} }

// Format returns "kubernetes".
func (*Importer) Format() string { return Format }

// Supports reports whether name looks like a manifest file. Compose files
// are excluded so that detection can try both importers on .yaml files.
func (*Importer) Supports(name string) bool {
	name = strings.ToLower(path.Base(name))
	ext := path.Ext(name)
	if ext != ".yaml" && ext != ".yml" {
		return false
	}
	return !strings.HasPrefix(name, "docker-compose") && !strings.HasPrefix(name, "compose.")
}

type deployment struct {
	id  string
	obj *appsv1.Deployment
}

type service struct {
	id  string
	doc string
	obj *corev1.Service
}

type claim struct {
	id  string
	obj *corev1.PersistentVolumeClaim
}

// Parse reads a manifest stream from r.
//
// A document that is not valid YAML, or a stream with no documents at all,
// is a PARSE_ERROR. Documents that lack kind or metadata.name, or that fail
// to decode into their API type, are reported as warnings.
func (*Importer) Parse(r io.Reader) (*importers.Result, error) {
	res := importers.NewResult(Format)
	reader := utilyaml.NewYAMLReader(bufio.NewReader(r))

	var (
		deployments []deployment
		services    []service
		claims      = map[string]claim{} // namespace/name -> claim
		docs        int
	)

	for index := 0; ; index++ {
		raw, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, importers.ParseError(err, "read document %d", index)
		}
		js, err := yaml.YAMLToJSON(raw)
		if err != nil {
			return nil, importers.ParseError(err, "document %d is not valid YAML", index)
		}
		if isEmpty(js) {
			continue
		}
		docs++

		entry := fmt.Sprintf("document %d", index)
		var tm struct {
			metav1.TypeMeta `json:",inline"`
			Metadata         metav1.ObjectMeta `json:"metadata"`
		}
		if err := yaml.Unmarshal(raw, &tm); err != nil {
			res.Warnf(entry, "cannot read kind: %v", err)
			continue
		}
		if tm.Kind == "" {
			res.Warnf(entry, "missing kind")
			continue
		}
		switch tm.Kind {
		case "Deployment", "Service", "PersistentVolumeClaim":
		default:
			continue
		}
		if tm.Metadata.Name == "" {
			res.Warnf(entry, "%s without metadata.name", tm.Kind)
			continue
		}
		entry = tm.Kind + "/" + namespaceOf(tm.Metadata) + "/" + tm.Metadata.Name

		switch tm.Kind {
		case "Deployment":
			var obj appsv1.Deployment
			if err := yaml.Unmarshal(raw, &obj); err != nil {
				res.Warnf(entry, "decode: %v", err)
				continue
			}
			id := objectID("deployment", obj.ObjectMeta)
			if res.AddNode(entry, deploymentNode(id, &obj)) {
				deployments = append(deployments, deployment{id: id, obj: &obj})
			}
		case "Service":
			var obj corev1.Service
			if err := yaml.Unmarshal(raw, &obj); err != nil {
				res.Warnf(entry, "decode: %v", err)
				continue
			}
			id := objectID("service", obj.ObjectMeta)
			if res.AddNode(entry, serviceNode(id, &obj)) {
				services = append(services, service{id: id, doc: entry, obj: &obj})
			}
		case "PersistentVolumeClaim":
			var obj corev1.PersistentVolumeClaim
			if err := yaml.Unmarshal(raw, &obj); err != nil {
				res.Warnf(entry, "decode: %v", err)
				continue
			}
			id := objectID("pvc", obj.ObjectMeta)
			if res.AddNode(entry, claimNode(id, &obj)) {
				claims[namespaceOf(obj.ObjectMeta)+"/"+obj.Name] = claim{id: id, obj: &obj}
			}
		}
	}

	if docs == 0 {
		return nil, importers.ParseError(nil, "manifest stream contains no documents")
	}

	linkServices(res, services, deployments)
	linkClaims(res, deployments, claims)
	return res, nil
}

// linkServices adds Service -> Deployment edges for matching selectors.
func linkServices(res *importers.Result, services []service, deployments []deployment) {
	for _, svc := range services {
		sel := svc.obj.Spec.Selector
		if len(sel) == 0 {
			continue
		}
		selector := labels.SelectorFromSet(labels.Set(sel))
		ns := namespaceOf(svc.obj.ObjectMeta)
		matched := false
		for _, d := range deployments {
			if namespaceOf(d.obj.ObjectMeta) != ns {
				continue
			}
			if !selector.Matches(labels.Set(d.obj.Spec.Template.Labels)) {
				continue
			}
			matched = true
			res.AddEdge(svc.doc, graph.Edge{
				Source:      svc.id,
				Target:      d.id,
				Type:        graph.EdgeConnectsTo,
				Description: "selector " + selector.String(),
			})
		}
		if !matched {
			res.Warnf(svc.doc, "selector %s matches no Deployment", selector.String())
		}
	}
}

// linkClaims adds Deployment -> PVC edges for claimed volumes.
func linkClaims(res *importers.Result, deployments []deployment, claims map[string]claim) {
	for _, d := range deployments {
		ns := namespaceOf(d.obj.ObjectMeta)
		entry := "Deployment/" + ns + "/" + d.obj.Name
		for _, v := range d.obj.Spec.Template.Spec.Volumes {
			if v.PersistentVolumeClaim == nil {
				continue
			}
			name := v.PersistentVolumeClaim.ClaimName
			c, ok := claims[ns+"/"+name]
			if !ok {
				res.Warnf(entry, "volume %q claims unknown PVC %q", v.Name, name)
				continue
			}
			res.AddEdge(entry, graph.Edge{
				Source:      d.id,
				Target:      c.id,
				Type:        graph.EdgeDependsOn,
				Description: "volume " + v.Name,
			})
		}
	}
}

func deploymentNode(id string, d *appsv1.Deployment) graph.Node {
	props := graph.Properties{"kind": "Deployment", "namespace": namespaceOf(d.ObjectMeta)}
	if d.Spec.Replicas != nil {
		props["replicas"] = fmt.Sprint(*d.Spec.Replicas)
	}
	var images []string
	for _, c := range d.Spec.Template.Spec.Containers {
		if c.Image != "" {
			images = append(images, c.Image)
		}
	}
	if len(images) > 0 {
		props["image"] = strings.Join(images, ",")
	}
	return graph.Node{
		ID:          id,
		Type:        graph.NodeDockerContainer,
		Name:        d.Name,
		Description: strings.Join(images, ", "),
		Properties:  props,
	}
}

func serviceNode(id string, s *corev1.Service) graph.Node {
	props := graph.Properties{"kind": "Service", "namespace": namespaceOf(s.ObjectMeta)}
	svcType := string(s.Spec.Type)
	if svcType == "" {
		svcType = string(corev1.ServiceTypeClusterIP)
	}
	props["service_type"] = svcType
	var ports []string
	for _, p := range s.Spec.Ports {
		port := fmt.Sprint(p.Port)
		if tp := p.TargetPort.String(); tp != "" && tp != "0" {
			port += "->" + tp
		}
		ports = append(ports, port)
	}
	if len(ports) > 0 {
		props["ports"] = strings.Join(ports, ",")
	}
	if len(s.Spec.Selector) > 0 {
		props["selector"] = labels.SelectorFromSet(labels.Set(s.Spec.Selector)).String()
	}
	desc := svcType
	if len(ports) > 0 {
		desc += " " + strings.Join(ports, ", ")
	}
	return graph.Node{
		ID:          id,
		Type:        graph.NodeServer,
		Name:        s.Name,
		Description: desc,
		Properties:  props,
	}
}

func claimNode(id string, c *corev1.PersistentVolumeClaim) graph.Node {
	props := graph.Properties{"kind": "PersistentVolumeClaim", "namespace": namespaceOf(c.ObjectMeta)}
	var desc []string
	if q, ok := c.Spec.Resources.Requests[corev1.ResourceStorage]; ok {
		props["storage"] = q.String()
		desc = append(desc, q.String())
	}
	if c.Spec.StorageClassName != nil {
		props["storage_class"] = *c.Spec.StorageClassName
		desc = append(desc, *c.Spec.StorageClassName)
	}
	if len(c.Spec.AccessModes) > 0 {
		modes := make([]string, len(c.Spec.AccessModes))
		for i, m := range c.Spec.AccessModes {
			modes[i] = string(m)
		}
		sort.Strings(modes)
		props["access_modes"] = strings.Join(modes, ",")
	}
	return graph.Node{
		ID:          id,
		Type:        graph.NodeDatabase,
		Name:        c.Name,
		Description: strings.Join(desc, " "),
		Properties:  props,
	}
}

func namespaceOf(m metav1.ObjectMeta) string {
	if m.Namespace == "" {
		return defaultNamespace
	}
	return m.Namespace
}

func objectID(prefix string, m metav1.ObjectMeta) string {
	if ns := namespaceOf(m); ns != defaultNamespace {
		return prefix + "/" + ns + "/" + m.Name
	}
	return prefix + "/" + m.Name
}

func isEmpty(js []byte) bool {
	js = bytes.TrimSpace(js)
	return len(js) == 0 || bytes.Equal(js, []byte("null"))
}
