// Package godot imports Godot 4 project trees.
//
// Every scene, script, resource and shader in the project becomes a file
// node keyed by its res:// path; textures are skipped by default, audio and
// fonts on request. Dependencies are read from the text formats:
//
//	.tscn/.scn  [ext_resource ...]         -> uses
//	            [node ... instance=...]    -> depends_on
//	            script = ExtResource(...)  -> uses
//	.gd         extends "res://..."        -> depends_on
//	            preload(...) / load(...)   -> uses
//	            AutoloadName.member        -> connects_to
//
// Autoload singletons come from the [autoload] section of project.godot.
package godot

import (
	"bufio"
	"bytes"
	"io/fs"
	"path"
	"regexp"
	"strings"

	"github.com/matzehuels/infragraph/pkg/graph"
	"github.com/matzehuels/infragraph/pkg/importers"
)

// Format is the importer identifier.
const Format = "godot"

// ProjectFile is the file that marks a Godot project root.
const ProjectFile = "project.godot"

const resPrefix = "res://"

// Kind is the Godot resource category of a file.
type Kind string

const (
	KindScene    Kind = "scene"
	KindScript   Kind = "script"
	KindResource Kind = "resource"
	KindShader   Kind = "shader"
	KindTexture  Kind = "texture"
	KindAudio    Kind = "audio"
	KindFont     Kind = "font"
	KindAutoload Kind = "autoload"
)

var kindByExt = map[string]Kind{
	".tscn":     KindScene,
	".scn":      KindScene,
	".gd":       KindScript,
	".cs":       KindScript,
	".tres":     KindResource,
	".res":      KindResource,
	".gdshader": KindShader,
	".shader":   KindShader,
	".png":      KindTexture,
	".jpg":      KindTexture,
	".jpeg":     KindTexture,
	".webp":     KindTexture,
	".svg":      KindTexture,
	".wav":      KindAudio,
	".ogg":      KindAudio,
	".mp3":      KindAudio,
	".ttf":      KindFont,
	".otf":      KindFont,
	".woff":     KindFont,
	".woff2":    KindFont,
}

var kindLabel = map[Kind]string{
	KindScene:    "[Scene]",
	KindScript:   "[Script]",
	KindResource: "[Resource]",
	KindShader:   "[Shader]",
	KindTexture:  "[Texture]",
	KindAudio:    "[Audio]",
	KindFont:     "[Font]",
	KindAutoload: "[Autoload]",
}

var (
	extResourcePattern    = regexp.MustCompile(`\[ext_resource\s+type="([^"]+)"\s+(?:uid="[^"]+"\s+)?path="([^"]+)"\s+id="([^"]+)"\]`)
	extResourceOldPattern = regexp.MustCompile(`\[ext_resource\s+path="([^"]+)"\s+type="([^"]+)"\s+id=(\d+)\]`)
	nodeInstancePattern   = regexp.MustCompile(`\[node\s+name="([^"]+)"[^\]]*?\sinstance=ExtResource\(\s*"?([^")]+)"?\s*\)`)
	scriptAssignPattern   = regexp.MustCompile(`script\s*=\s*ExtResource\(\s*"?([^")]+)"?\s*\)`)
	extendsPattern        = regexp.MustCompile(`(?m)^extends\s+["']([^"']+)["']`)
	preloadPattern        = regexp.MustCompile(`preload\s*\(\s*["']([^"']+)["']\s*\)`)
	loadPattern           = regexp.MustCompile(`\bload\s*\(\s*["']([^"']+)["']\s*\)`)
	projectNamePattern    = regexp.MustCompile(`(?m)^config/name="([^"]+)"`)
)

// Options selects which asset kinds are scanned.
type Options struct {
	ExcludeTextures bool
	ExcludeAudio    bool
	ExcludeFonts    bool
}

// DefaultOptions excludes textures, which are numerous and rarely
// interesting as dependencies.
func DefaultOptions() Options {
	return Options{ExcludeTextures: true}
}

func (o Options) excluded(k Kind) bool {
	switch k {
	case KindTexture:
		return o.ExcludeTextures
	case KindAudio:
		return o.ExcludeAudio
	case KindFont:
		return o.ExcludeFonts
	}
	return false
}

// Importer parses Godot project directories.
type Importer struct {
	opts Options
}

// New creates a Godot importer.
func New(opts Options) *Importer { return &Importer{opts: opts} }

// Format returns "godot".
func (*Importer) Format() string { return Format }

// Supports reports whether name is project.godot.
func (*Importer) Supports(name string) bool {
	return path.Base(name) == ProjectFile
}

type resource struct {
	resPath  string
	file     string // path within the FS, empty for autoloads without a file
	kind     Kind
	name     string
	autoload string
}

type dependency struct {
	source, target, typ, context string
}

// ParseFS scans the project rooted at fsys. A missing project.godot is a
// PARSE_ERROR; unreadable files and references to files outside the scan
// become warnings.
func (imp *Importer) ParseFS(fsys fs.FS) (*importers.Result, error) {
	project, err := fs.ReadFile(fsys, ProjectFile)
	if err != nil {
		return nil, importers.ParseError(err, "not a Godot project (no %s)", ProjectFile)
	}

	res := importers.NewResult(Format)
	if m := projectNamePattern.FindSubmatch(project); m != nil {
		res.Name = string(m[1])
	}
	autoloads := parseAutoloads(project)

	resources, order, err := imp.scan(fsys, res)
	if err != nil {
		return nil, importers.ParseError(err, "scan project")
	}
	for _, a := range autoloads {
		if r, ok := resources[a.path]; ok {
			r.autoload = a.name
			r.name = kindLabel[KindAutoload] + " " + a.name
			continue
		}
		resources[a.path] = &resource{
			resPath:  a.path,
			kind:     KindAutoload,
			name:     kindLabel[KindAutoload] + " " + a.name,
			autoload: a.name,
		}
		order = append(order, a.path)
	}

	for _, p := range order {
		r := resources[p]
		props := graph.Properties{"godot_type": string(r.kind), "res_path": r.resPath}
		if r.autoload != "" {
			props["autoload_name"] = r.autoload
		}
		res.AddNode(p, graph.Node{
			ID:          r.resPath,
			Type:        graph.NodeFile,
			Name:        r.name,
			Description: r.resPath,
			Properties:  props,
		})
	}

	var deps []dependency
	for _, p := range order {
		r := resources[p]
		if r.file == "" {
			continue
		}
		switch {
		case r.kind == KindScene:
			content, err := fs.ReadFile(fsys, r.file)
			if err != nil {
				res.Warnf(p, "read: %v", err)
				continue
			}
			deps = append(deps, sceneDependencies(p, content)...)
		case r.kind == KindScript && strings.HasSuffix(r.file, ".gd"):
			content, err := fs.ReadFile(fsys, r.file)
			if err != nil {
				res.Warnf(p, "read: %v", err)
				continue
			}
			deps = append(deps, scriptDependencies(p, content, autoloads)...)
		}
	}

	seen := make(map[graph.EdgeKey]bool, len(deps))
	for _, d := range deps {
		key := graph.EdgeKey{Source: d.source, Target: d.target, Type: d.typ}
		if seen[key] {
			continue
		}
		seen[key] = true
		if _, ok := resources[d.target]; !ok {
			if k, known := kindByExt[strings.ToLower(path.Ext(d.target))]; known && imp.opts.excluded(k) {
				continue
			}
			res.Warnf(d.source, "%s references %s, which is not part of the project", d.context, d.target)
			continue
		}
		res.AddEdge(d.source, graph.Edge{Source: d.source, Target: d.target, Type: d.typ, Description: d.context})
	}
	return res, nil
}

// scan walks the tree and returns the included resources keyed by res://
// path, together with their walk order. Only an unreadable root fails the
// scan; other unreadable directories are skipped with a warning.
func (imp *Importer) scan(fsys fs.FS, res *importers.Result) (map[string]*resource, []string, error) {
	resources := make(map[string]*resource)
	var order []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == "." {
				return err
			}
			res.Warnf(resPrefix+p, "skipped unreadable entry: %v", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		name := d.Name()
		if p != "." && (strings.HasPrefix(name, ".") || name == "__pycache__") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(path.Ext(name))
		kind, ok := kindByExt[ext]
		if !ok || imp.opts.excluded(kind) {
			return nil
		}
		rp := resPrefix + p
		resources[rp] = &resource{
			resPath: rp,
			file:    p,
			kind:    kind,
			name:    kindLabel[kind] + " " + strings.TrimSuffix(name, path.Ext(name)),
		}
		order = append(order, rp)
		return nil
	})
	return resources, order, err
}

type autoload struct {
	name string
	path string
}

// parseAutoloads reads Name="*res://path" entries from the [autoload]
// section. The leading '*' marks an enabled singleton and is dropped.
func parseAutoloads(project []byte) []autoload {
	var out []autoload
	in := false
	sc := bufio.NewScanner(bytes.NewReader(project))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "[") {
			in = line == "[autoload]"
			continue
		}
		if !in {
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.TrimPrefix(strings.Trim(strings.TrimSpace(value), `"`), "*")
		if !strings.HasPrefix(value, resPrefix) {
			continue
		}
		out = append(out, autoload{name: strings.TrimSpace(name), path: value})
	}
	return out
}

func sceneDependencies(scene string, content []byte) []dependency {
	var deps []dependency
	byID := make(map[string]string)

	for _, m := range extResourcePattern.FindAllSubmatch(content, -1) {
		typ, target, id := string(m[1]), string(m[2]), string(m[3])
		byID[id] = target
		deps = append(deps, dependency{scene, target, graph.EdgeUses, "ext_resource " + typ})
	}
	for _, m := range extResourceOldPattern.FindAllSubmatch(content, -1) {
		target, typ, id := string(m[1]), string(m[2]), string(m[3])
		byID[id] = target
		deps = append(deps, dependency{scene, target, graph.EdgeUses, "ext_resource " + typ})
	}
	for _, m := range nodeInstancePattern.FindAllSubmatch(content, -1) {
		if target, ok := byID[strings.TrimSpace(string(m[2]))]; ok {
			deps = append(deps, dependency{scene, target, graph.EdgeDependsOn, "instance " + string(m[1])})
		}
	}
	for _, m := range scriptAssignPattern.FindAllSubmatch(content, -1) {
		if target, ok := byID[strings.TrimSpace(string(m[1]))]; ok {
			deps = append(deps, dependency{scene, target, graph.EdgeUses, "attached script"})
		}
	}
	return deps
}

func scriptDependencies(script string, content []byte, autoloads []autoload) []dependency {
	var deps []dependency
	if m := extendsPattern.FindSubmatch(content); m != nil {
		target := string(m[1])
		if !strings.HasPrefix(target, resPrefix) {
			target = resPrefix + target
		}
		deps = append(deps, dependency{script, target, graph.EdgeDependsOn, "extends " + string(m[1])})
	}
	for _, m := range preloadPattern.FindAllSubmatch(content, -1) {
		if target := string(m[1]); strings.HasPrefix(target, resPrefix) {
			deps = append(deps, dependency{script, target, graph.EdgeUses, "preload " + target})
		}
	}
	for _, m := range loadPattern.FindAllSubmatch(content, -1) {
		if target := string(m[1]); strings.HasPrefix(target, resPrefix) {
			deps = append(deps, dependency{script, target, graph.EdgeUses, "load " + target})
		}
	}
	for _, a := range autoloads {
		if a.path == script {
			continue
		}
		usage := regexp.MustCompile(`\b` + regexp.QuoteMeta(a.name) + `\s*\.`)
		if usage.Match(content) {
			deps = append(deps, dependency{script, a.path, graph.EdgeConnectsTo, "singleton " + a.name})
		}
	}
	return deps
}
