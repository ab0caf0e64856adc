// Package promfile implements the observability hooks with Prometheus
// collectors and writes them in the node_exporter textfile format.
//
// infragraph is a short-lived, single-user process with no network listener,
// so metrics are flushed to a file at exit rather than scraped:
//
//	sink := promfile.New()
//	sink.Register()
//	defer sink.WriteTo(path)
package promfile

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/infragraph/pkg/observability"
)

// Sink collects infragraph events into a private Prometheus registry.
type Sink struct {
	registry *prometheus.Registry

	importsTotal    *prometheus.CounterVec
	importErrors    *prometheus.CounterVec
	importWarnings  *prometheus.CounterVec
	importDuration  *prometheus.HistogramVec
	importedNodes   *prometheus.GaugeVec
	projectOps      *prometheus.CounterVec
	projectErrors   *prometheus.CounterVec
	projectDuration *prometheus.HistogramVec
	editsTotal      *prometheus.CounterVec
	layoutDuration  *prometheus.HistogramVec
	layoutErrors    *prometheus.CounterVec
	exportsTotal    *prometheus.CounterVec
	exportBytes     *prometheus.CounterVec
	exportErrors    *prometheus.CounterVec
}

// New creates a Sink with all collectors registered on a fresh registry.
func New() *Sink {
	s := &Sink{
		registry: prometheus.NewRegistry(),
		importsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "infragraph_imports_total",
				Help: "Number of imports by format.",
			},
			[]string{"format"},
		),
		importErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "infragraph_import_errors_total",
				Help: "Number of failed imports by format.",
			},
			[]string{"format"},
		),
		importWarnings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "infragraph_import_warnings_total",
				Help: "Number of warnings emitted by importers.",
			},
			[]string{"format"},
		),
		importDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "infragraph_import_duration_seconds",
				Help:    "Time taken to parse an import document.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		),
		importedNodes: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "infragraph_import_last_nodes",
				Help: "Number of nodes produced by the last import of each format.",
			},
			[]string{"format"},
		),
		projectOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "infragraph_project_operations_total",
				Help: "Number of project loads and saves.",
			},
			[]string{"op"},
		),
		projectErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "infragraph_project_errors_total",
				Help: "Number of failed project loads and saves.",
			},
			[]string{"op"},
		),
		projectDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "infragraph_project_duration_seconds",
				Help:    "Time taken to load or save a project.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		editsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "infragraph_graph_edits_total",
				Help: "Number of graph mutations by kind.",
			},
			[]string{"kind"},
		),
		layoutDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "infragraph_layout_duration_seconds",
				Help:    "Time taken by the force-directed layout.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"engine"},
		),
		layoutErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "infragraph_layout_errors_total",
				Help: "Number of failed layout runs.",
			},
			[]string{"engine"},
		),
		exportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "infragraph_exports_total",
				Help: "Number of rendered exports by format.",
			},
			[]string{"format"},
		),
		exportBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "infragraph_export_bytes_total",
				Help: "Bytes written by exports.",
			},
			[]string{"format"},
		),
		exportErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "infragraph_export_errors_total",
				Help: "Number of failed exports by format.",
			},
			[]string{"format"},
		),
	}

	s.registry.MustRegister(
		s.importsTotal,
		s.importErrors,
		s.importWarnings,
		s.importDuration,
		s.importedNodes,
		s.projectOps,
		s.projectErrors,
		s.projectDuration,
		s.editsTotal,
		s.layoutDuration,
		s.layoutErrors,
		s.exportsTotal,
		s.exportBytes,
		s.exportErrors,
	)
	return s
}

// Register installs s as the global import, project and render hooks.
func (s *Sink) Register() {
	observability.SetImportHooks(s)
	observability.SetProjectHooks(s)
	observability.SetRenderHooks(s)
}

// Gatherer exposes the underlying registry.
func (s *Sink) Gatherer() prometheus.Gatherer { return s.registry }

// WriteTo writes all metrics to path atomically in the text exposition format.
func (s *Sink) WriteTo(path string) error {
	return prometheus.WriteToTextfile(path, s.registry)
}

// OnImportStart implements observability.ImportHooks.
func (s *Sink) OnImportStart(context.Context, string) {}

// OnImportComplete implements observability.ImportHooks.
func (s *Sink) OnImportComplete(_ context.Context, format string, stats observability.ImportStats, d time.Duration, err error) {
	s.importsTotal.WithLabelValues(format).Inc()
	s.importDuration.WithLabelValues(format).Observe(d.Seconds())
	if err != nil {
		s.importErrors.WithLabelValues(format).Inc()
		return
	}
	s.importWarnings.WithLabelValues(format).Add(float64(stats.Warnings))
	s.importedNodes.WithLabelValues(format).Set(float64(stats.Nodes))
}

// OnLoad implements observability.ProjectHooks.
func (s *Sink) OnLoad(_ context.Context, _, _ int, d time.Duration, err error) {
	s.observeProject("load", d, err)
}

// OnSave implements observability.ProjectHooks.
func (s *Sink) OnSave(_ context.Context, _, _ int, d time.Duration, err error) {
	s.observeProject("save", d, err)
}

func (s *Sink) observeProject(op string, d time.Duration, err error) {
	s.projectOps.WithLabelValues(op).Inc()
	s.projectDuration.WithLabelValues(op).Observe(d.Seconds())
	if err != nil {
		s.projectErrors.WithLabelValues(op).Inc()
	}
}

// OnEdit implements observability.ProjectHooks.
func (s *Sink) OnEdit(_ context.Context, kind string) {
	s.editsTotal.WithLabelValues(kind).Inc()
}

// OnLayout implements observability.RenderHooks.
func (s *Sink) OnLayout(_ context.Context, engine string, _ int, d time.Duration, err error) {
	s.layoutDuration.WithLabelValues(engine).Observe(d.Seconds())
	if err != nil {
		s.layoutErrors.WithLabelValues(engine).Inc()
	}
}

// OnExport implements observability.RenderHooks.
func (s *Sink) OnExport(_ context.Context, format string, n int, _ time.Duration, err error) {
	if err != nil {
		s.exportErrors.WithLabelValues(format).Inc()
		return
	}
	s.exportsTotal.WithLabelValues(format).Inc()
	s.exportBytes.WithLabelValues(format).Add(float64(n))
}
