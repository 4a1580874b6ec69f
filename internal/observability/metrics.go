package observability

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yungbote/shelfmind-backend/internal/platform/envutil"
	"github.com/yungbote/shelfmind-backend/internal/platform/logger"
)

type Metrics struct {
	registry *prometheus.Registry

	llmRequests       *prometheus.CounterVec
	llmLatency        *prometheus.HistogramVec
	llmTokens         *prometheus.CounterVec
	narrativeDegraded *prometheus.CounterVec
	catalogLookups    *prometheus.CounterVec
	catalogLatency    *prometheus.HistogramVec
	recommendPath     *prometheus.CounterVec
	reportsGenerated  *prometheus.CounterVec
	jobRuns           *prometheus.CounterVec
	jobLatency        *prometheus.HistogramVec
	trendingRows      prometheus.Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

// Current returns the process metrics, or nil when metrics are disabled.
// Every Metrics method is safe on a nil receiver.
func Current() *Metrics {
	return instance
}

func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = newMetrics()
		if log != nil {
			log.Info("prometheus metrics initialized")
		}
	})
	return instance
}

func newMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := &Metrics{
		registry: reg,
		llmRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shelfmind_llm_requests_total",
			Help: "LLM requests by model, endpoint and status.",
		}, []string{"model", "endpoint", "status"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shelfmind_llm_request_duration_seconds",
			Help:    "LLM request latency in seconds.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"model", "endpoint", "status"}),
		llmTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shelfmind_llm_tokens_total",
			Help: "LLM tokens by model and direction.",
		}, []string{"model", "direction"}),
		narrativeDegraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "narrative_degraded_total",
			Help: "Narrative generations that fell back to static templates, by kind and cause.",
		}, []string{"kind", "cause"}),
		catalogLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shelfmind_catalog_lookups_total",
			Help: "Catalog title lookups by outcome.",
		}, []string{"outcome"}),
		catalogLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shelfmind_catalog_lookup_duration_seconds",
			Help:    "Catalog lookup latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		recommendPath: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recommendation_path_total",
			Help: "Recommendation responses by the path that produced them.",
		}, []string{"path"}),
		reportsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shelfmind_onboarding_reports_total",
			Help: "Onboarding reports generated, by persona and whether any step degraded.",
		}, []string{"persona", "degraded"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shelfmind_job_runs_total",
			Help: "Batch job runs by type and status.",
		}, []string{"job_type", "status"}),
		jobLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shelfmind_job_duration_seconds",
			Help:    "Batch job duration in seconds.",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		}, []string{"job_type", "status"}),
		trendingRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shelfmind_trending_rows",
			Help: "Rows written by the most recent trending refresh.",
		}),
	}
	reg.MustRegister(
		m.llmRequests, m.llmLatency, m.llmTokens, m.narrativeDegraded,
		m.catalogLookups, m.catalogLatency, m.recommendPath, m.reportsGenerated,
		m.jobRuns, m.jobLatency, m.trendingRows,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) ObserveLLMRequest(model, endpoint, status string, dur time.Duration, inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	model = orUnknown(model)
	endpoint = orUnknown(endpoint)
	status = orUnknown(status)
	m.llmRequests.WithLabelValues(model, endpoint, status).Inc()
	if dur > 0 {
		m.llmLatency.WithLabelValues(model, endpoint, status).Observe(dur.Seconds())
	}
	if inputTokens > 0 {
		m.llmTokens.WithLabelValues(model, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		m.llmTokens.WithLabelValues(model, "output").Add(float64(outputTokens))
	}
}

func (m *Metrics) IncNarrativeDegraded(kind, cause string) {
	if m == nil {
		return
	}
	m.narrativeDegraded.WithLabelValues(orUnknown(kind), orUnknown(cause)).Inc()
}

func (m *Metrics) ObserveCatalogLookup(outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	outcome = orUnknown(outcome)
	m.catalogLookups.WithLabelValues(outcome).Inc()
	if dur > 0 {
		m.catalogLatency.WithLabelValues(outcome).Observe(dur.Seconds())
	}
}

func (m *Metrics) IncRecommendationPath(path string) {
	if m == nil {
		return
	}
	m.recommendPath.WithLabelValues(orUnknown(path)).Inc()
}

func (m *Metrics) IncReportGenerated(persona string, degraded bool) {
	if m == nil {
		return
	}
	d := "false"
	if degraded {
		d = "true"
	}
	m.reportsGenerated.WithLabelValues(orUnknown(persona), d).Inc()
}

func (m *Metrics) ObserveJob(jobType, status string, dur time.Duration) {
	if m == nil {
		return
	}
	jobType = orUnknown(jobType)
	status = orUnknown(status)
	m.jobRuns.WithLabelValues(jobType, status).Inc()
	if dur > 0 {
		m.jobLatency.WithLabelValues(jobType, status).Observe(dur.Seconds())
	}
}

func (m *Metrics) SetTrendingRows(n int) {
	if m == nil {
		return
	}
	m.trendingRows.Set(float64(n))
}

func orUnknown(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "unknown"
	}
	return v
}
