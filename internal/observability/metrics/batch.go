package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vtavares/claimfetch/internal/core/domain"
)

// BatchMetrics exposes pipeline counters over a private registry. It plugs
// into the orchestrator as one more progress reporter.
type BatchMetrics struct {
	registry *prometheus.Registry

	claimsTotal    *prometheus.CounterVec
	documentsTotal *prometheus.CounterVec
	claimDuration  *prometheus.HistogramVec
	claimsInFlight prometheus.Gauge
	batchesTotal   *prometheus.CounterVec

	mu      sync.Mutex
	started map[string]time.Time
	service string
}

func NewBatchMetrics(service string) *BatchMetrics {
	registry := prometheus.NewRegistry()

	claimsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claimfetch",
			Subsystem: "batch",
			Name:      "claims_total",
			Help:      "Total processed claims by status.",
		},
		[]string{"service", "status"},
	)
	documentsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claimfetch",
			Subsystem: "batch",
			Name:      "documents_downloaded_total",
			Help:      "Total documents written to the output store.",
		},
		[]string{"service"},
	)
	claimDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "claimfetch",
			Subsystem: "batch",
			Name:      "claim_duration_seconds",
			Help:      "Wall time spent on one claim, login to outcome.",
			Buckets:   []float64{5, 10, 30, 60, 120, 300, 600, 1200},
		},
		[]string{"service", "status"},
	)
	claimsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "claimfetch",
			Subsystem: "batch",
			Name:      "claims_in_flight",
			Help:      "Number of claims currently being processed.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	batchesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claimfetch",
			Subsystem: "batch",
			Name:      "runs_total",
			Help:      "Total finished batch runs by category.",
		},
		[]string{"service", "category"},
	)

	registry.MustRegister(claimsTotal, documentsTotal, claimDuration, claimsInFlight, batchesTotal)

	return &BatchMetrics{
		registry:       registry,
		claimsTotal:    claimsTotal,
		documentsTotal: documentsTotal,
		claimDuration:  claimDuration,
		claimsInFlight: claimsInFlight,
		batchesTotal:   batchesTotal,
		started:        make(map[string]time.Time),
		service:        service,
	}
}

func (m *BatchMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *BatchMetrics) ClaimStarted(claimID string) {
	m.claimsInFlight.Inc()
	m.mu.Lock()
	m.started[claimID] = time.Now()
	m.mu.Unlock()
}

func (m *BatchMetrics) ClaimStage(string, string) {}

func (m *BatchMetrics) ClaimFinished(outcome domain.ClaimOutcome) {
	m.claimsInFlight.Dec()

	status := "success"
	if outcome.Problem {
		status = "problem"
	}
	m.claimsTotal.WithLabelValues(m.service, status).Inc()
	if outcome.DocumentsDownloaded > 0 {
		m.documentsTotal.WithLabelValues(m.service).Add(float64(outcome.DocumentsDownloaded))
	}

	m.mu.Lock()
	startedAt, ok := m.started[outcome.ClaimID]
	delete(m.started, outcome.ClaimID)
	m.mu.Unlock()
	if ok {
		m.claimDuration.WithLabelValues(m.service, status).Observe(time.Since(startedAt).Seconds())
	}
}

func (m *BatchMetrics) BatchFinished(report domain.RunReport) {
	m.batchesTotal.WithLabelValues(m.service, string(report.Category)).Inc()
}
