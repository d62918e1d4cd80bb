package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	processTotal    *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	processInFlight prometheus.Gauge
	queueLag        *prometheus.HistogramVec

	stageDuration   *prometheus.HistogramVec
	obligationCount *prometheus.HistogramVec
	tokensTotal     *prometheus.CounterVec
	costTotal       *prometheus.CounterVec
	cacheTotal      *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	processTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oblicore",
			Subsystem: "worker",
			Name:      "document_process_total",
			Help:      "Total processed documents by status.",
		},
		[]string{"service", "status"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "oblicore",
			Subsystem: "worker",
			Name:      "document_process_duration_seconds",
			Help:      "Document processing duration in seconds by status.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200, 1800},
		},
		[]string{"service", "status"},
	)
	processInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "oblicore",
			Subsystem: "worker",
			Name:      "document_process_in_flight",
			Help:      "Number of in-flight document processing tasks.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "oblicore",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between document upload and processing start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)
	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "oblicore",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service", "stage"},
	)
	obligationCount := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "oblicore",
			Subsystem: "pipeline",
			Name:      "obligations_per_document",
			Help:      "Distribution of obligations extracted per document.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100, 200},
		},
		[]string{"service"},
	)
	tokensTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oblicore",
			Subsystem: "llm",
			Name:      "tokens_total",
			Help:      "Completion token usage by stage and direction.",
		},
		[]string{"service", "stage", "direction", "model"},
	)
	costTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oblicore",
			Subsystem: "llm",
			Name:      "cost_usd_total",
			Help:      "Completion spend in USD by stage.",
		},
		[]string{"service", "stage", "model"},
	)
	cacheTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oblicore",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Processing-cache lookups by stage and outcome.",
		},
		[]string{"service", "stage", "outcome"},
	)

	registry.MustRegister(
		processTotal,
		processDuration,
		processInFlight,
		queueLag,
		stageDuration,
		obligationCount,
		tokensTotal,
		costTotal,
		cacheTotal,
	)

	return &WorkerMetrics{
		registry:        registry,
		processTotal:    processTotal,
		processDuration: processDuration,
		processInFlight: processInFlight,
		queueLag:        queueLag,
		stageDuration:   stageDuration,
		obligationCount: obligationCount,
		tokensTotal:     tokensTotal,
		costTotal:       costTotal,
		cacheTotal:      cacheTotal,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartDocument() {
	m.processInFlight.Inc()
}

func (m *WorkerMetrics) FinishDocument(service string, duration time.Duration, err error) {
	m.processInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.processTotal.WithLabelValues(service, status).Inc()
	m.processDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}

func (m *WorkerMetrics) ObserveStage(service, stage string, duration time.Duration) {
	m.stageDuration.WithLabelValues(service, stage).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveObligations(service string, count int) {
	m.obligationCount.WithLabelValues(service).Observe(float64(count))
}

func (m *WorkerMetrics) RecordUsage(service, stage, model string, inputTokens, outputTokens int, cost float64) {
	if model == "" {
		model = "unknown"
	}
	if inputTokens > 0 {
		m.tokensTotal.WithLabelValues(service, stage, "in", model).Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		m.tokensTotal.WithLabelValues(service, stage, "out", model).Add(float64(outputTokens))
	}
	if cost > 0 {
		m.costTotal.WithLabelValues(service, stage, model).Add(cost)
	}
}

func (m *WorkerMetrics) RecordCacheLookup(service, stage string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cacheTotal.WithLabelValues(service, stage, outcome).Inc()
}
