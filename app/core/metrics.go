package core

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/linkmesh-ai/linkmesh/pkg/metrics"
)

type Metrics struct {
	apiResponseTime      *prometheus.HistogramVec
	apiErrorCounter      *prometheus.CounterVec
	analyzeTime          *prometheus.HistogramVec
	embeddingRequestTime *prometheus.HistogramVec
	embeddingError       *prometheus.CounterVec
	jobItemCounter       *prometheus.CounterVec
}

func NewMetrics(ns, system string) *Metrics {
	// setup metric
	metrics.SetupMetricsManager(ns, system, prometheus.DefaultRegisterer.(*prometheus.Registry))

	m := &Metrics{
		apiResponseTime:      metrics.NewHistogramVec("api_response_time", []string{"api"}),
		apiErrorCounter:      metrics.NewCounterVec("api_error", []string{"method", "api", "status"}),
		analyzeTime:          metrics.NewHistogramVec("analyze_time", []string{"mode"}),
		embeddingRequestTime: metrics.NewHistogramVec("embedding_request_time", nil),
		embeddingError:       metrics.NewCounterVec("embedding_error", []string{"type"}),
		jobItemCounter:       metrics.NewCounterVec("job_items", []string{"mode", "result"}),
	}

	return m
}

func (m *Metrics) ApiResponseTimer(api string) *prometheus.Timer {
	return prometheus.NewTimer(m.apiResponseTime.WithLabelValues(api))
}

func (m *Metrics) ApiResponseObserve(api string, start time.Time) {
	metrics.ObserveSince(m.apiResponseTime, start, api)
}

func (m *Metrics) ApiErrorInc(method, api string, status int) {
	m.apiErrorCounter.WithLabelValues(method, api, strconv.Itoa(status)).Inc()
}

func (m *Metrics) AnalyzeTimer(mode string) *prometheus.Timer {
	return prometheus.NewTimer(m.analyzeTime.WithLabelValues(mode))
}

func (m *Metrics) EmbeddingRequestTimer() *prometheus.Timer {
	return prometheus.NewTimer(m.embeddingRequestTime.WithLabelValues())
}

func (m *Metrics) EmbeddingErrorInc(errType string) {
	m.embeddingError.WithLabelValues(errType).Inc()
}

func (m *Metrics) JobItemInc(mode, result string) {
	m.jobItemCounter.WithLabelValues(mode, result).Inc()
}
