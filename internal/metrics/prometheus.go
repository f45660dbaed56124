package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	docDuration  *prom.HistogramVec
	docResults   *prom.CounterVec
	headings     *prom.CounterVec
	queueDepth   prom.Gauge
	jobsRejected prom.Counter
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		docDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "headslug",
			Name:      "document_duration_seconds",
			Help:      "Time to parse, slug and render one document",
			Buckets:   prom.DefBuckets,
		}, []string{"format"}),
		docResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "headslug",
			Name:      "documents_total",
			Help:      "Documents processed by format and outcome",
		}, []string{"format", "result"}),
		headings: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "headslug",
			Name:      "headings_total",
			Help:      "Heading ids assigned",
		}, []string{"format"}),
		queueDepth: prom.NewGauge(prom.GaugeOpts{
			Namespace: "headslug",
			Name:      "queue_depth",
			Help:      "Jobs waiting in the pipeline queue",
		}),
		jobsRejected: prom.NewCounter(prom.CounterOpts{
			Namespace: "headslug",
			Name:      "jobs_rejected_total",
			Help:      "Jobs rejected because the queue was full",
		}),
	}
	reg.MustRegister(pr.docDuration, pr.docResults, pr.headings, pr.queueDepth, pr.jobsRejected)
	return pr
}

func (p *PrometheusRecorder) ObserveDocument(format string, d time.Duration, result ResultLabel) {
	if p == nil {
		return
	}
	p.docDuration.WithLabelValues(format).Observe(d.Seconds())
	p.docResults.WithLabelValues(format, string(result)).Inc()
}

func (p *PrometheusRecorder) AddHeadings(format string, n int) {
	if p == nil || n <= 0 {
		return
	}
	p.headings.WithLabelValues(format).Add(float64(n))
}

func (p *PrometheusRecorder) SetQueueDepth(n int) {
	if p == nil {
		return
	}
	p.queueDepth.Set(float64(n))
}

func (p *PrometheusRecorder) IncJobsRejected() {
	if p == nil {
		return
	}
	p.jobsRejected.Inc()
}

// HTTPHandler returns an http.Handler that serves Prometheus metrics for the provided registry.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
