// Package metrics exposes Prometheus instruments for roadmap generation,
// the daily quota, report jobs and email dispatch.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for roadmap_requests_total.
const (
	OutcomeSuccess        = "success"
	OutcomeInvalidInput   = "invalid_input"
	OutcomeQuotaExceeded  = "quota_exceeded"
	OutcomeUpstreamError  = "upstream_error"
	OutcomeInvalidRoadmap = "invalid_roadmap"
	OutcomeInternalError  = "internal_error"
)

// Result labels for report_emails_total.
const (
	EmailSent   = "sent"
	EmailFailed = "failed"
)

// Collector holds every instrument. A nil *Collector is valid and records
// nothing.
type Collector struct {
	roadmapRequests  *prometheus.CounterVec
	quotaRejections  prometheus.Counter
	jobTransitions   *prometheus.CounterVec
	reportGeneration prometheus.Histogram
	emails           *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewCollector creates the instruments and registers them on a fresh
// registry, along with the Go runtime and process collectors.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c := &Collector{
		roadmapRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roadmap_requests_total",
			Help: "Roadmap generation requests by outcome.",
		}, []string{"outcome"}),
		quotaRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "usage_quota_rejections_total",
			Help: "Requests denied because the daily generation limit was reached.",
		}),
		jobTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "report_jobs_total",
			Help: "Report job state changes by resulting status.",
		}, []string{"status"}),
		reportGeneration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "report_generation_seconds",
			Help:    "Time spent producing a market intelligence report.",
			Buckets: prometheus.ExponentialBuckets(5, 2, 8),
		}),
		emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "report_emails_total",
			Help: "Report emails by delivery result.",
		}, []string{"result"}),
		registry: reg,
	}

	reg.MustRegister(c.roadmapRequests, c.quotaRejections, c.jobTransitions, c.reportGeneration, c.emails)
	return c
}

// Registry returns the registry backing the collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// TrackJobs registers the report_jobs_tracked gauge, sampled from count on
// every scrape.
func (c *Collector) TrackJobs(count func() int) {
	if c == nil {
		return
	}
	c.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "report_jobs_tracked",
		Help: "Report jobs currently held in memory.",
	}, func() float64 { return float64(count()) }))
}

// RoadmapRequest counts a roadmap request with the given outcome.
func (c *Collector) RoadmapRequest(outcome string) {
	if c == nil {
		return
	}
	c.roadmapRequests.WithLabelValues(outcome).Inc()
}

// QuotaRejected counts a request denied by the daily limit.
func (c *Collector) QuotaRejected() {
	if c == nil {
		return
	}
	c.quotaRejections.Inc()
}

// JobStatus counts a job entering status.
func (c *Collector) JobStatus(status string) {
	if c == nil {
		return
	}
	c.jobTransitions.WithLabelValues(status).Inc()
}

// ReportGenerated observes how long a report took.
func (c *Collector) ReportGenerated(d time.Duration) {
	if c == nil {
		return
	}
	c.reportGeneration.Observe(d.Seconds())
}

// EmailResult counts a delivery attempt.
func (c *Collector) EmailResult(result string) {
	if c == nil {
		return
	}
	c.emails.WithLabelValues(result).Inc()
}
