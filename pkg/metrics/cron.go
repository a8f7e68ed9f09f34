package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "litcafe"

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// CronJobMetrics tracks background job runs and cycles skipped because
// another worker held the lock.
type CronJobMetrics struct {
	runs        *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	lastSuccess *prometheus.GaugeVec
	skipped     prometheus.Counter
}

// NewCronJobMetrics registers on reg. A nil reg yields a recorder that
// drops everything.
func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	if reg == nil {
		return &CronJobMetrics{}
	}
	m := &CronJobMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cron",
			Name:      "job_runs_total",
			Help:      "Cron job executions by outcome.",
		}, []string{"job", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "cron",
			Name:      "job_duration_seconds",
			Help:      "Wall time of cron job executions.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"job"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cron",
			Name:      "job_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}, []string{"job"}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cron",
			Name:      "cycles_skipped_total",
			Help:      "Cycles skipped because another worker held the lock.",
		}),
	}
	reg.MustRegister(m.runs, m.duration, m.lastSuccess, m.skipped)
	return m
}

// ObserveRun records one execution of job; a nil err counts as success.
func (c *CronJobMetrics) ObserveRun(job string, took time.Duration, err error) {
	if c == nil || c.runs == nil {
		return
	}
	job = normalizeLabel(job)
	c.duration.WithLabelValues(job).Observe(took.Seconds())
	if err != nil {
		c.runs.WithLabelValues(job, outcomeFailure).Inc()
		return
	}
	c.runs.WithLabelValues(job, outcomeSuccess).Inc()
	c.lastSuccess.WithLabelValues(job).SetToCurrentTime()
}

func (c *CronJobMetrics) IncSkippedCycle() {
	if c == nil || c.skipped == nil {
		return
	}
	c.skipped.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
