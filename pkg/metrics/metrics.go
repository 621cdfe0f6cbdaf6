// Package metrics tracks conversion activity with Prometheus metrics.
//
// # Overview
//
// A Collector owns one set of metric vectors registered on a caller supplied
// prometheus.Registerer; nothing is registered globally, so tests and
// embedded callers can create as many collectors as they like.
//
// # Basic Usage
//
//	reg := prometheus.NewRegistry()
//	collector, err := metrics.NewCollector(reg, "biostruct")
//
//	timer := metrics.NewTimer("from fasta")
//	out, err := formats.FromFASTA(in, opts)
//	collector.ObserveDecode("fasta", records, len(data), timer.Stop())
//	collector.ObserveInvocation("from fasta", metrics.StatusSuccess)
//
//	// Dump everything for the node exporter textfile collector
//	metrics.WriteTextfile(reg, "/var/lib/node_exporter/biostruct.prom")
//
// # Metric Types
//
// Counter: invocations and decoded records
// Histogram: invocation duration and input size
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ajitpratap0/biostruct/pkg/errors"
)

// DefaultNamespace prefixes every metric name when none is configured.
const DefaultNamespace = "biostruct"

// Invocation outcomes used as the status label.
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusFailure = "failure"
)

// Collector records per command and per format activity. It is safe for
// concurrent use.
type Collector struct {
	invocations *prometheus.CounterVec   // Invocations by command and status
	records     *prometheus.CounterVec   // Records produced by format
	duration    *prometheus.HistogramVec // Driver duration by format
	inputBytes  *prometheus.HistogramVec // Input payload size by format
	startTime   time.Time

	mu     sync.Mutex
	totals map[string]int64
}

// NewCollector registers the conversion metrics on reg under namespace.
// Registering two collectors with the same namespace on one registry fails.
func NewCollector(reg prometheus.Registerer, namespace string) (c *Collector, err error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	defer func() {
		// promauto panics on duplicate registration
		if r := recover(); r != nil {
			c = nil
			err = errors.Newf(errors.ErrorTypeConfig, "registering %s metrics: %v", namespace, r)
		}
	}()

	factory := promauto.With(reg)
	return &Collector{
		invocations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invocations_total",
				Help:      "Total number of command invocations",
			},
			[]string{"command", "status"},
		),
		records: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_total",
				Help:      "Total number of records produced",
			},
			[]string{"format"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "invocation_duration_seconds",
				Help:      "Time spent in a format driver",
				Buckets: []float64{
					0.0001, // 100μs - tiny inputs
					0.001,  // 1ms
					0.01,   // 10ms
					0.1,    // 100ms
					1,      // 1s - whole chromosomes
					10,
					60,
				},
			},
			[]string{"format"},
		),
		inputBytes: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "input_bytes",
				Help:      "Size of the input buffer handed to a driver",
				Buckets:   prometheus.ExponentialBuckets(1024, 8, 8),
			},
			[]string{"format"},
		),
		startTime: time.Now(),
		totals:    make(map[string]int64),
	}, nil
}

// ObserveInvocation counts one finished command.
func (c *Collector) ObserveInvocation(command, status string) {
	c.invocations.WithLabelValues(command, status).Inc()
}

// ObserveDecode records the outcome of one driver call.
func (c *Collector) ObserveDecode(format string, records, inputBytes int, d time.Duration) {
	c.records.WithLabelValues(format).Add(float64(records))
	c.duration.WithLabelValues(format).Observe(d.Seconds())
	c.inputBytes.WithLabelValues(format).Observe(float64(inputBytes))

	c.mu.Lock()
	c.totals[format] += int64(records)
	c.mu.Unlock()
}

// Records returns the number of records observed for format.
func (c *Collector) Records(format string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totals[format]
}

// Throughput returns records per second for format since the collector was
// created.
func (c *Collector) Throughput(format string) float64 {
	elapsed := time.Since(c.startTime).Seconds()
	if elapsed == 0 {
		return 0
	}
	return float64(c.Records(format)) / elapsed
}

// StartTime returns when the collector was created
func (c *Collector) StartTime() time.Time {
	return c.startTime
}

// WriteTextfile writes every metric gathered from g to path in the text
// exposition format.
func WriteTextfile(g prometheus.Gatherer, path string) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return errors.Wrapf(err, errors.ErrorTypeFile, "writing metrics to %s", path)
	}
	return nil
}

// Timer provides a simple timing mechanism for measuring operation durations.
// It captures the start time on creation and calculates elapsed time on stop.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
// The name parameter is for identification in logs.
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Name returns the label the timer was created with.
func (t *Timer) Name() string { return t.name }

// Stop returns the elapsed duration since creation. It can be called more
// than once.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
