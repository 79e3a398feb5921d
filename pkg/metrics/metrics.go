// Package metrics tracks the work of a single ipws run with Prometheus
// collectors.
//
// ipws is a batch job, so metrics are not scraped. Each run owns a private
// registry and, when requested, writes it once in the text exposition format
// for a node exporter textfile collector to pick up.
//
// # Basic Usage
//
//	m := metrics.NewCollector()
//	timer := metrics.NewTimer("read")
//	ds, err := wsfile.DecodeBinaryPair(ws, info, opts)
//	m.ObservePhase("read", timer.Stop())
//	m.RecordsRead("binary", "reflexive", ds.Tier(polytope.Reflexive).Len())
//	...
//	err = m.WriteTextfile("/var/lib/node_exporter/ipws.prom")
package metrics

import (
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/ajitpratap0/ipws/pkg/errors"
)

const namespace = "ipws"

// Collector owns the metrics of one run
type Collector struct {
	registry       *prometheus.Registry
	recordsRead    *prometheus.CounterVec
	recordsWritten *prometheus.CounterVec
	bytesWritten   *prometheus.CounterVec
	rowGroups      prometheus.Counter
	phaseDuration  *prometheus.HistogramVec
	residentMemory prometheus.Gauge
	cpuSeconds     prometheus.Gauge
}

// NewCollector creates a collector on a fresh registry
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		recordsRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_read_total",
			Help:      "Records read, by input format and tier",
		}, []string{"format", "tier"}),
		recordsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_written_total",
			Help:      "Records written, by output format and tier",
		}, []string{"format", "tier"}),
		bytesWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_written_total",
			Help:      "Bytes written, by output format",
		}, []string{"format"}),
		rowGroups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "row_groups_written_total",
			Help:      "Parquet row groups written",
		}),
		phaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Duration of pipeline phases",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms .. ~4.4min
		}, []string{"phase"}),
		residentMemory: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resident_memory_bytes",
			Help:      "Resident set size of the process at the last sample",
		}),
		cpuSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cpu_seconds",
			Help:      "User and system CPU time of the process at the last sample",
		}),
	}

	c.registry.MustRegister(c.recordsRead, c.recordsWritten, c.bytesWritten, c.rowGroups,
		c.phaseDuration, c.residentMemory, c.cpuSeconds)
	return c
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordsRead adds n records read from format for tier
func (c *Collector) RecordsRead(format, tier string, n int) {
	c.recordsRead.WithLabelValues(format, tier).Add(float64(n))
}

// RecordsWritten adds n records written to format for tier
func (c *Collector) RecordsWritten(format, tier string, n int) {
	c.recordsWritten.WithLabelValues(format, tier).Add(float64(n))
}

// BytesWritten adds n bytes written to format
func (c *Collector) BytesWritten(format string, n int64) {
	c.bytesWritten.WithLabelValues(format).Add(float64(n))
}

// RowGroupWritten counts one Parquet row group
func (c *Collector) RowGroupWritten() {
	c.rowGroups.Inc()
}

// ObservePhase records the duration of a pipeline phase
func (c *Collector) ObservePhase(phase string, d time.Duration) {
	c.phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// SampleProcess updates the process gauges from the operating system
func (c *Collector) SampleProcess() error {
	proc, err := process.NewProcess(int32(os.Getpid())) //nolint:gosec // pid fits in int32
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "inspect process")
	}

	memInfo, err := proc.MemoryInfo()
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "read process memory")
	}
	c.residentMemory.Set(float64(memInfo.RSS))

	if times, err := proc.Times(); err == nil {
		c.cpuSeconds.Set(times.User + times.System)
	}
	return nil
}

// WriteTextfile writes every metric in the Prometheus text format
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "write metrics").WithDetail("path", path)
	}
	return nil
}

// Timer provides a simple timing mechanism for measuring phase durations.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Name returns the phase the timer measures
func (t *Timer) Name() string {
	return t.name
}

// Stop returns the elapsed duration since creation. The timer can be
// stopped multiple times.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
