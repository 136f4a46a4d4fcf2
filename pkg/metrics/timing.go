// Package metrics times the hot paths of pitgraph: loading declarations,
// building the store, computing focus views, laying out frames and writing
// exports.
//
// Collection is on by default and can be turned off with PITGRAPH_METRICS=0.
//
//	func (c *Computer) DataFlow(id string) (DataFlowView, error) {
//	    defer metrics.Timer(metrics.DataFlowFocus)()
//	    ...
//	}
package metrics

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"text/tabwriter"
	"time"
)

// EnvVar turns collection off when set to 0.
const EnvVar = "PITGRAPH_METRICS"

var enabled atomic.Bool

func init() {
	enabled.Store(os.Getenv(EnvVar) != "0")
}

// Enabled reports whether timings are recorded.
func Enabled() bool { return enabled.Load() }

// SetEnabled switches recording on or off.
func SetEnabled(e bool) { enabled.Store(e) }

// TimingMetric accumulates durations of one operation. It is safe for
// concurrent use.
type TimingMetric struct {
	name  string
	count atomic.Int64
	total atomic.Int64 // ns
	min   atomic.Int64 // ns, 0 until the first sample
	max   atomic.Int64 // ns
}

func newTimingMetric(name string) *TimingMetric {
	return &TimingMetric{name: name}
}

// Name returns the metric name.
func (m *TimingMetric) Name() string { return m.name }

// Count returns the number of samples.
func (m *TimingMetric) Count() int64 { return m.count.Load() }

// Record adds one sample.
func (m *TimingMetric) Record(d time.Duration) {
	if !Enabled() {
		return
	}
	ns := d.Nanoseconds()
	m.count.Add(1)
	m.total.Add(ns)
	for cur := m.max.Load(); ns > cur; cur = m.max.Load() {
		if m.max.CompareAndSwap(cur, ns) {
			break
		}
	}
	for cur := m.min.Load(); cur == 0 || ns < cur; cur = m.min.Load() {
		if m.min.CompareAndSwap(cur, ns) {
			break
		}
	}
}

// Reset drops every sample.
func (m *TimingMetric) Reset() {
	m.count.Store(0)
	m.total.Store(0)
	m.min.Store(0)
	m.max.Store(0)
}

// TimingStats is a snapshot of one metric in milliseconds.
type TimingStats struct {
	Name    string  `json:"name"`
	Count   int64   `json:"count"`
	TotalMs float64 `json:"total_ms"`
	AvgMs   float64 `json:"avg_ms"`
	MinMs   float64 `json:"min_ms,omitempty"`
	MaxMs   float64 `json:"max_ms"`
}

// Stats returns a snapshot of m.
func (m *TimingMetric) Stats() TimingStats {
	s := TimingStats{
		Name:    m.name,
		Count:   m.count.Load(),
		TotalMs: ms(m.total.Load()),
		MinMs:   ms(m.min.Load()),
		MaxMs:   ms(m.max.Load()),
	}
	if s.Count > 0 {
		s.AvgMs = s.TotalMs / float64(s.Count)
	}
	return s
}

func ms(ns int64) float64 { return float64(ns) / 1e6 }

// Timer starts timing m and returns the function that stops it. A nil metric
// or disabled collection costs nothing.
func Timer(m *TimingMetric) func() {
	return TimerWithCallback(m, nil)
}

// TimerWithCallback is Timer that also hands the duration to cb.
func TimerWithCallback(m *TimingMetric, cb func(time.Duration)) func() {
	if m == nil || !Enabled() {
		return func() {}
	}
	start := time.Now()
	return func() {
		d := time.Since(start)
		m.Record(d)
		if cb != nil {
			cb(d)
		}
	}
}

var (
	DataLoad      = newTimingMetric("data_load")
	GraphBuild    = newTimingMetric("graph_build")
	PipelineFocus = newTimingMetric("pipeline_focus")
	DataFlowFocus = newTimingMetric("data_flow_focus")
	FrameLayout   = newTimingMetric("frame_layout")
	Precompute    = newTimingMetric("precompute")
	BundleWrite   = newTimingMetric("bundle_write")
	UIRender      = newTimingMetric("ui_render")
)

// AllTimingMetrics returns the registered metrics in report order.
func AllTimingMetrics() []*TimingMetric {
	return []*TimingMetric{
		DataLoad,
		GraphBuild,
		PipelineFocus,
		DataFlowFocus,
		FrameLayout,
		Precompute,
		BundleWrite,
		UIRender,
	}
}

// ResetAll resets every registered metric.
func ResetAll() {
	for _, m := range AllTimingMetrics() {
		m.Reset()
	}
}

// AllTimingStats returns stats for the metrics that recorded anything.
func AllTimingStats() []TimingStats {
	var stats []TimingStats
	for _, m := range AllTimingMetrics() {
		if m.Count() > 0 {
			stats = append(stats, m.Stats())
		}
	}
	return stats
}

// WriteTable prints stats as an aligned table.
func WriteTable(w io.Writer, stats []TimingStats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "metric\tcount\ttotal ms\tavg ms\tmin ms\tmax ms\t")
	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.3f\t%.3f\t%.3f\t\n", s.Name, s.Count, s.TotalMs, s.AvgMs, s.MinMs, s.MaxMs)
	}
	return tw.Flush()
}
