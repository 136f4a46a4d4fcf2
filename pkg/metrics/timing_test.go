package metrics

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestTimingMetricRecord(t *testing.T) {
	SetEnabled(true)
	m := newTimingMetric("test")
	m.Record(2 * time.Millisecond)
	m.Record(4 * time.Millisecond)

	s := m.Stats()
	if s.Count != 2 || s.TotalMs != 6 || s.AvgMs != 3 || s.MinMs != 2 || s.MaxMs != 4 {
		t.Errorf("stats = %+v", s)
	}

	m.Reset()
	if s := m.Stats(); s.Count != 0 || s.MinMs != 0 || s.AvgMs != 0 {
		t.Errorf("reset left %+v", s)
	}
}

func TestTimingMetricConcurrent(t *testing.T) {
	SetEnabled(true)
	m := newTimingMetric("concurrent")
	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(d time.Duration) {
			defer wg.Done()
			m.Record(d)
		}(time.Duration(i) * time.Microsecond)
	}
	wg.Wait()
	if s := m.Stats(); s.Count != 50 || s.MinMs != 0.001 || s.MaxMs != 0.05 {
		t.Errorf("stats = %+v", s)
	}
}

func TestDisabled(t *testing.T) {
	SetEnabled(false)
	defer SetEnabled(true)
	m := newTimingMetric("off")
	m.Record(time.Millisecond)
	Timer(m)()
	if m.Count() != 0 {
		t.Errorf("disabled metric recorded %d", m.Count())
	}
}

func TestTimerWithCallback(t *testing.T) {
	SetEnabled(true)
	m := newTimingMetric("cb")
	var got time.Duration
	stop := TimerWithCallback(m, func(d time.Duration) { got = d })
	time.Sleep(time.Millisecond)
	stop()
	if m.Count() != 1 || got < time.Millisecond {
		t.Errorf("count %d, callback %v", m.Count(), got)
	}
	if Timer(nil) == nil {
		t.Error("Timer(nil) returned nil")
	}
}

func TestAllTimingStatsAndTable(t *testing.T) {
	SetEnabled(true)
	ResetAll()
	defer ResetAll()
	GraphBuild.Record(3 * time.Millisecond)

	stats := AllTimingStats()
	if len(stats) != 1 || stats[0].Name != "graph_build" {
		t.Fatalf("stats = %+v", stats)
	}
	var buf bytes.Buffer
	if err := WriteTable(&buf, stats); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "graph_build") || !strings.Contains(out, "3.00") {
		t.Errorf("table = %q", out)
	}
}
