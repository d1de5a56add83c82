package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestStageWindowSnapshot(t *testing.T) {
	w := newStageWindow(8)
	w.Observe("search", 500)
	w.Observe("search", 700)
	w.Observe("search", 900)
	w.ObserveIndicator("search_empty")
	w.ObserveIndicator("search_empty")

	snap := w.Snapshot()
	if snap.WindowSize != 8 {
		t.Fatalf("WindowSize = %d, want 8", snap.WindowSize)
	}
	if len(snap.Stages) != 1 {
		t.Fatalf("len(Stages) = %d, want 1", len(snap.Stages))
	}
	s := snap.Stages[0]
	if s.Stage != "search" {
		t.Fatalf("Stage = %q, want %q", s.Stage, "search")
	}
	if s.Samples != 3 {
		t.Fatalf("Samples = %d, want 3", s.Samples)
	}
	if s.LastMS != 900 {
		t.Fatalf("LastMS = %.2f, want 900", s.LastMS)
	}
	if s.P50MS != 700 {
		t.Fatalf("P50MS = %.2f, want 700", s.P50MS)
	}
	if s.P95MS <= 700 || s.P95MS > 900 {
		t.Fatalf("P95MS = %.2f, want (700,900]", s.P95MS)
	}
	if s.TargetP95MS != 1500 {
		t.Fatalf("TargetP95MS = %.2f, want 1500", s.TargetP95MS)
	}
	if len(snap.Indicators) != 1 || snap.Indicators[0].Count != 2 {
		t.Fatalf("Indicators = %+v, want search_empty x2", snap.Indicators)
	}
}

func TestStageWindowWrapsAround(t *testing.T) {
	w := newStageWindow(2)
	for _, v := range []float64{10, 20, 30} {
		w.Observe("turn_total", v)
	}
	s := w.Snapshot().Stages[0]
	if s.Samples != 2 {
		t.Fatalf("Samples = %d, want 2", s.Samples)
	}
	if s.AvgMS != 25 {
		t.Fatalf("AvgMS = %.2f, want 25", s.AvgMS)
	}
}

func TestStageWindowIgnoresInvalidSamples(t *testing.T) {
	w := newStageWindow(4)
	w.Observe("", 10)
	w.Observe("search", -1)
	if got := len(w.Snapshot().Stages); got != 0 {
		t.Fatalf("len(Stages) = %d, want 0", got)
	}
}

func TestMetricsObserveStage(t *testing.T) {
	m := NewMetricsWithRegistry("test", prometheus.NewRegistry())
	m.ObserveStage("lead_save", 40*time.Millisecond)

	snap := m.SnapshotStages()
	if len(snap.Stages) != 1 || snap.Stages[0].LastMS != 40 {
		t.Fatalf("SnapshotStages() = %+v, want one lead_save sample of 40ms", snap.Stages)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveStage("search", time.Millisecond)
	m.CollaboratorError("search", "timeout")
	m.SessionEvent("opened")
	if snap := m.SnapshotStages(); len(snap.Stages) != 0 {
		t.Fatalf("nil metrics snapshot should be empty")
	}
}
