package observability

import (
	"math"
	"sort"
	"strings"
	"sync"
	"time"
)

type StageStats struct {
	Stage       string  `json:"stage"`
	Samples     int     `json:"samples"`
	LastMS      float64 `json:"last_ms"`
	AvgMS       float64 `json:"avg_ms"`
	P50MS       float64 `json:"p50_ms"`
	P95MS       float64 `json:"p95_ms"`
	P99MS       float64 `json:"p99_ms"`
	TargetP95MS float64 `json:"target_p95_ms,omitempty"`
}

type Indicator struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type StageSnapshot struct {
	GeneratedAt time.Time    `json:"generated_at"`
	WindowSize  int          `json:"window_size"`
	Stages      []StageStats `json:"stages"`
	Indicators  []Indicator  `json:"indicators,omitempty"`
}

// stageWindow keeps a fixed ring of recent samples per stage.
type stageWindow struct {
	mu         sync.RWMutex
	maxSamples int
	rings      map[string]*ring
	indicators map[string]int
}

type ring struct {
	values []float64
	next   int
	filled bool
	last   float64
}

func (r *ring) push(v float64) {
	r.values[r.next] = v
	r.last = v
	r.next++
	if r.next >= len(r.values) {
		r.next = 0
		r.filled = true
	}
}

func (r *ring) sorted() []float64 {
	n := r.next
	if r.filled {
		n = len(r.values)
	}
	out := make([]float64, n)
	copy(out, r.values[:n])
	sort.Float64s(out)
	return out
}

func newStageWindow(maxSamples int) *stageWindow {
	if maxSamples <= 0 {
		maxSamples = 256
	}
	return &stageWindow{
		maxSamples: maxSamples,
		rings:      make(map[string]*ring),
		indicators: make(map[string]int),
	}
}

func (w *stageWindow) Observe(stage string, ms float64) {
	stage = strings.TrimSpace(stage)
	if stage == "" || ms < 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	r, ok := w.rings[stage]
	if !ok {
		r = &ring{values: make([]float64, w.maxSamples)}
		w.rings[stage] = r
	}
	r.push(ms)
}

func (w *stageWindow) ObserveIndicator(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.indicators[name]++
}

func (w *stageWindow) Snapshot() StageSnapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	keys := make([]string, 0, len(w.rings))
	for stage := range w.rings {
		keys = append(keys, stage)
	}
	sort.Strings(keys)

	stages := make([]StageStats, 0, len(keys))
	for _, stage := range keys {
		samples := w.rings[stage].sorted()
		if len(samples) == 0 {
			continue
		}
		sum := 0.0
		for _, v := range samples {
			sum += v
		}
		stages = append(stages, StageStats{
			Stage:       stage,
			Samples:     len(samples),
			LastMS:      round2(w.rings[stage].last),
			AvgMS:       round2(sum / float64(len(samples))),
			P50MS:       round2(quantile(samples, 0.50)),
			P95MS:       round2(quantile(samples, 0.95)),
			P99MS:       round2(quantile(samples, 0.99)),
			TargetP95MS: stageTargetP95MS(stage),
		})
	}

	names := make([]string, 0, len(w.indicators))
	for name := range w.indicators {
		names = append(names, name)
	}
	sort.Strings(names)
	indicators := make([]Indicator, 0, len(names))
	for _, name := range names {
		indicators = append(indicators, Indicator{Name: name, Count: w.indicators[name]})
	}

	return StageSnapshot{
		GeneratedAt: time.Now().UTC(),
		WindowSize:  w.maxSamples,
		Stages:      stages,
		Indicators:  indicators,
	}
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	idx := q * float64(len(sorted)-1)
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo == hi {
		return sorted[lo]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Latency targets for the stages the dialogue controller reports.
func stageTargetP95MS(stage string) float64 {
	switch stage {
	case "classify":
		return 5
	case "search":
		return 1500
	case "lead_save":
		return 1500
	case "ai_fallback":
		return 4000
	case "turn_total":
		return 5000
	default:
		return 0
	}
}
