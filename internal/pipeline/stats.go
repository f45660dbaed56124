package pipeline

import (
	"slices"
	"sync"
	"time"
)

// docSample is one processed document.
type docSample struct {
	at     time.Time
	format string
	ms     int64
	failed bool
}

// StatsSnapshot aggregates the documents processed within the window.
type StatsSnapshot struct {
	Count  int     `json:"count"`
	Failed int     `json:"failed"`
	MinMs  int64   `json:"min_ms"`
	MaxMs  int64   `json:"max_ms"`
	AvgMs  float64 `json:"avg_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
	P99Ms  float64 `json:"p99_ms"`
}

// LatencyReport is the window's totals plus one snapshot per document format.
type LatencyReport struct {
	StatsSnapshot
	ByFormat map[string]StatsSnapshot `json:"by_format"`
}

// LatencyStats keeps a rolling window of per-document processing times.
type LatencyStats struct {
	mu      sync.Mutex
	samples []docSample
	window  time.Duration
}

// NewLatencyStats tracks documents processed within window (default one hour).
func NewLatencyStats(window time.Duration) *LatencyStats {
	if window <= 0 {
		window = time.Hour
	}
	return &LatencyStats{window: window}
}

// Record adds a processed document. Negative durations count as zero.
func (s *LatencyStats) Record(format string, d time.Duration, failed bool) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(now)
	s.samples = append(s.samples, docSample{
		at:     now,
		format: format,
		ms:     max(d.Milliseconds(), 0),
		failed: failed,
	})
}

// Snapshot reports the live window, overall and per format.
func (s *LatencyStats) Snapshot() LatencyReport {
	now := time.Now()
	s.mu.Lock()
	s.expireLocked(now)
	live := slices.Clone(s.samples)
	s.mu.Unlock()

	byFormat := make(map[string][]docSample)
	for _, sm := range live {
		byFormat[sm.format] = append(byFormat[sm.format], sm)
	}
	report := LatencyReport{
		StatsSnapshot: summarize(live),
		ByFormat:      make(map[string]StatsSnapshot, len(byFormat)),
	}
	for format, samples := range byFormat {
		report.ByFormat[format] = summarize(samples)
	}
	return report
}

// expireLocked drops samples older than the window. Samples are appended in
// time order, so the expired ones form a prefix.
func (s *LatencyStats) expireLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	i := 0
	for i < len(s.samples) && s.samples[i].at.Before(cutoff) {
		i++
	}
	if i > 0 {
		s.samples = slices.Delete(s.samples, 0, i)
	}
}

func summarize(samples []docSample) StatsSnapshot {
	snap := StatsSnapshot{Count: len(samples)}
	if len(samples) == 0 {
		return snap
	}
	ms := make([]int64, 0, len(samples))
	var sum int64
	for _, sm := range samples {
		if sm.failed {
			snap.Failed++
		}
		ms = append(ms, sm.ms)
		sum += sm.ms
	}
	slices.Sort(ms)

	snap.MinMs = ms[0]
	snap.MaxMs = ms[len(ms)-1]
	snap.AvgMs = float64(sum) / float64(len(ms))
	snap.P50Ms = quantile(ms, 50)
	snap.P95Ms = quantile(ms, 95)
	snap.P99Ms = quantile(ms, 99)
	return snap
}

// quantile interpolates between the two closest ranks of sorted.
func quantile(sorted []int64, pct int) float64 {
	pos := float64((len(sorted)-1)*pct) / 100
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return float64(sorted[len(sorted)-1])
	}
	frac := pos - float64(lo)
	return float64(sorted[lo]) + frac*float64(sorted[lo+1]-sorted[lo])
}
