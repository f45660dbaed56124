// Package metrics exposes processing metrics for the slug pipeline.
package metrics

import "time"

// ResultLabel enumerates document outcome categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
)

// Recorder defines observability hooks for document processing.
type Recorder interface {
	ObserveDocument(format string, d time.Duration, result ResultLabel)
	AddHeadings(format string, n int)
	SetQueueDepth(n int)
	IncJobsRejected()
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveDocument(string, time.Duration, ResultLabel) {}
func (NoopRecorder) AddHeadings(string, int)                           {}
func (NoopRecorder) SetQueueDepth(int)                                 {}
func (NoopRecorder) IncJobsRejected()                                  {}
