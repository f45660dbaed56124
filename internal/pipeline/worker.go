package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/headslug/internal/headingid"
	"github.com/dgallion1/headslug/internal/metrics"
	"github.com/dgallion1/headslug/internal/parser"
	"github.com/dgallion1/headslug/internal/toc"
)

// Result is the outcome of slugging one document.
type Result struct {
	Title       string        `json:"title"`
	Format      parser.Format `json:"format"`
	Headings    []toc.Entry   `json:"headings"`
	TOC         []*toc.Item   `json:"toc"`
	HTML        string        `json:"html,omitempty"`
	ContentHash string        `json:"content_hash"`
	DurationMs  int64         `json:"duration_ms"`
}

// PhaseFunc is notified as a document moves through processing phases.
type PhaseFunc func(status JobStatus, phase string)

// Worker parses documents, assigns heading ids and renders the result.
type Worker struct {
	opts    parser.Options
	log     *slog.Logger
	stats   *LatencyStats
	metrics metrics.Recorder
}

func NewWorker(opts parser.Options, log *slog.Logger, stats *LatencyStats, rec metrics.Recorder) *Worker {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	if stats == nil {
		stats = NewLatencyStats(time.Hour)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Worker{opts: opts, log: log, stats: stats, metrics: rec}
}

// Stats returns the worker's latency tracker.
func (w *Worker) Stats() *LatencyStats {
	return w.stats
}

// Run processes a single document synchronously. A non-empty title
// overrides the one found in the document.
func (w *Worker) Run(ctx context.Context, filename, title string, data []byte, onPhase PhaseFunc) (res *Result, err error) {
	if onPhase == nil {
		onPhase = func(JobStatus, string) {}
	}
	start := time.Now()
	format := "unknown"
	log := w.log.With("filename", filename)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing %s: %v", filename, r)
			res = nil
		}
		elapsed := time.Since(start)
		w.stats.Record(format, elapsed, err != nil)
		if err != nil {
			log.Error("document failed", "format", format, "error", err)
			w.metrics.ObserveDocument(format, elapsed, metrics.ResultFailed)
			return
		}
		res.DurationMs = elapsed.Milliseconds()
		w.metrics.ObserveDocument(format, elapsed, metrics.ResultSuccess)
		w.metrics.AddHeadings(format, len(res.Headings))
		log.Info("document processed", "format", format, "headings", len(res.Headings), "duration_ms", res.DurationMs)
	}()

	// Phase 1: Parse
	onPhase(StatusParsing, "parsing")
	p, err := parser.ForFile(filename, w.opts)
	if err != nil {
		return nil, err
	}
	doc, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	format = string(doc.Format)
	if title != "" {
		doc.Tree.Title = title
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Phase 2: Assign ids
	onPhase(StatusSlugging, "slugging")
	headingid.Assign(doc.Tree)
	entries := toc.Entries(doc.Tree)
	log.Debug("assigned heading ids", "headings", len(entries))

	res = &Result{
		Title:       doc.Tree.Title,
		Format:      doc.Format,
		Headings:    entries,
		TOC:         toc.Build(entries),
		ContentHash: ContentHashHex(data),
	}

	// Phase 3: Render
	if doc.Renderable() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		onPhase(StatusRendering, "rendering")
		var buf bytes.Buffer
		if err := doc.Render(&buf); err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		res.HTML = buf.String()
	}

	return res, nil
}

// Process runs a queued job and records the outcome on it.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID)

	res, err := w.Run(ctx, job.Filename, job.Title, job.FileData(), job.SetStatus)
	if err != nil {
		job.AddError(err.Error())
		phase := "processing"
		if errors.Is(err, parser.ErrUnsupportedFormat) {
			phase = "parsing"
		}
		job.SetStatus(StatusFailed, phase)
		return
	}
	job.Complete(res)
	log.Info("job completed", "headings", len(res.Headings))
}
