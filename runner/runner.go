package runner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/dhcgn/mbox-to-postgres/extract"
	"github.com/dhcgn/mbox-to-postgres/model"
	"github.com/dhcgn/mbox-to-postgres/stats"
)

// Source yields archive entries in order and io.EOF at the end.
type Source interface {
	Next() (model.Entry, error)
}

// Loader persists one record.
type Loader interface {
	Insert(ctx context.Context, rec model.Record) error
}

// Observer receives every entry state transition, in order, on the run's
// goroutine.
type Observer interface {
	Observe(evt stats.Event)
}

type ObserverFunc func(stats.Event)

func (f ObserverFunc) Observe(evt stats.Event) { f(evt) }

type Runner struct {
	logger    *slog.Logger
	collector *stats.Collector
	observers []Observer

	// Expected is the independently counted number of entries, or -1.
	Expected int
}

func New(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	collector := stats.NewCollector()
	return &Runner{
		logger:    logger,
		collector: collector,
		observers: []Observer{collector},
		Expected:  -1,
	}
}

func (r *Runner) Subscribe(obs Observer) {
	r.observers = append(r.observers, obs)
}

func (r *Runner) Summary() stats.Summary {
	return r.collector.Snapshot()
}

// Run drains src through extraction and loader. Per-record failures are
// counted and skipped; a read error from src aborts the run. The returned
// error is nil only when every entry was persisted.
func (r *Runner) Run(ctx context.Context, src Source, loader Loader) (stats.Summary, error) {
	started := time.Now()

	for {
		entry, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			summary := r.collector.Snapshot()
			r.logger.Error("pipeline aborted", append(summary.LogAttrs(), "err", err)...)
			return summary, model.Fatalf(model.KindArchiveRead, err)
		}

		r.emit(stats.Event{Stage: stats.StageMbox, Type: stats.EventTypeScanned, Index: entry.Index})
		r.process(ctx, entry, loader)
	}

	summary := r.collector.Snapshot()
	if r.Expected >= 0 && r.Expected != summary.Scanned {
		r.logger.Warn("entry count mismatch", "expected", r.Expected, "scanned", summary.Scanned)
	}

	attrs := append(summary.LogAttrs(), "duration", time.Since(started))
	if err := summary.Err(); err != nil {
		r.logger.Error("pipeline completed with failures", attrs...)
		return summary, err
	}
	r.logger.Info("pipeline completed", attrs...)
	return summary, nil
}

func (r *Runner) process(ctx context.Context, entry model.Entry, loader Loader) {
	rec, err := extract.Build(entry)
	if err != nil {
		r.fail(stats.StageExtract, entry.Index, err)
		return
	}

	if err := loader.Insert(ctx, rec); err != nil {
		r.fail(stats.StageLoad, entry.Index, model.RecordError(model.KindInsert, entry.Index, err))
		return
	}

	r.emit(stats.Event{Stage: stats.StageLoad, Type: stats.EventTypePersisted, Index: entry.Index, Domain: rec.Domain})
}

func (r *Runner) fail(stage stats.Stage, index int, err error) {
	kind := model.KindOf(err)
	r.logger.Debug("entry failed", "index", index, "stage", stage, "kind", kind, "err", err)
	r.emit(stats.Event{Stage: stage, Type: stats.EventTypeFailed, Index: index, Kind: kind, Err: err})
}

func (r *Runner) emit(evt stats.Event) {
	for _, obs := range r.observers {
		obs.Observe(evt)
	}
}
