package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/dhcgn/mbox-to-postgres/config"
	"github.com/dhcgn/mbox-to-postgres/mbox"
	"github.com/dhcgn/mbox-to-postgres/metrics"
	"github.com/dhcgn/mbox-to-postgres/model"
	"github.com/dhcgn/mbox-to-postgres/progress"
	"github.com/dhcgn/mbox-to-postgres/runner"
	"github.com/dhcgn/mbox-to-postgres/store"
)

type database interface {
	ResetSchema(ctx context.Context) error
	PrepareInsert(ctx context.Context) (inserter, error)
	Close() error
}

type inserter interface {
	runner.Loader
	Close() error
}

type archive interface {
	runner.Source
	Close() error
}

// loader wires the database, the archive and the runner for one load.
type loader struct {
	connect     func(ctx context.Context, dsn string) (database, error)
	openArchive func(path string) (archive, error)
	count       func(path string) (int, error)
	stdout      io.Writer
	stderr      io.Writer
}

func newLoader() *loader {
	return &loader{
		connect: func(ctx context.Context, dsn string) (database, error) {
			db, err := store.Open(ctx, dsn)
			if err != nil {
				return nil, err
			}
			return pgDatabase{db}, nil
		},
		openArchive: func(path string) (archive, error) {
			r, err := mbox.Open(path)
			if err != nil {
				return nil, err
			}
			return r, nil
		},
		count:  mbox.Count,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// load recreates the emails table and streams the archive into it. Fatal
// errors before the loop return without report lines.
func (l *loader) load(ctx context.Context, cfg config.Config, logger *slog.Logger, m *metrics.Metrics) error {
	db, err := l.connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return model.Fatalf(model.KindConnect, err)
	}
	defer db.Close()

	if err := db.ResetSchema(ctx); err != nil {
		return model.Fatalf(model.KindSchema, err)
	}

	ins, err := db.PrepareInsert(ctx)
	if err != nil {
		return model.Fatalf(model.KindPrepare, err)
	}
	defer ins.Close()

	src, err := l.openArchive(cfg.MboxPath)
	if err != nil {
		return model.Fatalf(model.KindArchiveOpen, err)
	}
	defer src.Close()

	r := runner.New(logger)
	r.Subscribe(m)

	total, err := l.count(cfg.MboxPath)
	if err != nil {
		logger.Warn("could not count mbox messages", "err", err)
	} else {
		r.Expected = total
		logger.Info("mbox opened", "messages", total)
	}

	bar := progress.New(total, cfg.Progress, cfg.LogLevel)
	if bar.Enabled() {
		r.Subscribe(bar)
	}

	summary, runErr := r.Run(ctx, src, ins)
	bar.Stop()

	if err := summary.Report(l.stdout, l.stderr); err != nil {
		logger.Warn("report not written", "err", err)
	}
	return runErr
}

// pgDatabase adapts *store.DB to the loader's database seam.
type pgDatabase struct {
	*store.DB
}

func (d pgDatabase) ResetSchema(ctx context.Context) error {
	return store.ResetSchema(ctx, d.DB)
}

func (d pgDatabase) PrepareInsert(ctx context.Context) (inserter, error) {
	ins, err := store.PrepareInsert(ctx, d.DB)
	if err != nil {
		return nil, err
	}
	return ins, nil
}
