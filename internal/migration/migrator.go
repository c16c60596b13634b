// Package migration orchestrates a single batch run: it bootstraps the
// source and destination connectors, discovers the collection catalog,
// creates one timestamped batch directory, and fans the collections out
// to a bounded worker pool. A failing collection is logged and counted,
// never allowed to abort the batch; only bootstrap failures end the run
// early.
package migration

import (
	"context"
	stderrors "errors"
	"sync"

	"go.uber.org/zap"

	"github.com/lakeferry/lakeferry/pkg/config"
	"github.com/lakeferry/lakeferry/pkg/connector/core"
	"github.com/lakeferry/lakeferry/pkg/errors"
	"github.com/lakeferry/lakeferry/pkg/tabular"
)

// Migrator drives one extract-load batch from a source to a destination.
type Migrator struct {
	source      core.Source
	destination core.Destination
	cfg         *config.Config
	logger      *zap.Logger
	summary     *Summary
}

// New creates a migrator for one batch run.
func New(source core.Source, destination core.Destination, cfg *config.Config, logger *zap.Logger) *Migrator {
	return &Migrator{
		source:      source,
		destination: destination,
		cfg:         cfg,
		logger:      logger,
		summary:     &Summary{},
	}
}

// Run executes the batch and returns its summary. The returned error is
// non-nil only for bootstrap failures (source or destination unreachable,
// container missing, credential rejected) or an interrupted run; unit
// failures are recorded in the summary and logged, and leave the error
// nil. Both connectors are closed on every exit path.
func (m *Migrator) Run(ctx context.Context) (*Summary, error) {
	m.summary.begin()
	defer m.summary.finish()

	// Connection release must not depend on the run context, which may
	// already be canceled by the time the deferreds fire.
	defer func() {
		if err := m.source.Close(context.Background()); err != nil {
			m.logger.Warn("failed to close source", zap.Error(err))
		}
	}()
	defer func() {
		if err := m.destination.Close(context.Background()); err != nil {
			m.logger.Warn("failed to close destination", zap.Error(err))
		}
	}()

	m.logger.Info("starting migration",
		zap.String("source", m.cfg.Source.Type),
		zap.String("database", m.cfg.Source.Database),
		zap.String("destination", m.cfg.Dest.Type),
		zap.String("container", m.cfg.Dest.Container),
	)

	if err := m.source.Open(ctx); err != nil {
		return m.summary, err
	}
	if err := m.destination.Open(ctx); err != nil {
		return m.summary, err
	}

	units, err := m.source.ListUnits(ctx)
	if err != nil {
		return m.summary, err
	}
	m.summary.setUnits(len(units))
	if len(units) == 0 {
		m.logger.Warn("no collections found in source database")
	} else {
		m.logger.Info("catalog ready", zap.Int("collections", len(units)))
	}

	// The batch directory is created exactly once, before any unit work
	// starts, so concurrent uploads never race on its existence.
	batchDir, err := m.destination.EnsureBatchDirectory(ctx)
	if err != nil {
		return m.summary, err
	}
	m.logger.Info("batch directory ready", zap.String("path", batchDir))

	m.runUnits(ctx, batchDir, units)

	m.logger.Info("migration finished", m.summary.Fields()...)

	if ctx.Err() != nil {
		return m.summary, errors.Wrap(ctx.Err(), errors.ErrorTypeInternal, "migration interrupted")
	}
	return m.summary, nil
}

// Summary returns the counters for the current or finished run.
func (m *Migrator) Summary() *Summary { return m.summary }

// runUnits fans the catalog out to a bounded pool of workers. Workers
// never cancel each other: a unit failure is recorded and the remaining
// units keep flowing.
func (m *Migrator) runUnits(ctx context.Context, batchDir string, units []string) {
	workers := m.cfg.Migration.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(units) {
		workers = len(units)
	}

	unitCh := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for unit := range unitCh {
				m.processUnit(ctx, batchDir, unit)
			}
		}()
	}

	for _, unit := range units {
		unitCh <- unit
	}
	close(unitCh)
	wg.Wait()
}

// processUnit runs extract, serialize, upload for one collection and
// records the outcome. Every failure path logs the unit and its cause.
func (m *Migrator) processUnit(ctx context.Context, batchDir, unit string) {
	log := m.logger.With(zap.String("unit", unit))

	if m.cfg.Migration.UnitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.Migration.UnitTimeout)
		defer cancel()
	}

	log.Info("processing collection")

	batch, err := m.source.Extract(ctx, unit)
	if err != nil {
		m.recordFailure(log, err)
		return
	}
	if batch.Len() == 0 {
		log.Warn("collection is empty, skipping")
		m.summary.addSkipped()
		return
	}
	if batch.Width() == 0 {
		log.Warn("collection has no exportable fields, skipping")
		m.summary.addSkipped()
		return
	}

	payload, err := tabular.EncodeCSV(batch)
	if err != nil {
		m.recordFailure(log, err)
		return
	}

	if err := m.destination.Upload(ctx, batchDir, unit, payload); err != nil {
		m.recordFailure(log, err)
		return
	}

	log.Info("collection migrated",
		zap.Int("records", batch.Len()),
		zap.Int("columns", batch.Width()),
		zap.Int("bytes", len(payload)),
	)
	m.summary.addMigrated()
}

func (m *Migrator) recordFailure(log *zap.Logger, err error) {
	if stderrors.Is(err, context.DeadlineExceeded) {
		err = errors.Wrap(err, errors.ErrorTypeTimeout, "collection processing timed out")
	}
	log.Error("failed to migrate collection", zap.Error(err))
	m.summary.addFailed()
}
