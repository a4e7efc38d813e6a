package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rswy/investment-analysis/internal/attribution"
	"github.com/rswy/investment-analysis/internal/contracts"
	"github.com/rswy/investment-analysis/internal/exporter"
	"github.com/rswy/investment-analysis/internal/ingest"
	"github.com/rswy/investment-analysis/internal/reconcile"
	"github.com/rswy/investment-analysis/internal/store"
	"github.com/rswy/investment-analysis/pkg/config"
	"github.com/rswy/investment-analysis/pkg/database"
	"github.com/rswy/investment-analysis/pkg/logger"
)

// Pipeline wires the batch stages end to end: bootstrap and load the store,
// preprocess fund reports, then run the reconciliation and attribution
// engines and export their reports.
type Pipeline struct {
	cfg        *config.Config
	logger     *logger.Logger
	db         *database.DB
	positions  contracts.PositionRepository
	references contracts.ReferencePriceRepository
}

// New creates a pipeline on an open database connection
func New(cfg *config.Config, log *logger.Logger, db *database.DB) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		logger:     log,
		db:         db,
		positions:  store.NewPositionRepository(db.Pool, cfg.Tables),
		references: store.NewReferencePriceRepository(db.Pool, cfg.Tables),
	}
}

// Run executes the full batch: ingest, then both engines in parallel.
func (p *Pipeline) Run(ctx context.Context) error {
	runID := uuid.New().String()[:8]
	log := p.logger.WithField("run_id", runID)
	started := time.Now()

	log.Info("Pipeline run started")

	if err := p.Ingest(ctx); err != nil {
		return fmt.Errorf("ingest stage: %w", err)
	}

	// The engines read disjoint projections of the store, so they run
	// concurrently once ingestion has committed.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.Reconcile(gctx) })
	g.Go(func() error { return p.Attribute(gctx) })
	if err := g.Wait(); err != nil {
		return err
	}

	log.WithField("duration", time.Since(started).String()).Info("Pipeline run completed")
	return nil
}

// Ingest bootstraps the schema, loads the master reference prices from the
// configured SQL script, and preprocesses the fund report directory into the
// positions table.
func (p *Pipeline) Ingest(ctx context.Context) error {
	if err := store.Bootstrap(ctx, p.db.Pool, p.cfg.Tables); err != nil {
		return err
	}

	if err := store.ExecScript(ctx, p.db.Pool, p.cfg.Ingest.MasterSQLFile); err != nil {
		return err
	}
	p.logger.WithField("script", p.cfg.Ingest.MasterSQLFile).Info("Master reference prices loaded")

	positions, err := ingest.NewPreprocessor(p.logger).LoadDirectory(p.cfg.Ingest.FundReportDir)
	if err != nil {
		return err
	}

	if err := p.positions.SaveBatch(ctx, positions); err != nil {
		return err
	}
	p.logger.WithField("positions", len(positions)).Info("Fund positions stored")

	return nil
}

// Reconcile runs the price reconciliation engine and exports its report
func (p *Pipeline) Reconcile(ctx context.Context) error {
	engine := reconcile.NewEngine(p.positions, p.references,
		reconcile.Options{Tolerance: p.cfg.Reconciliation.Tolerance}, p.logger)

	results, _, err := engine.Run(ctx)
	if err != nil {
		return fmt.Errorf("reconciliation stage: %w", err)
	}

	csv := exporter.NewCSVExporter(p.cfg.Output.Dir, p.logger)
	if err := csv.WriteReconciliation(p.cfg.Output.ReconciliationFile, results); err != nil {
		return fmt.Errorf("export reconciliation report: %w", err)
	}

	return nil
}

// Attribute runs the performance attribution engine and exports its report
func (p *Pipeline) Attribute(ctx context.Context) error {
	engine := attribution.NewEngine(p.positions, p.logger)

	best, err := engine.Run(ctx)
	if err != nil {
		return fmt.Errorf("attribution stage: %w", err)
	}

	csv := exporter.NewCSVExporter(p.cfg.Output.Dir, p.logger)
	if err := csv.WriteBestPerformers(p.cfg.Output.BestPerformersFile, best); err != nil {
		return fmt.Errorf("export best performers report: %w", err)
	}

	return nil
}
