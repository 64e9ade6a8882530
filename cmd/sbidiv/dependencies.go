package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/export"
	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/parser"
	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/repository"
	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/service"
	"github.com/Kei198403/sbi-pdf2text/pkg/config"
	"github.com/Kei198403/sbi-pdf2text/pkg/db"
	"github.com/Kei198403/sbi-pdf2text/pkg/metrics"
	"github.com/Kei198403/sbi-pdf2text/pkg/pdftext"
	"github.com/Kei198403/sbi-pdf2text/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	Store      storage.TextStore
	Renderer   pdftext.Renderer
	Parser     *parser.Parser
	Metrics    *metrics.Metrics
	Repository *repository.PostgresRepository
	Service    *service.Service
	Exporter   *export.Exporter
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if cfg.Database.Enabled {
		if err := deps.initDatabase(ctx); err != nil {
			return nil, fmt.Errorf("failed to init database: %w", err)
		}
	}

	if err := deps.initServices(); err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	logger.Debug("all dependencies initialized successfully")

	return deps, nil
}

// initDatabase connects to Postgres and runs migrations
func (d *Dependencies) initDatabase(ctx context.Context) error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        4,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	if err := d.DB.RunMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Repository = repository.NewPostgresRepository(d.DB.Pool, d.Logger)
	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

func (d *Dependencies) initServices() error {
	store, err := storage.NewLocalStorage(d.Config.Extract.TextDir)
	if err != nil {
		return err
	}
	d.Store = store

	d.Renderer = pdftext.NewCachedRenderer(store, pdftext.NewPDFRenderer(d.Logger), d.Logger)
	d.Parser = parser.NewParser(d.Logger)
	d.Metrics = metrics.New()

	d.Service = service.NewService(d.Parser, d.Renderer, d.Store, d.Metrics, service.Options{
		InputDir: d.Config.Extract.InputDir,
		SaveText: d.Config.Extract.SaveText,
		Tables:   d.Config.Extract.Tables,
	}, d.Logger)

	d.Exporter, err = export.NewExporter(export.Options{
		Dir:      d.Config.Extract.OutputDir,
		Encoding: d.Config.Extract.Encoding,
		XLSX:     d.Config.Extract.XLSX,
	}, d.Logger)
	return err
}

// Sinks returns the batch sinks for one run: the collector, and the
// repository when Postgres is enabled.
func (d *Dependencies) Sinks(c *export.Collector) []service.Sink {
	sinks := []service.Sink{c}
	if d.Repository != nil {
		sinks = append(sinks, d.Repository)
	}
	return sinks
}

// RunBatch runs one extraction batch and writes the output files.
func (d *Dependencies) RunBatch(ctx context.Context) (*service.Summary, []string, error) {
	collector := export.NewCollector()

	summary, err := d.Service.Run(ctx, d.Sinks(collector)...)
	if err != nil {
		return summary, nil, err
	}

	paths, err := d.Exporter.Export(collector)
	if err != nil {
		return summary, nil, err
	}
	return summary, paths, nil
}

// Close releases held resources
func (d *Dependencies) Close() {
	d.DB.Close()
}
