// Package service drives batch extraction: it walks an input tree, renders
// each notice, parses it, and hands every extracted document to the sinks.
// A document that fails is logged, counted and its raw text saved; the batch
// then moves on to the next document.
package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/parser"
	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/sniffer"
	"github.com/Kei198403/sbi-pdf2text/pkg/metrics"
	"github.com/Kei198403/sbi-pdf2text/pkg/pdftext"
	"github.com/Kei198403/sbi-pdf2text/pkg/storage"
)

// Sink receives every successfully extracted document.
type Sink interface {
	Write(ctx context.Context, runID uuid.UUID, res *parser.Result) error
}

// Options controls one batch.
type Options struct {
	InputDir string
	// SaveText saves the raw text of every document, not only failed ones.
	SaveText bool
	// Tables reads table exports instead of rendered text.
	Tables bool
}

// Service runs extraction batches.
type Service struct {
	parser   *parser.Parser
	renderer pdftext.Renderer
	store    storage.TextStore
	metrics  *metrics.Metrics
	opts     Options
	logger   *slog.Logger

	loadGrids func(path string) ([]pdftext.Table, error)
	now       func() time.Time
}

// NewService creates a batch service. m may be nil.
func NewService(p *parser.Parser, renderer pdftext.Renderer, store storage.TextStore, m *metrics.Metrics, opts Options, logger *slog.Logger) *Service {
	return &Service{
		parser:    p,
		renderer:  renderer,
		store:     store,
		metrics:   m,
		opts:      opts,
		logger:    logger,
		loadGrids: pdftext.LoadGrids,
		now:       time.Now,
	}
}

// Sources lists the PDF files under the input directory in lexical order.
func (s *Service) Sources() ([]string, error) {
	var sources []string
	err := filepath.WalkDir(s.opts.InputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".pdf") {
			sources = append(sources, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", s.opts.InputDir, err)
	}
	return sources, nil
}

// Process extracts one document.
func (s *Service) Process(ctx context.Context, path string) (*parser.Result, error) {
	return s.process(ctx, path, s.logger)
}

func (s *Service) process(ctx context.Context, path string, logger *slog.Logger) (*parser.Result, error) {
	if s.opts.Tables {
		return s.processTables(path)
	}

	text, err := s.renderer.Render(ctx, path)
	if err != nil {
		return nil, err
	}

	res, err := s.parser.Parse(parser.NewDocument(path, text))
	if err != nil || s.opts.SaveText {
		s.saveText(ctx, path, text, logger)
	}
	return res, err
}

func (s *Service) processTables(path string) (*parser.Result, error) {
	tables, err := s.loadGrids(path)
	if err != nil {
		return nil, err
	}

	grids := make([]sniffer.Grid, len(tables))
	for i := range tables {
		grids[i] = tables[i]
	}
	return s.parser.ParseTables(path, grids)
}

func (s *Service) saveText(ctx context.Context, path, text string, logger *slog.Logger) {
	saved, err := s.store.SaveText(ctx, path, text)
	switch {
	case err != nil:
		logger.Error("failed to save raw text",
			slog.String("source", path),
			slog.Any("error", err),
		)
	case saved:
		logger.Info("saved raw text",
			slog.String("source", path),
			slog.String("path", s.store.Path(path)),
		)
	default:
		logger.Debug("raw text already saved", slog.String("path", s.store.Path(path)))
	}
}

// Run processes every source under the input directory.
func (s *Service) Run(ctx context.Context, sinks ...Sink) (*Summary, error) {
	runID := uuid.New()
	logger := s.logger.With(slog.String("run_id", runID.String()))
	summary := newSummary(runID, s.now())

	sources, err := s.Sources()
	if err != nil {
		return nil, err
	}

	logger.Info("batch started",
		slog.String("input", s.opts.InputDir),
		slog.Int("documents", len(sources)),
	)

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Documents++

		res, err := s.process(ctx, src, logger)
		if err != nil {
			code := Classify(err)
			s.metrics.Failure(string(code))
			s.metrics.Document(failedFormat(err).String(), metrics.OutcomeFailed)

			if !Skippable(err) {
				return summary, fmt.Errorf("process %s: %w", src, err)
			}

			summary.Failures = append(summary.Failures, Failure{Source: src, Code: code, Err: err})
			logger.Error("document skipped",
				slog.String("source", src),
				slog.String("code", string(code)),
				slog.Any("error", err),
			)
			continue
		}

		if res.Format == sniffer.JapaneseDividend {
			summary.Mismatches += checkAmounts(res, logger)
		}
		summary.add(res, logger)
		s.metrics.Document(res.Format.String(), metrics.OutcomeExtracted)
		s.metrics.Records(res.Format.String(), len(res.Records))

		logger.Info("document extracted",
			slog.String("source", src),
			slog.String("format", res.Format.String()),
			slog.Int("records", len(res.Records)),
		)

		for _, sink := range sinks {
			if err := sink.Write(ctx, runID, res); err != nil {
				return summary, fmt.Errorf("write %s: %w", src, err)
			}
		}
	}

	summary.Finished = s.now()
	s.metrics.Batch(summary.Duration(), summary.Finished)
	logger.Info("batch completed", slog.Any("summary", summary))

	return summary, nil
}

// checkAmounts logs Japanese records whose amounts do not add up and returns
// how many there were.
func checkAmounts(res *parser.Result, logger *slog.Logger) int {
	mismatches := 0
	for _, rec := range res.Records {
		ok, err := reconcile(rec)
		if ok {
			continue
		}
		mismatches++
		logger.Warn("amounts do not reconcile",
			slog.String("source", rec.Source),
			slog.Int("record", rec.Index),
			slog.String("stock", rec.Fields[0]),
			slog.String("gross", rec.Fields[jpGross]),
			slog.String("net", rec.Fields[jpNet]),
			slog.Any("error", err),
		)
	}
	return mismatches
}

func failedFormat(err error) sniffer.Format {
	var structErr *parser.StructuralError
	if errors.As(err, &structErr) {
		return structErr.Format
	}
	var idxErr *parser.IndexError
	if errors.As(err, &idxErr) {
		return idxErr.Format
	}
	var countErr *parser.RecordCountError
	if errors.As(err, &countErr) {
		return sniffer.JapaneseDividend
	}
	return sniffer.Unknown
}
