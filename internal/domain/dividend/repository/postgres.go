// Package repository stores extracted dividend records in PostgreSQL.
package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/parser"
	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/sniffer"
	"github.com/Kei198403/sbi-pdf2text/pkg/money"
)

// Net receipt positions inside a record, without the source column.
const (
	japaneseNetField = 9
	foreignNetField  = 15
)

// DBTX is the part of a pool the repository needs. *pgxpool.Pool satisfies it.
type DBTX interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository writes dividend documents and their records.
type PostgresRepository struct {
	db     DBTX
	logger *slog.Logger
}

// NewPostgresRepository creates a PostgreSQL-backed repository.
func NewPostgresRepository(db DBTX, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{db: db, logger: logger}
}

const insertDocument = `
	INSERT INTO dividend_documents (source, format, record_count, run_id)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (source) DO NOTHING
`

const insertRecord = `
	INSERT INTO dividend_records (source, record_index, format, fields, net_receipt)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (source, record_index) DO NOTHING
`

// SaveResult stores a document and its records in one transaction. Rows that
// already exist are left untouched. It returns the number of new records.
func (r *PostgresRepository) SaveResult(ctx context.Context, runID uuid.UUID, res *parser.Result) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	format := res.Format.String()
	if _, err := tx.Exec(ctx, insertDocument, res.Source, format, len(res.Records), runID); err != nil {
		return 0, fmt.Errorf("failed to insert document %s: %w", res.Source, err)
	}

	inserted := 0
	for _, rec := range res.Records {
		tag, err := tx.Exec(ctx, insertRecord, rec.Source, rec.Index, format, rec.Fields, netReceipt(res.Format, rec))
		if err != nil {
			return 0, fmt.Errorf("failed to insert record %d of %s: %w", rec.Index, rec.Source, err)
		}
		inserted += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit %s: %w", res.Source, err)
	}

	r.logger.Debug("stored document",
		slog.String("source", res.Source),
		slog.Int("records", len(res.Records)),
		slog.Int("inserted", inserted),
	)
	return inserted, nil
}

// Write implements the batch sink.
func (r *PostgresRepository) Write(ctx context.Context, runID uuid.UUID, res *parser.Result) error {
	_, err := r.SaveResult(ctx, runID, res)
	return err
}

// RecordCount returns how many records are stored for source.
func (r *PostgresRepository) RecordCount(ctx context.Context, source string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM dividend_records WHERE source = $1`, source).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count records of %s: %w", source, err)
	}
	return n, nil
}

// netReceipt returns the received amount as a numeric literal, or nil when
// the field does not hold a number.
func netReceipt(format sniffer.Format, rec parser.Record) any {
	field := foreignNetField
	if format == sniffer.JapaneseDividend {
		field = japaneseNetField
	}
	if field >= len(rec.Fields) {
		return nil
	}
	d, err := money.ParseDecimal(rec.Fields[field])
	if err != nil {
		return nil
	}
	return d.String()
}
