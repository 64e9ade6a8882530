package service

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/parser"
	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/sniffer"
	"github.com/Kei198403/sbi-pdf2text/pkg/money"
)

// Field positions inside a record, without the source column.
const (
	jpGross       = 5
	jpNationalTax = 6
	jpLocalTax    = 7
	jpRounding    = 8
	jpNet         = 9

	foreignDividendJPY = 20
)

// Failure describes one document the batch skipped.
type Failure struct {
	Source string
	Code   Code
	Err    error
}

// Summary reports one batch run.
type Summary struct {
	RunID     uuid.UUID
	Started   time.Time
	Finished  time.Time
	Documents int
	Records   map[sniffer.Format]int
	Failures  []Failure
	// Mismatches counts Japanese records whose amounts do not reconcile.
	Mismatches int
	// NetJPY totals the net receipts of Japanese records.
	NetJPY *money.Money
	// ForeignDividendJPY totals the yen dividend amount of foreign records.
	ForeignDividendJPY *money.Money
}

func newSummary(runID uuid.UUID, started time.Time) *Summary {
	return &Summary{
		RunID:              runID,
		Started:            started,
		Records:            make(map[sniffer.Format]int),
		NetJPY:             money.Zero(money.JPY),
		ForeignDividendJPY: money.Zero(money.JPY),
	}
}

// TotalRecords returns the number of records across all formats.
func (s *Summary) TotalRecords() int {
	n := 0
	for _, c := range s.Records {
		n += c
	}
	return n
}

// Duration returns the wall time of the run.
func (s *Summary) Duration() time.Duration {
	return s.Finished.Sub(s.Started)
}

func (s *Summary) add(res *parser.Result, logger *slog.Logger) {
	s.Records[res.Format] += len(res.Records)

	for _, rec := range res.Records {
		if res.Format == sniffer.JapaneseDividend {
			s.NetJPY = addAmount(s.NetJPY, rec, jpNet, logger)
		} else {
			s.ForeignDividendJPY = addAmount(s.ForeignDividendJPY, rec, foreignDividendJPY, logger)
		}
	}
}

func addAmount(total *money.Money, rec parser.Record, field int, logger *slog.Logger) *money.Money {
	amount, err := money.NewFromString(rec.Fields[field], money.JPY)
	if err == nil {
		var sum *money.Money
		if sum, err = total.Add(amount); err == nil {
			return sum
		}
	}

	logger.Debug("amount not summed",
		slog.String("source", rec.Source),
		slog.Int("record", rec.Index),
		slog.Any("error", err),
	)
	return total
}

// LogValue implements slog.LogValuer.
func (s *Summary) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("run_id", s.RunID.String()),
		slog.Int("documents", s.Documents),
		slog.Int("records", s.TotalRecords()),
		slog.Int("failed", len(s.Failures)),
		slog.Int("mismatches", s.Mismatches),
		slog.String("net_jpy", s.NetJPY.Display()),
		slog.String("foreign_dividend_jpy", s.ForeignDividendJPY.Display()),
		slog.Duration("duration", s.Duration()),
	}
	for f, n := range s.Records {
		attrs = append(attrs, slog.Int(f.String(), n))
	}
	return slog.GroupValue(attrs...)
}

// reconcile checks gross - national - local + rounding = net on a Japanese
// record. It reports false when the amounts disagree or cannot be parsed.
func reconcile(rec parser.Record) (bool, error) {
	var v [jpNet + 1]*money.Money
	for _, i := range []int{jpGross, jpNationalTax, jpLocalTax, jpRounding, jpNet} {
		m, err := money.NewFromString(rec.Fields[i], money.JPY)
		if err != nil {
			return false, err
		}
		v[i] = m
	}

	got, err := v[jpGross].Subtract(v[jpNationalTax])
	if err != nil {
		return false, err
	}
	if got, err = got.Subtract(v[jpLocalTax]); err != nil {
		return false, err
	}
	if got, err = got.Add(v[jpRounding]); err != nil {
		return false, err
	}
	return got.Equals(v[jpNet]), nil
}
