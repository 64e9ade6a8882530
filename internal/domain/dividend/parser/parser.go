// Package parser locates stock records in rendered SBI dividend notices and maps
// their fixed line and token positions to named fields.
//
// Every notice layout is a Layout: it owns the record locator, the record
// extractor and the column schema for that layout. Parse classifies the
// document once, then drains every record of the chosen layout. A document
// either yields all of its records or an error; partial output is never
// returned.
package parser

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/sniffer"
)

// Document is one rendered notice as a flat sequence of lines.
type Document struct {
	Source string
	Lines  []string
}

// NewDocument splits rendered text into lines.
func NewDocument(source, text string) Document {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return Document{Source: source, Lines: strings.Split(text, "\n")}
}

// Text joins the lines back into the rendered text.
func (d Document) Text() string {
	return strings.Join(d.Lines, "\n")
}

// Record is the ordered field list of one stock.
type Record struct {
	Source string
	Index  int
	Fields []string
}

// Row returns the output row: the source identifier followed by the fields.
func (r Record) Row() []string {
	row := make([]string, 0, len(r.Fields)+1)
	row = append(row, r.Source)
	return append(row, r.Fields...)
}

// Result holds everything extracted from one document.
type Result struct {
	Source  string
	Format  sniffer.Format
	Records []Record
	// Located is the number of record starts the locator produced.
	Located int
	// Working is the repaired working copy the offsets refer to.
	Working []string
}

// Layout is the closed set of notice layouts. Implementations live in this
// package only.
type Layout interface {
	Format() sniffer.Format
	// Columns returns the output header, starting with the source column.
	Columns() []string
	extract(lines []string) (*extraction, error)
}

type extraction struct {
	records [][]string
	located int
	working []string
}

var (
	japanese  Layout = japaneseLayout{}
	foreignV1 Layout = newForeignV1()
	foreignV2 Layout = newForeignV2()
)

// LayoutFor returns the layout for a detected format.
func LayoutFor(f sniffer.Format) (Layout, error) {
	switch f {
	case sniffer.JapaneseDividend:
		return japanese, nil
	case sniffer.ForeignDividendV1:
		return foreignV1, nil
	case sniffer.ForeignDividendV2:
		return foreignV2, nil
	default:
		return nil, fmt.Errorf("%w: %s", sniffer.ErrUnrecognizedFormat, f)
	}
}

// Parser drives classification and extraction for rendered documents.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a parser that logs failed windows to logger.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// Parse classifies doc and extracts all of its records.
func (p *Parser) Parse(doc Document) (*Result, error) {
	format, err := sniffer.Classify(doc.Lines)
	if err != nil {
		return nil, fmt.Errorf("classify %s: %w", doc.Source, err)
	}

	layout, err := LayoutFor(format)
	if err != nil {
		return nil, err
	}

	ext, err := layout.extract(doc.Lines)
	if err != nil {
		p.logFailure(doc.Source, format, err)
		return nil, fmt.Errorf("extract %s: %w", doc.Source, err)
	}

	return newResult(doc.Source, format, ext), nil
}

// ParseTables extracts records from the grid view of a document.
func (p *Parser) ParseTables(source string, grids []sniffer.Grid) (*Result, error) {
	if len(grids) == 0 {
		return nil, fmt.Errorf("classify %s: %w", source, sniffer.ErrUnrecognizedFormat)
	}

	format, err := sniffer.ClassifyGrid(grids[0])
	if err != nil {
		return nil, fmt.Errorf("classify %s: %w", source, err)
	}

	var records [][]string
	if format == sniffer.JapaneseDividend {
		records, err = JapaneseFromTables(grids)
	} else {
		records, err = ForeignFromTables(grids)
	}
	if err != nil {
		p.logFailure(source, format, err)
		return nil, fmt.Errorf("extract %s: %w", source, err)
	}

	return newResult(source, format, &extraction{records: records, located: len(records)}), nil
}

func newResult(source string, format sniffer.Format, ext *extraction) *Result {
	res := &Result{
		Source:  source,
		Format:  format,
		Records: make([]Record, 0, len(ext.records)),
		Located: ext.located,
		Working: ext.working,
	}
	for i, fields := range ext.records {
		res.Records = append(res.Records, Record{Source: source, Index: i, Fields: fields})
	}
	return res
}

func (p *Parser) logFailure(source string, format sniffer.Format, err error) {
	attrs := []any{
		slog.String("source", source),
		slog.String("format", format.String()),
		slog.Any("error", err),
	}
	if window := windowOf(err); window != nil {
		attrs = append(attrs, slog.String("window", describeWindow(window)))
	}
	p.logger.Error("record extraction failed", attrs...)
}

func clone(lines []string) []string {
	return append([]string(nil), lines...)
}
