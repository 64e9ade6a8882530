// Package sniffer detects which SBI dividend notice layout produced a rendered
// document. It works on the flat line view produced by the text renderer and on
// the grid view produced by table extraction.
package sniffer

import (
	"errors"
	"regexp"
	"strings"
)

// Format identifies one of the known notice layouts.
type Format int

const (
	Unknown Format = iota
	// JapaneseDividend is 「株式等利益剰余金配当金のお知らせ」.
	JapaneseDividend
	// ForeignDividendV1 is the older 「外国株式等配当金等のご案内（兼）支払通知書」 layout.
	ForeignDividendV1
	// ForeignDividendV2 is the current foreign notice layout.
	ForeignDividendV2
)

func (f Format) String() string {
	switch f {
	case JapaneseDividend:
		return "japanese_dividend"
	case ForeignDividendV1:
		return "foreign_dividend_v1"
	case ForeignDividendV2:
		return "foreign_dividend_v2"
	default:
		return "unknown"
	}
}

// IsForeign reports whether f belongs to the foreign notice family.
func (f Format) IsForeign() bool {
	return f == ForeignDividendV1 || f == ForeignDividendV2
}

// ErrUnrecognizedFormat is returned when no known layout matches.
var ErrUnrecognizedFormat = errors.New("unrecognized dividend notice format")

const (
	foreignTitle      = "外国株式等配当金等のご案内"
	foreignV1Subtitle = "（兼）支払通知書"
	japaneseMarker    = "特定口座配当等受入対象"

	// foreignV1SearchLines bounds the V1 subtitle search.
	foreignV1SearchLines = 20
)

const (
	phraseForeignTitle = iota
	phraseForeignV1
	phraseJapanese
)

var classifierPhrases = NewPhraseSet(foreignTitle, foreignV1Subtitle, japaneseMarker)

// Classify inspects a rendered document and returns its format.
func Classify(lines []string) (Format, error) {
	if first, ok := firstNonBlank(lines); ok && classifierPhrases.Scan(first).Has(phraseForeignTitle) {
		limit := min(len(lines), foreignV1SearchLines)
		for _, line := range lines[:limit] {
			if classifierPhrases.Scan(line).Has(phraseForeignV1) {
				return ForeignDividendV1, nil
			}
		}
		return ForeignDividendV2, nil
	}

	for _, line := range lines {
		if classifierPhrases.Scan(line).Has(phraseJapanese) {
			return JapaneseDividend, nil
		}
	}

	return Unknown, ErrUnrecognizedFormat
}

// Grid is one table extracted from a PDF page.
type Grid interface {
	Rows() int
	Cols() int
	// Cell returns the cell text, or "" when out of range.
	Cell(row, col int) string
}

var tableDatePattern = regexp.MustCompile(`^\d{4}/\d{2}/\d{2}`)

// ClassifyGrid applies the table layout checks to the first table of a
// document. Table extraction only ever sees one foreign layout, which is
// reported as ForeignDividendV1.
func ClassifyGrid(g Grid) (Format, error) {
	if tableDatePattern.MatchString(strings.TrimSpace(g.Cell(1, 0))) {
		return ForeignDividendV1, nil
	}

	for row := 0; row < g.Rows(); row++ {
		if strings.Contains(g.Cell(row, 2), japaneseMarker) {
			return JapaneseDividend, nil
		}
	}

	return Unknown, ErrUnrecognizedFormat
}

func firstNonBlank(lines []string) (string, bool) {
	for _, line := range lines {
		if s := strings.TrimSpace(line); s != "" {
			return s, true
		}
	}
	return "", false
}
