package parser

import (
	"fmt"
	"strings"

	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/normalizer"
	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/sniffer"
)

const (
	jpMarker = iota
	jpBlankRemainder
	jpFooter
	jpPageEnd
)

var japanesePhrases = sniffer.NewPhraseSet("お支払日", "以下余白", "お問い合わせ先", "（以上）")

// Line offsets of the 23-line Japanese record block.
const (
	jpBlockLines    = 23
	jpHeadLines     = 4
	jpBodyOffset    = 13
	jpMarkerOffset  = 4
	jpSecondOffset  = 19
	jpNextPageLines = 25
)

// JapaneseColumns is the Japanese output header.
var JapaneseColumns = []string{
	"ファイルパス", "銘柄名", "銘柄コード", "お支払日", "配当単価（円）", "数量（株数・口数）",
	"配当金額（税引前）（円）", "所得税（円）", "地方税（円）", "端数処理代金（円）", "お受取金額（円）",
}

type japaneseLayout struct{}

func (japaneseLayout) Format() sniffer.Format { return sniffer.JapaneseDividend }

func (japaneseLayout) Columns() []string { return JapaneseColumns }

// pageStarts holds the record starts found in one page scan; -1 means absent.
type pageStarts struct {
	first  int
	second int
}

func (l japaneseLayout) extract(lines []string) (*extraction, error) {
	working := clone(lines)
	ext := &extraction{}

	cursor := 0
	for {
		starts, err := locateJapanesePage(working, cursor)
		if err != nil {
			return nil, err
		}
		if starts.first < 0 {
			break
		}

		working, starts = repairJapanese(working, starts)

		fields, err := extractJapanese(working, starts.first)
		if err != nil {
			return nil, err
		}
		ext.records = append(ext.records, fields)
		ext.located++

		if starts.second < 0 {
			break
		}
		fields, err = extractJapanese(working, starts.second)
		if err != nil {
			return nil, err
		}
		ext.records = append(ext.records, fields)
		ext.located++

		cursor = starts.second + jpNextPageLines
	}

	ext.working = working
	if markers := japanesePhrases.Count(working, jpMarker); markers != len(ext.records) {
		return nil, &RecordCountError{Markers: markers, Records: len(ext.records)}
	}
	return ext, nil
}

// locateJapanesePage scans one page from cursor. Only the first marker line
// counts; a blank remainder phrase after it cancels the second record.
func locateJapanesePage(lines []string, cursor int) (pageStarts, error) {
	starts := pageStarts{first: -1, second: -1}

	for i := cursor; i < len(lines); i++ {
		hits := japanesePhrases.Scan(lines[i])

		switch {
		case starts.first < 0 && hits.Has(jpMarker):
			start := i - jpMarkerOffset
			if i >= 3 && !normalizer.IsBlank(lines[i-3]) {
				start = i - 3
			}
			if start < 0 {
				return starts, &IndexError{
					Format: sniffer.JapaneseDividend,
					Op:     "locate record",
					Start:  start,
					Length: jpBlockLines,
					Lines:  len(lines),
					Window: lines[:i+1],
				}
			}
			starts.first = start
			starts.second = i + jpSecondOffset
		case starts.first >= 0 && hits.Has(jpBlankRemainder):
			starts.second = -1
		}

		if hits.Has(jpFooter) || hits.Has(jpPageEnd) {
			break
		}
	}

	return starts, nil
}

// repairJapanese restores the blank line between stock name and stock code
// when the renderer dropped it. It never modifies lines; when a repair is
// needed a new working copy is returned.
func repairJapanese(lines []string, starts pageStarts) ([]string, pageStarts) {
	if needsNameBlank(lines, starts.first) {
		lines = insertBlank(lines, starts.first+1)
		if starts.second >= 0 {
			starts.second++
		}
	}
	if starts.second >= 0 && needsNameBlank(lines, starts.second) {
		lines = insertBlank(lines, starts.second+1)
	}
	return lines, starts
}

func needsNameBlank(lines []string, start int) bool {
	return start+1 < len(lines) && !normalizer.IsBlank(lines[start+1])
}

func insertBlank(lines []string, at int) []string {
	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:at]...)
	out = append(out, "")
	return append(out, lines[at:]...)
}

// japaneseWindow joins the head and the value body of a block into the
// 14-line window the field mapping refers to.
func japaneseWindow(lines []string, start int) ([]string, error) {
	if start < 0 || start+jpBlockLines > len(lines) {
		var partial []string
		if start >= 0 && start < len(lines) {
			partial = lines[start:]
		}
		return nil, &IndexError{
			Format: sniffer.JapaneseDividend,
			Op:     "extract record",
			Start:  start,
			Length: jpBlockLines,
			Lines:  len(lines),
			Window: partial,
		}
	}

	window := make([]string, 0, jpHeadLines+jpBlockLines-jpBodyOffset)
	window = append(window, lines[start:start+jpHeadLines]...)
	return append(window, lines[start+jpBodyOffset:start+jpBlockLines]...), nil
}

func extractJapanese(lines []string, start int) ([]string, error) {
	window, err := japaneseWindow(lines, start)
	if err != nil {
		return nil, err
	}

	fields, violations := mapJapaneseWindow(window)
	if len(violations) > 0 {
		return nil, &StructuralError{
			Format:     sniffer.JapaneseDividend,
			Start:      start,
			Violations: violations,
			Window:     window,
		}
	}
	return fields, nil
}

// mapJapaneseWindow maps a 14-line window to the ten output fields.
func mapJapaneseWindow(window []string) ([]string, []Violation) {
	var violations []Violation
	row := func(offset, arity int) []string {
		tokens := splitASCII(window[offset])
		if len(tokens) != arity {
			violations = append(violations, Violation{
				Offset: offset,
				Want:   fmt.Sprintf("%d values", arity),
				Got:    window[offset],
			})
			return make([]string, arity)
		}
		return tokens
	}

	amount := func(s string) string {
		return normalizer.Normalize(s, normalizer.StripSeparators())
	}

	payment := row(4, 3)
	totals := row(6, 3)
	net := row(8, 2)
	if len(violations) > 0 {
		return nil, violations
	}

	return []string{
		strings.TrimSpace(window[0]),
		normalizer.Normalize(window[2], normalizer.StripSpaces(), normalizer.StripChars("（）()")),
		normalizer.Normalize(payment[0]),
		normalizer.Normalize(payment[1]),
		amount(payment[2]),
		amount(totals[0]),
		amount(totals[1]),
		amount(totals[2]),
		amount(net[0]),
		amount(net[1]),
	}, nil
}

// splitASCII splits on ASCII spaces only. Ideographic spaces are padding
// inside a value on these notices.
func splitASCII(line string) []string {
	var tokens []string
	for _, tok := range strings.Split(line, " ") {
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}
