package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/normalizer"
	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/sniffer"
)

// Sentinel is emitted for fields a layout cannot carry.
const Sentinel = "-"

// ForeignColumns is the foreign output header. The domestic withholding tax
// column appears twice, as on the notice.
var ForeignColumns = []string{
	"ファイルパス", "配当金等支払日", "国内支払日", "現地基準日", "銘柄コード", "銘柄名",
	"分配通貨", "外国源泉税率（%）", "1単位あたり金額", "決済方法", "数量", "配当金等金額",
	"外国源泉徴収税額", "外国手数料", "外国精算金額（外貨）", "国内源泉徴収税額（外貨）", "受取金額",
	"申告レート基準日", "申告レート", "為替レート基準日", "為替レート", "配当金等金額（円）",
	"外国源泉徴収税額（円）", "国内課税所得額（円）", "所得税（外貨）", "地方税（外貨）",
	"所得税（円）", "地方税（円）", "国内源泉徴収税額（外貨）",
}

// ForeignFieldCount is the number of fields in a foreign record.
const ForeignFieldCount = 28

var (
	foreignStartPattern = regexp.MustCompile(`^\d{4}/\d{2}/\d{2}$`)
	decimalPattern      = regexp.MustCompile(`^-?[0-9,]+(\.[0-9]+)?$`)
)

// foreignTrailLines is how many trailing window lines the next scan revisits.
const foreignTrailLines = 5

// fieldSpec maps one output field to its place in the window.
type fieldSpec struct {
	offset int
	// token selects a value from a split row; -1 reads the whole line.
	token int
	// strip removes thousands separators.
	strip bool
	// raw keeps the trimmed text without width folding.
	raw bool
	// sentinel emits Sentinel instead of reading the window.
	sentinel bool
}

func line(offset int) fieldSpec           { return fieldSpec{offset: offset, token: -1} }
func lineStripped(offset int) fieldSpec   { return fieldSpec{offset: offset, token: -1, strip: true} }
func lineRaw(offset int) fieldSpec        { return fieldSpec{offset: offset, token: -1, raw: true} }
func tok(offset, i int) fieldSpec         { return fieldSpec{offset: offset, token: i} }
func tokStripped(offset, i int) fieldSpec { return fieldSpec{offset: offset, token: i, strip: true} }
func sentinel() fieldSpec                 { return fieldSpec{sentinel: true} }

// rowSpec is a line holding several values separated by whitespace.
type rowSpec struct {
	offset int
	values int
}

type foreignLayout struct {
	format  sniffer.Format
	window  int
	blanks  []int
	numeric []int
	rows    []rowSpec
	fields  []fieldSpec
	// artifacts enables removal of renderer artifact lines before extraction.
	artifacts bool
}

func (l *foreignLayout) Format() sniffer.Format { return l.format }

func (l *foreignLayout) Columns() []string { return ForeignColumns }

func (l *foreignLayout) extract(lines []string) (*extraction, error) {
	working := clone(lines)
	ext := &extraction{}

	cursor := 0
	for {
		start := locateForeign(working, cursor)
		if start < 0 {
			break
		}
		ext.located++

		if l.artifacts {
			working = removeArtifacts(working, start, l.window)
		}
		if start+l.window > len(working) {
			return nil, &IndexError{
				Format: l.format,
				Op:     "extract record",
				Start:  start,
				Length: l.window,
				Lines:  len(working),
				Window: working[start:],
			}
		}

		fields, err := l.extractWindow(working[start:start+l.window], start)
		if err != nil {
			return nil, err
		}
		ext.records = append(ext.records, fields)

		cursor = start + l.window - foreignTrailLines
	}

	ext.working = working
	return ext, nil
}

// locateForeign returns the first line at or after cursor that is exactly a
// YYYY/MM/DD date, or -1.
func locateForeign(lines []string, cursor int) int {
	for i := max(cursor, 0); i < len(lines); i++ {
		if foreignStartPattern.MatchString(strings.TrimSpace(lines[i])) {
			return i
		}
	}
	return -1
}

// removeArtifacts drops artifact lines, each with the blank line that follows
// it, from the window at start until none is left. The input is not modified.
func removeArtifacts(lines []string, start, n int) []string {
	for {
		at := -1
		for i := start; i < min(start+n, len(lines)); i++ {
			if isArtifact(lines[i]) {
				at = i
				break
			}
		}
		if at < 0 {
			return lines
		}

		cut := 1
		if at+1 < len(lines) && normalizer.IsBlank(lines[at+1]) {
			cut = 2
		}
		out := make([]string, 0, len(lines)-cut)
		out = append(out, lines[:at]...)
		lines = append(out, lines[at+cut:]...)
	}
}

func isArtifact(line string) bool {
	switch strings.TrimSpace(line) {
	case "□", "■":
		return true
	}
	return false
}

// extractWindow validates a window and maps it to the field list.
func (l *foreignLayout) extractWindow(window []string, start int) ([]string, error) {
	trimmed := make([]string, len(window))
	for i, s := range window {
		trimmed[i] = strings.TrimSpace(s)
	}

	var violations []Violation
	for _, off := range l.blanks {
		if trimmed[off] != "" {
			violations = append(violations, Violation{Offset: off, Want: "blank", Got: trimmed[off]})
		}
	}
	for _, off := range l.numeric {
		if !decimalPattern.MatchString(trimmed[off]) {
			violations = append(violations, Violation{Offset: off, Want: "decimal number", Got: trimmed[off]})
		}
	}

	tokens := make(map[int][]string, len(l.rows))
	for _, r := range l.rows {
		values := strings.Fields(trimmed[r.offset])
		if len(values) < r.values {
			violations = append(violations, Violation{
				Offset: r.offset,
				Want:   fmt.Sprintf("%d values", r.values),
				Got:    trimmed[r.offset],
			})
			continue
		}
		tokens[r.offset] = values
	}

	if len(violations) > 0 {
		return nil, &StructuralError{
			Format:     l.format,
			Start:      start,
			Violations: violations,
			Window:     window,
		}
	}

	fields := make([]string, len(l.fields))
	for i, f := range l.fields {
		var v string
		switch {
		case f.sentinel:
			fields[i] = Sentinel
			continue
		case f.token >= 0:
			v = tokens[f.offset][f.token]
		default:
			v = trimmed[f.offset]
		}

		switch {
		case f.raw:
			fields[i] = v
		case f.strip:
			fields[i] = normalizer.Normalize(v, normalizer.StripSeparators())
		default:
			fields[i] = normalizer.Normalize(v)
		}
	}
	return fields, nil
}
