package parser

import (
	"fmt"
	"strings"

	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/normalizer"
	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/sniffer"
)

// Table extraction yields one grid per ruled table. Japanese notices print
// two records per table, at base rows 3 and 8; foreign notices print each
// record as a pair of tables.

const jpTableMinCols = 10

var jpTableBaseRows = [...]int{3, 8}

// cellRef addresses one grid cell. Table selects the first or second grid of
// a foreign pair.
type cellRef struct {
	table int
	row   int
	col   int
	strip bool
}

var foreignTableCells = [ForeignFieldCount]cellRef{
	{0, 1, 0, false},  // payment date
	{0, 1, 1, false},  // domestic payment date
	{0, 1, 2, false},  // local record date
	{0, 1, 4, false},  // stock code
	{0, 1, 7, false},  // stock name
	{0, 3, 0, false},  // distribution currency
	{0, 3, 1, false},  // foreign withholding rate
	{0, 3, 2, false},  // unit amount
	{0, 3, 4, false},  // settlement method
	{0, 5, 0, false},  // quantity
	{0, 5, 1, false},  // dividend amount
	{0, 5, 2, false},  // foreign withholding tax
	{0, 6, 3, false},  // foreign fee
	{0, 5, 5, false},  // foreign net settlement
	{0, 5, 8, false},  // domestic withholding tax
	{0, 5, 12, false}, // receipt amount
	{1, 2, 0, false},  // declared rate date
	{1, 2, 1, false},  // declared rate
	{1, 3, 0, false},  // fx rate date
	{1, 3, 1, false},  // fx rate
	{1, 2, 2, true},   // dividend amount (JPY)
	{1, 2, 3, true},   // foreign withholding tax (JPY)
	{1, 2, 4, true},   // domestic taxable income (JPY)
	{1, 2, 5, false},  // national tax
	{1, 2, 7, false},  // local tax
	{1, 3, 6, true},   // national tax (JPY)
	{1, 3, 7, true},   // local tax (JPY)
	{1, 2, 8, false},  // domestic withholding tax, repeated
}

// cell reads a grid cell, reporting coordinates outside the grid.
func cell(g sniffer.Grid, format sniffer.Format, row, col int) (string, error) {
	if row >= g.Rows() || col >= g.Cols() {
		return "", &IndexError{
			Format: format,
			Op:     fmt.Sprintf("read cell (%d,%d)", row, col),
			Start:  row,
			Length: 1,
			Lines:  g.Rows(),
		}
	}
	return g.Cell(row, col), nil
}

// JapaneseFromTables extracts Japanese records from table grids. Grids with
// fewer than ten columns are page furniture and are skipped.
func JapaneseFromTables(grids []sniffer.Grid) ([][]string, error) {
	var records [][]string
	for _, g := range grids {
		if g.Cols() < jpTableMinCols {
			continue
		}
		for _, base := range jpTableBaseRows {
			fields, ok, err := japaneseTableRecord(g, base)
			if err != nil {
				return nil, err
			}
			if ok {
				records = append(records, fields)
			}
		}
	}
	return records, nil
}

func japaneseTableRecord(g sniffer.Grid, base int) ([]string, bool, error) {
	const format = sniffer.JapaneseDividend

	head, err := cell(g, format, base, 0)
	if err != nil {
		return nil, false, err
	}
	if strings.Contains(head, "以下余白") {
		return nil, false, nil
	}

	corp := strings.Split(head, "\n")
	if len(corp) < 2 {
		return nil, false, &StructuralError{
			Format:     format,
			Start:      base,
			Violations: []Violation{{Offset: 0, Want: "name and code on separate lines", Got: head}},
			Window:     corp,
		}
	}

	refs := []struct {
		row, col int
		opts     []normalizer.Option
	}{
		{base, 4, []normalizer.Option{normalizer.StripChars("　")}},
		{base, 8, nil},
		{base, 12, []normalizer.Option{normalizer.StripSeparators()}},
		{base + 2, 0, []normalizer.Option{normalizer.StripSeparators()}},
		{base + 2, 2, []normalizer.Option{normalizer.StripSeparators()}},
		{base + 2, 3, []normalizer.Option{normalizer.StripSeparators()}},
		{base + 2, 8, []normalizer.Option{normalizer.StripSeparators()}},
		{base + 2, 12, []normalizer.Option{normalizer.StripSeparators()}},
	}

	fields := make([]string, 0, 2+len(refs))
	fields = append(fields,
		strings.TrimSpace(corp[0]),
		normalizer.Normalize(corp[1], normalizer.StripChars("　（）")),
	)
	for _, r := range refs {
		v, err := cell(g, format, r.row, r.col)
		if err != nil {
			return nil, false, err
		}
		fields = append(fields, normalizer.Normalize(v, r.opts...))
	}
	return fields, true, nil
}

// ForeignFromTables extracts foreign records from consecutive table pairs. A
// trailing unpaired grid is ignored.
func ForeignFromTables(grids []sniffer.Grid) ([][]string, error) {
	const format = sniffer.ForeignDividendV1

	var records [][]string
	for i := 0; i+1 < len(grids); i += 2 {
		pair := [2]sniffer.Grid{grids[i], grids[i+1]}
		fields := make([]string, ForeignFieldCount)
		for j, ref := range foreignTableCells {
			v, err := cell(pair[ref.table], format, ref.row, ref.col)
			if err != nil {
				return nil, err
			}
			if ref.strip {
				v = strings.ReplaceAll(v, ",", "")
			}
			fields[j] = v
		}
		records = append(records, fields)
	}
	return records, nil
}
