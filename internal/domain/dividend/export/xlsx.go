package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/parser"
)

// WorkbookFile is the XLSX output name.
const WorkbookFile = "stock_dividend.xlsx"

// Sheet names in the workbook.
const (
	JapaneseSheet = "国内株式"
	ForeignSheet  = "外国株式"
)

const defaultSheet = "Sheet1"

// WriteWorkbook saves both tables to one workbook at path, one sheet each.
func WriteWorkbook(path string, japanese, foreign [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheets := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{JapaneseSheet, parser.JapaneseColumns, japanese},
		{ForeignSheet, parser.ForeignColumns, foreign},
	}

	for i, s := range sheets {
		idx, err := f.NewSheet(s.name)
		if err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", s.name, err)
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}
		if err := setRows(f, s.name, s.header, s.rows); err != nil {
			return err
		}
	}

	if err := f.DeleteSheet(defaultSheet); err != nil {
		return fmt.Errorf("failed to delete %s: %w", defaultSheet, err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func setRows(f *excelize.File, sheet string, header []string, rows [][]string) error {
	all := append([][]string{header}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
