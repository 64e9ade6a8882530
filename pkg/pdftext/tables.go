package pdftext

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
)

// Table is one grid of a table export. Short rows read as empty cells.
type Table [][]string

// Rows returns the number of rows.
func (t Table) Rows() int { return len(t) }

// Cols returns the width of the widest row.
func (t Table) Cols() int {
	n := 0
	for _, row := range t {
		n = max(n, len(row))
	}
	return n
}

// Cell returns the cell text, or "" when out of range.
func (t Table) Cell(row, col int) string {
	if row < 0 || row >= len(t) || col < 0 || col >= len(t[row]) {
		return ""
	}
	return t[row][col]
}

var tableFilePattern = regexp.MustCompile(`-page-(\d+)-table-(\d+)\.csv$`)

type tableFile struct {
	path  string
	page  int
	order int
}

// TableFiles lists the camelot CSV exports of pdfPath, named
// <name>-page-<P>-table-<N>.csv next to it, in page and table order.
func TableFiles(pdfPath string) ([]string, error) {
	stem := strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath))
	matches, err := filepath.Glob(globEscape(stem) + "-page-*-table-*.csv")
	if err != nil {
		return nil, err
	}

	files := make([]tableFile, 0, len(matches))
	for _, m := range matches {
		sub := tableFilePattern.FindStringSubmatch(m)
		if sub == nil {
			continue
		}
		page, _ := strconv.Atoi(sub[1])
		order, _ := strconv.Atoi(sub[2])
		files = append(files, tableFile{path: m, page: page, order: order})
	}

	slices.SortFunc(files, func(a, b tableFile) int {
		if c := cmp.Compare(a.page, b.page); c != 0 {
			return c
		}
		return cmp.Compare(a.order, b.order)
	})

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}
	return paths, nil
}

// LoadGrids reads every table export of pdfPath.
func LoadGrids(pdfPath string) ([]Table, error) {
	paths, err := TableFiles(pdfPath)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no table exports for %s", ErrRender, pdfPath)
	}

	tables := make([]Table, 0, len(paths))
	for _, p := range paths {
		t, err := ReadTable(p)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// ReadTable reads one CSV export. Cells may span lines.
func ReadTable(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open table: %w", err)
	}
	defer f.Close()

	r := gocsv.LazyCSVReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", path, err)
	}
	return Table(records), nil
}

func globEscape(s string) string {
	return strings.NewReplacer("*", `\*`, "?", `\?`, "[", `\[`).Replace(s)
}
