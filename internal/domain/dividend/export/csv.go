package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/parser"
)

// Output file names.
const (
	JapaneseFile = "japanese_stock_dividend.csv"
	ForeignFile  = "global_stock_dividend.csv"
)

// Supported output encodings.
const (
	EncodingCP932 = "cp932"
	EncodingUTF8  = "utf-8"
)

var ErrUnsupportedEncoding = errors.New("unsupported output encoding")

// JapaneseRow is one line of the Japanese CSV. The tags are the output header.
type JapaneseRow struct {
	Source      string `csv:"ファイルパス"`
	Name        string `csv:"銘柄名"`
	Code        string `csv:"銘柄コード"`
	PaymentDate string `csv:"お支払日"`
	Unit        string `csv:"配当単価（円）"`
	Quantity    string `csv:"数量（株数・口数）"`
	Gross       string `csv:"配当金額（税引前）（円）"`
	NationalTax string `csv:"所得税（円）"`
	LocalTax    string `csv:"地方税（円）"`
	Rounding    string `csv:"端数処理代金（円）"`
	Net         string `csv:"お受取金額（円）"`
}

// NewJapaneseRow maps a Japanese output row, source first.
func NewJapaneseRow(row []string) (JapaneseRow, error) {
	if len(row) != len(parser.JapaneseColumns) {
		return JapaneseRow{}, fmt.Errorf("japanese row has %d columns, want %d", len(row), len(parser.JapaneseColumns))
	}
	return JapaneseRow{
		Source:      row[0],
		Name:        row[1],
		Code:        row[2],
		PaymentDate: row[3],
		Unit:        row[4],
		Quantity:    row[5],
		Gross:       row[6],
		NationalTax: row[7],
		LocalTax:    row[8],
		Rounding:    row[9],
		Net:         row[10],
	}, nil
}

// encodingFor resolves an output encoding name. A nil encoding means UTF-8.
func encodingFor(name string) (encoding.Encoding, error) {
	switch name {
	case EncodingCP932, "":
		return japanese.ShiftJIS, nil
	case EncodingUTF8:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, name)
	}
}

// WriteJapaneseCSV writes the header and rows to w.
func WriteJapaneseCSV(w io.Writer, rows [][]string) error {
	out := make([]JapaneseRow, 0, len(rows))
	for i, row := range rows {
		r, err := NewJapaneseRow(row)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, r)
	}

	if len(out) == 0 {
		return writeRaw(w, parser.JapaneseColumns, nil)
	}
	if err := gocsv.MarshalCSV(&out, gocsv.DefaultCSVWriter(w)); err != nil {
		return fmt.Errorf("failed to marshal japanese rows: %w", err)
	}
	return nil
}

// WriteForeignCSV writes the header and rows to w. The foreign header repeats
// its last column name, so rows are written positionally.
func WriteForeignCSV(w io.Writer, rows [][]string) error {
	for i, row := range rows {
		if len(row) != len(parser.ForeignColumns) {
			return fmt.Errorf("row %d: foreign row has %d columns, want %d", i, len(row), len(parser.ForeignColumns))
		}
	}
	return writeRaw(w, parser.ForeignColumns, rows)
}

func writeRaw(w io.Writer, header []string, rows [][]string) error {
	cw := gocsv.DefaultCSVWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeFile creates path and streams write through the output encoding.
// Characters the encoding cannot represent fail the write.
func writeFile(path string, enc encoding.Encoding, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	var w io.Writer = f
	var tw *transform.Writer
	if enc != nil {
		tw = transform.NewWriter(f, enc.NewEncoder())
		w = tw
	}

	if err := write(w); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if tw != nil {
		if err := tw.Close(); err != nil {
			return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}
