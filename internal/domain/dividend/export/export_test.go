package export

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/fixture"
	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/parser"
	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/sniffer"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func collected(t *testing.T) *Collector {
	t.Helper()
	c := NewCollector()
	ctx, run := context.Background(), uuid.New()

	require.NoError(t, c.Write(ctx, run, &parser.Result{
		Source: "input/jp.pdf",
		Format: sniffer.JapaneseDividend,
		Records: []parser.Record{
			{Source: "input/jp.pdf", Fields: fixture.MitsubishiCorp.Expected()},
		},
	}))
	require.NoError(t, c.Write(ctx, run, &parser.Result{
		Source: "input/us.pdf",
		Format: sniffer.ForeignDividendV2,
		Records: []parser.Record{
			{Source: "input/us.pdf", Fields: fixture.Apple.Expected(false)},
			{Source: "input/us.pdf", Index: 1, Fields: fixture.Apple.Expected(false)},
		},
	}))
	return c
}

func readCSV(t *testing.T, path string, cp932 bool) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var r io.Reader = f
	if cp932 {
		r = transform.NewReader(f, japanese.ShiftJIS.NewDecoder())
	}
	rows, err := gocsv.LazyCSVReader(r).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCollector(t *testing.T) {
	c := collected(t)

	assert.Equal(t, 3, c.Len())
	require.Len(t, c.Japanese(), 1)
	assert.Equal(t, "input/jp.pdf", c.Japanese()[0][0])
	assert.Len(t, c.Foreign(), 2)
	assert.Len(t, c.Foreign()[0], len(parser.ForeignColumns))
}

func TestExporter_Export(t *testing.T) {
	for _, enc := range []string{EncodingCP932, EncodingUTF8} {
		t.Run(enc, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "out")
			e, err := NewExporter(Options{Dir: dir, Encoding: enc}, discard)
			require.NoError(t, err)

			paths, err := e.Export(collected(t))
			require.NoError(t, err)
			assert.Equal(t, []string{filepath.Join(dir, JapaneseFile), filepath.Join(dir, ForeignFile)}, paths)

			cp932 := enc == EncodingCP932
			jp := readCSV(t, paths[0], cp932)
			require.Len(t, jp, 2)
			assert.Equal(t, parser.JapaneseColumns, jp[0])
			assert.Equal(t, append([]string{"input/jp.pdf"}, fixture.MitsubishiCorp.Expected()...), jp[1])

			fg := readCSV(t, paths[1], cp932)
			require.Len(t, fg, 3)
			assert.Equal(t, parser.ForeignColumns, fg[0])
			assert.Equal(t, "国内源泉徴収税額（外貨）", fg[0][len(fg[0])-1])
			assert.Equal(t, "アップル", fg[1][5])
		})
	}
}

func TestExporter_EncodedBytes(t *testing.T) {
	dir := t.TempDir()
	e, err := NewExporter(Options{Dir: dir, Encoding: EncodingCP932}, discard)
	require.NoError(t, err)
	_, err = e.Export(NewCollector())
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, JapaneseFile))
	require.NoError(t, err)
	want, _, err := transform.String(japanese.ShiftJIS.NewEncoder(), strings.Join(parser.JapaneseColumns, ",")+"\n")
	require.NoError(t, err)
	assert.Equal(t, want, string(raw), "header only, shift_jis bytes")
}

func TestExporter_Unencodable(t *testing.T) {
	c := NewCollector()
	stock := fixture.MitsubishiCorp
	stock.Name = "삼성전자"
	require.NoError(t, c.Write(context.Background(), uuid.New(), &parser.Result{
		Format:  sniffer.JapaneseDividend,
		Records: []parser.Record{{Source: "kr.pdf", Fields: stock.Expected()}},
	}))

	e, err := NewExporter(Options{Dir: t.TempDir(), Encoding: EncodingCP932}, discard)
	require.NoError(t, err)

	_, err = e.Export(c)
	assert.Error(t, err)
}

func TestNewExporter_Encoding(t *testing.T) {
	_, err := NewExporter(Options{Dir: t.TempDir(), Encoding: "latin1"}, discard)
	assert.ErrorIs(t, err, ErrUnsupportedEncoding)
}

func TestWriteJapaneseCSV(t *testing.T) {
	t.Run("quotes values containing commas", func(t *testing.T) {
		var buf bytes.Buffer
		row := append([]string{"a,b.pdf"}, fixture.MitsubishiCorp.Expected()...)
		require.NoError(t, WriteJapaneseCSV(&buf, [][]string{row}))

		var rows []JapaneseRow
		require.NoError(t, gocsv.UnmarshalBytes(buf.Bytes(), &rows))
		require.Len(t, rows, 1)
		assert.Equal(t, "a,b.pdf", rows[0].Source)
		assert.Equal(t, "335", rows[0].Net)
	})

	t.Run("wrong arity", func(t *testing.T) {
		var buf bytes.Buffer
		assert.Error(t, WriteJapaneseCSV(&buf, [][]string{{"a.pdf", "x"}}))
	})
}

func TestWriteForeignCSV_Arity(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteForeignCSV(&buf, [][]string{{"a.pdf"}}))
}

func TestExporter_XLSX(t *testing.T) {
	dir := t.TempDir()
	e, err := NewExporter(Options{Dir: dir, Encoding: EncodingUTF8, XLSX: true}, discard)
	require.NoError(t, err)

	paths, err := e.Export(collected(t))
	require.NoError(t, err)
	require.Len(t, paths, 3)

	f, err := excelize.OpenFile(paths[2])
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{JapaneseSheet, ForeignSheet}, f.GetSheetList())

	rows, err := f.GetRows(JapaneseSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, parser.JapaneseColumns, rows[0])
	assert.Equal(t, "三菱商事", rows[1][1])

	rows, err = f.GetRows(ForeignSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
