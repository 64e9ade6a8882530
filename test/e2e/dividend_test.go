// Package e2etest provides end-to-end tests for the extraction batch.
package e2etest

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/export"
	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/fixture"
	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/parser"
	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/service"
	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/sniffer"
	"github.com/Kei198403/sbi-pdf2text/pkg/metrics"
	"github.com/Kei198403/sbi-pdf2text/pkg/pdftext"
	"github.com/Kei198403/sbi-pdf2text/pkg/storage"
)

// testDataDir holds real notices. They are not committed.
const testDataDir = "../../testdata/sbi"

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type pipeline struct {
	service  *service.Service
	exporter *export.Exporter
}

// newPipeline builds the batch. An empty textDir keeps saved text next to
// each PDF.
func newPipeline(t *testing.T, input, output, textDir string) *pipeline {
	t.Helper()
	store, err := storage.NewLocalStorage(textDir)
	require.NoError(t, err)

	renderer := pdftext.NewCachedRenderer(store, pdftext.NewPDFRenderer(discard), discard)
	svc := service.NewService(parser.NewParser(discard), renderer, store, metrics.New(),
		service.Options{InputDir: input}, discard)

	exp, err := export.NewExporter(export.Options{Dir: output, Encoding: export.EncodingCP932}, discard)
	require.NoError(t, err)
	return &pipeline{service: svc, exporter: exp}
}

func (p *pipeline) run(t *testing.T) (*service.Summary, []string) {
	t.Helper()
	c := export.NewCollector()
	summary, err := p.service.Run(context.Background(), c)
	require.NoError(t, err)
	paths, err := p.exporter.Export(c)
	require.NoError(t, err)
	return summary, paths
}

// placeNotice writes a placeholder PDF together with its saved text, so the
// batch replays the text instead of rendering.
func placeNotice(t *testing.T, dir, name string, lines []string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n"), 0644))
	require.NoError(t, os.WriteFile(path+".txt", []byte(strings.Join(lines, "\n")), 0644))
	return path
}

func readCP932(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := gocsv.LazyCSVReader(transform.NewReader(f, japanese.ShiftJIS.NewDecoder())).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestBatch_SavedText(t *testing.T) {
	input, output := t.TempDir(), t.TempDir()
	gen := fixture.NewGenerator(42)

	stocks := []fixture.JapaneseStock{fixture.MitsubishiCorp, gen.JapaneseStock(), gen.JapaneseStock()}
	drift := gen.JapaneseStock()
	drift.DropNameBlank = true
	stocks = append(stocks, drift)

	v2 := fixture.Apple
	v2.ArtifactAt = 20

	jp := placeNotice(t, input, "2023/jp.pdf", fixture.JapaneseDocument(stocks...))
	us1 := placeNotice(t, input, "2023/us_v1.pdf", fixture.ForeignDocument(true, fixture.Apple, gen.ForeignStock()))
	us2 := placeNotice(t, input, "2024/us_v2.pdf", fixture.ForeignDocument(false, v2, gen.ForeignStock(), gen.ForeignStock()))

	summary, paths := newPipeline(t, input, output, "").run(t)

	assert.Empty(t, summary.Failures)
	assert.Zero(t, summary.Mismatches)
	assert.Equal(t, 4, summary.Records[sniffer.JapaneseDividend])
	assert.Equal(t, 2, summary.Records[sniffer.ForeignDividendV1])
	assert.Equal(t, 3, summary.Records[sniffer.ForeignDividendV2])

	t.Run("japanese csv", func(t *testing.T) {
		rows := readCP932(t, paths[0])
		require.Len(t, rows, 1+len(stocks))
		assert.Equal(t, parser.JapaneseColumns, rows[0])
		for i, s := range stocks {
			assert.Equal(t, append([]string{jp}, s.Expected()...), rows[i+1], "record %d", i)
		}
	})

	t.Run("foreign csv", func(t *testing.T) {
		rows := readCP932(t, paths[1])
		require.Len(t, rows, 1+5)
		assert.Equal(t, parser.ForeignColumns, rows[0])
		assert.Equal(t, append([]string{us1}, fixture.Apple.Expected(true)...), rows[1])
		assert.Equal(t, append([]string{us2}, v2.Expected(false)...), rows[3])
		for _, row := range rows[1:] {
			assert.Len(t, row, len(parser.ForeignColumns))
		}
	})
}

func TestBatch_FixAndReplay(t *testing.T) {
	input, output := t.TempDir(), t.TempDir()

	lines := fixture.ForeignDocument(true, fixture.Apple)
	good := append([]string(nil), lines...)
	lines[5+21] = "1"
	path := placeNotice(t, input, "us.pdf", lines)

	p := newPipeline(t, input, output, "")

	summary, _ := p.run(t)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, service.CodeStructure, summary.Failures[0].Code)
	assert.Zero(t, summary.TotalRecords())

	// Fix the saved text by hand and extract again.
	require.NoError(t, os.WriteFile(path+".txt", []byte(strings.Join(good, "\n")), 0644))

	summary, paths := p.run(t)
	assert.Empty(t, summary.Failures)
	rows := readCP932(t, paths[1])
	require.Len(t, rows, 2)
	assert.Equal(t, fixture.Apple.Name, rows[1][5])
}

func TestBatch_RealNotices(t *testing.T) {
	if _, err := os.Stat(testDataDir); os.IsNotExist(err) {
		t.Skipf("Test data not found: %s (add SBI notices to run this test)", testDataDir)
	}

	output := t.TempDir()
	summary, paths := newPipeline(t, testDataDir, output, t.TempDir()).run(t)

	t.Logf("documents=%d records=%d failed=%d", summary.Documents, summary.TotalRecords(), len(summary.Failures))
	for _, f := range summary.Failures {
		t.Logf("failed: %s [%s]: %v", f.Source, f.Code, f.Err)
	}
	assert.NotZero(t, summary.Documents)
	for _, p := range paths {
		assert.FileExists(t, p)
	}
}
