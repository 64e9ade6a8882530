package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/fixture"
	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/parser"
	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/sniffer"
	"github.com/Kei198403/sbi-pdf2text/pkg/metrics"
	"github.com/Kei198403/sbi-pdf2text/pkg/pdftext"
	"github.com/Kei198403/sbi-pdf2text/pkg/storage"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// mapRenderer returns canned text by file name.
type mapRenderer map[string]string

func (m mapRenderer) Render(ctx context.Context, path string) (string, error) {
	text, ok := m[filepath.Base(path)]
	if !ok {
		return "", fmt.Errorf("%w: %s", pdftext.ErrRender, path)
	}
	return text, nil
}

type recordingSink struct {
	runs    []uuid.UUID
	results []*parser.Result
	err     error
}

func (s *recordingSink) Write(ctx context.Context, runID uuid.UUID, res *parser.Result) error {
	s.runs = append(s.runs, runID)
	s.results = append(s.results, res)
	return s.err
}

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		path := filepath.Join(dir, n)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0644))
	}
}

func text(lines []string) string { return strings.Join(lines, "\n") }

func brokenV1() string {
	lines := fixture.ForeignDocument(true, fixture.Apple)
	lines[5+21] = "unexpected"
	return text(lines)
}

func newTestService(t *testing.T, renderer pdftext.Renderer, opts Options) (*Service, *storage.LocalStorage, *metrics.Metrics) {
	t.Helper()
	store, err := storage.NewLocalStorage("")
	require.NoError(t, err)
	m := metrics.New()
	return NewService(parser.NewParser(discard), renderer, store, m, opts, discard), store, m
}

func TestService_Sources(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.pdf", "a.PDF", "2023/c.pdf", "a.pdf.txt", "notes.csv")
	svc, _, _ := newTestService(t, mapRenderer{}, Options{InputDir: dir})

	sources, err := svc.Sources()

	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "2023", "c.pdf"),
		filepath.Join(dir, "a.PDF"),
		filepath.Join(dir, "b.pdf"),
	}, sources)
}

func TestService_Run(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "jp.pdf", "us.pdf", "broken.pdf", "unknown.pdf", "unreadable.pdf")

	second := fixture.NewGenerator(2).JapaneseStock()
	renderer := mapRenderer{
		"jp.pdf":      text(fixture.JapaneseDocument(fixture.MitsubishiCorp, second)),
		"us.pdf":      text(fixture.ForeignDocument(false, fixture.Apple, fixture.Apple)),
		"broken.pdf":  brokenV1(),
		"unknown.pdf": "取引残高報告書",
	}
	svc, store, _ := newTestService(t, renderer, Options{InputDir: dir})
	sink := &recordingSink{}

	summary, err := svc.Run(context.Background(), sink)

	require.NoError(t, err)
	assert.Equal(t, 5, summary.Documents)
	assert.Equal(t, 2, summary.Records[sniffer.JapaneseDividend])
	assert.Equal(t, 2, summary.Records[sniffer.ForeignDividendV2])
	assert.Equal(t, 4, summary.TotalRecords())
	assert.Zero(t, summary.Mismatches)

	netSecond, err := strconv.ParseInt(strings.ReplaceAll(second.Net, ",", ""), 10, 64)
	require.NoError(t, err)
	assert.Equal(t, 335+netSecond, summary.NetJPY.Amount())
	assert.Equal(t, int64(3612*2), summary.ForeignDividendJPY.Amount())

	codes := map[string]Code{}
	for _, f := range summary.Failures {
		codes[filepath.Base(f.Source)] = f.Code
	}
	assert.Equal(t, map[string]Code{
		"broken.pdf":     CodeStructure,
		"unknown.pdf":    CodeClassification,
		"unreadable.pdf": CodeRender,
	}, codes)

	require.Len(t, sink.results, 2)
	assert.Equal(t, summary.RunID, sink.runs[0])

	t.Run("raw text saved for failed documents only", func(t *testing.T) {
		saved, err := store.LoadText(context.Background(), filepath.Join(dir, "broken.pdf"))
		require.NoError(t, err)
		assert.Equal(t, brokenV1(), saved)

		_, err = store.LoadText(context.Background(), filepath.Join(dir, "unknown.pdf"))
		assert.NoError(t, err)

		_, err = store.LoadText(context.Background(), filepath.Join(dir, "jp.pdf"))
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestService_Run_SaveText(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "jp.pdf")
	svc, store, _ := newTestService(t, mapRenderer{
		"jp.pdf": text(fixture.JapaneseDocument(fixture.MitsubishiCorp)),
	}, Options{InputDir: dir, SaveText: true})

	_, err := svc.Run(context.Background())
	require.NoError(t, err)

	saved, err := store.LoadText(context.Background(), filepath.Join(dir, "jp.pdf"))
	require.NoError(t, err)
	assert.Contains(t, saved, "三菱商事")
}

func TestService_Run_Replay(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "broken.pdf")
	svc, store, _ := newTestService(t, mapRenderer{"broken.pdf": brokenV1()}, Options{InputDir: dir})

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Failures, 1)

	// Correct the saved text by hand, then replay it.
	path := store.Path(filepath.Join(dir, "broken.pdf"))
	require.NoError(t, os.WriteFile(path, []byte(text(fixture.ForeignDocument(true, fixture.Apple))), 0644))

	replay := NewService(parser.NewParser(discard),
		pdftext.NewCachedRenderer(store, mapRenderer{"broken.pdf": brokenV1()}, discard),
		store, nil, Options{InputDir: dir}, discard)

	summary, err = replay.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summary.Failures)
	assert.Equal(t, 1, summary.Records[sniffer.ForeignDividendV1])
}

func TestService_Run_SinkError(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.pdf", "b.pdf")
	doc := text(fixture.JapaneseDocument(fixture.MitsubishiCorp))
	svc, _, _ := newTestService(t, mapRenderer{"a.pdf": doc, "b.pdf": doc}, Options{InputDir: dir})
	sink := &recordingSink{err: errors.New("disk full")}

	_, err := svc.Run(context.Background(), sink)

	assert.ErrorContains(t, err, "disk full")
	assert.Len(t, sink.results, 1, "the batch stops at the first sink error")
}

func TestService_Run_Mismatch(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "jp.pdf")
	stock := fixture.MitsubishiCorp
	stock.Net = "336"
	svc, _, _ := newTestService(t, mapRenderer{"jp.pdf": text(fixture.JapaneseDocument(stock))}, Options{InputDir: dir})

	summary, err := svc.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Mismatches)
	assert.Equal(t, 1, summary.TotalRecords(), "a mismatch is reported, not dropped")
}

func TestService_Run_Cancelled(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.pdf")
	svc, _, _ := newTestService(t, mapRenderer{}, Options{InputDir: dir})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_Process_Tables(t *testing.T) {
	svc, _, _ := newTestService(t, mapRenderer{}, Options{Tables: true})
	svc.loadGrids = func(path string) ([]pdftext.Table, error) {
		df1 := make(pdftext.Table, 7)
		for i := range df1 {
			df1[i] = make([]string, 13)
		}
		df1[1][0] = "2023/11/16"
		df2 := make(pdftext.Table, 4)
		for i := range df2 {
			df2[i] = make([]string, 9)
		}
		df2[2][2] = "3,612"
		return []pdftext.Table{df1, df2}, nil
	}

	res, err := svc.Process(context.Background(), "us.pdf")

	require.NoError(t, err)
	assert.Equal(t, sniffer.ForeignDividendV1, res.Format)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "3612", res.Records[0].Fields[20])
}
