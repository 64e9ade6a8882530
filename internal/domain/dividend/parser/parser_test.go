package parser

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/fixture"
	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/sniffer"
)

func newTestParser() (*Parser, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewParser(logger), &buf
}

func document(source string, lines []string) Document {
	return NewDocument(source, strings.Join(lines, "\n"))
}

func TestParser_Parse(t *testing.T) {
	t.Run("japanese notice", func(t *testing.T) {
		p, _ := newTestParser()
		second := fixture.NewGenerator(1).JapaneseStock()
		doc := document("input/2023/jp.pdf", fixture.JapaneseDocument(fixture.MitsubishiCorp, second))

		res, err := p.Parse(doc)

		require.NoError(t, err)
		assert.Equal(t, sniffer.JapaneseDividend, res.Format)
		assert.Equal(t, 2, res.Located)
		require.Len(t, res.Records, 2)
		assert.Equal(t, 1, res.Records[1].Index)
		row := res.Records[0].Row()
		assert.Equal(t, "input/2023/jp.pdf", row[0])
		assert.Equal(t, fixture.MitsubishiCorp.Expected(), row[1:])
		assert.Len(t, row, len(JapaneseColumns))
	})

	t.Run("foreign v1 notice", func(t *testing.T) {
		p, _ := newTestParser()
		doc := document("us.pdf", fixture.ForeignDocument(true, fixture.Apple))

		res, err := p.Parse(doc)

		require.NoError(t, err)
		assert.Equal(t, sniffer.ForeignDividendV1, res.Format)
		require.Len(t, res.Records, 1)
		assert.Len(t, res.Records[0].Row(), len(ForeignColumns))
	})

	t.Run("foreign v2 notice", func(t *testing.T) {
		p, _ := newTestParser()
		doc := document("us.pdf", fixture.ForeignDocument(false, fixture.Apple, fixture.Apple, fixture.Apple))

		res, err := p.Parse(doc)

		require.NoError(t, err)
		assert.Equal(t, sniffer.ForeignDividendV2, res.Format)
		assert.Len(t, res.Records, 3)
	})

	t.Run("crlf line endings", func(t *testing.T) {
		p, _ := newTestParser()
		text := strings.Join(fixture.JapaneseDocument(fixture.MitsubishiCorp), "\r\n")

		res, err := p.Parse(NewDocument("jp.pdf", text))

		require.NoError(t, err)
		require.Len(t, res.Records, 1)
		assert.Equal(t, fixture.MitsubishiCorp.Expected(), res.Records[0].Fields)
	})
}

func TestParser_Parse_Failures(t *testing.T) {
	t.Run("unrecognized document", func(t *testing.T) {
		p, _ := newTestParser()

		res, err := p.Parse(NewDocument("other.pdf", "取引報告書\n2023/12/01"))

		assert.Nil(t, res)
		assert.ErrorIs(t, err, sniffer.ErrUnrecognizedFormat)
	})

	t.Run("no partial records and window logged", func(t *testing.T) {
		p, logs := newTestParser()
		lines := fixture.ForeignDocument(true, fixture.Apple, fixture.Apple)
		lines[5+fixture.V1WindowLines+3] = "unexpected"

		res, err := p.Parse(document("broken.pdf", lines))

		assert.Nil(t, res)
		var structErr *StructuralError
		require.True(t, errors.As(err, &structErr))
		assert.Contains(t, err.Error(), "broken.pdf")
		assert.Contains(t, logs.String(), "record extraction failed")
		assert.Contains(t, logs.String(), "unexpected")
	})
}

func TestParser_ParseTables(t *testing.T) {
	p, _ := newTestParser()

	t.Run("japanese grids", func(t *testing.T) {
		res, err := p.ParseTables("jp.pdf", []sniffer.Grid{japaneseGrid()})

		require.NoError(t, err)
		assert.Equal(t, sniffer.JapaneseDividend, res.Format)
		require.Len(t, res.Records, 1)
		assert.Equal(t, "jp.pdf", res.Records[0].Row()[0])
	})

	t.Run("foreign grids", func(t *testing.T) {
		df1, df2 := foreignPair()
		res, err := p.ParseTables("us.pdf", []sniffer.Grid{df1, df2})

		require.NoError(t, err)
		assert.Equal(t, sniffer.ForeignDividendV1, res.Format)
		require.Len(t, res.Records, 1)
		assert.Len(t, res.Records[0].Fields, ForeignFieldCount)
	})

	t.Run("no grids", func(t *testing.T) {
		_, err := p.ParseTables("empty.pdf", nil)
		assert.ErrorIs(t, err, sniffer.ErrUnrecognizedFormat)
	})
}

func TestLayoutFor(t *testing.T) {
	for _, f := range []sniffer.Format{sniffer.JapaneseDividend, sniffer.ForeignDividendV1, sniffer.ForeignDividendV2} {
		l, err := LayoutFor(f)
		require.NoError(t, err)
		assert.Equal(t, f, l.Format())
	}

	_, err := LayoutFor(sniffer.Unknown)
	assert.ErrorIs(t, err, sniffer.ErrUnrecognizedFormat)
}
