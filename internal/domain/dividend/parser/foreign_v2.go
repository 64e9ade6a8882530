package parser

import "github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/sniffer"

const foreignV2WindowLines = 56

// newForeignV2 describes the current foreign notice layout. Some renderers
// emit stray box glyphs inside the window; they are removed first.
func newForeignV2() *foreignLayout {
	return &foreignLayout{
		format:    sniffer.ForeignDividendV2,
		window:    foreignV2WindowLines,
		blanks:    []int{1, 4, 7, 10, 12, 17, 32, 36, 42, 50, 51, 52, 53, 54, 55},
		artifacts: true,
		rows: []rowSpec{
			{offset: 9, values: 3},
			{offset: 11, values: 3},
		},
		fields: []fieldSpec{
			line(0),
			line(2),
			line(3),
			line(5),
			lineRaw(6),
			line(8),
			tok(9, 0),
			tok(9, 1),
			tok(9, 2),
			tokStripped(11, 0),
			tok(11, 1),
			tok(11, 2),
			line(13),
			line(14),
			line(15),
			line(16),
			line(28),
			line(29),
			line(30),
			line(31),
			lineStripped(33),
			lineStripped(34),
			lineStripped(35),
			line(37),
			line(38),
			lineStripped(39),
			lineStripped(40),
			line(41),
		},
	}
}
