package parser

import "github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/sniffer"

const foreignV1WindowLines = 112

// newForeignV1 describes the 外国株式等配当金等のご案内（兼）支払通知書 layout.
// Distribution currency and settlement method are not printed in a position
// this layout can recover.
func newForeignV1() *foreignLayout {
	return &foreignLayout{
		format: sniffer.ForeignDividendV1,
		window: foreignV1WindowLines,
		blanks: []int{
			1, 3, 5, 7, 9, 19, 21, 29, 31, 33, 35, 37, 39, 41, 43, 59, 61, 63,
			79, 81, 83, 85, 87, 89, 91, 93, 95, 106, 107, 108, 109, 110, 111,
		},
		numeric: []int{42},
		rows: []rowSpec{
			{offset: 20, values: 2},
			{offset: 60, values: 2},
			{offset: 62, values: 2},
		},
		fields: []fieldSpec{
			line(0),          // payment date
			line(2),          // domestic payment date
			line(4),          // local record date
			line(6),          // stock code
			lineRaw(8),       // stock name
			sentinel(),       // distribution currency
			tok(20, 0),       // foreign withholding rate
			tok(20, 1),       // unit amount
			sentinel(),       // settlement method
			line(30),         // quantity
			line(32),         // dividend amount
			line(34),         // foreign withholding tax
			line(36),         // foreign fee
			line(38),         // foreign net settlement
			line(40),         // domestic withholding tax
			line(42),         // receipt amount
			tok(60, 0),       // declared rate date
			tok(60, 1),       // declared rate
			tok(62, 0),       // fx rate date
			tok(62, 1),       // fx rate
			lineStripped(80), // dividend amount (JPY)
			lineStripped(82), // foreign withholding tax (JPY)
			lineStripped(84), // domestic taxable income (JPY)
			line(86),         // national tax
			line(88),         // local tax
			lineStripped(90), // national tax (JPY)
			lineStripped(92), // local tax (JPY)
			line(94),         // domestic withholding tax, repeated
		},
	}
}
