// Package fixture renders synthetic dividend notices in the same line layout the
// PDF text renderer produces. Tests across the dividend packages build their
// documents here so that the layout lives in one place.
package fixture

import (
	"fmt"
	"strings"
	"time"
)

// JapaneseStock holds the half-width values of one domestic dividend record.
type JapaneseStock struct {
	Name        string
	Code        string
	PaymentDate time.Time
	RecordDate  time.Time
	Unit        string
	Quantity    string
	Gross       string
	NationalTax string
	LocalTax    string
	Rounding    string
	Net         string

	// DropNameBlank renders the block without the blank line between the
	// stock name and the stock code, a drift seen with some renderer versions.
	DropNameBlank bool
}

// Expected returns the field list the Japanese extractor should produce.
func (s JapaneseStock) Expected() []string {
	return []string{
		s.Name,
		s.Code,
		JapaneseDate(s.PaymentDate, false),
		s.Unit,
		strings.ReplaceAll(s.Quantity, ",", ""),
		strings.ReplaceAll(s.Gross, ",", ""),
		strings.ReplaceAll(s.NationalTax, ",", ""),
		strings.ReplaceAll(s.LocalTax, ",", ""),
		strings.ReplaceAll(s.Rounding, ",", ""),
		strings.ReplaceAll(s.Net, ",", ""),
	}
}

// MitsubishiCorp is the record printed on the reference notice.
var MitsubishiCorp = JapaneseStock{
	Name:        "三菱商事",
	Code:        "8058",
	PaymentDate: time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
	RecordDate:  time.Date(2023, 9, 30, 0, 0, 0, 0, time.UTC),
	Unit:        "105.0000000",
	Quantity:    "4",
	Gross:       "420",
	NationalTax: "64",
	LocalTax:    "21",
	Rounding:    "0",
	Net:         "335",
}

const (
	japaneseTitle   = "株式等利益剰余金配当金のお知らせ"
	japaneseFooter  = "お問い合わせ先　ＳＢＩ証券カスタマーサービスセンター"
	japanesePageEnd = "（以上）"
	blankRemainder  = "以下余白"
)

// JapaneseHeaderLines is the number of lines printed above the first block.
const JapaneseHeaderLines = 5

// JapaneseBlock renders the 23-line block of one record (22 with DropNameBlank).
func JapaneseBlock(s JapaneseStock) []string {
	lines := []string{s.Name}
	if !s.DropNameBlank {
		lines = append(lines, "")
	}
	lines = append(lines,
		"（"+Wide(s.Code)+"　　）",
		"",
		"お支払日　　　　　　配当単価（円）　　　　数量（株数・口数）",
		"",
		"配当金額（税引前）（円）　　所得税（円）　　地方税（円）",
		"",
		"端数処理代金（円）　　　　　お受取金額（円）",
		"",
		"受入区分",
		"",
		"基準日",
		JapaneseDate(s.PaymentDate, true)+" "+Pad(s.Unit, 4)+" "+Pad(s.Quantity, 14),
		"",
		Pad(s.Gross, 12)+" "+Pad(s.NationalTax, 11)+" "+Pad(s.LocalTax, 11),
		"",
		Pad(s.Rounding, 12)+" "+Pad(s.Net, 12),
		"",
		"特定口座配当等受入対象",
		"",
		JapaneseDate(s.RecordDate, true),
		"",
	)
	return lines
}

// JapanesePage renders one page holding one or two records. A page with a
// single record prints the blank remainder phrase in the second slot.
func JapanesePage(first JapaneseStock, second *JapaneseStock) []string {
	lines := []string{
		japaneseTitle,
		"",
		"口座番号　１２３－１２３４５６７",
		"ＳＢＩ　太郎　様",
		"",
	}
	lines = append(lines, JapaneseBlock(first)...)
	if second != nil {
		lines = append(lines, JapaneseBlock(*second)...)
	} else {
		lines = append(lines, blankRemainder, "")
	}
	return append(lines, japaneseFooter, japanesePageEnd)
}

// JapaneseDocument renders pages of records two at a time; an odd trailing
// record ends up alone on the last page.
func JapaneseDocument(stocks ...JapaneseStock) []string {
	var lines []string
	for i := 0; i < len(stocks); i += 2 {
		if i+1 < len(stocks) {
			second := stocks[i+1]
			lines = append(lines, JapanesePage(stocks[i], &second)...)
		} else {
			lines = append(lines, JapanesePage(stocks[i], nil)...)
		}
	}
	return lines
}

// JapaneseDate prints a date the way the notice does: full-width digits with
// single-digit months and days padded by an ideographic space. When wide is
// false the half-width form the normalizer yields is returned.
func JapaneseDate(t time.Time, wide bool) string {
	s := fmt.Sprintf("%d年%2d月%2d日", t.Year(), int(t.Month()), t.Day())
	if wide {
		return Wide(s)
	}
	return s
}

// Wide converts printable ASCII to full-width and spaces to ideographic spaces.
func Wide(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '　'
		case r > ' ' && r <= '~':
			return r + 0xFEE0
		default:
			return r
		}
	}, s)
}

// Pad renders value in full-width, right aligned behind n ideographic spaces.
func Pad(value string, n int) string {
	return strings.Repeat("　", n) + Wide(value)
}
