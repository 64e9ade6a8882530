package fixture

import "strings"

// ForeignStock holds the half-width values of one foreign dividend record in
// output column order.
type ForeignStock struct {
	PaymentDate         string
	DomesticPaymentDate string
	LocalRecordDate     string
	Code                string
	Name                string
	Currency            string
	WithholdingRate     string
	UnitAmount          string
	Settlement          string
	Quantity            string
	Dividend            string
	ForeignTax          string
	ForeignFee          string
	NetSettlement       string
	DomesticTax         string
	Receipt             string
	DeclaredRateDate    string
	DeclaredRate        string
	FXRateDate          string
	FXRate              string
	DividendJPY         string
	ForeignTaxJPY       string
	TaxableJPY          string
	NationalTax         string
	LocalTax            string
	NationalTaxJPY      string
	LocalTaxJPY         string
	DomesticTaxRepeat   string

	// ArtifactAt inserts a renderer artifact line followed by a blank line
	// before this window offset (V2 only). Zero disables it.
	ArtifactAt int
}

// Apple is a typical US stock record.
var Apple = ForeignStock{
	PaymentDate:         "2023/11/16",
	DomesticPaymentDate: "2023/11/17",
	LocalRecordDate:     "2023/11/13",
	Code:                "AAPL",
	Name:                "アップル",
	Currency:            "USD",
	WithholdingRate:     "10.00",
	UnitAmount:          "0.24",
	Settlement:          "外貨",
	Quantity:            "100",
	Dividend:            "24.00",
	ForeignTax:          "2.40",
	ForeignFee:          "0.00",
	NetSettlement:       "21.60",
	DomesticTax:         "4.38",
	Receipt:             "17.22",
	DeclaredRateDate:    "2023/11/16",
	DeclaredRate:        "150.52",
	FXRateDate:          "2023/11/17",
	FXRate:              "150.98",
	DividendJPY:         "3,612",
	ForeignTaxJPY:       "361",
	TaxableJPY:          "3,251",
	NationalTax:         "3.31",
	LocalTax:            "1.07",
	NationalTaxJPY:      "497",
	LocalTaxJPY:         "162",
	DomesticTaxRepeat:   "4.38",
}

// Sentinel is printed for fields the V1 layout cannot carry.
const Sentinel = "-"

const (
	V1WindowLines = 112
	V2WindowLines = 56
)

// Expected returns the 28 fields the foreign extractors should produce.
func (s ForeignStock) Expected(v1 bool) []string {
	strip := func(v string) string { return strings.ReplaceAll(v, ",", "") }
	currency, settlement, quantity := s.Currency, s.Settlement, strip(s.Quantity)
	if v1 {
		currency, settlement, quantity = Sentinel, Sentinel, s.Quantity
	}
	return []string{
		s.PaymentDate, s.DomesticPaymentDate, s.LocalRecordDate, s.Code, s.Name,
		currency, s.WithholdingRate, s.UnitAmount, settlement, quantity,
		s.Dividend, s.ForeignTax, s.ForeignFee, s.NetSettlement, s.DomesticTax,
		s.Receipt, s.DeclaredRateDate, s.DeclaredRate, s.FXRateDate, s.FXRate,
		strip(s.DividendJPY), strip(s.ForeignTaxJPY), strip(s.TaxableJPY),
		s.NationalTax, s.LocalTax, strip(s.NationalTaxJPY), strip(s.LocalTaxJPY),
		s.DomesticTaxRepeat,
	}
}

var foreignLabels = []string{
	"分配通貨", "外国源泉税率（%）", "1単位あたり金額", "決済方法", "数量",
	"配当金等金額", "外国源泉徴収税額", "外国手数料", "外国精算金額（外貨）",
	"国内源泉徴収税額（外貨）", "受取金額", "申告レート", "為替レート",
	"国内課税所得額（円）", "所得税", "地方税",
}

// fill renders the window: values at their offsets, blanks at the listed
// offsets and label text everywhere else.
func fill(n int, values map[int]string, blanks []int) []string {
	lines := make([]string, n)
	isBlank := make(map[int]bool, len(blanks))
	for _, b := range blanks {
		isBlank[b] = true
	}
	for i := range lines {
		switch v, ok := values[i]; {
		case ok:
			lines[i] = "  " + v
		case isBlank[i]:
			lines[i] = ""
		default:
			lines[i] = foreignLabels[i%len(foreignLabels)]
		}
	}
	return lines
}

func row(values ...string) string { return strings.Join(values, "      ") }

// V1BlankOffsets lists the offsets the V1 layout always leaves blank.
var V1BlankOffsets = []int{
	1, 3, 5, 7, 9, 19, 21, 29, 31, 33, 35, 37, 39, 41, 43, 59, 61, 63,
	79, 81, 83, 85, 87, 89, 91, 93, 95, 106, 107, 108, 109, 110, 111,
}

// V1Window renders one 112-line V1 record window.
func V1Window(s ForeignStock) []string {
	return fill(V1WindowLines, map[int]string{
		0:  s.PaymentDate,
		2:  s.DomesticPaymentDate,
		4:  s.LocalRecordDate,
		6:  s.Code,
		8:  s.Name,
		20: row(s.WithholdingRate, s.UnitAmount),
		30: s.Quantity,
		32: s.Dividend,
		34: s.ForeignTax,
		36: s.ForeignFee,
		38: s.NetSettlement,
		40: s.DomesticTax,
		42: s.Receipt,
		60: row(s.DeclaredRateDate, s.DeclaredRate),
		62: row(s.FXRateDate, s.FXRate),
		80: s.DividendJPY,
		82: s.ForeignTaxJPY,
		84: s.TaxableJPY,
		86: s.NationalTax,
		88: s.LocalTax,
		90: s.NationalTaxJPY,
		92: s.LocalTaxJPY,
		94: s.DomesticTaxRepeat,
	}, V1BlankOffsets)
}

// V2BlankOffsets lists the offsets the V2 layout always leaves blank.
var V2BlankOffsets = []int{1, 4, 7, 10, 12, 17, 32, 36, 42, 50, 51, 52, 53, 54, 55}

// V2Window renders one 56-line V2 record window, with the renderer artifact
// spliced in when ArtifactAt is set.
func V2Window(s ForeignStock) []string {
	lines := fill(V2WindowLines, map[int]string{
		0:  s.PaymentDate,
		2:  s.DomesticPaymentDate,
		3:  s.LocalRecordDate,
		5:  s.Code,
		6:  s.Name,
		8:  s.Currency,
		9:  row(s.WithholdingRate, s.UnitAmount, s.Settlement),
		11: row(s.Quantity, s.Dividend, s.ForeignTax),
		13: s.ForeignFee,
		14: s.NetSettlement,
		15: s.DomesticTax,
		16: s.Receipt,
		28: s.DeclaredRateDate,
		29: s.DeclaredRate,
		30: s.FXRateDate,
		31: s.FXRate,
		33: s.DividendJPY,
		34: s.ForeignTaxJPY,
		35: s.TaxableJPY,
		37: s.NationalTax,
		38: s.LocalTax,
		39: s.NationalTaxJPY,
		40: s.LocalTaxJPY,
		41: s.DomesticTaxRepeat,
	}, V2BlankOffsets)
	if s.ArtifactAt > 0 && s.ArtifactAt < len(lines) {
		spliced := append([]string{}, lines[:s.ArtifactAt]...)
		spliced = append(spliced, " ■ ", "")
		lines = append(spliced, lines[s.ArtifactAt:]...)
	}
	return lines
}

const (
	foreignTitle      = "外国株式等配当金等のご案内"
	foreignV1Subtitle = "（兼）支払通知書"
)

// ForeignDocument renders a foreign notice with two records per page.
func ForeignDocument(v1 bool, stocks ...ForeignStock) []string {
	title := foreignTitle
	if v1 {
		title += foreignV1Subtitle
	}
	lines := []string{title, "", "発行日　2023年12月20日", "ＳＢＩ　太郎　様", ""}
	for i, s := range stocks {
		if i > 0 && i%2 == 0 {
			lines = append(lines, "（次ページへ続く）", "", title, "")
		}
		if v1 {
			lines = append(lines, V1Window(s)...)
		} else {
			lines = append(lines, V2Window(s)...)
		}
	}
	return append(lines, "以上")
}
