package fixture

import (
	"fmt"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

// Generator produces randomized but internally consistent records using gofakeit.
type Generator struct {
	faker *gofakeit.Faker
}

// NewGenerator creates a generator with a fixed seed for reproducible documents.
func NewGenerator(seed int64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

var japaneseNames = []string{
	"三菱商事", "トヨタ自動車", "日本電信電話", "三井住友フィナンシャルグループ",
	"ＫＤＤＩ", "武田薬品工業", "日本たばこ産業", "三菱ＵＦＪフィナンシャル・グループ",
}

var foreignNames = []struct{ code, name string }{
	{"AAPL", "アップル"}, {"MSFT", "マイクロソフト"}, {"KO", "コカ・コーラ"},
	{"JNJ", "ジョンソン・エンド・ジョンソン"}, {"VYM", "バンガード・米国高配当株式ＥＴＦ"},
}

// JapaneseStock returns a domestic record whose amounts reconcile:
// gross - national - local + rounding = net.
func (g *Generator) JapaneseStock() JapaneseStock {
	unitYen := g.faker.Number(1, 200)
	qty := int64(g.faker.Number(1, 3000))
	gross := int64(unitYen) * qty
	national := gross * 15315 / 100000
	local := gross * 5 / 100
	pay := g.faker.DateRange(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC))

	return JapaneseStock{
		Name:        japaneseNames[g.faker.Number(0, len(japaneseNames)-1)],
		Code:        strconv.Itoa(g.faker.Number(1300, 9999)),
		PaymentDate: pay,
		RecordDate:  pay.AddDate(0, -2, 0),
		Unit:        fmt.Sprintf("%d.0000000", unitYen),
		Quantity:    GroupThousands(qty),
		Gross:       GroupThousands(gross),
		NationalTax: GroupThousands(national),
		LocalTax:    GroupThousands(local),
		Rounding:    "0",
		Net:         GroupThousands(gross - national - local),
	}
}

// ForeignStock returns a foreign record with plausible values.
func (g *Generator) ForeignStock() ForeignStock {
	ticker := foreignNames[g.faker.Number(0, len(foreignNames)-1)]
	pay := g.faker.DateRange(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC))
	date := func(t time.Time) string { return t.Format("2006/01/02") }

	qty := int64(g.faker.Number(1, 500))
	unit := g.faker.Float64Range(0.05, 2.0)
	dividend := unit * float64(qty)
	foreignTax := dividend * 0.10
	rate := g.faker.Float64Range(100, 160)
	dividendJPY := int64(dividend * rate)
	foreignTaxJPY := int64(foreignTax * rate)
	taxable := dividendJPY - foreignTaxJPY
	nationalJPY := taxable * 15315 / 100000
	localJPY := taxable * 5 / 100
	domesticTax := float64(nationalJPY+localJPY) / rate

	money := func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

	return ForeignStock{
		PaymentDate:         date(pay),
		DomesticPaymentDate: date(pay.AddDate(0, 0, 1)),
		LocalRecordDate:     date(pay.AddDate(0, 0, -3)),
		Code:                ticker.code,
		Name:                ticker.name,
		Currency:            "USD",
		WithholdingRate:     "10.00",
		UnitAmount:          strconv.FormatFloat(unit, 'f', 4, 64),
		Settlement:          "外貨",
		Quantity:            strconv.FormatInt(qty, 10),
		Dividend:            money(dividend),
		ForeignTax:          money(foreignTax),
		ForeignFee:          "0.00",
		NetSettlement:       money(dividend - foreignTax),
		DomesticTax:         money(domesticTax),
		Receipt:             money(dividend - foreignTax - domesticTax),
		DeclaredRateDate:    date(pay),
		DeclaredRate:        money(rate),
		FXRateDate:          date(pay.AddDate(0, 0, 1)),
		FXRate:              money(rate),
		DividendJPY:         GroupThousands(dividendJPY),
		ForeignTaxJPY:       GroupThousands(foreignTaxJPY),
		TaxableJPY:          GroupThousands(taxable),
		NationalTax:         money(float64(nationalJPY) / rate),
		LocalTax:            money(float64(localJPY) / rate),
		NationalTaxJPY:      GroupThousands(nationalJPY),
		LocalTaxJPY:         GroupThousands(localJPY),
		DomesticTaxRepeat:   money(domesticTax),
	}
}

// GroupThousands formats n with comma thousands separators.
func GroupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if n < 0 {
		neg, s = true, s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		s = "-" + s
	}
	return s
}
