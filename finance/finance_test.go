package finance

import (
	"testing"

	"enquiry-app/apperr"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCoerceTreatsMissingAsZero(t *testing.T) {
	for _, in := range []*string{nil, str(""), str("null"), str("  ")} {
		d, err := Coerce(in)
		require.NoError(t, err)
		assert.True(t, d.IsZero())
	}

	d, err := Coerce(str("12.5"))
	require.NoError(t, err)
	assert.Equal(t, "12.5", d.String())
}

func TestCoerceRejectsGarbage(t *testing.T) {
	_, err := Coerce(str("twelve"))
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestSupplierRollup(t *testing.T) {
	totals, err := SupplierRollup(Charges{
		SupplierTotal:  str("100"),
		FreightCharges: str("20"),
		PackingCharges: str("10"),
		VatPercentage:  dec("10"),
	}, []string{"10"})
	require.NoError(t, err)

	assert.Equal(t, "130.00", totals.SubTotal.StringFixed(2))
	assert.Equal(t, "13.00", totals.VatAmount.StringFixed(2))
	assert.Equal(t, "143.00", totals.SupplierFinalTotal.StringFixed(2))
	assert.Equal(t, "10", totals.ItemTotalQuantity.String())
}

func TestSupplierRollupWithNullCharges(t *testing.T) {
	totals, err := SupplierRollup(Charges{
		SupplierTotal:  str("null"),
		FreightCharges: nil,
		PackingCharges: str(""),
		VatPercentage:  dec("5"),
	}, []string{"", "2"})
	require.NoError(t, err)

	assert.True(t, totals.SupplierFinalTotal.IsZero())
	assert.Equal(t, "2", totals.ItemTotalQuantity.String())
}

func TestSupplierRollupIsStable(t *testing.T) {
	c := Charges{SupplierTotal: str("33.333"), FreightCharges: str("1.111"), VatPercentage: dec("7.5")}
	first, err := SupplierRollup(c, []string{"3"})
	require.NoError(t, err)
	second, err := SupplierRollup(c, []string{"3"})
	require.NoError(t, err)

	assert.True(t, first.SupplierFinalTotal.Equal(second.SupplierFinalTotal))
	assert.Equal(t, "2.58", first.VatAmount.StringFixed(2))
}

func TestEnquiryRollup(t *testing.T) {
	a, _ := SupplierRollup(Charges{SupplierTotal: str("100"), FreightCharges: str("20"), PackingCharges: str("10"), VatPercentage: dec("10")}, []string{"10"})
	b, _ := SupplierRollup(Charges{SupplierTotal: str("50"), VatPercentage: dec("5")}, []string{"1"})

	totals := EnquiryRollup([]SupplierTotals{a, b})
	assert.Equal(t, "150.00", totals.AddedSupplierTotal.StringFixed(2))
	assert.Equal(t, "180.00", totals.AddedSubTotal.StringFixed(2))
	assert.Equal(t, "15.50", totals.AddedVatGroupValue.StringFixed(2))
	assert.Equal(t, "195.50", totals.AddedSupplierFinalTotal.StringFixed(2))

	assert.True(t, EnquiryRollup(nil).AddedSupplierFinalTotal.IsZero())
}

func TestComputeQuote(t *testing.T) {
	q := ComputeQuote(QuoteInput{
		Enquiry:         EnquiryTotals{AddedSupplierFinalTotal: dec("143")},
		Margin:          dec("10"),
		FreightCharges:  dec("5.7"),
		Discount:        dec("0"),
		AgentCommission: dec("0"),
		VatPercentage:   dec("5"),
		ExchangeRate:    dec("2"),
	})

	assert.Equal(t, "14.30", q.MarginValue.StringFixed(2))
	assert.Equal(t, "163.00", q.SubTotal.StringFixed(2))
	assert.Equal(t, "163.00", q.TotalQuote.StringFixed(2))
	assert.Equal(t, "8.15", q.VatGroupValue.StringFixed(2))
	assert.Equal(t, "171.15", q.FinalQuote.StringFixed(2))
	assert.Equal(t, "342.30", q.ConvertedQuote.StringFixed(2))
}

func TestComputeQuoteDiscountAndAgent(t *testing.T) {
	q := ComputeQuote(QuoteInput{
		Enquiry:         EnquiryTotals{AddedSupplierFinalTotal: dec("200")},
		Discount:        dec("10"),
		AgentCommission: dec("5"),
	})

	assert.Equal(t, "20.00", q.DiscountValue.StringFixed(2))
	assert.Equal(t, "9.00", q.AgentCommissionValue.StringFixed(2))
	assert.Equal(t, "189.00", q.TotalQuote.StringFixed(2))
	assert.Equal(t, "189.00", q.ConvertedQuote.StringFixed(2))
}

func TestCompareColor(t *testing.T) {
	terms := Terms{PaymentOption: DeferredPayment, DeliveryTerm: "FOB", PaymentTermsID: 7}

	three := CompareFilter{PaymentOption: DeferredPayment, DeliveryTerm: "FOB", PaymentTermsID: 7}
	assert.Equal(t, ColorMatch, three.Color(terms))
	three.PaymentTermsID = 8
	assert.Equal(t, ColorMismatch, three.Color(terms))

	two := CompareFilter{PaymentOption: DeferredPayment, DeliveryTerm: "FOB"}
	assert.Equal(t, ColorMatch, two.Color(Terms{PaymentOption: DeferredPayment, DeliveryTerm: "FOB", PaymentTermsID: 99}))
	assert.Equal(t, ColorMismatch, two.Color(Terms{PaymentOption: "Advance", DeliveryTerm: "FOB"}))

	assert.Equal(t, "", CompareFilter{PaymentOption: "Advance"}.Color(terms))
	assert.False(t, CompareFilter{}.Active())
}

func TestEffectiveUnitPrice(t *testing.T) {
	p, err := EffectiveUnitPrice(str("7.5"), "5")
	require.NoError(t, err)
	assert.Equal(t, "7.5", p.String())

	p, err = EffectiveUnitPrice(str(""), "5")
	require.NoError(t, err)
	assert.Equal(t, "5", p.String())

	p, err = EffectiveUnitPrice(nil, "")
	require.NoError(t, err)
	assert.True(t, p.IsZero())
}

func TestLinesTotal(t *testing.T) {
	total, err := LinesTotal([]Line{{Quantity: "10", UnitPrice: dec("5")}, {Quantity: "3", UnitPrice: dec("0.333")}})
	require.NoError(t, err)
	assert.Equal(t, "51.00", total.StringFixed(2))
}

func TestCurrencyLabel(t *testing.T) {
	assert.Equal(t, "USD($)", CurrencyLabel("USD", "$"))
}
