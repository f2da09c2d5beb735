package finance

import "github.com/shopspring/decimal"

// QuoteInput carries the sales side charges. Margin, Discount,
// AgentCommission and VatPercentage are percentages.
type QuoteInput struct {
	Enquiry         EnquiryTotals
	Margin          decimal.Decimal
	FreightCharges  decimal.Decimal
	PackingCharges  decimal.Decimal
	MiscCharges     decimal.Decimal
	Discount        decimal.Decimal
	AgentCommission decimal.Decimal
	VatPercentage   decimal.Decimal
	ExchangeRate    decimal.Decimal
}

type QuoteTotals struct {
	AddedSupplierTotal      decimal.Decimal `json:"added_supplier_total"`
	AddedSupplierFinalTotal decimal.Decimal `json:"added_supplier_final_total"`
	AddedVatGroupValue      decimal.Decimal `json:"added_vat_group_value"`
	MarginValue             decimal.Decimal `json:"margin_value"`
	SubTotal                decimal.Decimal `json:"sub_total"`
	DiscountValue           decimal.Decimal `json:"discount_value"`
	AgentCommissionValue    decimal.Decimal `json:"agent_total_commission_value"`
	TotalQuote              decimal.Decimal `json:"total_quote"`
	VatGroupValue           decimal.Decimal `json:"vat_group_value"`
	FinalQuote              decimal.Decimal `json:"final_quote"`
	ConvertedQuote          decimal.Decimal `json:"converted_quote"`
}

// ComputeQuote prices the shortlisted supplier cost for the customer.
// The margin is applied on the VAT inclusive supplier cost; each derived
// value is rounded once.
func ComputeQuote(in QuoteInput) QuoteTotals {
	base := in.Enquiry.AddedSupplierFinalTotal
	margin := Percent(base, in.Margin)
	subTotal := Round2(base.Add(margin).Add(in.FreightCharges).Add(in.PackingCharges).Add(in.MiscCharges))
	discount := Percent(subTotal, in.Discount)
	afterDiscount := subTotal.Sub(discount)
	agent := Percent(afterDiscount, in.AgentCommission)
	total := Round2(afterDiscount.Add(agent))
	vat := Percent(total, in.VatPercentage)
	final := Round2(total.Add(vat))

	converted := final
	if in.ExchangeRate.IsPositive() {
		converted = Round2(final.Mul(in.ExchangeRate))
	}

	return QuoteTotals{
		AddedSupplierTotal:      in.Enquiry.AddedSupplierTotal,
		AddedSupplierFinalTotal: base,
		AddedVatGroupValue:      in.Enquiry.AddedVatGroupValue,
		MarginValue:             margin,
		SubTotal:                subTotal,
		DiscountValue:           discount,
		AgentCommissionValue:    agent,
		TotalQuote:              total,
		VatGroupValue:           vat,
		FinalQuote:              final,
		ConvertedQuote:          converted,
	}
}
