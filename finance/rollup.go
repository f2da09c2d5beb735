package finance

import "github.com/shopspring/decimal"

// Charges is the supplier scoped input of a rollup.
type Charges struct {
	SupplierTotal  *string
	FreightCharges *string
	PackingCharges *string
	VatPercentage  decimal.Decimal
}

type SupplierTotals struct {
	ItemTotalQuantity  decimal.Decimal `json:"item_total_quantity"`
	SupplierTotal      decimal.Decimal `json:"supplier_total"`
	FreightCharges     decimal.Decimal `json:"freight_charges"`
	PackingCharges     decimal.Decimal `json:"packing_charges"`
	SubTotal           decimal.Decimal `json:"sub_total"`
	VatPercentage      decimal.Decimal `json:"vat_percentage"`
	VatAmount          decimal.Decimal `json:"vat_group_value"`
	SupplierFinalTotal decimal.Decimal `json:"supplier_final_total"`
}

// SupplierRollup computes the totals of one supplier group:
//
//	subTotal           = supplierTotal + freight + packing
//	vatAmount          = round(subTotal * vat / 100, 2)
//	supplierFinalTotal = round(subTotal + vatAmount, 2)
func SupplierRollup(c Charges, quantities []string) (SupplierTotals, error) {
	supplierTotal, err := Coerce(c.SupplierTotal)
	if err != nil {
		return SupplierTotals{}, err
	}
	freight, err := Coerce(c.FreightCharges)
	if err != nil {
		return SupplierTotals{}, err
	}
	packing, err := Coerce(c.PackingCharges)
	if err != nil {
		return SupplierTotals{}, err
	}
	qty, err := Sum(quantities)
	if err != nil {
		return SupplierTotals{}, err
	}

	subTotal := supplierTotal.Add(freight).Add(packing)
	vat := Percent(subTotal, c.VatPercentage)

	return SupplierTotals{
		ItemTotalQuantity:  qty,
		SupplierTotal:      supplierTotal,
		FreightCharges:     freight,
		PackingCharges:     packing,
		SubTotal:           subTotal,
		VatPercentage:      c.VatPercentage,
		VatAmount:          vat,
		SupplierFinalTotal: Round2(subTotal.Add(vat)),
	}, nil
}

type EnquiryTotals struct {
	AddedSupplierTotal      decimal.Decimal `json:"added_supplier_total"`
	AddedFreightCharges     decimal.Decimal `json:"added_freight_charges"`
	AddedPackingCharges     decimal.Decimal `json:"added_packing_charges"`
	AddedSubTotal           decimal.Decimal `json:"added_sub_total"`
	AddedVatGroupValue      decimal.Decimal `json:"added_vat_group_value"`
	AddedSupplierFinalTotal decimal.Decimal `json:"added_supplier_final_total"`
}

// EnquiryRollup sums supplier groups. Callers pass shortlisted groups only.
func EnquiryRollup(groups []SupplierTotals) EnquiryTotals {
	var t EnquiryTotals
	for _, g := range groups {
		t.AddedSupplierTotal = t.AddedSupplierTotal.Add(g.SupplierTotal)
		t.AddedFreightCharges = t.AddedFreightCharges.Add(g.FreightCharges)
		t.AddedPackingCharges = t.AddedPackingCharges.Add(g.PackingCharges)
		t.AddedVatGroupValue = t.AddedVatGroupValue.Add(g.VatAmount)
		t.AddedSupplierFinalTotal = t.AddedSupplierFinalTotal.Add(g.SupplierFinalTotal)
	}
	t.AddedSubTotal = Round2(t.AddedSupplierTotal.Add(t.AddedFreightCharges).Add(t.AddedPackingCharges))
	t.AddedVatGroupValue = Round2(t.AddedVatGroupValue)
	t.AddedSupplierFinalTotal = Round2(t.AddedSupplierFinalTotal)
	return t
}

// Line is one priced quantity.
type Line struct {
	Quantity  string
	UnitPrice decimal.Decimal
}

// LinesTotal returns round(sum(quantity * unitPrice), 2).
func LinesTotal(lines []Line) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, l := range lines {
		q, err := CoerceString(l.Quantity)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(q.Mul(l.UnitPrice))
	}
	return Round2(total), nil
}
