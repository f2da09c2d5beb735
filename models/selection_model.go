package models

import "enquiry-app/types"

// FinanceMeta is supplier scoped: every selection of one supplier inside an
// enquiry carries the same values. The charge fields stay text because
// upstream forms send "", "null" or nothing at all.
type FinanceMeta struct {
	SupplierTotal  *string           `json:"supplier_total"`
	FreightCharges *string           `json:"freight_charges"`
	PackingCharges *string           `json:"packing_charges"`
	VatGroupID     types.SnowflakeID `json:"vat_group_id"`
	PaymentTermsID types.SnowflakeID `json:"payment_terms_id"`
	PaymentOption  string            `json:"payment_option"`
	DeliveryTerm   string            `json:"delivery_term"`
	CurrencyID     types.SnowflakeID `json:"currency_id"`
	Remarks        string            `json:"remarks"`
}

// FinalItemDetails overrides the catalog item when set.
type FinalItemDetails struct {
	UnitPrice *string `json:"unit_price"`
	PartDesc  string  `json:"part_desc"`
	Delivery  string  `json:"delivery"`
	Notes     string  `json:"notes"`
}

type SupplierSelection struct {
	Base
	EnquiryID        types.SnowflakeID `json:"enquiry_id" gorm:"uniqueIndex:idx_selection_triple,priority:1"`
	EnquiryItemID    types.SnowflakeID `json:"enquiry_item_id" gorm:"uniqueIndex:idx_selection_triple,priority:2"`
	SupplierID       types.SnowflakeID `json:"supplier_id" gorm:"uniqueIndex:idx_selection_triple,priority:3"`
	SupplierItemID   types.SnowflakeID `json:"supplier_item_id" gorm:"uniqueIndex:idx_selection_triple,priority:4"`
	Quantity         string            `json:"quantity"`
	IsShortListed    bool              `json:"is_short_listed"`
	IsSkipped        bool              `json:"is_skipped"`
	IsMailSent       bool              `json:"is_mail_sent"`
	HasFinanceMeta   bool              `json:"has_finance_meta"`
	FinanceMeta      FinanceMeta       `json:"finance_meta" gorm:"embedded;embeddedPrefix:finance_"`
	FinalItemDetails FinalItemDetails  `json:"final_item_details" gorm:"embedded;embeddedPrefix:final_"`
	Version          int               `json:"version"`
}

func (SupplierSelection) TableName() string {
	return "enquiry_supplier_selected_items"
}
