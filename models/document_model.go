package models

import (
	"enquiry-app/types"
	"time"

	"github.com/shopspring/decimal"
)

// DocumentTotals are frozen when the document is issued and never
// recomputed afterwards.
type DocumentTotals struct {
	AddedSupplierTotal      decimal.Decimal `json:"added_supplier_total" gorm:"type:decimal(20,4)"`
	AddedSupplierFinalTotal decimal.Decimal `json:"added_supplier_final_total" gorm:"type:decimal(20,4)"`
	AddedVatGroupValue      decimal.Decimal `json:"added_vat_group_value" gorm:"type:decimal(20,4)"`
	MarginValue             decimal.Decimal `json:"margin_value" gorm:"type:decimal(20,4)"`
	SubTotal                decimal.Decimal `json:"sub_total" gorm:"type:decimal(20,4)"`
	DiscountValue           decimal.Decimal `json:"discount_value" gorm:"type:decimal(20,4)"`
	AgentCommissionValue    decimal.Decimal `json:"agent_total_commission_value" gorm:"type:decimal(20,4)"`
	TotalQuote              decimal.Decimal `json:"total_quote" gorm:"type:decimal(20,4)"`
	VatGroupValue           decimal.Decimal `json:"vat_group_value" gorm:"type:decimal(20,4)"`
	FinalQuote              decimal.Decimal `json:"final_quote" gorm:"type:decimal(20,4)"`
	ConvertedQuote          decimal.Decimal `json:"converted_quote" gorm:"type:decimal(20,4)"`
}

type Quote struct {
	Base
	QuoteNo              string            `json:"quote_no" gorm:"uniqueIndex;size:20"`
	EnquiryID            types.SnowflakeID `json:"enquiry_id" gorm:"index"`
	CurrencyID           types.SnowflakeID `json:"currency_id"`
	VatGroupID           types.SnowflakeID `json:"vat_group_id"`
	VatPercentage        decimal.Decimal   `json:"vat_percentage" gorm:"type:decimal(9,4)"`
	Margin               decimal.Decimal   `json:"margin" gorm:"type:decimal(9,4)"`
	FreightCharges       decimal.Decimal   `json:"freight_charges" gorm:"type:decimal(20,4)"`
	PackingCharges       decimal.Decimal   `json:"packing_charges" gorm:"type:decimal(20,4)"`
	MiscCharges          decimal.Decimal   `json:"misc_charges" gorm:"type:decimal(20,4)"`
	Discount             decimal.Decimal   `json:"discount" gorm:"type:decimal(9,4)"`
	AgentTotalCommission decimal.Decimal   `json:"agent_total_commission" gorm:"type:decimal(9,4)"`
	CurrencyExchangeRate decimal.Decimal   `json:"currency_exchange_rate" gorm:"type:decimal(20,6)"`
	ValidTill            *time.Time        `json:"valid_till"`
	Notes                string            `json:"notes"`
	DocumentTotals
}

type ProformaInvoice struct {
	Base
	PINo                 string            `json:"pi_no" gorm:"uniqueIndex;size:20"`
	EnquiryID            types.SnowflakeID `json:"enquiry_id" gorm:"index"`
	QuoteID              types.SnowflakeID `json:"quote_id"`
	CurrencyID           types.SnowflakeID `json:"currency_id"`
	CustomerRefNo        string            `json:"customer_ref_no"`
	InvoiceDate          time.Time         `json:"invoice_date"`
	InvoiceDueDate       *time.Time        `json:"invoice_due_date"`
	BillingAddress       string            `json:"billing_address"`
	ShippingAddress      string            `json:"shipping_address"`
	PartialDelivery      bool              `json:"partial_delivery"`
	CountryOfOrigin      string            `json:"country_of_origin"`
	CountryOfDestination string            `json:"country_of_destination"`
	PaymentOption        string            `json:"payment_option"`
	DeliveryTerm         string            `json:"delivery_term"`
	TotalItems           int               `json:"total_items"`
	TotalQuantity        decimal.Decimal   `json:"total_quantity" gorm:"type:decimal(20,4)"`
	DocumentTotals
}

type SalesOrder struct {
	Base
	SONo              string            `json:"so_no" gorm:"uniqueIndex;size:20"`
	EnquiryID         types.SnowflakeID `json:"enquiry_id" gorm:"index"`
	ProformaInvoiceID types.SnowflakeID `json:"proforma_invoice_id"`
	CurrencyID        types.SnowflakeID `json:"currency_id"`
	CustomerPONo      string            `json:"customer_po_no"`
	OrderDate         time.Time         `json:"order_date"`
	ExpectedDelivery  *time.Time        `json:"expected_delivery"`
	DocumentTotals
}

// SupplierPO is one purchase order per shortlisted supplier with the
// supplier rollup frozen at issue time.
type SupplierPO struct {
	Base
	PONo               string            `json:"po_no" gorm:"uniqueIndex;size:20"`
	EnquiryID          types.SnowflakeID `json:"enquiry_id" gorm:"index"`
	SalesOrderID       types.SnowflakeID `json:"sales_order_id" gorm:"index"`
	SupplierID         types.SnowflakeID `json:"supplier_id" gorm:"index"`
	FinanceMeta        FinanceMeta       `json:"finance_meta" gorm:"embedded;embeddedPrefix:finance_"`
	ItemTotalQuantity  decimal.Decimal   `json:"item_total_quantity" gorm:"type:decimal(20,4)"`
	SupplierTotal      decimal.Decimal   `json:"supplier_total" gorm:"type:decimal(20,4)"`
	FreightCharges     decimal.Decimal   `json:"freight_charges" gorm:"type:decimal(20,4)"`
	PackingCharges     decimal.Decimal   `json:"packing_charges" gorm:"type:decimal(20,4)"`
	SubTotal           decimal.Decimal   `json:"sub_total" gorm:"type:decimal(20,4)"`
	VatPercentage      decimal.Decimal   `json:"vat_percentage" gorm:"type:decimal(9,4)"`
	VatAmount          decimal.Decimal   `json:"vat_amount" gorm:"type:decimal(20,4)"`
	SupplierFinalTotal decimal.Decimal   `json:"supplier_final_total" gorm:"type:decimal(20,4)"`
	Level              int               `json:"level"`
}

// Document types referenced by DocumentItem.
const (
	DocumentQuote           = "quote"
	DocumentProformaInvoice = "proforma_invoice"
	DocumentSalesOrder      = "sales_order"
	DocumentSupplierPO      = "supplier_po"
)

// DocumentItem links a document to the selections it was issued for.
type DocumentItem struct {
	Base
	DocumentType string            `json:"document_type" gorm:"index:idx_document_item,priority:1;size:32"`
	DocumentID   types.SnowflakeID `json:"document_id" gorm:"index:idx_document_item,priority:2"`
	SelectionID  types.SnowflakeID `json:"selection_id"`
	Quantity     string            `json:"quantity"`
	UnitPrice    decimal.Decimal   `json:"unit_price" gorm:"type:decimal(20,4)"`
}
