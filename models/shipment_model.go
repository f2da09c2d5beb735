package models

import (
	"enquiry-app/types"
	"time"

	"github.com/shopspring/decimal"
)

// Shipment levels gate the two billing phases.
const (
	ShipmentLevelPreBill    = 4
	ShipmentLevelPreInvoice = 5
)

const (
	ShipToWarehouse = "warehouse"
	ShipToCustomer  = "customer"
)

type Shipment struct {
	Base
	ShipmentNo            string            `json:"shipment_no" gorm:"uniqueIndex;size:20"`
	EnquiryID             types.SnowflakeID `json:"enquiry_id" gorm:"index"`
	SupplierPOID          types.SnowflakeID `json:"supplier_po_id" gorm:"index"`
	SupplierID            types.SnowflakeID `json:"supplier_id"`
	SelectionID           types.SnowflakeID `json:"selection_id" gorm:"index"`
	ShipQuantity          decimal.Decimal   `json:"ship_quantity" gorm:"type:decimal(20,4)"`
	ShipTo                string            `json:"ship_to" gorm:"size:16"`
	ShipmentDate          time.Time         `json:"shipment_date"`
	TrackingNo            string            `json:"tracking_no"`
	Level                 int               `json:"level" gorm:"index"`
	IsSupplierBillCreated bool              `json:"is_supplier_bill_created"`
	IsInvoiceBillCreated  bool              `json:"is_invoice_bill_created"`
	IsActive              bool              `json:"is_active"`
	IsDeleted             bool              `json:"is_deleted"`
}

const (
	BillTypeSupplier = "supplier"
	BillTypeInvoice  = "invoice"
)

type Bill struct {
	Base
	BillNo        string            `json:"bill_no" gorm:"uniqueIndex;size:20"`
	Type          string            `json:"type" gorm:"size:16"`
	EnquiryID     types.SnowflakeID `json:"enquiry_id" gorm:"index"`
	SupplierPOID  types.SnowflakeID `json:"supplier_po_id" gorm:"index"`
	SupplierID    types.SnowflakeID `json:"supplier_id"`
	BillDate      time.Time         `json:"bill_date"`
	SubTotal      decimal.Decimal   `json:"sub_total" gorm:"type:decimal(20,4)"`
	VatPercentage decimal.Decimal   `json:"vat_percentage" gorm:"type:decimal(9,4)"`
	VatAmount     decimal.Decimal   `json:"vat_amount" gorm:"type:decimal(20,4)"`
	Total         decimal.Decimal   `json:"total" gorm:"type:decimal(20,4)"`
	Lines         []BillShipment    `json:"lines" gorm:"foreignKey:BillID"`
}

type BillShipment struct {
	Base
	BillID       types.SnowflakeID `json:"bill_id" gorm:"index"`
	ShipmentID   types.SnowflakeID `json:"shipment_id" gorm:"index"`
	ShipQuantity decimal.Decimal   `json:"ship_quantity" gorm:"type:decimal(20,4)"`
	UnitPrice    decimal.Decimal   `json:"unit_price" gorm:"type:decimal(20,4)"`
	LineTotal    decimal.Decimal   `json:"line_total" gorm:"type:decimal(20,4)"`
}
