package models

import (
	"enquiry-app/types"
	"time"
)

type Lead struct {
	Base
	LeadNo         string            `json:"lead_no" gorm:"uniqueIndex;size:20"`
	OrganisationID string            `json:"organisation_id" gorm:"index;size:64"`
	CompanyName    string            `json:"company_name" gorm:"size:255"`
	ContactName    string            `json:"contact_name"`
	Email          string            `json:"email"`
	Phone          string            `json:"phone"`
	SalesPerson    string            `json:"sales_person"`
	CurrencyID     types.SnowflakeID `json:"currency_id"`
	DueDate        *time.Time        `json:"due_date"`
	IsQualified    bool              `json:"is_qualified"`
	IsActive       bool              `json:"is_active"`
	IsDeleted      bool              `json:"is_deleted"`
}

type Enquiry struct {
	Base
	EnquiryNo           string            `json:"enquiry_no" gorm:"uniqueIndex;size:20"`
	OrganisationID      string            `json:"organisation_id" gorm:"index;size:64"`
	LeadID              types.SnowflakeID `json:"lead_id" gorm:"index"`
	CurrencyID          types.SnowflakeID `json:"currency_id"`
	Description         string            `json:"description"`
	DueDate             *time.Time        `json:"due_date"`
	Level               int               `json:"level" gorm:"index"`
	StageName           string            `json:"stage_name"`
	IsItemAdded         bool              `json:"is_item_added"`
	IsItemShortListed   bool              `json:"is_item_short_listed"`
	IsQuoteCreated      bool              `json:"is_quote_created"`
	IsPiCreated         bool              `json:"is_pi_created"`
	IsSalesOrderCreated bool              `json:"is_sales_order_created"`
	IsSupplierPOCreated bool              `json:"is_supplier_po_created"`
	IsBilled            bool              `json:"is_billed"`
	IsActive            bool              `json:"is_active"`
	IsDeleted           bool              `json:"is_deleted"`
	Version             int               `json:"version"`
}

type EnquiryItem struct {
	Base
	EnquiryID      types.SnowflakeID `json:"enquiry_id" gorm:"index"`
	PartNumber     string            `json:"part_number"`
	PartNumberCode string            `json:"part_number_code" gorm:"index;size:128"`
	PartDesc       string            `json:"part_desc"`
	HSCode         string            `json:"hscode"`
	UnitPrice      string            `json:"unit_price"`
	Quantity       string            `json:"quantity"`
	Delivery       string            `json:"delivery"`
	Notes          string            `json:"notes"`
	IsDeleted      bool              `json:"is_deleted"`
}
