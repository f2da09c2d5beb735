package models

import "enquiry-app/types"

// ApprovedSupplierLevel is the tier whose catalog items are offered as
// candidates for enquiry items.
const ApprovedSupplierLevel = 3

type Supplier struct {
	Base
	SupplierNo     string            `json:"supplier_no" gorm:"uniqueIndex;size:20"`
	OrganisationID string            `json:"organisation_id" gorm:"index;size:64"`
	CompanyName    string            `json:"company_name"`
	Email          string            `json:"email"`
	Phone          string            `json:"phone"`
	CurrencyID     types.SnowflakeID `json:"currency_id"`
	Level          int               `json:"level"`
	IsApproved     bool              `json:"is_approved"`
	IsActive       bool              `json:"is_active"`
	IsDeleted      bool              `json:"is_deleted"`
}

type SupplierItem struct {
	Base
	SupplierID     types.SnowflakeID `json:"supplier_id" gorm:"index"`
	PartNumber     string            `json:"part_number"`
	PartNumberCode string            `json:"part_number_code" gorm:"index;size:128"`
	PartDesc       string            `json:"part_desc"`
	HSCode         string            `json:"hscode"`
	UnitPrice      string            `json:"unit_price"`
	Delivery       string            `json:"delivery"`
	Notes          string            `json:"notes"`
	IsDeleted      bool              `json:"is_deleted"`
}
