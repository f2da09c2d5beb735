package models

import "github.com/shopspring/decimal"

type Currency struct {
	Base
	Name      string `json:"name"`
	ShortForm string `json:"short_form" gorm:"uniqueIndex;size:10"`
	Symbol    string `json:"symbol"`
	IsActive  bool   `json:"is_active"`
}

type VatGroup struct {
	Base
	Name       string          `json:"name" gorm:"uniqueIndex;size:64"`
	Percentage decimal.Decimal `json:"percentage" gorm:"type:decimal(9,4)"`
	IsActive   bool            `json:"is_active"`
}

type PaymentTerm struct {
	Base
	Name     string `json:"name" gorm:"uniqueIndex;size:64"`
	NoOfDays int    `json:"no_of_days"`
	IsActive bool   `json:"is_active"`
}
