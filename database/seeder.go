// database/seeder.go
package database

import (
	"errors"

	"enquiry-app/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func RunSeeders(db *gorm.DB, log *zap.Logger) error {
	for _, seed := range []func(*gorm.DB) error{SeedCurrencies, SeedVatGroups, SeedPaymentTerms} {
		if err := seed(db); err != nil {
			return err
		}
	}
	log.Info("master data seeded")
	return nil
}

// seedOne creates row unless a record matching query already exists.
func seedOne(db *gorm.DB, existing interface{}, row interface{}, query string, args ...interface{}) error {
	err := db.Where(query, args...).First(existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(row).Error
	}
	return err
}

func SeedCurrencies(db *gorm.DB) error {
	currencies := []models.Currency{
		{Name: "US Dollar", ShortForm: "USD", Symbol: "$", IsActive: true},
		{Name: "Euro", ShortForm: "EUR", Symbol: "€", IsActive: true},
		{Name: "UAE Dirham", ShortForm: "AED", Symbol: "د.إ", IsActive: true},
		{Name: "Pound Sterling", ShortForm: "GBP", Symbol: "£", IsActive: true},
	}

	for i := range currencies {
		var existing models.Currency
		if err := seedOne(db, &existing, &currencies[i], "short_form = ?", currencies[i].ShortForm); err != nil {
			return err
		}
	}
	return nil
}

func SeedVatGroups(db *gorm.DB) error {
	groups := []models.VatGroup{
		{Name: "Exempt", Percentage: decimal.Zero, IsActive: true},
		{Name: "Standard 5%", Percentage: decimal.NewFromInt(5), IsActive: true},
		{Name: "Standard 10%", Percentage: decimal.NewFromInt(10), IsActive: true},
	}

	for i := range groups {
		var existing models.VatGroup
		if err := seedOne(db, &existing, &groups[i], "name = ?", groups[i].Name); err != nil {
			return err
		}
	}
	return nil
}

func SeedPaymentTerms(db *gorm.DB) error {
	terms := []models.PaymentTerm{
		{Name: "Net 30", NoOfDays: 30, IsActive: true},
		{Name: "Net 60", NoOfDays: 60, IsActive: true},
		{Name: "Net 90", NoOfDays: 90, IsActive: true},
	}

	for i := range terms {
		var existing models.PaymentTerm
		if err := seedOne(db, &existing, &terms[i], "name = ?", terms[i].Name); err != nil {
			return err
		}
	}
	return nil
}
