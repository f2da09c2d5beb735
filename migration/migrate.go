package migration

import (
	"enquiry-app/models"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Currency{},
		&models.VatGroup{},
		&models.PaymentTerm{},
		&models.Supplier{},
		&models.SupplierItem{},
		&models.Lead{},
		&models.Enquiry{},
		&models.EnquiryItem{},
		&models.SupplierSelection{},
		&models.Quote{},
		&models.ProformaInvoice{},
		&models.SalesOrder{},
		&models.SupplierPO{},
		&models.DocumentItem{},
		&models.Shipment{},
		&models.Bill{},
		&models.BillShipment{},
		&models.ActivityLog{},
		&models.MailLog{},
	)
}
