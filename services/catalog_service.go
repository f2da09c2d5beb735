package services

import (
	"context"
	"strings"

	"enquiry-app/apperr"
	"enquiry-app/finance"
	"enquiry-app/models"
	"enquiry-app/notification"
	"enquiry-app/repositories"
	"enquiry-app/types"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CatalogService maintains suppliers and their priced items, the source
// of candidates for enquiry items.
type CatalogService struct {
	base
}

func NewCatalogService(db *gorm.DB, log *zap.Logger, pub notification.Publisher) *CatalogService {
	return &CatalogService{base: newBase(db, log, pub)}
}

type SupplierInput struct {
	CompanyName string            `json:"company_name" validate:"required"`
	Email       string            `json:"email" validate:"omitempty,email"`
	Phone       string            `json:"phone"`
	CurrencyID  types.SnowflakeID `json:"currency_id"`
	Level       int               `json:"level"`
	IsApproved  bool              `json:"is_approved"`
}

func (s *CatalogService) CreateSupplier(ctx context.Context, actor models.Actor, in SupplierInput) (*models.Supplier, error) {
	var supplier *models.Supplier
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		supplierNo, err := repositories.NewNumberRepository(tx).Generate(&models.Supplier{}, "supplier_no", repositories.PrefixSupplier)
		if err != nil {
			return err
		}

		supplier = &models.Supplier{
			SupplierNo:     supplierNo,
			OrganisationID: actor.OrganisationID,
			CompanyName:    strings.TrimSpace(in.CompanyName),
			Email:          in.Email,
			Phone:          in.Phone,
			CurrencyID:     in.CurrencyID,
			Level:          in.Level,
			IsApproved:     in.IsApproved,
			IsActive:       true,
		}
		supplier.CreatedBy = actor.UserID
		supplier.UpdatedBy = actor.UserID
		return repositories.NewMasterRepository(tx).CreateSupplier(supplier)
	})
	if err != nil {
		return nil, err
	}
	return supplier, nil
}

type SupplierItemInput struct {
	PartNumber string `json:"part_number" validate:"required"`
	PartDesc   string `json:"part_desc"`
	HSCode     string `json:"hscode"`
	UnitPrice  string `json:"unit_price"`
	Delivery   string `json:"delivery"`
	Notes      string `json:"notes"`
}

func (in SupplierItemInput) apply(item *models.SupplierItem) error {
	if strings.TrimSpace(in.PartNumber) == "" {
		return apperr.NewValidation("part number is required")
	}
	if _, err := finance.CoerceString(in.UnitPrice); err != nil {
		return err
	}
	item.PartNumber = strings.TrimSpace(in.PartNumber)
	item.PartNumberCode = PartNumberCode(item.PartNumber)
	item.PartDesc = in.PartDesc
	item.HSCode = in.HSCode
	item.UnitPrice = in.UnitPrice
	item.Delivery = in.Delivery
	item.Notes = in.Notes
	return nil
}

func (s *CatalogService) CreateSupplierItem(ctx context.Context, actor models.Actor, supplierID types.SnowflakeID, in SupplierItemInput) (*models.SupplierItem, error) {
	master := repositories.NewMasterRepository(s.db.WithContext(ctx))
	if _, err := master.FindSupplier(supplierID); err != nil {
		return nil, notFound(err, "Supplier")
	}

	item := &models.SupplierItem{SupplierID: supplierID}
	if err := in.apply(item); err != nil {
		return nil, err
	}
	item.CreatedBy = actor.UserID
	item.UpdatedBy = actor.UserID
	if err := master.CreateSupplierItem(item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateSupplierItem changes the catalog. Selections without a captured
// final price follow the new price in live rollups.
func (s *CatalogService) UpdateSupplierItem(ctx context.Context, actor models.Actor, id types.SnowflakeID, in SupplierItemInput) (*models.SupplierItem, error) {
	master := repositories.NewMasterRepository(s.db.WithContext(ctx))
	item, err := master.FindSupplierItem(id)
	if err != nil {
		return nil, notFound(err, "Supplier item")
	}
	if err := in.apply(item); err != nil {
		return nil, err
	}
	if err := master.UpdateSupplierItem(item, actor.UserID); err != nil {
		return nil, err
	}
	return item, nil
}
