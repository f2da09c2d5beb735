package repositories

import (
	"enquiry-app/models"
	"enquiry-app/types"

	"gorm.io/gorm"
)

// MasterRepository reads suppliers, their catalog and the currency, VAT and
// payment term lookups.
type MasterRepository struct {
	db *gorm.DB
}

func NewMasterRepository(db *gorm.DB) *MasterRepository {
	return &MasterRepository{db: db}
}

func (r *MasterRepository) CreateSupplier(s *models.Supplier) error {
	return r.db.Create(s).Error
}

func (r *MasterRepository) FindSupplier(id types.SnowflakeID) (*models.Supplier, error) {
	var s models.Supplier
	if err := r.db.Where("id = ? AND is_deleted = ?", id, false).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *MasterRepository) SuppliersByIDs(ids []types.SnowflakeID) (map[types.SnowflakeID]models.Supplier, error) {
	out := make(map[types.SnowflakeID]models.Supplier, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var suppliers []models.Supplier
	if err := r.db.Where("id IN ?", ids).Find(&suppliers).Error; err != nil {
		return nil, err
	}
	for _, s := range suppliers {
		out[s.ID] = s
	}
	return out, nil
}

func (r *MasterRepository) CreateSupplierItem(item *models.SupplierItem) error {
	return r.db.Create(item).Error
}

func (r *MasterRepository) FindSupplierItem(id types.SnowflakeID) (*models.SupplierItem, error) {
	var item models.SupplierItem
	if err := r.db.Where("id = ? AND is_deleted = ?", id, false).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *MasterRepository) SupplierItemsByIDs(ids []types.SnowflakeID) (map[types.SnowflakeID]models.SupplierItem, error) {
	out := make(map[types.SnowflakeID]models.SupplierItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var items []models.SupplierItem
	if err := r.db.Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	for _, it := range items {
		out[it.ID] = it
	}
	return out, nil
}

func (r *MasterRepository) UpdateSupplierItem(item *models.SupplierItem, actorID int) error {
	return r.db.Model(&models.SupplierItem{}).
		Where("id = ? AND is_deleted = ?", item.ID, false).
		Updates(map[string]interface{}{
			"part_number":      item.PartNumber,
			"part_number_code": item.PartNumberCode,
			"part_desc":        item.PartDesc,
			"hs_code":          item.HSCode,
			"unit_price":       item.UnitPrice,
			"delivery":         item.Delivery,
			"notes":            item.Notes,
			"updated_by":       actorID,
		}).Error
}

func (r *MasterRepository) FindCurrency(id types.SnowflakeID) (*models.Currency, error) {
	var c models.Currency
	if err := r.db.Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *MasterRepository) FindVatGroup(id types.SnowflakeID) (*models.VatGroup, error) {
	var v models.VatGroup
	if err := r.db.Where("id = ?", id).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *MasterRepository) VatGroupsByIDs(ids []types.SnowflakeID) (map[types.SnowflakeID]models.VatGroup, error) {
	out := make(map[types.SnowflakeID]models.VatGroup, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var groups []models.VatGroup
	if err := r.db.Where("id IN ?", ids).Find(&groups).Error; err != nil {
		return nil, err
	}
	for _, g := range groups {
		out[g.ID] = g
	}
	return out, nil
}

func (r *MasterRepository) PaymentTermsByIDs(ids []types.SnowflakeID) (map[types.SnowflakeID]models.PaymentTerm, error) {
	out := make(map[types.SnowflakeID]models.PaymentTerm, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var terms []models.PaymentTerm
	if err := r.db.Where("id IN ?", ids).Find(&terms).Error; err != nil {
		return nil, err
	}
	for _, t := range terms {
		out[t.ID] = t
	}
	return out, nil
}
