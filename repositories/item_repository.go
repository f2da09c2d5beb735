package repositories

import (
	"enquiry-app/models"
	"enquiry-app/types"

	"gorm.io/gorm"
)

type ItemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) FindByID(enquiryID, id types.SnowflakeID) (*models.EnquiryItem, error) {
	var item models.EnquiryItem
	err := r.db.Where("id = ? AND enquiry_id = ? AND is_deleted = ?", id, enquiryID, false).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *ItemRepository) ListByEnquiry(enquiryID types.SnowflakeID) ([]models.EnquiryItem, error) {
	var items []models.EnquiryItem
	err := r.db.Where("enquiry_id = ? AND is_deleted = ?", enquiryID, false).Order("id").Find(&items).Error
	return items, err
}

// PartNumbersInUse returns the part numbers already present on the enquiry.
func (r *ItemRepository) PartNumbersInUse(enquiryID types.SnowflakeID, excludeID types.SnowflakeID) (map[string]bool, error) {
	var partNumbers []string
	err := r.db.Model(&models.EnquiryItem{}).
		Where("enquiry_id = ? AND is_deleted = ? AND id <> ?", enquiryID, false, excludeID).
		Pluck("part_number", &partNumbers).Error
	if err != nil {
		return nil, err
	}

	inUse := make(map[string]bool, len(partNumbers))
	for _, pn := range partNumbers {
		inUse[pn] = true
	}
	return inUse, nil
}

func (r *ItemRepository) Create(item *models.EnquiryItem) error {
	return r.db.Create(item).Error
}

func (r *ItemRepository) CreateInBatches(items []models.EnquiryItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.CreateInBatches(&items, 100).Error
}

func (r *ItemRepository) Update(item *models.EnquiryItem, actorID int) error {
	return r.db.Model(&models.EnquiryItem{}).
		Where("id = ? AND is_deleted = ?", item.ID, false).
		Updates(map[string]interface{}{
			"part_number":      item.PartNumber,
			"part_number_code": item.PartNumberCode,
			"part_desc":        item.PartDesc,
			"hs_code":          item.HSCode,
			"unit_price":       item.UnitPrice,
			"quantity":         item.Quantity,
			"delivery":         item.Delivery,
			"notes":            item.Notes,
			"updated_by":       actorID,
		}).Error
}

func (r *ItemRepository) SoftDelete(id types.SnowflakeID, actorID int) error {
	res := r.db.Model(&models.EnquiryItem{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{"is_deleted": true, "updated_by": actorID})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleRecord
	}
	return nil
}
