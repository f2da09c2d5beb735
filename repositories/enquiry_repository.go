package repositories

import (
	"enquiry-app/models"
	"enquiry-app/types"

	"gorm.io/gorm"
)

type EnquiryRepository struct {
	db *gorm.DB
}

func NewEnquiryRepository(db *gorm.DB) *EnquiryRepository {
	return &EnquiryRepository{db: db}
}

type LevelCount struct {
	Level int   `json:"level"`
	Count int64 `json:"count"`
}

func (r *EnquiryRepository) Create(e *models.Enquiry) error {
	return r.db.Create(e).Error
}

func (r *EnquiryRepository) FindByID(id types.SnowflakeID) (*models.Enquiry, error) {
	var e models.Enquiry
	if err := r.db.Where("id = ? AND is_deleted = ?", id, false).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// Transition writes updates only if the row still carries the version that
// was read and guard (when set) is still true. Every call bumps the version
// so concurrent transitions on one enquiry serialise.
func (r *EnquiryRepository) Transition(e *models.Enquiry, guard string, updates map[string]interface{}, actorID int) error {
	values := map[string]interface{}{}
	for k, v := range updates {
		values[k] = v
	}
	values["version"] = gorm.Expr("version + 1")
	values["updated_by"] = actorID

	q := r.db.Model(&models.Enquiry{}).
		Where("id = ? AND version = ? AND is_deleted = ? AND is_active = ?", e.ID, e.Version, false, true)
	if guard != "" {
		q = q.Where(guard+" = ?", true)
	}

	res := q.Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleRecord
	}
	e.Version++
	return nil
}

func (r *EnquiryRepository) SoftDelete(e *models.Enquiry, actorID int) error {
	res := r.db.Model(&models.Enquiry{}).
		Where("id = ? AND version = ? AND is_deleted = ?", e.ID, e.Version, false).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"is_active":  false,
			"version":    gorm.Expr("version + 1"),
			"updated_by": actorID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleRecord
	}
	return nil
}

// CountByLevel is the live dashboard count of non-deleted enquiries per
// stage. Inactive enquiries still count.
func (r *EnquiryRepository) CountByLevel(organisationID string) ([]LevelCount, error) {
	var rows []LevelCount
	sql := `
		WITH live AS (
			SELECT level
			FROM enquiries
			WHERE organisation_id = ? AND is_deleted = ?
		)
		SELECT level, COUNT(*) AS count
		FROM live
		GROUP BY level
		ORDER BY level`

	if err := r.db.Raw(sql, organisationID, false).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

type LeadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

func (r *LeadRepository) Create(l *models.Lead) error {
	return r.db.Create(l).Error
}

func (r *LeadRepository) FindByID(id types.SnowflakeID) (*models.Lead, error) {
	var l models.Lead
	if err := r.db.Where("id = ? AND is_deleted = ?", id, false).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LeadRepository) CompanyExists(organisationID, companyName string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Lead{}).
		Where("organisation_id = ? AND LOWER(company_name) = LOWER(?) AND is_deleted = ?", organisationID, companyName, false).
		Count(&count).Error
	return count > 0, err
}

func (r *LeadRepository) Qualify(id types.SnowflakeID, actorID int) error {
	res := r.db.Model(&models.Lead{}).
		Where("id = ? AND is_deleted = ? AND is_qualified = ?", id, false, false).
		Updates(map[string]interface{}{"is_qualified": true, "updated_by": actorID})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleRecord
	}
	return nil
}
