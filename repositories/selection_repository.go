package repositories

import (
	"enquiry-app/models"
	"enquiry-app/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SelectionRepository struct {
	db *gorm.DB
}

func NewSelectionRepository(db *gorm.DB) *SelectionRepository {
	return &SelectionRepository{db: db}
}

// ShortlistFilter narrows rollup reads.
type ShortlistFilter int

const (
	AllSelections ShortlistFilter = iota
	ShortlistedOnly
	NotShortlisted
)

// CandidateRow is one (enquiry item, approved supplier item) pair with the
// selection columns left NULL when nothing was selected yet.
type CandidateRow struct {
	EnquiryItemID     types.SnowflakeID
	PartNumber        string
	PartNumberCode    string
	PartDesc          string
	Quantity          string
	SupplierID        types.SnowflakeID
	SupplierName      string
	SupplierEmail     string
	SupplierItemID    types.SnowflakeID
	SupplierUnitPrice string
	SupplierDelivery  string
	SupplierNotes     string
	SelectionID       *int64
	IsShortListed     *bool
	IsSkipped         *bool
	IsMailSent        *bool
	SelectedQuantity  *string
}

func (r *SelectionRepository) Candidates(enquiryID types.SnowflakeID) ([]CandidateRow, error) {
	var rows []CandidateRow
	sql := `
		SELECT
			ei.id AS enquiry_item_id,
			ei.part_number,
			ei.part_number_code,
			ei.part_desc,
			ei.quantity,
			s.id AS supplier_id,
			s.company_name AS supplier_name,
			s.email AS supplier_email,
			si.id AS supplier_item_id,
			si.unit_price AS supplier_unit_price,
			si.delivery AS supplier_delivery,
			si.notes AS supplier_notes,
			sel.id AS selection_id,
			sel.is_short_listed,
			sel.is_skipped,
			sel.is_mail_sent,
			sel.quantity AS selected_quantity
		FROM enquiry_items ei
		JOIN supplier_items si
			ON si.part_number_code = ei.part_number_code AND si.is_deleted = ?
		JOIN suppliers s
			ON s.id = si.supplier_id
			AND s.is_active = ? AND s.is_approved = ? AND s.level = ? AND s.is_deleted = ?
		LEFT JOIN enquiry_supplier_selected_items sel
			ON sel.enquiry_id = ei.enquiry_id
			AND sel.enquiry_item_id = ei.id
			AND sel.supplier_id = s.id
			AND sel.supplier_item_id = si.id
		WHERE ei.enquiry_id = ? AND ei.is_deleted = ?
		ORDER BY ei.id, s.id, si.id`

	err := r.db.Raw(sql, false, true, true, models.ApprovedSupplierLevel, false, enquiryID, false).Scan(&rows).Error
	return rows, err
}

// Upsert writes the selection keyed by its triple. Selecting twice leaves
// a single row carrying the latest quantity and details.
func (r *SelectionRepository) Upsert(sel *models.SupplierSelection) (*models.SupplierSelection, error) {
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "enquiry_id"},
			{Name: "enquiry_item_id"},
			{Name: "supplier_id"},
			{Name: "supplier_item_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"quantity",
			"is_skipped",
			"final_unit_price",
			"final_part_desc",
			"final_delivery",
			"final_notes",
			"updated_at",
			"updated_by",
		}),
	}).Create(sel).Error
	if err != nil {
		return nil, err
	}
	return r.FindByTriple(sel.EnquiryID, sel.EnquiryItemID, sel.SupplierID, sel.SupplierItemID)
}

func (r *SelectionRepository) FindByTriple(enquiryID, itemID, supplierID, supplierItemID types.SnowflakeID) (*models.SupplierSelection, error) {
	var sel models.SupplierSelection
	err := r.db.Where("enquiry_id = ? AND enquiry_item_id = ? AND supplier_id = ? AND supplier_item_id = ?",
		enquiryID, itemID, supplierID, supplierItemID).First(&sel).Error
	if err != nil {
		return nil, err
	}
	return &sel, nil
}

func (r *SelectionRepository) FindByID(id types.SnowflakeID) (*models.SupplierSelection, error) {
	var sel models.SupplierSelection
	if err := r.db.Where("id = ?", id).First(&sel).Error; err != nil {
		return nil, err
	}
	return &sel, nil
}

func (r *SelectionRepository) FindByIDs(enquiryID types.SnowflakeID, ids []types.SnowflakeID) ([]models.SupplierSelection, error) {
	var rows []models.SupplierSelection
	if len(ids) == 0 {
		return rows, nil
	}
	err := r.db.Where("enquiry_id = ? AND id IN ?", enquiryID, ids).Order("id").Find(&rows).Error
	return rows, err
}

// ListByEnquiry returns selections of live items ordered by supplier, then
// by id, so the first row of a supplier group is its oldest selection.
func (r *SelectionRepository) ListByEnquiry(enquiryID types.SnowflakeID, filter ShortlistFilter) ([]models.SupplierSelection, error) {
	q := r.db.Where("enquiry_id = ?", enquiryID).
		Where("enquiry_item_id IN (?)", r.db.Model(&models.EnquiryItem{}).Select("id").Where("enquiry_id = ? AND is_deleted = ?", enquiryID, false))

	switch filter {
	case ShortlistedOnly:
		q = q.Where("is_short_listed = ?", true)
	case NotShortlisted:
		q = q.Where("is_short_listed = ?", false)
	}

	var rows []models.SupplierSelection
	err := q.Order("supplier_id").Order("id").Find(&rows).Error
	return rows, err
}

func (r *SelectionRepository) ListBySupplier(enquiryID, supplierID types.SnowflakeID) ([]models.SupplierSelection, error) {
	var rows []models.SupplierSelection
	err := r.db.Where("enquiry_id = ? AND supplier_id = ?", enquiryID, supplierID).Order("id").Find(&rows).Error
	return rows, err
}

// CompareRows returns selections of approved suppliers that carry finance
// terms.
func (r *SelectionRepository) CompareRows(enquiryID types.SnowflakeID) ([]models.SupplierSelection, error) {
	var rows []models.SupplierSelection
	err := r.db.
		Joins("JOIN suppliers s ON s.id = enquiry_supplier_selected_items.supplier_id AND s.is_active = ? AND s.is_approved = ? AND s.level = ? AND s.is_deleted = ?",
			true, true, models.ApprovedSupplierLevel, false).
		Where("enquiry_supplier_selected_items.enquiry_id = ? AND enquiry_supplier_selected_items.has_finance_meta = ?", enquiryID, true).
		Order("enquiry_supplier_selected_items.enquiry_item_id").
		Order("enquiry_supplier_selected_items.id").
		Find(&rows).Error
	return rows, err
}

func (r *SelectionRepository) CountShortlisted(enquiryID types.SnowflakeID) (int64, error) {
	var count int64
	err := r.db.Model(&models.SupplierSelection{}).
		Where("enquiry_id = ? AND is_short_listed = ?", enquiryID, true).
		Where("enquiry_item_id IN (?)", r.db.Model(&models.EnquiryItem{}).Select("id").Where("enquiry_id = ? AND is_deleted = ?", enquiryID, false)).
		Count(&count).Error
	return count, err
}

func (r *SelectionRepository) SetShortlisted(enquiryID types.SnowflakeID, ids []types.SnowflakeID, shortlisted bool, actorID int) (int64, error) {
	res := r.db.Model(&models.SupplierSelection{}).
		Where("enquiry_id = ? AND id IN ?", enquiryID, ids).
		Updates(map[string]interface{}{
			"is_short_listed": shortlisted,
			"version":         gorm.Expr("version + 1"),
			"updated_by":      actorID,
		})
	return res.RowsAffected, res.Error
}

// UnshortlistItem drops every selection of a removed enquiry item.
func (r *SelectionRepository) UnshortlistItem(itemID types.SnowflakeID, actorID int) error {
	return r.db.Model(&models.SupplierSelection{}).
		Where("enquiry_item_id = ?", itemID).
		Updates(map[string]interface{}{
			"is_short_listed": false,
			"version":         gorm.Expr("version + 1"),
			"updated_by":      actorID,
		}).Error
}

func (r *SelectionRepository) SetSkipped(sel *models.SupplierSelection, skipped bool, actorID int) error {
	return r.conditional(sel, map[string]interface{}{"is_skipped": skipped, "updated_by": actorID})
}

func (r *SelectionRepository) MarkMailSent(enquiryID, supplierID types.SnowflakeID, actorID int) (int64, error) {
	res := r.db.Model(&models.SupplierSelection{}).
		Where("enquiry_id = ? AND supplier_id = ? AND is_skipped = ?", enquiryID, supplierID, false).
		Updates(map[string]interface{}{"is_mail_sent": true, "updated_by": actorID})
	return res.RowsAffected, res.Error
}

// UpdateFinanceMeta writes the supplier scoped terms onto every selection
// of the supplier in the enquiry.
func (r *SelectionRepository) UpdateFinanceMeta(enquiryID, supplierID types.SnowflakeID, meta models.FinanceMeta, actorID int) (int64, error) {
	res := r.db.Model(&models.SupplierSelection{}).
		Where("enquiry_id = ? AND supplier_id = ?", enquiryID, supplierID).
		Updates(map[string]interface{}{
			"finance_supplier_total":   meta.SupplierTotal,
			"finance_freight_charges":  meta.FreightCharges,
			"finance_packing_charges":  meta.PackingCharges,
			"finance_vat_group_id":     meta.VatGroupID,
			"finance_payment_terms_id": meta.PaymentTermsID,
			"finance_payment_option":   meta.PaymentOption,
			"finance_delivery_term":    meta.DeliveryTerm,
			"finance_currency_id":      meta.CurrencyID,
			"finance_remarks":          meta.Remarks,
			"has_finance_meta":         true,
			"version":                  gorm.Expr("version + 1"),
			"updated_by":               actorID,
		})
	return res.RowsAffected, res.Error
}

func (r *SelectionRepository) UpdateSupplierTotal(enquiryID, supplierID types.SnowflakeID, total string, actorID int) error {
	return r.db.Model(&models.SupplierSelection{}).
		Where("enquiry_id = ? AND supplier_id = ?", enquiryID, supplierID).
		Updates(map[string]interface{}{
			"finance_supplier_total": total,
			"version":                gorm.Expr("version + 1"),
			"updated_by":             actorID,
		}).Error
}

// Touch bumps the version of sel if nobody else did since it was read.
func (r *SelectionRepository) Touch(sel *models.SupplierSelection, actorID int) error {
	return r.conditional(sel, map[string]interface{}{"updated_by": actorID})
}

func (r *SelectionRepository) conditional(sel *models.SupplierSelection, updates map[string]interface{}) error {
	updates["version"] = gorm.Expr("version + 1")
	res := r.db.Model(&models.SupplierSelection{}).
		Where("id = ? AND version = ?", sel.ID, sel.Version).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleRecord
	}
	sel.Version++
	return nil
}
