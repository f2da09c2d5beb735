package repositories

import (
	"enquiry-app/models"
	"enquiry-app/types"

	"gorm.io/gorm"
)

type ShipmentRepository struct {
	db *gorm.DB
}

func NewShipmentRepository(db *gorm.DB) *ShipmentRepository {
	return &ShipmentRepository{db: db}
}

func (r *ShipmentRepository) Create(s *models.Shipment) error {
	return r.db.Create(s).Error
}

func (r *ShipmentRepository) FindByID(id types.SnowflakeID) (*models.Shipment, error) {
	var s models.Shipment
	if err := r.db.Where("id = ? AND is_deleted = ?", id, false).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ShipmentRepository) live() *gorm.DB {
	return r.db.Model(&models.Shipment{}).Where("is_deleted = ? AND is_active = ?", false, true)
}

func (r *ShipmentRepository) ListBySelection(selectionID types.SnowflakeID) ([]models.Shipment, error) {
	var rows []models.Shipment
	err := r.live().Where("selection_id = ?", selectionID).Order("id").Find(&rows).Error
	return rows, err
}

// ListBySelections returns the live shipments of the given selections,
// whichever purchase order they were shipped against.
func (r *ShipmentRepository) ListBySelections(selectionIDs []types.SnowflakeID) ([]models.Shipment, error) {
	var rows []models.Shipment
	if len(selectionIDs) == 0 {
		return rows, nil
	}
	err := r.live().Where("selection_id IN ?", selectionIDs).Order("selection_id").Order("id").Find(&rows).Error
	return rows, err
}

// CountBySupplier counts the live shipments of one supplier in an enquiry.
func (r *ShipmentRepository) CountBySupplier(enquiryID, supplierID types.SnowflakeID) (int64, error) {
	var n int64
	err := r.live().Where("enquiry_id = ? AND supplier_id = ?", enquiryID, supplierID).Count(&n).Error
	return n, err
}

func (r *ShipmentRepository) ListByPO(poID types.SnowflakeID) ([]models.Shipment, error) {
	var rows []models.Shipment
	err := r.live().Where("supplier_po_id = ?", poID).Order("selection_id").Order("id").Find(&rows).Error
	return rows, err
}

func (r *ShipmentRepository) ListByEnquiry(enquiryID types.SnowflakeID) ([]models.Shipment, error) {
	var rows []models.Shipment
	err := r.live().Where("enquiry_id = ?", enquiryID).Order("selection_id").Order("id").Find(&rows).Error
	return rows, err
}

// billable applies the two-phase gate: a supplier bill takes shipments not
// yet supplier-billed; an invoice bill only takes supplier-billed shipments
// not yet invoiced.
func (r *ShipmentRepository) billable(billType string) *gorm.DB {
	q := r.live()
	if billType == models.BillTypeInvoice {
		return q.Where("level >= ? AND is_supplier_bill_created = ? AND is_invoice_bill_created = ?",
			models.ShipmentLevelPreInvoice, true, false)
	}
	return q.Where("level >= ? AND is_supplier_bill_created = ?", models.ShipmentLevelPreBill, false)
}

func (r *ShipmentRepository) Billable(poID types.SnowflakeID, billType string) ([]models.Shipment, error) {
	var rows []models.Shipment
	err := r.billable(billType).Where("supplier_po_id = ?", poID).Order("id").Find(&rows).Error
	return rows, err
}

func (r *ShipmentRepository) BillableByIDs(poID types.SnowflakeID, billType string, ids []types.SnowflakeID) ([]models.Shipment, error) {
	var rows []models.Shipment
	err := r.billable(billType).Where("supplier_po_id = ? AND id IN ?", poID, ids).Order("id").Find(&rows).Error
	return rows, err
}

// MarkBilled flips the billing flag under the same gate used for reading,
// so a shipment can never be billed twice in one phase.
func (r *ShipmentRepository) MarkBilled(ids []types.SnowflakeID, billType string, actorID int) error {
	updates := map[string]interface{}{"updated_by": actorID}
	if billType == models.BillTypeInvoice {
		updates["is_invoice_bill_created"] = true
	} else {
		updates["is_supplier_bill_created"] = true
		updates["level"] = models.ShipmentLevelPreInvoice
	}

	res := r.billable(billType).Where("id IN ?", ids).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != int64(len(ids)) {
		return ErrStaleRecord
	}
	return nil
}

func (r *ShipmentRepository) Cancel(id types.SnowflakeID, actorID int) error {
	res := r.db.Model(&models.Shipment{}).
		Where("id = ? AND is_deleted = ? AND is_supplier_bill_created = ?", id, false, false).
		Updates(map[string]interface{}{"is_deleted": true, "is_active": false, "updated_by": actorID})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleRecord
	}
	return nil
}

// CountAwaitingInvoice counts live shipments of the enquiry that still lack
// an invoice bill.
func (r *ShipmentRepository) CountAwaitingInvoice(enquiryID types.SnowflakeID) (int64, error) {
	var count int64
	err := r.live().Where("enquiry_id = ? AND is_invoice_bill_created = ?", enquiryID, false).Count(&count).Error
	return count, err
}

type BillRepository struct {
	db *gorm.DB
}

func NewBillRepository(db *gorm.DB) *BillRepository {
	return &BillRepository{db: db}
}

// Create stores the bill with its shipment lines.
func (r *BillRepository) Create(b *models.Bill) error {
	return r.db.Create(b).Error
}

func (r *BillRepository) ListByPO(poID types.SnowflakeID) ([]models.Bill, error) {
	var bills []models.Bill
	err := r.db.Preload("Lines").Where("supplier_po_id = ?", poID).Order("id").Find(&bills).Error
	return bills, err
}

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) ListByEntity(entityType string, entityID types.SnowflakeID) ([]models.ActivityLog, error) {
	var rows []models.ActivityLog
	err := r.db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).Order("id").Find(&rows).Error
	return rows, err
}
