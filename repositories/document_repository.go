package repositories

import (
	"enquiry-app/models"
	"enquiry-app/types"

	"gorm.io/gorm"
)

// DocumentRepository stores the frozen commercial documents: quote, PI,
// sales order and supplier purchase orders.
type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) CreateQuote(q *models.Quote) error {
	return r.db.Create(q).Error
}

func (r *DocumentRepository) FindQuote(id types.SnowflakeID) (*models.Quote, error) {
	var q models.Quote
	if err := r.db.Where("id = ?", id).First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *DocumentRepository) LatestQuote(enquiryID types.SnowflakeID) (*models.Quote, error) {
	var q models.Quote
	if err := r.db.Where("enquiry_id = ?", enquiryID).Order("id DESC").First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *DocumentRepository) CreateProformaInvoice(pi *models.ProformaInvoice) error {
	return r.db.Create(pi).Error
}

func (r *DocumentRepository) LatestProformaInvoice(enquiryID types.SnowflakeID) (*models.ProformaInvoice, error) {
	var pi models.ProformaInvoice
	if err := r.db.Where("enquiry_id = ?", enquiryID).Order("id DESC").First(&pi).Error; err != nil {
		return nil, err
	}
	return &pi, nil
}

func (r *DocumentRepository) FindProformaInvoice(id types.SnowflakeID) (*models.ProformaInvoice, error) {
	var pi models.ProformaInvoice
	if err := r.db.Where("id = ?", id).First(&pi).Error; err != nil {
		return nil, err
	}
	return &pi, nil
}

func (r *DocumentRepository) CreateSalesOrder(so *models.SalesOrder) error {
	return r.db.Create(so).Error
}

func (r *DocumentRepository) LatestSalesOrder(enquiryID types.SnowflakeID) (*models.SalesOrder, error) {
	var so models.SalesOrder
	if err := r.db.Where("enquiry_id = ?", enquiryID).Order("id DESC").First(&so).Error; err != nil {
		return nil, err
	}
	return &so, nil
}

func (r *DocumentRepository) FindSalesOrder(id types.SnowflakeID) (*models.SalesOrder, error) {
	var so models.SalesOrder
	if err := r.db.Where("id = ?", id).First(&so).Error; err != nil {
		return nil, err
	}
	return &so, nil
}

func (r *DocumentRepository) CreateSupplierPO(po *models.SupplierPO) error {
	return r.db.Create(po).Error
}

// RaisePOLevel moves a purchase order forward; it never lowers the level.
func (r *DocumentRepository) RaisePOLevel(id types.SnowflakeID, level int, actorID int) error {
	return r.db.Model(&models.SupplierPO{}).
		Where("id = ? AND level < ?", id, level).
		Updates(map[string]interface{}{"level": level, "updated_by": actorID}).Error
}

func (r *DocumentRepository) FindSupplierPO(id types.SnowflakeID) (*models.SupplierPO, error) {
	var po models.SupplierPO
	if err := r.db.Where("id = ?", id).First(&po).Error; err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *DocumentRepository) ListSupplierPOs(enquiryID types.SnowflakeID) ([]models.SupplierPO, error) {
	var pos []models.SupplierPO
	err := r.db.Where("enquiry_id = ?", enquiryID).Order("supplier_id").Find(&pos).Error
	return pos, err
}

func (r *DocumentRepository) LinkItems(items []models.DocumentItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.CreateInBatches(&items, 100).Error
}

func (r *DocumentRepository) Items(documentType string, documentID types.SnowflakeID) ([]models.DocumentItem, error) {
	var items []models.DocumentItem
	err := r.db.Where("document_type = ? AND document_id = ?", documentType, documentID).Order("id").Find(&items).Error
	return items, err
}

// SelectionIDs returns the selections a document was issued for.
func (r *DocumentRepository) SelectionIDs(documentType string, documentID types.SnowflakeID) ([]types.SnowflakeID, error) {
	var ids []types.SnowflakeID
	err := r.db.Model(&models.DocumentItem{}).
		Where("document_type = ? AND document_id = ?", documentType, documentID).
		Order("id").
		Pluck("selection_id", &ids).Error
	return ids, err
}
