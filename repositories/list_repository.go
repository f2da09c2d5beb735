package repositories

import (
	"enquiry-app/models"
	"enquiry-app/types"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// ListQuery is the paging and search input shared by the list views.
type ListQuery struct {
	Page   int    `query:"page" json:"page"`
	Limit  int    `query:"limit" json:"limit"`
	Search string `query:"search" json:"search"`
	Level  int    `query:"level" json:"level"`
	Active *bool  `query:"active" json:"active"`
	Type   string `query:"type" json:"type"`
}

// Normalize clamps page and limit into range.
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	return q
}

func (q ListQuery) offset() int {
	return (q.Page - 1) * q.Limit
}

func (q ListQuery) like() string {
	return "%" + q.Search + "%"
}

type PageMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int64 `json:"total_pages"`
}

func newMeta(q ListQuery, total int64) PageMeta {
	return PageMeta{
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: (total + int64(q.Limit) - 1) / int64(q.Limit),
	}
}

type EnquiryRow struct {
	models.Enquiry
	CompanyName string `json:"company_name"`
}

type QuoteRow struct {
	models.Quote
	EnquiryNo string `json:"enquiry_no"`
}

type ProformaInvoiceRow struct {
	models.ProformaInvoice
	EnquiryNo string `json:"enquiry_no"`
}

type SalesOrderRow struct {
	models.SalesOrder
	EnquiryNo string `json:"enquiry_no"`
}

type SupplierPORow struct {
	models.SupplierPO
	EnquiryNo    string `json:"enquiry_no"`
	SupplierName string `json:"supplier_name"`
}

// BillRow is a bill header without its lines.
type BillRow struct {
	ID            types.SnowflakeID `json:"id"`
	BillNo        string            `json:"bill_no"`
	Type          string            `json:"type"`
	EnquiryID     types.SnowflakeID `json:"enquiry_id"`
	EnquiryNo     string            `json:"enquiry_no"`
	SupplierPOID  types.SnowflakeID `json:"supplier_po_id"`
	PONo          string            `json:"po_no"`
	SupplierID    types.SnowflakeID `json:"supplier_id"`
	SupplierName  string            `json:"supplier_name"`
	BillDate      time.Time         `json:"bill_date"`
	SubTotal      decimal.Decimal   `json:"sub_total"`
	VatPercentage decimal.Decimal   `json:"vat_percentage"`
	VatAmount     decimal.Decimal   `json:"vat_amount"`
	Total         decimal.Decimal   `json:"total"`
	CreatedAt     time.Time         `json:"created_at"`
}

// TrackingRow summarises the shipments of one enquiry that have not been
// invoiced yet.
type TrackingRow struct {
	EnquiryID         types.SnowflakeID `json:"enquiry_id"`
	EnquiryNo         string            `json:"enquiry_no"`
	Shipments         int64             `json:"shipments"`
	TotalShipQuantity decimal.Decimal   `json:"total_ship_quantity"`
	ToWarehouse       int64             `json:"to_warehouse"`
	ToCustomer        int64             `json:"to_customer"`
}

// ListRepository serves the organisation-wide list views. Every list is
// scoped through the owning enquiry and skips deleted enquiries.
type ListRepository struct {
	db *gorm.DB
}

func NewListRepository(db *gorm.DB) *ListRepository {
	return &ListRepository{db: db}
}

// scoped joins table to its enquiry and restricts to organisationID when
// one is set.
func (r *ListRepository) scoped(model interface{}, table, organisationID string) *gorm.DB {
	q := r.db.Model(model).
		Joins("JOIN enquiries ON enquiries.id = "+table+".enquiry_id").
		Where("enquiries.is_deleted = ?", false)
	if organisationID != "" {
		q = q.Where("enquiries.organisation_id = ?", organisationID)
	}
	return q
}

// page counts q and then reads one page of it into out.
func page(q *gorm.DB, lq ListQuery, selects, order string, out interface{}) (PageMeta, error) {
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return PageMeta{}, err
	}
	err := q.Select(selects).Order(order).Offset(lq.offset()).Limit(lq.Limit).Scan(out).Error
	return newMeta(lq, total), err
}

func (r *ListRepository) Enquiries(organisationID string, lq ListQuery) ([]EnquiryRow, PageMeta, error) {
	q := r.db.Model(&models.Enquiry{}).
		Joins("LEFT JOIN leads ON leads.id = enquiries.lead_id").
		Where("enquiries.is_deleted = ?", false)
	if organisationID != "" {
		q = q.Where("enquiries.organisation_id = ?", organisationID)
	}
	if lq.Level > 0 {
		q = q.Where("enquiries.level = ?", lq.Level)
	}
	if lq.Active != nil {
		q = q.Where("enquiries.is_active = ?", *lq.Active)
	}
	if lq.Search != "" {
		q = q.Where("enquiries.enquiry_no LIKE ? OR enquiries.description LIKE ? OR leads.company_name LIKE ?",
			lq.like(), lq.like(), lq.like())
	}

	var rows []EnquiryRow
	meta, err := page(q, lq, "enquiries.*, leads.company_name AS company_name", "enquiries.id DESC", &rows)
	return rows, meta, err
}

func (r *ListRepository) Quotes(organisationID string, lq ListQuery) ([]QuoteRow, PageMeta, error) {
	q := r.scoped(&models.Quote{}, "quotes", organisationID)
	if lq.Search != "" {
		q = q.Where("quotes.quote_no LIKE ? OR enquiries.enquiry_no LIKE ?", lq.like(), lq.like())
	}

	var rows []QuoteRow
	meta, err := page(q, lq, "quotes.*, enquiries.enquiry_no AS enquiry_no", "quotes.id DESC", &rows)
	return rows, meta, err
}

func (r *ListRepository) ProformaInvoices(organisationID string, lq ListQuery) ([]ProformaInvoiceRow, PageMeta, error) {
	q := r.scoped(&models.ProformaInvoice{}, "proforma_invoices", organisationID)
	if lq.Search != "" {
		q = q.Where("proforma_invoices.pi_no LIKE ? OR proforma_invoices.customer_ref_no LIKE ? OR enquiries.enquiry_no LIKE ?",
			lq.like(), lq.like(), lq.like())
	}

	var rows []ProformaInvoiceRow
	meta, err := page(q, lq, "proforma_invoices.*, enquiries.enquiry_no AS enquiry_no", "proforma_invoices.id DESC", &rows)
	return rows, meta, err
}

func (r *ListRepository) SalesOrders(organisationID string, lq ListQuery) ([]SalesOrderRow, PageMeta, error) {
	q := r.scoped(&models.SalesOrder{}, "sales_orders", organisationID)
	if lq.Search != "" {
		q = q.Where("sales_orders.so_no LIKE ? OR sales_orders.customer_po_no LIKE ? OR enquiries.enquiry_no LIKE ?",
			lq.like(), lq.like(), lq.like())
	}

	var rows []SalesOrderRow
	meta, err := page(q, lq, "sales_orders.*, enquiries.enquiry_no AS enquiry_no", "sales_orders.id DESC", &rows)
	return rows, meta, err
}

func (r *ListRepository) SupplierPOs(organisationID string, lq ListQuery) ([]SupplierPORow, PageMeta, error) {
	q := r.scoped(&models.SupplierPO{}, "supplier_pos", organisationID).
		Joins("LEFT JOIN suppliers ON suppliers.id = supplier_pos.supplier_id")
	if lq.Level > 0 {
		q = q.Where("supplier_pos.level = ?", lq.Level)
	}
	if lq.Search != "" {
		q = q.Where("supplier_pos.po_no LIKE ? OR enquiries.enquiry_no LIKE ? OR suppliers.company_name LIKE ?",
			lq.like(), lq.like(), lq.like())
	}

	var rows []SupplierPORow
	meta, err := page(q, lq,
		"supplier_pos.*, enquiries.enquiry_no AS enquiry_no, suppliers.company_name AS supplier_name",
		"supplier_pos.id DESC", &rows)
	return rows, meta, err
}

// Bills lists bills of one type when lq.Type is set, otherwise both.
func (r *ListRepository) Bills(organisationID string, lq ListQuery) ([]BillRow, PageMeta, error) {
	q := r.scoped(&models.Bill{}, "bills", organisationID).
		Joins("JOIN supplier_pos ON supplier_pos.id = bills.supplier_po_id").
		Joins("LEFT JOIN suppliers ON suppliers.id = bills.supplier_id")
	if lq.Type != "" {
		q = q.Where("bills.type = ?", lq.Type)
	}
	if lq.Search != "" {
		q = q.Where("bills.bill_no LIKE ? OR supplier_pos.po_no LIKE ? OR enquiries.enquiry_no LIKE ? OR suppliers.company_name LIKE ?",
			lq.like(), lq.like(), lq.like(), lq.like())
	}

	var rows []BillRow
	meta, err := page(q, lq,
		"bills.*, enquiries.enquiry_no AS enquiry_no, supplier_pos.po_no AS po_no, suppliers.company_name AS supplier_name",
		"bills.id DESC", &rows)
	return rows, meta, err
}

// Tracking groups live shipments that are not invoiced yet by enquiry,
// most recently shipped first.
func (r *ListRepository) Tracking(organisationID string, lq ListQuery) ([]TrackingRow, PageMeta, error) {
	q := r.scoped(&models.Shipment{}, "shipments", organisationID).
		Where("shipments.is_active = ? AND shipments.is_deleted = ? AND shipments.is_invoice_bill_created = ?", true, false, false)
	if lq.Search != "" {
		q = q.Where("enquiries.enquiry_no LIKE ? OR shipments.shipment_no LIKE ? OR shipments.tracking_no LIKE ?",
			lq.like(), lq.like(), lq.like())
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Distinct("shipments.enquiry_id").Count(&total).Error; err != nil {
		return nil, PageMeta{}, err
	}

	var rows []TrackingRow
	err := q.Select(`shipments.enquiry_id AS enquiry_id,
			enquiries.enquiry_no AS enquiry_no,
			COUNT(*) AS shipments,
			SUM(shipments.ship_quantity) AS total_ship_quantity,
			SUM(CASE WHEN shipments.ship_to = ? THEN 1 ELSE 0 END) AS to_warehouse,
			SUM(CASE WHEN shipments.ship_to = ? THEN 1 ELSE 0 END) AS to_customer`,
		models.ShipToWarehouse, models.ShipToCustomer).
		Group("shipments.enquiry_id, enquiries.enquiry_no").
		Order("MAX(shipments.id) DESC").
		Offset(lq.offset()).Limit(lq.Limit).
		Scan(&rows).Error
	return rows, newMeta(lq, total), err
}

// MailLogs lists the mail sent for one enquiry, newest first, optionally
// for one supplier.
func (r *ListRepository) MailLogs(enquiryID, supplierID types.SnowflakeID) ([]models.MailLog, error) {
	q := r.db.Where("enquiry_id = ?", enquiryID)
	if supplierID != 0 {
		q = q.Where("supplier_id = ?", supplierID)
	}
	var logs []models.MailLog
	err := q.Order("id DESC").Find(&logs).Error
	return logs, err
}

func (r *ListRepository) CreateMailLog(l *models.MailLog) error {
	return r.db.Create(l).Error
}
