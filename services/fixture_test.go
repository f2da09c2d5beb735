package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"enquiry-app/apperr"
	"enquiry-app/database"
	"enquiry-app/migration"
	"enquiry-app/models"
	"enquiry-app/notification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordingMailer struct {
	to      []string
	subject string
	body    string
	err     error
}

func (m *recordingMailer) Send(to []string, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.to, m.subject, m.body = to, subject, body
	return nil
}

type fixture struct {
	ctx   context.Context
	db    *gorm.DB
	actor models.Actor

	mailer *recordingMailer

	leads      *LeadService
	enquiries  *EnquiryService
	items      *ItemService
	catalog    *CatalogService
	selections *SelectionService
	rollups    *RollupService
	documents  *DocumentService
	shipments  *ShipmentService
	bills      *BillService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, migration.Migrate(db))
	require.NoError(t, database.RunSeeders(db, zap.NewNop()))
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	log := zap.NewNop()
	pub := notification.Discard{}
	mailer := &recordingMailer{}

	return &fixture{
		ctx:        context.Background(),
		db:         db,
		actor:      models.Actor{UserID: 7, FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", OrganisationID: "org-1"},
		mailer:     mailer,
		leads:      NewLeadService(db, log, pub),
		enquiries:  NewEnquiryService(db, log, pub),
		items:      NewItemService(db, log, pub),
		catalog:    NewCatalogService(db, log, pub),
		selections: NewSelectionService(db, log, pub, mailer),
		rollups:    NewRollupService(db, log, pub),
		documents:  NewDocumentService(db, log, pub),
		shipments:  NewShipmentService(db, log, pub),
		bills:      NewBillService(db, log, pub),
	}
}

func (f *fixture) currency(t *testing.T, shortForm string) models.Currency {
	t.Helper()
	var c models.Currency
	require.NoError(t, f.db.Where("short_form = ?", shortForm).First(&c).Error)
	return c
}

func (f *fixture) vatGroup(t *testing.T, name string) models.VatGroup {
	t.Helper()
	var v models.VatGroup
	require.NoError(t, f.db.Where("name = ?", name).First(&v).Error)
	return v
}

// enquiry opens an enquiry on a freshly qualified lead.
func (f *fixture) enquiry(t *testing.T) *models.Enquiry {
	t.Helper()
	lead, err := f.leads.CreateLead(f.ctx, f.actor, CreateLeadInput{
		CompanyName: "Customer " + uuid.NewString()[:8],
		CurrencyID:  f.currency(t, "USD").ID,
	})
	require.NoError(t, err)
	_, err = f.leads.QualifyLead(f.ctx, f.actor, lead.ID)
	require.NoError(t, err)

	e, err := f.enquiries.CreateEnquiry(f.ctx, f.actor, CreateEnquiryInput{LeadID: lead.ID, Description: "pumps"})
	require.NoError(t, err)
	return e
}

func (f *fixture) supplier(t *testing.T, name string, approved bool) *models.Supplier {
	t.Helper()
	level := models.ApprovedSupplierLevel
	if !approved {
		level = 1
	}
	s, err := f.catalog.CreateSupplier(f.ctx, f.actor, SupplierInput{
		CompanyName: name,
		Email:       "sales@" + strings.ToLower(strings.ReplaceAll(name, " ", "")) + ".example.com",
		Level:       level,
		IsApproved:  approved,
	})
	require.NoError(t, err)
	return s
}

func (f *fixture) supplierItem(t *testing.T, s *models.Supplier, partNumber, price string) *models.SupplierItem {
	t.Helper()
	item, err := f.catalog.CreateSupplierItem(f.ctx, f.actor, s.ID, SupplierItemInput{PartNumber: partNumber, UnitPrice: price})
	require.NoError(t, err)
	return item
}

func (f *fixture) item(t *testing.T, e *models.Enquiry, partNumber, quantity string) *models.EnquiryItem {
	t.Helper()
	item, err := f.items.AddItem(f.ctx, f.actor, e.ID, ItemInput{PartNumber: partNumber, Quantity: quantity, UnitPrice: "0"})
	require.NoError(t, err)
	return item
}

func (f *fixture) reload(t *testing.T, e *models.Enquiry) *models.Enquiry {
	t.Helper()
	var fresh models.Enquiry
	require.NoError(t, f.db.Where("id = ?", e.ID).First(&fresh).Error)
	return &fresh
}

func requireCode(t *testing.T, err error, kind apperr.Kind, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr), "expected *apperr.Error, got %T: %v", err, err)
	require.Equal(t, kind, appErr.Kind, appErr.Message)
	if code != "" {
		require.Equal(t, code, appErr.Code, appErr.Message)
	}
}
