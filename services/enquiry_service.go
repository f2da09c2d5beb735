package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"enquiry-app/apperr"
	"enquiry-app/controllers/helpers"
	"enquiry-app/finance"
	"enquiry-app/lifecycle"
	"enquiry-app/models"
	"enquiry-app/notification"
	"enquiry-app/repositories"
	"enquiry-app/types"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type LeadService struct {
	base
}

func NewLeadService(db *gorm.DB, log *zap.Logger, pub notification.Publisher) *LeadService {
	return &LeadService{base: newBase(db, log, pub)}
}

type CreateLeadInput struct {
	CompanyName string            `json:"company_name" validate:"required"`
	ContactName string            `json:"contact_name"`
	Email       string            `json:"email" validate:"omitempty,email"`
	Phone       string            `json:"phone"`
	SalesPerson string            `json:"sales_person"`
	CurrencyID  types.SnowflakeID `json:"currency_id"`
	DueDate     *time.Time        `json:"due_date"`
}

func (s *LeadService) CreateLead(ctx context.Context, actor models.Actor, in CreateLeadInput) (*models.Lead, error) {
	var (
		lead  *models.Lead
		entry models.ActivityLog
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		leads := repositories.NewLeadRepository(tx)

		name := strings.TrimSpace(in.CompanyName)
		exists, err := leads.CompanyExists(actor.OrganisationID, name)
		if err != nil {
			return err
		}
		if exists {
			return apperr.NewPrecondition("DUPLICATE_LEAD", "a lead for %s already exists", name)
		}

		leadNo, err := repositories.NewNumberRepository(tx).Generate(&models.Lead{}, "lead_no", repositories.PrefixLead)
		if err != nil {
			return err
		}

		lead = &models.Lead{
			LeadNo:         leadNo,
			OrganisationID: actor.OrganisationID,
			CompanyName:    name,
			ContactName:    in.ContactName,
			Email:          in.Email,
			Phone:          in.Phone,
			SalesPerson:    in.SalesPerson,
			CurrencyID:     in.CurrencyID,
			DueDate:        in.DueDate,
			IsActive:       true,
		}
		lead.CreatedBy = actor.UserID
		lead.UpdatedBy = actor.UserID
		if err := leads.Create(lead); err != nil {
			return err
		}

		entry, err = helpers.InsertActivity(tx, models.EntityLead, lead.ID, actor, "Lead creation")
		return err
	})
	if err != nil {
		return nil, err
	}

	s.pub.Publish(entry)
	s.log.Info("lead created", zap.String("lead_no", lead.LeadNo), zap.Int("user_id", actor.UserID))
	return lead, nil
}

// QualifyLead moves a lead to prospect so enquiries may be raised on it.
func (s *LeadService) QualifyLead(ctx context.Context, actor models.Actor, id types.SnowflakeID) (*models.Lead, error) {
	var (
		lead  *models.Lead
		entry models.ActivityLog
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		leads := repositories.NewLeadRepository(tx)
		l, err := leads.FindByID(id)
		if err != nil {
			return notFound(err, "Lead")
		}
		if actor.OrganisationID != "" && l.OrganisationID != actor.OrganisationID {
			return apperr.NewNotFound("Lead")
		}
		if l.IsQualified {
			return apperr.NewPrecondition("LEAD_QUALIFIED", "lead %s is already qualified", l.LeadNo)
		}
		if err := leads.Qualify(l.ID, actor.UserID); err != nil {
			return stale(err, "Lead")
		}
		l.IsQualified = true
		lead = l

		entry, err = helpers.InsertActivity(tx, models.EntityLead, l.ID, actor, "Lead qualified")
		return err
	})
	if err != nil {
		return nil, err
	}

	s.pub.Publish(entry)
	return lead, nil
}

func (s *LeadService) GetLead(ctx context.Context, actor models.Actor, id types.SnowflakeID) (*models.Lead, error) {
	l, err := repositories.NewLeadRepository(s.db.WithContext(ctx)).FindByID(id)
	if err != nil {
		return nil, notFound(err, "Lead")
	}
	if actor.OrganisationID != "" && l.OrganisationID != actor.OrganisationID {
		return nil, apperr.NewNotFound("Lead")
	}
	return l, nil
}

type EnquiryService struct {
	base
}

func NewEnquiryService(db *gorm.DB, log *zap.Logger, pub notification.Publisher) *EnquiryService {
	return &EnquiryService{base: newBase(db, log, pub)}
}

type CreateEnquiryInput struct {
	LeadID      types.SnowflakeID `json:"lead_id" validate:"required"`
	CurrencyID  types.SnowflakeID `json:"currency_id"`
	Description string            `json:"description"`
	DueDate     *time.Time        `json:"due_date"`
}

// CreateEnquiry opens an enquiry at the first stage for a qualified lead.
func (s *EnquiryService) CreateEnquiry(ctx context.Context, actor models.Actor, in CreateEnquiryInput) (*models.Enquiry, error) {
	var (
		enquiry *models.Enquiry
		entry   models.ActivityLog
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lead, err := repositories.NewLeadRepository(tx).FindByID(in.LeadID)
		if err != nil {
			return notFound(err, "Lead")
		}
		if actor.OrganisationID != "" && lead.OrganisationID != actor.OrganisationID {
			return apperr.NewNotFound("Lead")
		}
		if !lead.IsActive || !lead.IsQualified {
			return apperr.NewPrecondition("LEAD_NOT_QUALIFIED", "lead %s must be qualified before an enquiry is raised", lead.LeadNo)
		}

		currencyID := in.CurrencyID
		if currencyID == 0 {
			currencyID = lead.CurrencyID
		}

		enquiryNo, err := repositories.NewNumberRepository(tx).Generate(&models.Enquiry{}, "enquiry_no", repositories.PrefixEnquiry)
		if err != nil {
			return err
		}

		dueDate := in.DueDate
		if dueDate == nil {
			dueDate = lead.DueDate
		}

		enquiry = &models.Enquiry{
			EnquiryNo:      enquiryNo,
			OrganisationID: lead.OrganisationID,
			LeadID:         lead.ID,
			CurrencyID:     currencyID,
			Description:    in.Description,
			DueDate:        dueDate,
			Level:          int(lifecycle.StageEnquiry),
			StageName:      lifecycle.StageEnquiry.String(),
			IsActive:       true,
		}
		enquiry.CreatedBy = actor.UserID
		enquiry.UpdatedBy = actor.UserID
		if err := repositories.NewEnquiryRepository(tx).Create(enquiry); err != nil {
			return err
		}

		entry, err = helpers.InsertActivity(tx, models.EntityEnquiry, enquiry.ID, actor, "Enquiry creation")
		return err
	})
	if err != nil {
		return nil, err
	}

	s.pub.Publish(entry)
	s.log.Info("enquiry created", zap.String("enquiry_no", enquiry.EnquiryNo), zap.Int("user_id", actor.UserID))
	return enquiry, nil
}

type EnquiryDetail struct {
	Enquiry       *models.Enquiry      `json:"enquiry"`
	CurrencyLabel string               `json:"currency_label"`
	Items         []models.EnquiryItem `json:"items"`
	ItemsTotal    string               `json:"items_total"`
	Activity      []models.ActivityLog `json:"activity"`
}

func (s *EnquiryService) GetEnquiry(ctx context.Context, actor models.Actor, id types.SnowflakeID) (*EnquiryDetail, error) {
	db := s.db.WithContext(ctx)
	e, err := loadEnquiry(db, actor, id)
	if err != nil {
		return nil, err
	}

	items, err := repositories.NewItemRepository(db).ListByEnquiry(e.ID)
	if err != nil {
		return nil, err
	}
	activity, err := repositories.NewActivityRepository(db).ListByEntity(models.EntityEnquiry, e.ID)
	if err != nil {
		return nil, err
	}
	total, err := itemsTotal(items)
	if err != nil {
		return nil, err
	}
	label, err := currencyLabel(db, e.CurrencyID)
	if err != nil {
		return nil, err
	}

	return &EnquiryDetail{
		Enquiry:       e,
		CurrencyLabel: label,
		Items:         items,
		ItemsTotal:    total.StringFixed(2),
		Activity:      activity,
	}, nil
}

// DeleteEnquiry soft deletes an enquiry that has not reached purchasing.
func (s *EnquiryService) DeleteEnquiry(ctx context.Context, actor models.Actor, id types.SnowflakeID) error {
	var entry models.ActivityLog

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		enquiries := repositories.NewEnquiryRepository(tx)
		e, err := enquiries.FindByID(id)
		if err != nil {
			return notFound(err, "Enquiry")
		}
		if err := ownedBy(e, actor); err != nil {
			return err
		}
		if e.IsSupplierPOCreated {
			return apperr.NewPrecondition("ENQUIRY_LOCKED", "enquiry %s already has supplier purchase orders", e.EnquiryNo)
		}
		if err := enquiries.SoftDelete(e, actor.UserID); err != nil {
			return stale(err, "Enquiry")
		}

		entry, err = helpers.InsertActivity(tx, models.EntityEnquiry, e.ID, actor, "Enquiry deleted")
		return err
	})
	if err != nil {
		return err
	}

	s.pub.Publish(entry)
	return nil
}

type StageCount struct {
	Level     int    `json:"level"`
	StageName string `json:"stage_name"`
	Count     int64  `json:"count"`
}

// Dashboard counts live enquiries per stage, listing every stage.
// ListEnquiries pages through the live enquiries of the actor's
// organisation, newest first.
func (s *EnquiryService) ListEnquiries(ctx context.Context, actor models.Actor, q repositories.ListQuery) (*Page[repositories.EnquiryRow], error) {
	rows, meta, err := repositories.NewListRepository(s.db.WithContext(ctx)).Enquiries(actor.OrganisationID, listQuery(q))
	return newPage(rows, meta, err)
}

func (s *EnquiryService) Dashboard(ctx context.Context, actor models.Actor) ([]StageCount, error) {
	rows, err := repositories.NewEnquiryRepository(s.db.WithContext(ctx)).CountByLevel(actor.OrganisationID)
	if err != nil {
		return nil, err
	}

	counts := make(map[int]int64, len(rows))
	for _, r := range rows {
		counts[r.Level] = r.Count
	}

	out := make([]StageCount, 0, int(lifecycle.StageBilled))
	for st := lifecycle.StageEnquiry; st <= lifecycle.StageBilled; st++ {
		out = append(out, StageCount{Level: int(st), StageName: st.String(), Count: counts[int(st)]})
	}
	return out, nil
}

// currencyLabel renders the live label; an unknown currency yields "".
func currencyLabel(db *gorm.DB, id types.SnowflakeID) (string, error) {
	if id == 0 {
		return "", nil
	}
	c, err := repositories.NewMasterRepository(db).FindCurrency(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return finance.CurrencyLabel(c.ShortForm, c.Symbol), nil
}
