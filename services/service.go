package services

import (
	"context"
	"errors"
	"strings"

	"enquiry-app/apperr"
	"enquiry-app/controllers/helpers"
	"enquiry-app/lifecycle"
	"enquiry-app/models"
	"enquiry-app/notification"
	"enquiry-app/repositories"
	"enquiry-app/types"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// base is shared by every service.
type base struct {
	db  *gorm.DB
	log *zap.Logger
	pub notification.Publisher
}

func newBase(db *gorm.DB, log *zap.Logger, pub notification.Publisher) base {
	if log == nil {
		log = zap.NewNop()
	}
	if pub == nil {
		pub = notification.Discard{}
	}
	return base{db: db, log: log, pub: pub}
}

// Page is one page of a list view.
type Page[T any] struct {
	Items []T                   `json:"items"`
	Meta  repositories.PageMeta `json:"meta"`
}

func newPage[T any](rows []T, meta repositories.PageMeta, err error) (*Page[T], error) {
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []T{}
	}
	return &Page[T]{Items: rows, Meta: meta}, nil
}

func listQuery(q repositories.ListQuery) repositories.ListQuery {
	q.Search = strings.TrimSpace(q.Search)
	q.Type = strings.TrimSpace(q.Type)
	return q.Normalize()
}

// step is handed to the work of a transition.
type step struct {
	tx      *gorm.DB
	enquiry *models.Enquiry
	// action is the activity text, without the actor and time suffix.
	action string
	// then is an optional follow-up operation applied in the same update
	// when its own precondition holds after the work ran.
	then lifecycle.Operation
	// skip aborts without writing anything and without an error.
	skip bool
}

var errSkipped = errors.New("nothing to write")

// transition runs the precondition check, the work, the enquiry flag flip
// and the activity append as one transaction. The flip is a conditional
// update on the version read at the start, so two racing requests cannot
// both pass the same guard.
func (b *base) transition(ctx context.Context, actor models.Actor, enquiryID types.SnowflakeID, op lifecycle.Operation, work func(s *step) error) (*models.Enquiry, error) {
	var (
		entry   models.ActivityLog
		enquiry *models.Enquiry
	)

	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		enquiries := repositories.NewEnquiryRepository(tx)
		e, err := enquiries.FindByID(enquiryID)
		if err != nil {
			return notFound(err, "Enquiry")
		}
		if err := ownedBy(e, actor); err != nil {
			return err
		}
		if err := lifecycle.Check(e, op); err != nil {
			return err
		}

		s := &step{tx: tx, enquiry: e}
		if err := work(s); err != nil {
			return err
		}
		if s.skip {
			return errSkipped
		}

		updates := lifecycle.Apply(e, op)
		if s.then != "" && lifecycle.Check(e, s.then) == nil {
			for k, v := range lifecycle.Apply(e, s.then) {
				updates[k] = v
			}
		}
		if err := enquiries.Transition(e, lifecycle.Guard(op), updates, actor.UserID); err != nil {
			return stale(err, "Enquiry")
		}

		entry, err = helpers.InsertActivity(tx, models.EntityEnquiry, e.ID, actor, s.action)
		if err != nil {
			return err
		}

		enquiry, err = enquiries.FindByID(enquiryID)
		return err
	})
	if errors.Is(err, errSkipped) {
		return nil, errSkipped
	}
	if err != nil {
		return nil, err
	}

	b.pub.Publish(entry)
	return enquiry, nil
}

// ownedBy hides enquiries of other organisations.
func ownedBy(e *models.Enquiry, actor models.Actor) error {
	if actor.OrganisationID != "" && e.OrganisationID != actor.OrganisationID {
		return apperr.NewNotFound("Enquiry")
	}
	return nil
}

// loadEnquiry reads an enquiry visible to actor outside of a transition.
func loadEnquiry(db *gorm.DB, actor models.Actor, id types.SnowflakeID) (*models.Enquiry, error) {
	e, err := repositories.NewEnquiryRepository(db).FindByID(id)
	if err != nil {
		return nil, notFound(err, "Enquiry")
	}
	if err := ownedBy(e, actor); err != nil {
		return nil, err
	}
	return e, nil
}

func notFound(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NewNotFound(entity)
	}
	return err
}

func stale(err error, entity string) error {
	if errors.Is(err, repositories.ErrStaleRecord) {
		return apperr.NewConflict(entity)
	}
	return err
}
