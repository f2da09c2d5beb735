package services

import (
	"context"
	"fmt"

	"enquiry-app/apperr"
	"enquiry-app/finance"
	"enquiry-app/lifecycle"
	"enquiry-app/models"
	"enquiry-app/notification"
	"enquiry-app/repositories"
	"enquiry-app/types"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SelectionService struct {
	base
	mailer notification.Mailer
}

func NewSelectionService(db *gorm.DB, log *zap.Logger, pub notification.Publisher, mailer notification.Mailer) *SelectionService {
	if mailer == nil {
		mailer = notification.NewLogMailer(log)
	}
	return &SelectionService{base: newBase(db, log, pub), mailer: mailer}
}

// SelectionState is what is known about a candidate's selection. Every
// field is absent when the candidate was never selected.
type SelectionState struct {
	IsSelected           bool                           `json:"is_selected"`
	SelectionID          types.Maybe[types.SnowflakeID] `json:"selection_id"`
	IsShortListed        types.Maybe[bool]              `json:"is_short_listed"`
	IsSkipped            types.Maybe[bool]              `json:"is_skipped"`
	IsMailSent           types.Maybe[bool]              `json:"is_mail_sent"`
	SelectedItemQuantity types.Maybe[string]            `json:"selected_item_quantity"`
}

type Candidate struct {
	SupplierID     types.SnowflakeID `json:"supplier_id"`
	SupplierName   string            `json:"supplier_name"`
	SupplierEmail  string            `json:"supplier_email"`
	SupplierItemID types.SnowflakeID `json:"supplier_item_id"`
	UnitPrice      string            `json:"unit_price"`
	Delivery       string            `json:"delivery"`
	Notes          string            `json:"notes"`
	Selection      SelectionState    `json:"selection"`
}

type ItemCandidates struct {
	EnquiryItemID  types.SnowflakeID `json:"enquiry_item_id"`
	PartNumber     string            `json:"part_number"`
	PartNumberCode string            `json:"part_number_code"`
	PartDesc       string            `json:"part_desc"`
	Quantity       string            `json:"quantity"`
	Candidates     []Candidate       `json:"candidates"`
}

// Candidates lists, per enquiry item, the approved supplier items sharing
// its part number code. Items without candidates are left out.
func (s *SelectionService) Candidates(ctx context.Context, actor models.Actor, enquiryID types.SnowflakeID) ([]ItemCandidates, error) {
	db := s.db.WithContext(ctx)
	if _, err := loadEnquiry(db, actor, enquiryID); err != nil {
		return nil, err
	}

	rows, err := repositories.NewSelectionRepository(db).Candidates(enquiryID)
	if err != nil {
		return nil, err
	}

	var out []ItemCandidates
	for _, r := range rows {
		if len(out) == 0 || out[len(out)-1].EnquiryItemID != r.EnquiryItemID {
			out = append(out, ItemCandidates{
				EnquiryItemID:  r.EnquiryItemID,
				PartNumber:     r.PartNumber,
				PartNumberCode: r.PartNumberCode,
				PartDesc:       r.PartDesc,
				Quantity:       r.Quantity,
			})
		}

		state := SelectionState{}
		if r.SelectionID != nil {
			state = SelectionState{
				IsSelected:           true,
				SelectionID:          types.Some(types.SnowflakeID(*r.SelectionID)),
				IsShortListed:        types.FromPtr(r.IsShortListed),
				IsSkipped:            types.FromPtr(r.IsSkipped),
				IsMailSent:           types.FromPtr(r.IsMailSent),
				SelectedItemQuantity: types.FromPtr(r.SelectedQuantity),
			}
		}

		group := &out[len(out)-1]
		group.Candidates = append(group.Candidates, Candidate{
			SupplierID:     r.SupplierID,
			SupplierName:   r.SupplierName,
			SupplierEmail:  r.SupplierEmail,
			SupplierItemID: r.SupplierItemID,
			UnitPrice:      r.SupplierUnitPrice,
			Delivery:       r.SupplierDelivery,
			Notes:          r.SupplierNotes,
			Selection:      state,
		})
	}
	return out, nil
}

type SelectInput struct {
	EnquiryItemID    types.SnowflakeID       `json:"enquiry_item_id" validate:"required"`
	SupplierID       types.SnowflakeID       `json:"supplier_id" validate:"required"`
	SupplierItemID   types.SnowflakeID       `json:"supplier_item_id" validate:"required"`
	Quantity         string                  `json:"quantity"`
	FinalItemDetails models.FinalItemDetails `json:"final_item_details"`
}

// Select records that a supplier item is chosen for an enquiry item.
// Selecting the same triple again updates the single existing row.
func (s *SelectionService) Select(ctx context.Context, actor models.Actor, enquiryID types.SnowflakeID, in SelectInput) (*models.SupplierSelection, error) {
	var selection *models.SupplierSelection

	_, err := s.transition(ctx, actor, enquiryID, lifecycle.OpSelect, func(st *step) error {
		item, err := repositories.NewItemRepository(st.tx).FindByID(enquiryID, in.EnquiryItemID)
		if err != nil {
			return notFound(err, "Enquiry item")
		}

		master := repositories.NewMasterRepository(st.tx)
		supplier, err := master.FindSupplier(in.SupplierID)
		if err != nil {
			return notFound(err, "Supplier")
		}
		supplierItem, err := master.FindSupplierItem(in.SupplierItemID)
		if err != nil {
			return notFound(err, "Supplier item")
		}
		if !approved(supplier) || supplierItem.SupplierID != supplier.ID || supplierItem.PartNumberCode != item.PartNumberCode {
			return apperr.NewPrecondition("NOT_A_CANDIDATE", "supplier item %s is not a candidate for part number %s", supplierItem.PartNumber, item.PartNumber)
		}

		selections := repositories.NewSelectionRepository(st.tx)
		if existing, err := selections.FindByTriple(enquiryID, item.ID, supplier.ID, supplierItem.ID); err == nil {
			shipped, err := repositories.NewShipmentRepository(st.tx).ListBySelection(existing.ID)
			if err != nil {
				return err
			}
			if len(shipped) > 0 {
				return apperr.NewPrecondition("SELECTION_SHIPPED", "selection for %s already has shipments", item.PartNumber)
			}
		}

		quantity := in.Quantity
		if quantity == "" {
			quantity = item.Quantity
		}
		q, err := finance.CoerceString(quantity)
		if err != nil {
			return err
		}
		if !q.IsPositive() {
			return apperr.NewValidation("quantity must be greater than zero")
		}
		if in.FinalItemDetails.UnitPrice != nil {
			if _, err := finance.Coerce(in.FinalItemDetails.UnitPrice); err != nil {
				return err
			}
		}

		sel := &models.SupplierSelection{
			EnquiryID:        enquiryID,
			EnquiryItemID:    item.ID,
			SupplierID:       supplier.ID,
			SupplierItemID:   supplierItem.ID,
			Quantity:         quantity,
			FinalItemDetails: in.FinalItemDetails,
		}
		sel.CreatedBy = actor.UserID
		sel.UpdatedBy = actor.UserID
		selection, err = selections.Upsert(sel)
		if err != nil {
			return err
		}

		st.action = fmt.Sprintf("Supplier item %s of %s selected", supplierItem.PartNumber, supplier.CompanyName)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return selection, nil
}

// financeOpen allows supplier terms to change until the supplier's first
// shipment. Purchase orders keep their own frozen copy.
func financeOpen(tx *gorm.DB, e *models.Enquiry, supplierID types.SnowflakeID) error {
	n, err := repositories.NewShipmentRepository(tx).CountBySupplier(e.ID, supplierID)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.NewPrecondition("FINANCE_LOCKED", "supplier terms of enquiry %s are frozen by its shipments", e.EnquiryNo)
	}
	return nil
}

func approved(s *models.Supplier) bool {
	return s.IsActive && s.IsApproved && !s.IsDeleted && s.Level == models.ApprovedSupplierLevel
}

// Skip marks a selection as deliberately not pursued, or clears the mark.
func (s *SelectionService) Skip(ctx context.Context, actor models.Actor, enquiryID, selectionID types.SnowflakeID, skipped bool) (*models.SupplierSelection, error) {
	var selection *models.SupplierSelection

	_, err := s.transition(ctx, actor, enquiryID, lifecycle.OpSelect, func(st *step) error {
		selections := repositories.NewSelectionRepository(st.tx)
		found, err := selections.FindByIDs(enquiryID, []types.SnowflakeID{selectionID})
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return apperr.NewNotFound("Supplier selection")
		}
		sel := found[0]
		if skipped && sel.IsShortListed {
			return apperr.NewPrecondition("SELECTION_SHORTLISTED", "a shortlisted selection cannot be skipped")
		}
		if err := selections.SetSkipped(&sel, skipped, actor.UserID); err != nil {
			return stale(err, "Supplier selection")
		}
		sel.IsSkipped = skipped
		selection = &sel

		st.action = "Supplier selection skipped"
		if !skipped {
			st.action = "Supplier selection restored"
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return selection, nil
}

// Shortlist toggles which selections take part in the enquiry rollup. The
// shortlist is frozen once a quote exists.
func (s *SelectionService) Shortlist(ctx context.Context, actor models.Actor, enquiryID types.SnowflakeID, ids []types.SnowflakeID, shortlisted bool) (*models.Enquiry, error) {
	if len(ids) == 0 {
		return nil, apperr.NewValidation("at least one selection is required")
	}

	op := lifecycle.OpSelect
	if shortlisted {
		op = lifecycle.OpShortlist
	}

	return s.transition(ctx, actor, enquiryID, op, func(st *step) error {
		if st.enquiry.IsQuoteCreated {
			return apperr.NewPrecondition("SHORTLIST_LOCKED", "the shortlist of enquiry %s is frozen by its quote", st.enquiry.EnquiryNo)
		}

		selections := repositories.NewSelectionRepository(st.tx)
		found, err := selections.FindByIDs(enquiryID, ids)
		if err != nil {
			return err
		}
		if len(found) != len(uniqueIDs(ids)) {
			return apperr.NewNotFound("Supplier selection")
		}
		for _, sel := range found {
			if shortlisted && sel.IsSkipped {
				return apperr.NewPrecondition("SELECTION_SKIPPED", "skipped selections cannot be shortlisted")
			}
		}

		if _, err := selections.SetShortlisted(enquiryID, ids, shortlisted, actor.UserID); err != nil {
			return err
		}

		if shortlisted {
			st.action = fmt.Sprintf("%d supplier items shortlisted", len(found))
		} else {
			st.action = fmt.Sprintf("%d supplier items removed from shortlist", len(found))
		}
		return nil
	})
}

func uniqueIDs(ids []types.SnowflakeID) []types.SnowflakeID {
	seen := make(map[types.SnowflakeID]bool, len(ids))
	out := make([]types.SnowflakeID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

type FinanceInput struct {
	SupplierTotal  *string           `json:"supplier_total"`
	FreightCharges *string           `json:"freight_charges"`
	PackingCharges *string           `json:"packing_charges"`
	VatGroupID     types.SnowflakeID `json:"vat_group_id"`
	PaymentTermsID types.SnowflakeID `json:"payment_terms_id"`
	PaymentOption  string            `json:"payment_option"`
	DeliveryTerm   string            `json:"delivery_term"`
	CurrencyID     types.SnowflakeID `json:"currency_id"`
	Remarks        string            `json:"remarks"`
}

// UpdateSupplierFinance writes the supplier terms onto every selection of
// that supplier in the enquiry.
func (s *SelectionService) UpdateSupplierFinance(ctx context.Context, actor models.Actor, enquiryID, supplierID types.SnowflakeID, in FinanceInput) error {
	for _, v := range []*string{in.SupplierTotal, in.FreightCharges, in.PackingCharges} {
		if _, err := finance.Coerce(v); err != nil {
			return err
		}
	}

	_, err := s.transition(ctx, actor, enquiryID, lifecycle.OpSelect, func(st *step) error {
		if err := financeOpen(st.tx, st.enquiry, supplierID); err != nil {
			return err
		}

		master := repositories.NewMasterRepository(st.tx)
		supplier, err := master.FindSupplier(supplierID)
		if err != nil {
			return notFound(err, "Supplier")
		}
		if in.VatGroupID != 0 {
			if _, err := master.FindVatGroup(in.VatGroupID); err != nil {
				return notFound(err, "VAT group")
			}
		}

		meta := models.FinanceMeta{
			SupplierTotal:  in.SupplierTotal,
			FreightCharges: in.FreightCharges,
			PackingCharges: in.PackingCharges,
			VatGroupID:     in.VatGroupID,
			PaymentTermsID: in.PaymentTermsID,
			PaymentOption:  in.PaymentOption,
			DeliveryTerm:   in.DeliveryTerm,
			CurrencyID:     in.CurrencyID,
			Remarks:        in.Remarks,
		}
		n, err := repositories.NewSelectionRepository(st.tx).UpdateFinanceMeta(enquiryID, supplierID, meta, actor.UserID)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.NewNotFound("Supplier selection")
		}

		st.action = fmt.Sprintf("Finance terms of %s updated", supplier.CompanyName)
		return nil
	})
	return err
}

// RefreshSupplierTotal recomputes the stored supplier total from the
// shortlisted selections and their effective unit prices.
func (s *SelectionService) RefreshSupplierTotal(ctx context.Context, actor models.Actor, enquiryID, supplierID types.SnowflakeID) (string, error) {
	var total string

	_, err := s.transition(ctx, actor, enquiryID, lifecycle.OpSelect, func(st *step) error {
		if err := financeOpen(st.tx, st.enquiry, supplierID); err != nil {
			return err
		}

		selections := repositories.NewSelectionRepository(st.tx)
		rows, err := selections.ListBySupplier(enquiryID, supplierID)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return apperr.NewNotFound("Supplier selection")
		}

		var shortlisted []models.SupplierSelection
		for _, r := range rows {
			if r.IsShortListed {
				shortlisted = append(shortlisted, r)
			}
		}
		sum, err := pricedTotal(st.tx, shortlisted)
		if err != nil {
			return err
		}

		total = sum.StringFixed(2)
		if err := selections.UpdateSupplierTotal(enquiryID, supplierID, total, actor.UserID); err != nil {
			return err
		}
		st.action = "Supplier total recalculated to " + total
		return nil
	})
	if err != nil {
		return "", err
	}
	return total, nil
}

// SendSupplierEnquiryMail asks a supplier to quote its selected items and
// marks those selections as mailed.
func (s *SelectionService) SendSupplierEnquiryMail(ctx context.Context, actor models.Actor, enquiryID, supplierID types.SnowflakeID) error {
	db := s.db.WithContext(ctx)
	e, err := loadEnquiry(db, actor, enquiryID)
	if err != nil {
		return err
	}
	supplier, err := repositories.NewMasterRepository(db).FindSupplier(supplierID)
	if err != nil {
		return notFound(err, "Supplier")
	}
	if supplier.Email == "" {
		return apperr.NewPrecondition("SUPPLIER_NO_EMAIL", "supplier %s has no email address", supplier.CompanyName)
	}

	rows, err := repositories.NewSelectionRepository(db).ListBySupplier(enquiryID, supplierID)
	if err != nil {
		return err
	}
	items, err := repositories.NewItemRepository(db).ListByEnquiry(enquiryID)
	if err != nil {
		return err
	}
	byID := make(map[types.SnowflakeID]models.EnquiryItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	mail := notification.SupplierEnquiryMail{
		EnquiryNo:    e.EnquiryNo,
		SupplierName: supplier.CompanyName,
		SenderName:   actor.FullName(),
	}
	for _, r := range rows {
		it, ok := byID[r.EnquiryItemID]
		if !ok || r.IsSkipped {
			continue
		}
		mail.Lines = append(mail.Lines, notification.SupplierEnquiryLine{
			PartNumber: it.PartNumber,
			PartDesc:   it.PartDesc,
			Quantity:   r.Quantity,
			Delivery:   it.Delivery,
		})
	}
	if len(mail.Lines) == 0 {
		return apperr.NewPrecondition("NOTHING_TO_SEND", "no selected items for supplier %s", supplier.CompanyName)
	}

	body, err := notification.RenderSupplierEnquiry(mail)
	if err != nil {
		return err
	}
	entry := &models.MailLog{
		EnquiryID:  enquiryID,
		SupplierID: supplierID,
		Recipient:  supplier.Email,
		Subject:    "Enquiry " + e.EnquiryNo,
		ItemCount:  len(mail.Lines),
		Status:     models.MailStatusSent,
	}
	entry.CreatedBy = actor.UserID
	entry.UpdatedBy = actor.UserID

	sendErr := s.mailer.Send([]string{entry.Recipient}, entry.Subject, body)
	if sendErr != nil {
		entry.Status = models.MailStatusFailed
		entry.Error = sendErr.Error()
	}
	if err := repositories.NewListRepository(db).CreateMailLog(entry); err != nil {
		s.log.Warn("mail log not written", zap.String("enquiry_no", e.EnquiryNo), zap.Error(err))
	}
	if sendErr != nil {
		s.log.Error("supplier enquiry mail failed", zap.String("enquiry_no", e.EnquiryNo), zap.String("supplier", supplier.CompanyName), zap.Error(sendErr))
		return apperr.New(apperr.Unexpected, "MAIL_FAILED", "could not send mail to "+supplier.Email)
	}

	_, err = s.transition(ctx, actor, enquiryID, lifecycle.OpSelect, func(st *step) error {
		if _, err := repositories.NewSelectionRepository(st.tx).MarkMailSent(enquiryID, supplierID, actor.UserID); err != nil {
			return err
		}
		st.action = "Enquiry mailed to " + supplier.CompanyName
		return nil
	})
	return err
}

// MailLogs lists the enquiry mails sent for enquiryID, optionally narrowed
// to one supplier.
func (s *SelectionService) MailLogs(ctx context.Context, actor models.Actor, enquiryID, supplierID types.SnowflakeID) ([]models.MailLog, error) {
	db := s.db.WithContext(ctx)
	if _, err := loadEnquiry(db, actor, enquiryID); err != nil {
		return nil, err
	}
	return repositories.NewListRepository(db).MailLogs(enquiryID, supplierID)
}
