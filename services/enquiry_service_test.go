package services

import (
	"strings"
	"testing"

	"enquiry-app/apperr"
	"enquiry-app/importer"
	"enquiry-app/lifecycle"
	"enquiry-app/models"
	"enquiry-app/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEnquiryRequiresQualifiedLead(t *testing.T) {
	f := newFixture(t)

	lead, err := f.leads.CreateLead(f.ctx, f.actor, CreateLeadInput{CompanyName: "Acme Trading", CurrencyID: f.currency(t, "EUR").ID})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(lead.LeadNo, repositories.PrefixLead))

	_, err = f.enquiries.CreateEnquiry(f.ctx, f.actor, CreateEnquiryInput{LeadID: lead.ID})
	requireCode(t, err, apperr.Precondition, "LEAD_NOT_QUALIFIED")

	_, err = f.leads.QualifyLead(f.ctx, f.actor, lead.ID)
	require.NoError(t, err)
	_, err = f.leads.QualifyLead(f.ctx, f.actor, lead.ID)
	requireCode(t, err, apperr.Precondition, "LEAD_QUALIFIED")

	e, err := f.enquiries.CreateEnquiry(f.ctx, f.actor, CreateEnquiryInput{LeadID: lead.ID})
	require.NoError(t, err)
	assert.Equal(t, int(lifecycle.StageEnquiry), e.Level)
	assert.Equal(t, lead.CurrencyID, e.CurrencyID)
	assert.True(t, strings.HasPrefix(e.EnquiryNo, repositories.PrefixEnquiry))

	detail, err := f.enquiries.GetEnquiry(f.ctx, f.actor, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "EUR(€)", detail.CurrencyLabel)
	require.Len(t, detail.Activity, 1)
	assert.Equal(t, "Enquiry creation", detail.Activity[0].ActionName)
}

func TestDuplicateLeadRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.leads.CreateLead(f.ctx, f.actor, CreateLeadInput{CompanyName: "Acme Trading"})
	require.NoError(t, err)
	_, err = f.leads.CreateLead(f.ctx, f.actor, CreateLeadInput{CompanyName: "Acme Trading"})
	requireCode(t, err, apperr.Precondition, "DUPLICATE_LEAD")
}

func TestEnquiryOfOtherOrganisationIsNotFound(t *testing.T) {
	f := newFixture(t)
	e := f.enquiry(t)

	outsider := f.actor
	outsider.OrganisationID = "org-2"
	_, err := f.enquiries.GetEnquiry(f.ctx, outsider, e.ID)
	requireCode(t, err, apperr.NotFound, "NOT_FOUND")
}

func TestAddItemMarksEnquiryAndRejectsDuplicates(t *testing.T) {
	f := newFixture(t)
	e := f.enquiry(t)

	item := f.item(t, e, "AB-12/x", "")
	assert.Equal(t, "ab12x", item.PartNumberCode)
	assert.Equal(t, "1", item.Quantity)
	assert.True(t, f.reload(t, e).IsItemAdded)

	_, err := f.items.AddItem(f.ctx, f.actor, e.ID, ItemInput{PartNumber: " AB-12/x "})
	requireCode(t, err, apperr.Precondition, "DUPLICATE_PART_NUMBER")

	_, err = f.items.AddItem(f.ctx, f.actor, e.ID, ItemInput{PartNumber: "CD-34", Quantity: "abc"})
	requireCode(t, err, apperr.Validation, "")

	detail, err := f.enquiries.GetEnquiry(f.ctx, f.actor, e.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Items, 1)
	assert.Len(t, detail.Activity, 2)
}

func TestEditItemBeforeAnyItem(t *testing.T) {
	f := newFixture(t)
	e := f.enquiry(t)

	err := f.items.DeleteItem(f.ctx, f.actor, e.ID, 12345)
	requireCode(t, err, apperr.Precondition, "MISSING_"+string(lifecycle.OpEditItem))
}

func TestBulkAddItemsSkipsDuplicates(t *testing.T) {
	f := newFixture(t)
	e := f.enquiry(t)
	f.item(t, e, "P-100", "2")

	res, err := f.items.BulkAddItems(f.ctx, f.actor, e.ID, []importer.ItemRow{
		{Row: 2, PartNumber: "P-100", Quantity: "5"},
		{Row: 3, PartNumber: "P-200", Quantity: "3"},
		{Row: 4, PartNumber: "P-200", Quantity: "1"},
		{Row: 5, PartNumber: "P-300", Quantity: "x"},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, res.TotalRows)
	assert.Equal(t, 1, res.SuccessCount)
	assert.Equal(t, 2, res.SkippedCount)
	assert.Equal(t, 1, res.ErrorCount)

	res, err = f.items.BulkAddItems(f.ctx, f.actor, e.ID, []importer.ItemRow{{Row: 2, PartNumber: "P-200"}})
	require.NoError(t, err)
	assert.Equal(t, 0, res.SuccessCount)
	assert.Equal(t, 1, res.SkippedCount)

	detail, err := f.enquiries.GetEnquiry(f.ctx, f.actor, e.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Items, 2)
}

func TestDashboardCountsEveryStage(t *testing.T) {
	f := newFixture(t)
	f.enquiry(t)
	f.enquiry(t)

	stages, err := f.enquiries.Dashboard(f.ctx, f.actor)
	require.NoError(t, err)
	require.Len(t, stages, 6)
	assert.Equal(t, int(lifecycle.StageEnquiry), stages[0].Level)
	assert.EqualValues(t, 2, stages[0].Count)
	for _, s := range stages[1:] {
		assert.EqualValues(t, 0, s.Count, s.StageName)
	}
}

func TestDashboardCountsInactiveButNotDeleted(t *testing.T) {
	f := newFixture(t)
	inactive := f.enquiry(t)
	deleted := f.enquiry(t)
	f.enquiry(t)

	require.NoError(t, f.db.Model(&models.Enquiry{}).Where("id = ?", inactive.ID).Update("is_active", false).Error)
	require.NoError(t, f.enquiries.DeleteEnquiry(f.ctx, f.actor, deleted.ID))

	stages, err := f.enquiries.Dashboard(f.ctx, f.actor)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stages[0].Count)
}

func TestStaleEnquiryTransitionConflicts(t *testing.T) {
	f := newFixture(t)
	e := f.enquiry(t)

	old := f.reload(t, e)
	f.item(t, e, "P-1", "1")

	repo := repositories.NewEnquiryRepository(f.db)
	err := repo.Transition(old, lifecycle.Guard(lifecycle.OpAddItem), map[string]interface{}{"is_item_added": true}, f.actor.UserID)
	assert.ErrorIs(t, err, repositories.ErrStaleRecord)
}

func TestDeleteEnquiryHidesIt(t *testing.T) {
	f := newFixture(t)
	e := f.enquiry(t)

	require.NoError(t, f.enquiries.DeleteEnquiry(f.ctx, f.actor, e.ID))
	_, err := f.enquiries.GetEnquiry(f.ctx, f.actor, e.ID)
	requireCode(t, err, apperr.NotFound, "")

	var stored models.Enquiry
	require.NoError(t, f.db.Where("id = ?", e.ID).First(&stored).Error)
	assert.True(t, stored.IsDeleted)
}
