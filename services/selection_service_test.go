package services

import (
	"testing"

	"enquiry-app/apperr"
	"enquiry-app/models"
	"enquiry-app/repositories"
	"enquiry-app/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCandidatesOnlyOfferApprovedSuppliers(t *testing.T) {
	f := newFixture(t)
	e := f.enquiry(t)
	f.item(t, e, "VL-200", "4")

	approvedSupplier := f.supplier(t, "Alpha Valves", true)
	f.supplierItem(t, approvedSupplier, "vl200", "12.50")
	pending := f.supplier(t, "Beta Valves", false)
	f.supplierItem(t, pending, "VL-200", "9")

	got, err := f.selections.Candidates(f.ctx, f.actor, e.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].Candidates, 1)

	c := got[0].Candidates[0]
	assert.Equal(t, approvedSupplier.ID, c.SupplierID)
	assert.Equal(t, "12.50", c.UnitPrice)
	assert.False(t, c.Selection.IsSelected)
	assert.False(t, c.Selection.SelectionID.Valid())
}

func TestCandidatesKeepSpacesInPartNumbers(t *testing.T) {
	f := newFixture(t)
	e := f.enquiry(t)
	spaced := f.item(t, e, "AB 12", "1")
	assert.Equal(t, "ab 12", spaced.PartNumberCode)

	s := f.supplier(t, "Alpha Valves", true)
	joined := f.supplierItem(t, s, "AB12", "5")
	assert.Equal(t, "ab12", joined.PartNumberCode)

	got, err := f.selections.Candidates(f.ctx, f.actor, e.ID)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = f.selections.Select(f.ctx, f.actor, e.ID, SelectInput{EnquiryItemID: spaced.ID, SupplierID: s.ID, SupplierItemID: joined.ID})
	requireCode(t, err, apperr.Precondition, "NOT_A_CANDIDATE")

	slashed := f.item(t, e, "ab/12", "1")
	assert.Equal(t, "ab12", slashed.PartNumberCode)
	got, err = f.selections.Candidates(f.ctx, f.actor, e.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, slashed.ID, got[0].EnquiryItemID)
}

func TestSelectIsIdempotentPerTriple(t *testing.T) {
	f := newFixture(t)
	e := f.enquiry(t)
	item := f.item(t, e, "VL-200", "4")
	s := f.supplier(t, "Alpha Valves", true)
	si := f.supplierItem(t, s, "VL-200", "12.50")

	first, err := f.selections.Select(f.ctx, f.actor, e.ID, SelectInput{EnquiryItemID: item.ID, SupplierID: s.ID, SupplierItemID: si.ID})
	require.NoError(t, err)
	assert.Equal(t, "4", first.Quantity)

	second, err := f.selections.Select(f.ctx, f.actor, e.ID, SelectInput{EnquiryItemID: item.ID, SupplierID: s.ID, SupplierItemID: si.ID, Quantity: "6"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "6", second.Quantity)

	var count int64
	require.NoError(t, f.db.Model(&models.SupplierSelection{}).Where("enquiry_id = ?", e.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	got, err := f.selections.Candidates(f.ctx, f.actor, e.ID)
	require.NoError(t, err)
	state := got[0].Candidates[0].Selection
	assert.True(t, state.IsSelected)
	assert.Equal(t, types.Some(first.ID), state.SelectionID)
	assert.Equal(t, "6", state.SelectedItemQuantity.OrElse(""))
}

func TestSelectRejectsNonCandidates(t *testing.T) {
	f := newFixture(t)
	e := f.enquiry(t)
	item := f.item(t, e, "VL-200", "4")

	pending := f.supplier(t, "Beta Valves", false)
	pendingItem := f.supplierItem(t, pending, "VL-200", "9")
	_, err := f.selections.Select(f.ctx, f.actor, e.ID, SelectInput{EnquiryItemID: item.ID, SupplierID: pending.ID, SupplierItemID: pendingItem.ID})
	requireCode(t, err, apperr.Precondition, "NOT_A_CANDIDATE")

	s := f.supplier(t, "Alpha Valves", true)
	other := f.supplierItem(t, s, "VL-300", "9")
	_, err = f.selections.Select(f.ctx, f.actor, e.ID, SelectInput{EnquiryItemID: item.ID, SupplierID: s.ID, SupplierItemID: other.ID})
	requireCode(t, err, apperr.Precondition, "NOT_A_CANDIDATE")

	si := f.supplierItem(t, s, "VL-200", "9")
	_, err = f.selections.Select(f.ctx, f.actor, e.ID, SelectInput{EnquiryItemID: item.ID, SupplierID: s.ID, SupplierItemID: si.ID, Quantity: "0"})
	requireCode(t, err, apperr.Validation, "")
}

func TestSkippedSelectionCannotBeShortlisted(t *testing.T) {
	f := newFixture(t)
	e := f.enquiry(t)
	item := f.item(t, e, "VL-200", "4")
	s := f.supplier(t, "Alpha Valves", true)
	si := f.supplierItem(t, s, "VL-200", "12.50")

	sel, err := f.selections.Select(f.ctx, f.actor, e.ID, SelectInput{EnquiryItemID: item.ID, SupplierID: s.ID, SupplierItemID: si.ID})
	require.NoError(t, err)

	_, err = f.selections.Skip(f.ctx, f.actor, e.ID, sel.ID, true)
	require.NoError(t, err)
	_, err = f.selections.Shortlist(f.ctx, f.actor, e.ID, []types.SnowflakeID{sel.ID}, true)
	requireCode(t, err, apperr.Precondition, "SELECTION_SKIPPED")

	_, err = f.selections.Skip(f.ctx, f.actor, e.ID, sel.ID, false)
	require.NoError(t, err)
	_, err = f.selections.Shortlist(f.ctx, f.actor, e.ID, []types.SnowflakeID{sel.ID}, true)
	require.NoError(t, err)
	assert.True(t, f.reload(t, e).IsItemShortListed)

	_, err = f.selections.Skip(f.ctx, f.actor, e.ID, sel.ID, true)
	requireCode(t, err, apperr.Precondition, "SELECTION_SHORTLISTED")
}

func TestRollupCountsShortlistedSuppliersOnly(t *testing.T) {
	f := newFixture(t)
	e := f.enquiry(t)
	item := f.item(t, e, "VL-200", "10")
	vat := f.vatGroup(t, "Standard 10%")

	alpha := f.supplier(t, "Alpha Valves", true)
	alphaItem := f.supplierItem(t, alpha, "VL-200", "10")
	beta := f.supplier(t, "Beta Valves", true)
	betaItem := f.supplierItem(t, beta, "VL-200", "8")

	a, err := f.selections.Select(f.ctx, f.actor, e.ID, SelectInput{EnquiryItemID: item.ID, SupplierID: alpha.ID, SupplierItemID: alphaItem.ID})
	require.NoError(t, err)
	b, err := f.selections.Select(f.ctx, f.actor, e.ID, SelectInput{EnquiryItemID: item.ID, SupplierID: beta.ID, SupplierItemID: betaItem.ID})
	require.NoError(t, err)

	require.NoError(t, f.selections.UpdateSupplierFinance(f.ctx, f.actor, e.ID, alpha.ID, FinanceInput{
		SupplierTotal:  strPtr("100"),
		FreightCharges: strPtr("20"),
		PackingCharges: strPtr("10"),
		VatGroupID:     vat.ID,
	}))
	require.NoError(t, f.selections.UpdateSupplierFinance(f.ctx, f.actor, e.ID, beta.ID, FinanceInput{
		SupplierTotal:  strPtr("80"),
		FreightCharges: strPtr(""),
		VatGroupID:     vat.ID,
	}))

	_, err = f.selections.Shortlist(f.ctx, f.actor, e.ID, []types.SnowflakeID{a.ID, b.ID}, true)
	require.NoError(t, err)

	all, err := f.rollups.SupplierRollups(f.ctx, f.actor, e.ID, repositories.AllSelections)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Alpha Valves", all[0].SupplierName)
	assert.Equal(t, "130.00", all[0].SubTotal.StringFixed(2))
	assert.Equal(t, "13.00", all[0].VatAmount.StringFixed(2))
	assert.Equal(t, "143.00", all[0].SupplierFinalTotal.StringFixed(2))
	assert.Equal(t, "88.00", all[1].SupplierFinalTotal.StringFixed(2))

	view, err := f.rollups.EnquiryRollup(f.ctx, f.actor, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "231.00", view.AddedSupplierFinalTotal.StringFixed(2))

	_, err = f.selections.Shortlist(f.ctx, f.actor, e.ID, []types.SnowflakeID{b.ID}, false)
	require.NoError(t, err)

	view, err = f.rollups.EnquiryRollup(f.ctx, f.actor, e.ID)
	require.NoError(t, err)
	require.Len(t, view.Suppliers, 1)
	assert.Equal(t, alpha.ID, view.Suppliers[0].SupplierID)
	assert.Equal(t, "143.00", view.AddedSupplierFinalTotal.StringFixed(2))
	assert.Equal(t, "13.00", view.AddedVatGroupValue.StringFixed(2))
}

func TestRollupExcludesUnshortlistedItemOfSameSupplier(t *testing.T) {
	f := newFixture(t)
	e := f.enquiry(t)
	itemA := f.item(t, e, "A-1", "10")
	itemB := f.item(t, e, "B-1", "5")

	s := f.supplier(t, "Alpha Valves", true)
	offerA := f.supplierItem(t, s, "A-1", "5")
	offerB := f.supplierItem(t, s, "B-1", "10")

	a, err := f.selections.Select(f.ctx, f.actor, e.ID, SelectInput{EnquiryItemID: itemA.ID, SupplierID: s.ID, SupplierItemID: offerA.ID})
	require.NoError(t, err)
	_, err = f.selections.Select(f.ctx, f.actor, e.ID, SelectInput{EnquiryItemID: itemB.ID, SupplierID: s.ID, SupplierItemID: offerB.ID})
	require.NoError(t, err)
	require.NoError(t, f.selections.UpdateSupplierFinance(f.ctx, f.actor, e.ID, s.ID, FinanceInput{
		SupplierTotal:  strPtr("100"),
		FreightCharges: strPtr("20"),
		PackingCharges: strPtr("10"),
		VatGroupID:     f.vatGroup(t, "Standard 10%").ID,
	}))
	_, err = f.selections.Shortlist(f.ctx, f.actor, e.ID, []types.SnowflakeID{a.ID}, true)
	require.NoError(t, err)

	view, err := f.rollups.EnquiryRollup(f.ctx, f.actor, e.ID)
	require.NoError(t, err)
	require.Len(t, view.Suppliers, 1)
	group := view.Suppliers[0]
	require.Len(t, group.Items, 1)
	assert.Equal(t, a.ID, group.Items[0].SelectionID)
	assert.Equal(t, "10", group.ItemTotalQuantity.String())
	assert.Equal(t, "130.00", group.SubTotal.StringFixed(2))
	assert.Equal(t, "13.00", group.VatAmount.StringFixed(2))
	assert.Equal(t, "143.00", group.SupplierFinalTotal.StringFixed(2))
	assert.Equal(t, "143.00", view.AddedSupplierFinalTotal.StringFixed(2))
	assert.Equal(t, "100.00", view.AddedSupplierTotal.StringFixed(2))
}

func TestRefreshSupplierTotalUsesShortlistedPrices(t *testing.T) {
	f := newFixture(t)
	e := f.enquiry(t)
	pump := f.item(t, e, "PM-1", "3")
	seal := f.item(t, e, "SL-1", "5")

	s := f.supplier(t, "Alpha Valves", true)
	pumpItem := f.supplierItem(t, s, "PM-1", "20")
	sealItem := f.supplierItem(t, s, "SL-1", "2")

	p, err := f.selections.Select(f.ctx, f.actor, e.ID, SelectInput{
		EnquiryItemID:    pump.ID,
		SupplierID:       s.ID,
		SupplierItemID:   pumpItem.ID,
		FinalItemDetails: models.FinalItemDetails{UnitPrice: strPtr("18.5")},
	})
	require.NoError(t, err)
	_, err = f.selections.Select(f.ctx, f.actor, e.ID, SelectInput{EnquiryItemID: seal.ID, SupplierID: s.ID, SupplierItemID: sealItem.ID})
	require.NoError(t, err)

	_, err = f.selections.Shortlist(f.ctx, f.actor, e.ID, []types.SnowflakeID{p.ID}, true)
	require.NoError(t, err)

	total, err := f.selections.RefreshSupplierTotal(f.ctx, f.actor, e.ID, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "55.50", total)

	rows, err := repositories.NewSelectionRepository(f.db).ListBySupplier(e.ID, s.ID)
	require.NoError(t, err)
	for _, r := range rows {
		require.NotNil(t, r.FinanceMeta.SupplierTotal)
		assert.Equal(t, "55.50", *r.FinanceMeta.SupplierTotal)
	}
}

func TestSendSupplierEnquiryMail(t *testing.T) {
	f := newFixture(t)
	e := f.enquiry(t)
	item := f.item(t, e, "VL-200", "4")
	s := f.supplier(t, "Alpha Valves", true)
	si := f.supplierItem(t, s, "VL-200", "12.50")

	err := f.selections.SendSupplierEnquiryMail(f.ctx, f.actor, e.ID, s.ID)
	requireCode(t, err, apperr.Precondition, "NOTHING_TO_SEND")

	_, err = f.selections.Select(f.ctx, f.actor, e.ID, SelectInput{EnquiryItemID: item.ID, SupplierID: s.ID, SupplierItemID: si.ID})
	require.NoError(t, err)

	require.NoError(t, f.selections.SendSupplierEnquiryMail(f.ctx, f.actor, e.ID, s.ID))
	assert.Equal(t, []string{s.Email}, f.mailer.to)
	assert.Contains(t, f.mailer.subject, e.EnquiryNo)
	assert.Contains(t, f.mailer.body, "VL-200")

	rows, err := repositories.NewSelectionRepository(f.db).ListBySupplier(e.ID, s.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].IsMailSent)
}
