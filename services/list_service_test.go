package services

import (
	"errors"
	"strings"
	"testing"

	"enquiry-app/apperr"
	"enquiry-app/lifecycle"
	"enquiry-app/models"
	"enquiry-app/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) otherOrganisation(t *testing.T) models.Actor {
	t.Helper()
	other := f.actor
	other.OrganisationID = "org-2"

	lead, err := f.leads.CreateLead(f.ctx, other, CreateLeadInput{CompanyName: "Elsewhere Ltd", CurrencyID: f.currency(t, "USD").ID})
	require.NoError(t, err)
	_, err = f.leads.QualifyLead(f.ctx, other, lead.ID)
	require.NoError(t, err)
	_, err = f.enquiries.CreateEnquiry(f.ctx, other, CreateEnquiryInput{LeadID: lead.ID})
	require.NoError(t, err)
	return other
}

func TestListEnquiriesPagesNewestFirst(t *testing.T) {
	f := newFixture(t)
	first, _ := f.ordered(t)
	second, _ := f.ordered(t)
	fresh := f.enquiry(t)
	other := f.otherOrganisation(t)

	page, err := f.enquiries.ListEnquiries(f.ctx, f.actor, repositories.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Meta.Total)
	assert.Equal(t, repositories.DefaultPageLimit, page.Meta.Limit)
	require.Len(t, page.Items, 3)
	assert.Equal(t, fresh.ID, page.Items[0].ID)
	assert.Equal(t, first.enquiry.ID, page.Items[2].ID)
	assert.True(t, strings.HasPrefix(page.Items[0].CompanyName, "Customer "))

	page, err = f.enquiries.ListEnquiries(f.ctx, f.actor, repositories.ListQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Meta.TotalPages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, first.enquiry.ID, page.Items[0].ID)

	page, err = f.enquiries.ListEnquiries(f.ctx, f.actor, repositories.ListQuery{Search: " " + second.enquiry.EnquiryNo + " "})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, second.enquiry.ID, page.Items[0].ID)

	page, err = f.enquiries.ListEnquiries(f.ctx, f.actor, repositories.ListQuery{Level: int(lifecycle.StageSupplierPOCreated)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Meta.Total)

	page, err = f.enquiries.ListEnquiries(f.ctx, other, repositories.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Meta.Total)

	require.NoError(t, f.enquiries.DeleteEnquiry(f.ctx, f.actor, fresh.ID))
	page, err = f.enquiries.ListEnquiries(f.ctx, f.actor, repositories.ListQuery{Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, repositories.MaxPageLimit, page.Meta.Limit)
	assert.Equal(t, int64(2), page.Meta.Total)
}

func TestDocumentListsAreScopedToTheOrganisation(t *testing.T) {
	f := newFixture(t)
	first, firstPO := f.ordered(t)
	f.ordered(t)
	other := f.otherOrganisation(t)

	quotes, err := f.documents.ListQuotes(f.ctx, f.actor, repositories.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), quotes.Meta.Total)

	quotes, err = f.documents.ListQuotes(f.ctx, f.actor, repositories.ListQuery{Search: first.enquiry.EnquiryNo})
	require.NoError(t, err)
	require.Len(t, quotes.Items, 1)
	assert.Equal(t, first.enquiry.EnquiryNo, quotes.Items[0].EnquiryNo)
	assert.True(t, strings.HasPrefix(quotes.Items[0].QuoteNo, repositories.PrefixQuote))
	assert.Equal(t, "143.00", quotes.Items[0].AddedSupplierFinalTotal.StringFixed(2))

	pis, err := f.documents.ListProformaInvoices(f.ctx, f.actor, repositories.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), pis.Meta.Total)

	sos, err := f.documents.ListSalesOrders(f.ctx, f.actor, repositories.ListQuery{Search: "CPO-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), sos.Meta.Total)

	pos, err := f.documents.ListAllSupplierPOs(f.ctx, f.actor, repositories.ListQuery{Search: "alpha"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), pos.Meta.Total)

	pos, err = f.documents.ListAllSupplierPOs(f.ctx, f.actor, repositories.ListQuery{Search: firstPO.PONo})
	require.NoError(t, err)
	require.Len(t, pos.Items, 1)
	assert.Equal(t, "Alpha Valves", pos.Items[0].SupplierName)
	assert.Equal(t, first.enquiry.EnquiryNo, pos.Items[0].EnquiryNo)
	assert.Equal(t, "143.00", pos.Items[0].SupplierFinalTotal.StringFixed(2))

	quotes, err = f.documents.ListQuotes(f.ctx, other, repositories.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), quotes.Meta.Total)
	assert.NotNil(t, quotes.Items)
	assert.Empty(t, quotes.Items)
}

func TestGetProformaInvoiceAndSalesOrder(t *testing.T) {
	f := newFixture(t)
	o, _ := f.ordered(t)
	other := f.otherOrganisation(t)

	pis, err := f.documents.ListProformaInvoices(f.ctx, f.actor, repositories.ListQuery{})
	require.NoError(t, err)
	require.Len(t, pis.Items, 1)

	pi, err := f.documents.GetProformaInvoice(f.ctx, f.actor, pis.Items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, o.enquiry.ID, pi.EnquiryID)
	assert.Equal(t, "USD($)", pi.CurrencyLabel)
	require.Len(t, pi.Items, 1)
	assert.Equal(t, o.selection.ID, pi.Items[0].SelectionID)

	sos, err := f.documents.ListSalesOrders(f.ctx, f.actor, repositories.ListQuery{})
	require.NoError(t, err)
	require.Len(t, sos.Items, 1)

	so, err := f.documents.GetSalesOrder(f.ctx, f.actor, sos.Items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, pi.ID, so.ProformaInvoiceID)
	assert.Equal(t, "CPO-1", so.CustomerPONo)
	assert.True(t, pi.FinalQuote.Equal(so.FinalQuote))
	require.Len(t, so.Items, 1)

	_, err = f.documents.GetProformaInvoice(f.ctx, other, pi.ID)
	requireCode(t, err, apperr.NotFound, "")
	_, err = f.documents.GetSalesOrder(f.ctx, other, so.ID)
	requireCode(t, err, apperr.NotFound, "")
	_, err = f.documents.GetSalesOrder(f.ctx, f.actor, pi.ID)
	requireCode(t, err, apperr.NotFound, "")
}

func TestTrackingBoardDropsInvoicedShipments(t *testing.T) {
	f := newFixture(t)
	first, firstPO := f.ordered(t)
	second, secondPO := f.ordered(t)

	ship := func(o orderedEnquiry, po models.SupplierPO, qty int64, to, trackingNo string) {
		_, err := f.shipments.CreateShipment(f.ctx, f.actor, o.enquiry.ID, ShipmentInput{
			SupplierPOID: po.ID,
			SelectionID:  o.selection.ID,
			ShipQuantity: decimal.NewFromInt(qty),
			ShipTo:       to,
			TrackingNo:   trackingNo,
		})
		require.NoError(t, err)
	}
	ship(first, firstPO, 6, models.ShipToWarehouse, "TRK-1")
	ship(first, firstPO, 4, models.ShipToCustomer, "")
	ship(second, secondPO, 2, models.ShipToWarehouse, "")

	board, err := f.shipments.TrackingBoard(f.ctx, f.actor, repositories.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), board.Meta.Total)
	require.Len(t, board.Items, 2)

	assert.Equal(t, second.enquiry.EnquiryNo, board.Items[0].EnquiryNo)
	assert.Equal(t, int64(1), board.Items[0].Shipments)
	assert.True(t, board.Items[0].TotalShipQuantity.Equal(decimal.NewFromInt(2)))

	assert.Equal(t, first.enquiry.ID, board.Items[1].EnquiryID)
	assert.Equal(t, int64(2), board.Items[1].Shipments)
	assert.True(t, board.Items[1].TotalShipQuantity.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, int64(1), board.Items[1].ToWarehouse)
	assert.Equal(t, int64(1), board.Items[1].ToCustomer)

	board, err = f.shipments.TrackingBoard(f.ctx, f.actor, repositories.ListQuery{Search: "TRK-1"})
	require.NoError(t, err)
	require.Len(t, board.Items, 1)
	assert.Equal(t, first.enquiry.ID, board.Items[0].EnquiryID)

	supplierBill, err := f.bills.CreateBill(f.ctx, f.actor, first.enquiry.ID, BillInput{SupplierPOID: firstPO.ID, Type: models.BillTypeSupplier})
	require.NoError(t, err)
	board, err = f.shipments.TrackingBoard(f.ctx, f.actor, repositories.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), board.Meta.Total)

	_, err = f.bills.CreateBill(f.ctx, f.actor, first.enquiry.ID, BillInput{SupplierPOID: firstPO.ID, Type: models.BillTypeInvoice})
	require.NoError(t, err)
	board, err = f.shipments.TrackingBoard(f.ctx, f.actor, repositories.ListQuery{})
	require.NoError(t, err)
	require.Len(t, board.Items, 1)
	assert.Equal(t, second.enquiry.ID, board.Items[0].EnquiryID)

	bills, err := f.bills.ListAllBills(f.ctx, f.actor, repositories.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), bills.Meta.Total)

	bills, err = f.bills.ListAllBills(f.ctx, f.actor, repositories.ListQuery{Type: models.BillTypeSupplier})
	require.NoError(t, err)
	require.Len(t, bills.Items, 1)
	row := bills.Items[0]
	assert.Equal(t, supplierBill.ID, row.ID)
	assert.Equal(t, firstPO.PONo, row.PONo)
	assert.Equal(t, first.enquiry.EnquiryNo, row.EnquiryNo)
	assert.Equal(t, "Alpha Valves", row.SupplierName)
	assert.Equal(t, "110.00", row.Total.StringFixed(2))

	bills, err = f.bills.ListAllBills(f.ctx, f.actor, repositories.ListQuery{Search: supplierBill.BillNo})
	require.NoError(t, err)
	assert.Equal(t, int64(1), bills.Meta.Total)

	_, err = f.bills.ListAllBills(f.ctx, f.actor, repositories.ListQuery{Type: "credit"})
	requireCode(t, err, apperr.Validation, "")
}

func TestMailLogsRecordEveryAttempt(t *testing.T) {
	f := newFixture(t)
	e := f.enquiry(t)
	item := f.item(t, e, "VL-200", "4")
	s := f.supplier(t, "Alpha Valves", true)
	si := f.supplierItem(t, s, "VL-200", "12.50")
	_, err := f.selections.Select(f.ctx, f.actor, e.ID, SelectInput{EnquiryItemID: item.ID, SupplierID: s.ID, SupplierItemID: si.ID})
	require.NoError(t, err)

	require.NoError(t, f.selections.SendSupplierEnquiryMail(f.ctx, f.actor, e.ID, s.ID))

	f.mailer.err = errors.New("smtp unavailable")
	err = f.selections.SendSupplierEnquiryMail(f.ctx, f.actor, e.ID, s.ID)
	requireCode(t, err, apperr.Unexpected, "MAIL_FAILED")

	logs, err := f.selections.MailLogs(f.ctx, f.actor, e.ID, 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, models.MailStatusFailed, logs[0].Status)
	assert.Equal(t, "smtp unavailable", logs[0].Error)
	assert.Equal(t, models.MailStatusSent, logs[1].Status)
	assert.Equal(t, s.Email, logs[1].Recipient)
	assert.Equal(t, "Enquiry "+e.EnquiryNo, logs[1].Subject)
	assert.Equal(t, 1, logs[1].ItemCount)
	assert.Equal(t, f.actor.UserID, logs[1].CreatedBy)

	logs, err = f.selections.MailLogs(f.ctx, f.actor, e.ID, s.ID+1)
	require.NoError(t, err)
	assert.Empty(t, logs)

	other := f.actor
	other.OrganisationID = "org-2"
	_, err = f.selections.MailLogs(f.ctx, other, e.ID, 0)
	requireCode(t, err, apperr.NotFound, "")
}
