package lifecycle

import (
	"testing"

	"enquiry-app/apperr"
	"enquiry-app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openEnquiry() *models.Enquiry {
	return &models.Enquiry{EnquiryNo: "EQ2610150001", Level: int(StageEnquiry), IsActive: true}
}

func TestCreatePIBeforeQuoteIsRejected(t *testing.T) {
	e := openEnquiry()
	e.IsItemAdded = true
	e.IsItemShortListed = true

	err := Check(e, OpCreatePI)
	require.Error(t, err)
	assert.Equal(t, apperr.Precondition, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "quote")
}

func TestHappyPathWalksEveryStage(t *testing.T) {
	e := openEnquiry()
	ops := []Operation{OpAddItem, OpShortlist, OpCreateQuote, OpCreatePI, OpCreateSalesOrder, OpCreateSupplierPO, OpCloseBilled}
	for _, op := range ops {
		require.NoError(t, Check(e, op), op)
		applyTo(e, Apply(e, op))
	}

	assert.Equal(t, int(StageBilled), e.Level)
	assert.Equal(t, "Billed", e.StageName)
	assert.True(t, e.IsBilled)
}

func TestApplyNeverMovesBackwards(t *testing.T) {
	e := openEnquiry()
	e.IsItemAdded = true
	e.Level = int(StagePiCreated)

	updates := Apply(e, OpShortlist)
	assert.NotContains(t, updates, "level")
	assert.Equal(t, true, updates["is_item_short_listed"])
}

func TestApplyIsEmptyWhenAlreadyDone(t *testing.T) {
	e := openEnquiry()
	e.IsItemAdded = true
	assert.False(t, Mutates(e, OpAddItem))
	assert.False(t, Mutates(e, OpCreateShipment))
}

func TestInactiveEnquiryRejectsEverything(t *testing.T) {
	e := openEnquiry()
	e.IsDeleted = true
	assert.True(t, apperr.Is(Check(e, OpAddItem), apperr.Precondition))

	billed := openEnquiry()
	billed.IsBilled = true
	assert.True(t, apperr.Is(Check(billed, OpAddItem), apperr.Precondition))
}

func TestGuard(t *testing.T) {
	assert.Equal(t, "is_quote_created", Guard(OpCreatePI))
	assert.Equal(t, "", Guard(OpAddItem))
}

func applyTo(e *models.Enquiry, updates map[string]interface{}) {
	for k, v := range updates {
		switch k {
		case "is_item_added":
			e.IsItemAdded = v.(bool)
		case "is_item_short_listed":
			e.IsItemShortListed = v.(bool)
		case "is_quote_created":
			e.IsQuoteCreated = v.(bool)
		case "is_pi_created":
			e.IsPiCreated = v.(bool)
		case "is_sales_order_created":
			e.IsSalesOrderCreated = v.(bool)
		case "is_supplier_po_created":
			e.IsSupplierPOCreated = v.(bool)
		case "is_billed":
			e.IsBilled = v.(bool)
		case "level":
			e.Level = v.(int)
		case "stage_name":
			e.StageName = v.(string)
		}
	}
}
