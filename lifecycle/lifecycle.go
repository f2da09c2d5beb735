// Package lifecycle is the enquiry stage machine. It only decides; the
// services persist the decision inside the same transaction that writes
// the child document.
package lifecycle

import (
	"enquiry-app/apperr"
	"enquiry-app/models"
)

type Stage int

const (
	StageEnquiry Stage = iota + 1
	StageQuoteCreated
	StagePiCreated
	StageSalesOrderCreated
	StageSupplierPOCreated
	StageBilled
)

var stageNames = map[Stage]string{
	StageEnquiry:           "Enquiry",
	StageQuoteCreated:      "Quote Created",
	StagePiCreated:         "PI Created",
	StageSalesOrderCreated: "Sales Order Created",
	StageSupplierPOCreated: "Supplier PO Created",
	StageBilled:            "Billed",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "Unknown"
}

type Operation string

const (
	OpAddItem          Operation = "add_item"
	OpEditItem         Operation = "edit_item"
	OpSelect           Operation = "select"
	OpShortlist        Operation = "shortlist"
	OpCreateQuote      Operation = "create_quote"
	OpCreatePI         Operation = "create_pi"
	OpCreateSalesOrder Operation = "create_sales_order"
	OpCreateSupplierPO Operation = "create_supplier_po"
	OpCreateShipment   Operation = "create_shipment"
	OpCreateBill       Operation = "create_bill"
	OpCloseBilled      Operation = "close_billed"
)

type transition struct {
	// requires is the column that must already be true, "" for none.
	requires string
	missing  string
	// sets is the completion flag flipped by the operation, "" for none.
	sets  string
	stage Stage
}

var table = map[Operation]transition{
	OpAddItem: {
		sets: "is_item_added",
	},
	OpEditItem: {
		requires: "is_item_added",
		missing:  "no items have been added to this enquiry",
	},
	OpSelect: {
		requires: "is_item_added",
		missing:  "no items have been added to this enquiry",
	},
	OpShortlist: {
		requires: "is_item_added",
		missing:  "no items have been added to this enquiry",
		sets:     "is_item_short_listed",
	},
	OpCreateQuote: {
		requires: "is_item_short_listed",
		missing:  "no supplier items have been shortlisted",
		sets:     "is_quote_created",
		stage:    StageQuoteCreated,
	},
	OpCreatePI: {
		requires: "is_quote_created",
		missing:  "a quote must be created before the proforma invoice",
		sets:     "is_pi_created",
		stage:    StagePiCreated,
	},
	OpCreateSalesOrder: {
		requires: "is_pi_created",
		missing:  "a proforma invoice must be created before the sales order",
		sets:     "is_sales_order_created",
		stage:    StageSalesOrderCreated,
	},
	OpCreateSupplierPO: {
		requires: "is_sales_order_created",
		missing:  "a sales order must be created before supplier purchase orders",
		sets:     "is_supplier_po_created",
		stage:    StageSupplierPOCreated,
	},
	OpCreateShipment: {
		requires: "is_supplier_po_created",
		missing:  "supplier purchase orders must be created before shipments",
	},
	OpCreateBill: {
		requires: "is_supplier_po_created",
		missing:  "supplier purchase orders must be created before bills",
	},
	OpCloseBilled: {
		requires: "is_supplier_po_created",
		missing:  "supplier purchase orders must be created before billing completes",
		sets:     "is_billed",
		stage:    StageBilled,
	},
}

func flag(e *models.Enquiry, column string) bool {
	switch column {
	case "is_item_added":
		return e.IsItemAdded
	case "is_item_short_listed":
		return e.IsItemShortListed
	case "is_quote_created":
		return e.IsQuoteCreated
	case "is_pi_created":
		return e.IsPiCreated
	case "is_sales_order_created":
		return e.IsSalesOrderCreated
	case "is_supplier_po_created":
		return e.IsSupplierPOCreated
	case "is_billed":
		return e.IsBilled
	}
	return false
}

// Check returns a precondition error naming what is missing, nil when op
// may run on e.
func Check(e *models.Enquiry, op Operation) error {
	t, ok := table[op]
	if !ok {
		return apperr.NewValidation("unknown operation %q", op)
	}
	if e.IsDeleted || !e.IsActive {
		return apperr.NewPrecondition("ENQUIRY_INACTIVE", "enquiry %s is not active", e.EnquiryNo)
	}
	if e.IsBilled && op != OpCloseBilled {
		return apperr.NewPrecondition("ENQUIRY_BILLED", "enquiry %s is already billed", e.EnquiryNo)
	}
	if t.requires != "" && !flag(e, t.requires) {
		return apperr.NewPrecondition("MISSING_"+string(op), "%s", t.missing)
	}
	return nil
}

// Guard is the column a conditional update must still see as true.
func Guard(op Operation) string {
	return table[op].requires
}

// Apply returns the column updates for op. Stage only ever moves forward.
func Apply(e *models.Enquiry, op Operation) map[string]interface{} {
	t := table[op]
	updates := map[string]interface{}{}
	if t.sets != "" && !flag(e, t.sets) {
		updates[t.sets] = true
	}
	if t.stage > Stage(e.Level) {
		updates["level"] = int(t.stage)
		updates["stage_name"] = t.stage.String()
	}
	return updates
}

// Mutates reports whether op writes anything on the enquiry row.
func Mutates(e *models.Enquiry, op Operation) bool {
	return len(Apply(e, op)) > 0
}
