package services

import (
	"context"
	"fmt"
	"time"

	"enquiry-app/apperr"
	"enquiry-app/finance"
	"enquiry-app/lifecycle"
	"enquiry-app/models"
	"enquiry-app/notification"
	"enquiry-app/repositories"
	"enquiry-app/types"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ShipmentService struct {
	base
}

func NewShipmentService(db *gorm.DB, log *zap.Logger, pub notification.Publisher) *ShipmentService {
	return &ShipmentService{base: newBase(db, log, pub)}
}

// ShipmentLine is the shipping state of one ordered selection.
type ShipmentLine struct {
	SelectionID           types.SnowflakeID `json:"selection_id"`
	EnquiryItemID         types.SnowflakeID `json:"enquiry_item_id"`
	PartNumber            string            `json:"part_number"`
	PartDesc              string            `json:"part_desc"`
	Quantity              decimal.Decimal   `json:"quantity"`
	UnitPrice             decimal.Decimal   `json:"unit_price"`
	TotalShipQuantity     decimal.Decimal   `json:"total_ship_quantity"`
	RemainingShipQuantity decimal.Decimal   `json:"remaining_ship_quantity"`
	IsShipmentCreated     bool              `json:"is_shipment_created"`
	Shipments             []models.Shipment `json:"shipments"`
}

type POTracking struct {
	PurchaseOrder models.SupplierPO `json:"purchase_order"`
	SupplierName  string            `json:"supplier_name"`
	Lines         []ShipmentLine    `json:"lines"`
}

// Tracking shows, per purchase order, what has shipped and what remains.
func (s *ShipmentService) Tracking(ctx context.Context, actor models.Actor, enquiryID types.SnowflakeID) ([]POTracking, error) {
	db := s.db.WithContext(ctx)
	if _, err := loadEnquiry(db, actor, enquiryID); err != nil {
		return nil, err
	}

	pos, err := repositories.NewDocumentRepository(db).ListSupplierPOs(enquiryID)
	if err != nil {
		return nil, err
	}
	supplierIDs := make([]types.SnowflakeID, 0, len(pos))
	for _, po := range pos {
		supplierIDs = append(supplierIDs, po.SupplierID)
	}
	suppliers, err := repositories.NewMasterRepository(db).SuppliersByIDs(uniqueIDs(supplierIDs))
	if err != nil {
		return nil, err
	}

	out := make([]POTracking, 0, len(pos))
	for _, po := range pos {
		lines, err := poLines(db, &po)
		if err != nil {
			return nil, err
		}
		out = append(out, POTracking{PurchaseOrder: po, SupplierName: suppliers[po.SupplierID].CompanyName, Lines: lines})
	}
	return out, nil
}

// poLines derives shipped and remaining quantities of a purchase order.
// The ordered quantity is the live selection quantity and shipped totals
// count every live shipment of the selection.
// TrackingBoard groups the shipments still awaiting an invoice bill by
// enquiry across the organisation.
func (s *ShipmentService) TrackingBoard(ctx context.Context, actor models.Actor, q repositories.ListQuery) (*Page[repositories.TrackingRow], error) {
	rows, meta, err := repositories.NewListRepository(s.db.WithContext(ctx)).Tracking(actor.OrganisationID, listQuery(q))
	return newPage(rows, meta, err)
}

func poLines(db *gorm.DB, po *models.SupplierPO) ([]ShipmentLine, error) {
	items, err := repositories.NewDocumentRepository(db).Items(models.DocumentSupplierPO, po.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]types.SnowflakeID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.SelectionID)
	}

	selections, err := repositories.NewSelectionRepository(db).FindByIDs(po.EnquiryID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[types.SnowflakeID]models.SupplierSelection, len(selections))
	for _, sel := range selections {
		byID[sel.ID] = sel
	}

	shipments, err := repositories.NewShipmentRepository(db).ListBySelections(ids)
	if err != nil {
		return nil, err
	}
	bySelection := make(map[types.SnowflakeID][]models.Shipment)
	for _, sh := range shipments {
		bySelection[sh.SelectionID] = append(bySelection[sh.SelectionID], sh)
	}

	enquiryItems, err := repositories.NewItemRepository(db).ListByEnquiry(po.EnquiryID)
	if err != nil {
		return nil, err
	}
	byItem := make(map[types.SnowflakeID]models.EnquiryItem, len(enquiryItems))
	for _, it := range enquiryItems {
		byItem[it.ID] = it
	}

	lines := make([]ShipmentLine, 0, len(items))
	for _, it := range items {
		sel, found := byID[it.SelectionID]
		if !found {
			continue
		}
		ordered, err := finance.CoerceString(sel.Quantity)
		if err != nil {
			return nil, err
		}
		shipped := decimal.Zero
		for _, sh := range bySelection[sel.ID] {
			shipped = shipped.Add(sh.ShipQuantity)
		}
		item := byItem[sel.EnquiryItemID]
		lines = append(lines, ShipmentLine{
			SelectionID:           sel.ID,
			EnquiryItemID:         item.ID,
			PartNumber:            item.PartNumber,
			PartDesc:              item.PartDesc,
			Quantity:              ordered,
			UnitPrice:             it.UnitPrice,
			TotalShipQuantity:     shipped,
			RemainingShipQuantity: ordered.Sub(shipped),
			IsShipmentCreated:     len(bySelection[sel.ID]) > 0,
			Shipments:             bySelection[sel.ID],
		})
	}
	return lines, nil
}

type ShipmentInput struct {
	SupplierPOID types.SnowflakeID `json:"supplier_po_id" validate:"required"`
	SelectionID  types.SnowflakeID `json:"selection_id" validate:"required"`
	ShipQuantity decimal.Decimal   `json:"ship_quantity"`
	ShipTo       string            `json:"ship_to"`
	ShipmentDate *time.Time        `json:"shipment_date"`
	TrackingNo   string            `json:"tracking_no"`
}

// CreateShipment records a partial delivery. The shipped total of a
// selection can never exceed the quantity ordered for it.
func (s *ShipmentService) CreateShipment(ctx context.Context, actor models.Actor, enquiryID types.SnowflakeID, in ShipmentInput) (*models.Shipment, error) {
	if !in.ShipQuantity.IsPositive() {
		return nil, apperr.NewValidation("ship quantity must be greater than zero")
	}
	shipTo := in.ShipTo
	if shipTo == "" {
		shipTo = models.ShipToWarehouse
	}
	if shipTo != models.ShipToWarehouse && shipTo != models.ShipToCustomer {
		return nil, apperr.NewValidation("ship to must be %q or %q", models.ShipToWarehouse, models.ShipToCustomer)
	}

	var shipment *models.Shipment
	_, err := s.transition(ctx, actor, enquiryID, lifecycle.OpCreateShipment, func(st *step) error {
		po, err := enquiryPO(st.tx, enquiryID, in.SupplierPOID)
		if err != nil {
			return err
		}

		// the version bump serialises concurrent shipments of one selection
		// before the remaining balance is read.
		selections := repositories.NewSelectionRepository(st.tx)
		sel, err := selections.FindByID(in.SelectionID)
		if err != nil {
			return notFound(err, "Supplier selection")
		}
		if sel.EnquiryID != enquiryID {
			return apperr.NewNotFound("Supplier selection")
		}
		if err := selections.Touch(sel, actor.UserID); err != nil {
			return stale(err, "Supplier selection")
		}

		lines, err := poLines(st.tx, po)
		if err != nil {
			return err
		}
		var line *ShipmentLine
		for i := range lines {
			if lines[i].SelectionID == in.SelectionID {
				line = &lines[i]
			}
		}
		if line == nil {
			return apperr.NewPrecondition("NOT_ON_PO", "the selection is not part of purchase order %s", po.PONo)
		}
		if in.ShipQuantity.GreaterThan(line.RemainingShipQuantity) {
			return apperr.NewPrecondition("QUANTITY_EXCEEDED", "cannot ship %s of %s, only %s remaining",
				in.ShipQuantity.String(), line.PartNumber, line.RemainingShipQuantity.String())
		}

		shipmentNo, err := repositories.NewNumberRepository(st.tx).Generate(&models.Shipment{}, "shipment_no", repositories.PrefixShipment)
		if err != nil {
			return err
		}
		shipment = &models.Shipment{
			ShipmentNo:   shipmentNo,
			EnquiryID:    enquiryID,
			SupplierPOID: po.ID,
			SupplierID:   po.SupplierID,
			SelectionID:  sel.ID,
			ShipQuantity: in.ShipQuantity,
			ShipTo:       shipTo,
			ShipmentDate: dateOrNow(in.ShipmentDate),
			TrackingNo:   in.TrackingNo,
			Level:        models.ShipmentLevelPreBill,
			IsActive:     true,
		}
		shipment.CreatedBy = actor.UserID
		shipment.UpdatedBy = actor.UserID
		if err := repositories.NewShipmentRepository(st.tx).Create(shipment); err != nil {
			return err
		}

		st.action = fmt.Sprintf("Shipment %s of %s x %s created", shipment.ShipmentNo, in.ShipQuantity.String(), line.PartNumber)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return shipment, nil
}

// CancelShipment withdraws a shipment that has not been billed, returning
// its quantity to the remaining balance.
func (s *ShipmentService) CancelShipment(ctx context.Context, actor models.Actor, enquiryID, shipmentID types.SnowflakeID) error {
	_, err := s.transition(ctx, actor, enquiryID, lifecycle.OpCreateShipment, func(st *step) error {
		shipments := repositories.NewShipmentRepository(st.tx)
		sh, err := shipments.FindByID(shipmentID)
		if err != nil {
			return notFound(err, "Shipment")
		}
		if sh.EnquiryID != enquiryID {
			return apperr.NewNotFound("Shipment")
		}
		if sh.IsSupplierBillCreated {
			return apperr.NewPrecondition("SHIPMENT_BILLED", "shipment %s is already billed", sh.ShipmentNo)
		}
		if err := shipments.Cancel(sh.ID, actor.UserID); err != nil {
			return stale(err, "Shipment")
		}
		st.action = fmt.Sprintf("Shipment %s cancelled", sh.ShipmentNo)
		return nil
	})
	return err
}

func enquiryPO(db *gorm.DB, enquiryID, poID types.SnowflakeID) (*models.SupplierPO, error) {
	po, err := repositories.NewDocumentRepository(db).FindSupplierPO(poID)
	if err != nil {
		return nil, notFound(err, "Supplier PO")
	}
	if po.EnquiryID != enquiryID {
		return nil, apperr.NewNotFound("Supplier PO")
	}
	return po, nil
}
