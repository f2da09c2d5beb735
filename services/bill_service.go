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

// BillService raises the two billing phases over shipments: the supplier
// bill first, then the customer invoice bill.
type BillService struct {
	base
}

func NewBillService(db *gorm.DB, log *zap.Logger, pub notification.Publisher) *BillService {
	return &BillService{base: newBase(db, log, pub)}
}

func validBillType(t string) error {
	if t != models.BillTypeSupplier && t != models.BillTypeInvoice {
		return apperr.NewValidation("bill type must be %q or %q", models.BillTypeSupplier, models.BillTypeInvoice)
	}
	return nil
}

// Billable lists the shipments of a purchase order that may go on a bill
// of the given type.
func (s *BillService) Billable(ctx context.Context, actor models.Actor, enquiryID, poID types.SnowflakeID, billType string) ([]models.Shipment, error) {
	if err := validBillType(billType); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if _, err := loadEnquiry(db, actor, enquiryID); err != nil {
		return nil, err
	}
	if _, err := enquiryPO(db, enquiryID, poID); err != nil {
		return nil, err
	}
	return repositories.NewShipmentRepository(db).Billable(poID, billType)
}

func (s *BillService) ListBills(ctx context.Context, actor models.Actor, enquiryID, poID types.SnowflakeID) ([]models.Bill, error) {
	db := s.db.WithContext(ctx)
	if _, err := loadEnquiry(db, actor, enquiryID); err != nil {
		return nil, err
	}
	if _, err := enquiryPO(db, enquiryID, poID); err != nil {
		return nil, err
	}
	return repositories.NewBillRepository(db).ListByPO(poID)
}

type BillInput struct {
	SupplierPOID types.SnowflakeID   `json:"supplier_po_id" validate:"required"`
	Type         string              `json:"type" validate:"required"`
	ShipmentIDs  []types.SnowflakeID `json:"shipment_ids"`
	BillDate     *time.Time          `json:"bill_date"`
}

// CreateBill bills shipments of one purchase order. With no shipment ids
// every billable shipment is taken. When the last invoice bill leaves the
// enquiry fully shipped and invoiced, the enquiry closes as billed.
// ListAllBills pages through the bills of the organisation; q.Type, when
// set, must be a bill type.
func (s *BillService) ListAllBills(ctx context.Context, actor models.Actor, q repositories.ListQuery) (*Page[repositories.BillRow], error) {
	q = listQuery(q)
	if q.Type != "" {
		if err := validBillType(q.Type); err != nil {
			return nil, err
		}
	}
	rows, meta, err := repositories.NewListRepository(s.db.WithContext(ctx)).Bills(actor.OrganisationID, q)
	return newPage(rows, meta, err)
}

func (s *BillService) CreateBill(ctx context.Context, actor models.Actor, enquiryID types.SnowflakeID, in BillInput) (*models.Bill, error) {
	if err := validBillType(in.Type); err != nil {
		return nil, err
	}

	var bill *models.Bill
	_, err := s.transition(ctx, actor, enquiryID, lifecycle.OpCreateBill, func(st *step) error {
		po, err := enquiryPO(st.tx, enquiryID, in.SupplierPOID)
		if err != nil {
			return err
		}

		shipments := repositories.NewShipmentRepository(st.tx)
		var billable []models.Shipment
		if len(in.ShipmentIDs) == 0 {
			billable, err = shipments.Billable(po.ID, in.Type)
		} else {
			billable, err = shipments.BillableByIDs(po.ID, in.Type, uniqueIDs(in.ShipmentIDs))
		}
		if err != nil {
			return err
		}
		if len(billable) == 0 || (len(in.ShipmentIDs) > 0 && len(billable) != len(uniqueIDs(in.ShipmentIDs))) {
			return apperr.NewPrecondition("SHIPMENT_NOT_BILLABLE", "some shipments cannot be put on a %s bill", in.Type)
		}

		lines, subTotal, err := billLines(st.tx, po, billable, actor)
		if err != nil {
			return err
		}
		vat := finance.Percent(subTotal, po.VatPercentage)

		prefix := repositories.PrefixSupplierBill
		if in.Type == models.BillTypeInvoice {
			prefix = repositories.PrefixInvoiceBill
		}
		billNo, err := repositories.NewNumberRepository(st.tx).Generate(&models.Bill{}, "bill_no", prefix)
		if err != nil {
			return err
		}

		bill = &models.Bill{
			BillNo:        billNo,
			Type:          in.Type,
			EnquiryID:     enquiryID,
			SupplierPOID:  po.ID,
			SupplierID:    po.SupplierID,
			BillDate:      dateOrNow(in.BillDate),
			SubTotal:      subTotal,
			VatPercentage: po.VatPercentage,
			VatAmount:     vat,
			Total:         finance.Round2(subTotal.Add(vat)),
			Lines:         lines,
		}
		bill.CreatedBy = actor.UserID
		bill.UpdatedBy = actor.UserID
		if err := repositories.NewBillRepository(st.tx).Create(bill); err != nil {
			return err
		}

		ids := make([]types.SnowflakeID, 0, len(billable))
		for _, sh := range billable {
			ids = append(ids, sh.ID)
		}
		if err := shipments.MarkBilled(ids, in.Type, actor.UserID); err != nil {
			return stale(err, "Shipment")
		}

		docs := repositories.NewDocumentRepository(st.tx)
		if in.Type == models.BillTypeSupplier {
			if err := docs.RaisePOLevel(po.ID, models.ShipmentLevelPreInvoice, actor.UserID); err != nil {
				return err
			}
		} else {
			done, err := fullyBilled(st.tx, enquiryID)
			if err != nil {
				return err
			}
			if done {
				st.then = lifecycle.OpCloseBilled
			}
		}

		label := "Supplier bill"
		if in.Type == models.BillTypeInvoice {
			label = "Invoice bill"
		}
		st.action = fmt.Sprintf("%s %s created for %s", label, bill.BillNo, po.PONo)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("bill created", zap.String("bill_no", bill.BillNo), zap.String("type", bill.Type), zap.String("total", bill.Total.StringFixed(2)))
	return bill, nil
}

// billLines prices each shipment at the unit price frozen on the purchase
// order.
func billLines(db *gorm.DB, po *models.SupplierPO, shipments []models.Shipment, actor models.Actor) ([]models.BillShipment, decimal.Decimal, error) {
	items, err := repositories.NewDocumentRepository(db).Items(models.DocumentSupplierPO, po.ID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	priceOf := make(map[types.SnowflakeID]decimal.Decimal, len(items))
	for _, it := range items {
		priceOf[it.SelectionID] = it.UnitPrice
	}

	subTotal := decimal.Zero
	lines := make([]models.BillShipment, 0, len(shipments))
	for _, sh := range shipments {
		price := priceOf[sh.SelectionID]
		total := finance.Round2(sh.ShipQuantity.Mul(price))
		line := models.BillShipment{
			ShipmentID:   sh.ID,
			ShipQuantity: sh.ShipQuantity,
			UnitPrice:    price,
			LineTotal:    total,
		}
		line.CreatedBy = actor.UserID
		line.UpdatedBy = actor.UserID
		lines = append(lines, line)
		subTotal = subTotal.Add(total)
	}
	return lines, finance.Round2(subTotal), nil
}

// fullyBilled reports whether every ordered quantity has shipped and every
// live shipment carries an invoice bill.
func fullyBilled(db *gorm.DB, enquiryID types.SnowflakeID) (bool, error) {
	pending, err := repositories.NewShipmentRepository(db).CountAwaitingInvoice(enquiryID)
	if err != nil || pending > 0 {
		return false, err
	}

	pos, err := repositories.NewDocumentRepository(db).ListSupplierPOs(enquiryID)
	if err != nil {
		return false, err
	}
	for i := range pos {
		lines, err := poLines(db, &pos[i])
		if err != nil {
			return false, err
		}
		for _, l := range lines {
			if l.RemainingShipQuantity.IsPositive() {
				return false, nil
			}
		}
	}
	return len(pos) > 0, nil
}
