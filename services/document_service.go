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

// DocumentService issues the customer documents and the supplier purchase
// orders. Each one freezes the totals it was issued with.
type DocumentService struct {
	base
}

func NewDocumentService(db *gorm.DB, log *zap.Logger, pub notification.Publisher) *DocumentService {
	return &DocumentService{base: newBase(db, log, pub)}
}

type QuoteInput struct {
	VatGroupID           types.SnowflakeID `json:"vat_group_id"`
	CurrencyID           types.SnowflakeID `json:"currency_id"`
	Margin               decimal.Decimal   `json:"margin"`
	FreightCharges       decimal.Decimal   `json:"freight_charges"`
	PackingCharges       decimal.Decimal   `json:"packing_charges"`
	MiscCharges          decimal.Decimal   `json:"misc_charges"`
	Discount             decimal.Decimal   `json:"discount"`
	AgentTotalCommission decimal.Decimal   `json:"agent_total_commission"`
	CurrencyExchangeRate decimal.Decimal   `json:"currency_exchange_rate"`
	ValidTill            *time.Time        `json:"valid_till"`
	Notes                string            `json:"notes"`
}

func (in QuoteInput) validate() error {
	for name, v := range map[string]decimal.Decimal{
		"margin":                 in.Margin,
		"freight charges":        in.FreightCharges,
		"packing charges":        in.PackingCharges,
		"misc charges":           in.MiscCharges,
		"discount":               in.Discount,
		"agent total commission": in.AgentTotalCommission,
		"currency exchange rate": in.CurrencyExchangeRate,
	} {
		if v.IsNegative() {
			return apperr.NewValidation("%s cannot be negative", name)
		}
	}
	return nil
}

// CreateQuote prices the shortlisted suppliers for the customer. Every
// shortlisted supplier must carry a VAT group.
func (s *DocumentService) CreateQuote(ctx context.Context, actor models.Actor, enquiryID types.SnowflakeID, in QuoteInput) (*models.Quote, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var quote *models.Quote
	_, err := s.transition(ctx, actor, enquiryID, lifecycle.OpCreateQuote, func(st *step) error {
		groups, err := supplierRollups(st.tx, enquiryID, repositories.ShortlistedOnly)
		if err != nil {
			return err
		}
		if len(groups) == 0 {
			return apperr.NewPrecondition("MISSING_"+string(lifecycle.OpCreateQuote), "no supplier items have been shortlisted")
		}
		for _, g := range groups {
			if g.FinanceMeta.VatGroupID == 0 || g.VatGroupName == "" {
				return apperr.NewPrecondition("FINANCE_INCOMPLETE", "supplier %s has no VAT group", g.SupplierName)
			}
		}

		master := repositories.NewMasterRepository(st.tx)
		vatPercentage := decimal.Zero
		if in.VatGroupID != 0 {
			vat, err := master.FindVatGroup(in.VatGroupID)
			if err != nil {
				return notFound(err, "VAT group")
			}
			vatPercentage = vat.Percentage
		}
		currencyID := in.CurrencyID
		if currencyID == 0 {
			currencyID = st.enquiry.CurrencyID
		}

		totals := finance.ComputeQuote(finance.QuoteInput{
			Enquiry:         enquiryTotals(groups),
			Margin:          in.Margin,
			FreightCharges:  in.FreightCharges,
			PackingCharges:  in.PackingCharges,
			MiscCharges:     in.MiscCharges,
			Discount:        in.Discount,
			AgentCommission: in.AgentTotalCommission,
			VatPercentage:   vatPercentage,
			ExchangeRate:    in.CurrencyExchangeRate,
		})

		docs := repositories.NewDocumentRepository(st.tx)
		quoteNo, err := repositories.NewNumberRepository(st.tx).Generate(&models.Quote{}, "quote_no", repositories.PrefixQuote)
		if err != nil {
			return err
		}
		quote = &models.Quote{
			QuoteNo:              quoteNo,
			EnquiryID:            enquiryID,
			CurrencyID:           currencyID,
			VatGroupID:           in.VatGroupID,
			VatPercentage:        vatPercentage,
			Margin:               in.Margin,
			FreightCharges:       in.FreightCharges,
			PackingCharges:       in.PackingCharges,
			MiscCharges:          in.MiscCharges,
			Discount:             in.Discount,
			AgentTotalCommission: in.AgentTotalCommission,
			CurrencyExchangeRate: in.CurrencyExchangeRate,
			ValidTill:            in.ValidTill,
			Notes:                in.Notes,
			DocumentTotals:       documentTotals(totals),
		}
		quote.CreatedBy = actor.UserID
		quote.UpdatedBy = actor.UserID
		if err := docs.CreateQuote(quote); err != nil {
			return err
		}
		if err := docs.LinkItems(documentItems(models.DocumentQuote, quote.ID, groups, actor)); err != nil {
			return err
		}

		st.action = fmt.Sprintf("Quote %s created", quote.QuoteNo)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("quote created", zap.String("quote_no", quote.QuoteNo), zap.String("final_quote", quote.FinalQuote.StringFixed(2)))
	return quote, nil
}

func documentTotals(t finance.QuoteTotals) models.DocumentTotals {
	return models.DocumentTotals{
		AddedSupplierTotal:      t.AddedSupplierTotal,
		AddedSupplierFinalTotal: t.AddedSupplierFinalTotal,
		AddedVatGroupValue:      t.AddedVatGroupValue,
		MarginValue:             t.MarginValue,
		SubTotal:                t.SubTotal,
		DiscountValue:           t.DiscountValue,
		AgentCommissionValue:    t.AgentCommissionValue,
		TotalQuote:              t.TotalQuote,
		VatGroupValue:           t.VatGroupValue,
		FinalQuote:              t.FinalQuote,
		ConvertedQuote:          t.ConvertedQuote,
	}
}

func documentItems(docType string, docID types.SnowflakeID, groups []SupplierRollup, actor models.Actor) []models.DocumentItem {
	var out []models.DocumentItem
	for _, g := range groups {
		for _, it := range g.Items {
			di := models.DocumentItem{
				DocumentType: docType,
				DocumentID:   docID,
				SelectionID:  it.SelectionID,
				Quantity:     it.Quantity,
				UnitPrice:    it.UnitPrice,
			}
			di.CreatedBy = actor.UserID
			di.UpdatedBy = actor.UserID
			out = append(out, di)
		}
	}
	return out
}

// relink copies the item links of one document onto another.
func relink(docs *repositories.DocumentRepository, items []models.DocumentItem, toType string, toID types.SnowflakeID, actor models.Actor) error {
	out := make([]models.DocumentItem, 0, len(items))
	for _, it := range items {
		di := models.DocumentItem{
			DocumentType: toType,
			DocumentID:   toID,
			SelectionID:  it.SelectionID,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
		}
		di.CreatedBy = actor.UserID
		di.UpdatedBy = actor.UserID
		out = append(out, di)
	}
	return docs.LinkItems(out)
}

type QuoteView struct {
	*models.Quote
	CurrencyLabel string                `json:"currency_label"`
	Items         []models.DocumentItem `json:"items"`
}

// GetQuote returns the frozen totals with the live currency label.
func (s *DocumentService) GetQuote(ctx context.Context, actor models.Actor, quoteID types.SnowflakeID) (*QuoteView, error) {
	db := s.db.WithContext(ctx)
	docs := repositories.NewDocumentRepository(db)
	q, err := docs.FindQuote(quoteID)
	if err != nil {
		return nil, notFound(err, "Quote")
	}
	if _, err := loadEnquiry(db, actor, q.EnquiryID); err != nil {
		return nil, apperr.NewNotFound("Quote")
	}
	items, err := docs.Items(models.DocumentQuote, q.ID)
	if err != nil {
		return nil, err
	}
	label, err := currencyLabel(db, q.CurrencyID)
	if err != nil {
		return nil, err
	}
	return &QuoteView{Quote: q, CurrencyLabel: label, Items: items}, nil
}

type ProformaInvoiceView struct {
	*models.ProformaInvoice
	CurrencyLabel string                `json:"currency_label"`
	Items         []models.DocumentItem `json:"items"`
}

func (s *DocumentService) GetProformaInvoice(ctx context.Context, actor models.Actor, id types.SnowflakeID) (*ProformaInvoiceView, error) {
	db := s.db.WithContext(ctx)
	docs := repositories.NewDocumentRepository(db)
	pi, err := docs.FindProformaInvoice(id)
	if err != nil {
		return nil, notFound(err, "Proforma invoice")
	}
	if _, err := loadEnquiry(db, actor, pi.EnquiryID); err != nil {
		return nil, apperr.NewNotFound("Proforma invoice")
	}
	items, err := docs.Items(models.DocumentProformaInvoice, pi.ID)
	if err != nil {
		return nil, err
	}
	label, err := currencyLabel(db, pi.CurrencyID)
	if err != nil {
		return nil, err
	}
	return &ProformaInvoiceView{ProformaInvoice: pi, CurrencyLabel: label, Items: items}, nil
}

type SalesOrderView struct {
	*models.SalesOrder
	CurrencyLabel string                `json:"currency_label"`
	Items         []models.DocumentItem `json:"items"`
}

func (s *DocumentService) GetSalesOrder(ctx context.Context, actor models.Actor, id types.SnowflakeID) (*SalesOrderView, error) {
	db := s.db.WithContext(ctx)
	docs := repositories.NewDocumentRepository(db)
	so, err := docs.FindSalesOrder(id)
	if err != nil {
		return nil, notFound(err, "Sales order")
	}
	if _, err := loadEnquiry(db, actor, so.EnquiryID); err != nil {
		return nil, apperr.NewNotFound("Sales order")
	}
	items, err := docs.Items(models.DocumentSalesOrder, so.ID)
	if err != nil {
		return nil, err
	}
	label, err := currencyLabel(db, so.CurrencyID)
	if err != nil {
		return nil, err
	}
	return &SalesOrderView{SalesOrder: so, CurrencyLabel: label, Items: items}, nil
}

func (s *DocumentService) ListQuotes(ctx context.Context, actor models.Actor, q repositories.ListQuery) (*Page[repositories.QuoteRow], error) {
	rows, meta, err := repositories.NewListRepository(s.db.WithContext(ctx)).Quotes(actor.OrganisationID, listQuery(q))
	return newPage(rows, meta, err)
}

func (s *DocumentService) ListProformaInvoices(ctx context.Context, actor models.Actor, q repositories.ListQuery) (*Page[repositories.ProformaInvoiceRow], error) {
	rows, meta, err := repositories.NewListRepository(s.db.WithContext(ctx)).ProformaInvoices(actor.OrganisationID, listQuery(q))
	return newPage(rows, meta, err)
}

func (s *DocumentService) ListSalesOrders(ctx context.Context, actor models.Actor, q repositories.ListQuery) (*Page[repositories.SalesOrderRow], error) {
	rows, meta, err := repositories.NewListRepository(s.db.WithContext(ctx)).SalesOrders(actor.OrganisationID, listQuery(q))
	return newPage(rows, meta, err)
}

// ListAllSupplierPOs pages through the purchase orders of every enquiry of
// the actor's organisation; q.Level narrows to one PO level.
func (s *DocumentService) ListAllSupplierPOs(ctx context.Context, actor models.Actor, q repositories.ListQuery) (*Page[repositories.SupplierPORow], error) {
	rows, meta, err := repositories.NewListRepository(s.db.WithContext(ctx)).SupplierPOs(actor.OrganisationID, listQuery(q))
	return newPage(rows, meta, err)
}

type ProformaInvoiceInput struct {
	CustomerRefNo        string     `json:"customer_ref_no"`
	InvoiceDate          *time.Time `json:"invoice_date"`
	InvoiceDueDate       *time.Time `json:"invoice_due_date"`
	BillingAddress       string     `json:"billing_address"`
	ShippingAddress      string     `json:"shipping_address"`
	PartialDelivery      bool       `json:"partial_delivery"`
	CountryOfOrigin      string     `json:"country_of_origin"`
	CountryOfDestination string     `json:"country_of_destination"`
	PaymentOption        string     `json:"payment_option"`
	DeliveryTerm         string     `json:"delivery_term"`
}

// CreateProformaInvoice snapshots the latest quote.
func (s *DocumentService) CreateProformaInvoice(ctx context.Context, actor models.Actor, enquiryID types.SnowflakeID, in ProformaInvoiceInput) (*models.ProformaInvoice, error) {
	var pi *models.ProformaInvoice
	_, err := s.transition(ctx, actor, enquiryID, lifecycle.OpCreatePI, func(st *step) error {
		docs := repositories.NewDocumentRepository(st.tx)
		quote, err := docs.LatestQuote(enquiryID)
		if err != nil {
			return notFound(err, "Quote")
		}

		items, err := docs.Items(models.DocumentQuote, quote.ID)
		if err != nil {
			return err
		}
		quantity := decimal.Zero
		for _, it := range items {
			q, err := finance.CoerceString(it.Quantity)
			if err != nil {
				return err
			}
			quantity = quantity.Add(q)
		}

		piNo, err := repositories.NewNumberRepository(st.tx).Generate(&models.ProformaInvoice{}, "pi_no", repositories.PrefixProforma)
		if err != nil {
			return err
		}
		pi = &models.ProformaInvoice{
			PINo:                 piNo,
			EnquiryID:            enquiryID,
			QuoteID:              quote.ID,
			CurrencyID:           quote.CurrencyID,
			CustomerRefNo:        in.CustomerRefNo,
			InvoiceDate:          dateOrNow(in.InvoiceDate),
			InvoiceDueDate:       in.InvoiceDueDate,
			BillingAddress:       in.BillingAddress,
			ShippingAddress:      in.ShippingAddress,
			PartialDelivery:      in.PartialDelivery,
			CountryOfOrigin:      in.CountryOfOrigin,
			CountryOfDestination: in.CountryOfDestination,
			PaymentOption:        in.PaymentOption,
			DeliveryTerm:         in.DeliveryTerm,
			TotalItems:           len(items),
			TotalQuantity:        quantity,
			DocumentTotals:       quote.DocumentTotals,
		}
		pi.CreatedBy = actor.UserID
		pi.UpdatedBy = actor.UserID
		if err := docs.CreateProformaInvoice(pi); err != nil {
			return err
		}
		if err := relink(docs, items, models.DocumentProformaInvoice, pi.ID, actor); err != nil {
			return err
		}

		st.action = fmt.Sprintf("Proforma invoice %s created", pi.PINo)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pi, nil
}

type SalesOrderInput struct {
	CustomerPONo     string     `json:"customer_po_no"`
	OrderDate        *time.Time `json:"order_date"`
	ExpectedDelivery *time.Time `json:"expected_delivery"`
}

// CreateSalesOrder snapshots the latest proforma invoice.
func (s *DocumentService) CreateSalesOrder(ctx context.Context, actor models.Actor, enquiryID types.SnowflakeID, in SalesOrderInput) (*models.SalesOrder, error) {
	var so *models.SalesOrder
	_, err := s.transition(ctx, actor, enquiryID, lifecycle.OpCreateSalesOrder, func(st *step) error {
		docs := repositories.NewDocumentRepository(st.tx)
		pi, err := docs.LatestProformaInvoice(enquiryID)
		if err != nil {
			return notFound(err, "Proforma invoice")
		}

		soNo, err := repositories.NewNumberRepository(st.tx).Generate(&models.SalesOrder{}, "so_no", repositories.PrefixSalesOrder)
		if err != nil {
			return err
		}
		so = &models.SalesOrder{
			SONo:              soNo,
			EnquiryID:         enquiryID,
			ProformaInvoiceID: pi.ID,
			CurrencyID:        pi.CurrencyID,
			CustomerPONo:      in.CustomerPONo,
			OrderDate:         dateOrNow(in.OrderDate),
			ExpectedDelivery:  in.ExpectedDelivery,
			DocumentTotals:    pi.DocumentTotals,
		}
		so.CreatedBy = actor.UserID
		so.UpdatedBy = actor.UserID
		if err := docs.CreateSalesOrder(so); err != nil {
			return err
		}
		items, err := docs.Items(models.DocumentProformaInvoice, pi.ID)
		if err != nil {
			return err
		}
		if err := relink(docs, items, models.DocumentSalesOrder, so.ID, actor); err != nil {
			return err
		}

		st.action = fmt.Sprintf("Sales order %s created", so.SONo)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return so, nil
}

// CreateSupplierPOs issues one purchase order per shortlisted supplier,
// freezing its rollup and finance terms.
func (s *DocumentService) CreateSupplierPOs(ctx context.Context, actor models.Actor, enquiryID types.SnowflakeID) ([]models.SupplierPO, error) {
	var pos []models.SupplierPO
	_, err := s.transition(ctx, actor, enquiryID, lifecycle.OpCreateSupplierPO, func(st *step) error {
		if st.enquiry.IsSupplierPOCreated {
			return apperr.NewPrecondition("SUPPLIER_PO_EXISTS", "purchase orders of enquiry %s were already issued", st.enquiry.EnquiryNo)
		}
		docs := repositories.NewDocumentRepository(st.tx)
		so, err := docs.LatestSalesOrder(enquiryID)
		if err != nil {
			return notFound(err, "Sales order")
		}

		groups, err := supplierRollups(st.tx, enquiryID, repositories.ShortlistedOnly)
		if err != nil {
			return err
		}
		if len(groups) == 0 {
			return apperr.NewPrecondition("MISSING_"+string(lifecycle.OpCreateSupplierPO), "no supplier items have been shortlisted")
		}

		numbers := repositories.NewNumberRepository(st.tx)
		for _, g := range groups {
			// numbers continue from the last stored one, so each PO is
			// written before the next number is drawn.
			poNo, err := numbers.Generate(&models.SupplierPO{}, "po_no", repositories.PrefixSupplierPO)
			if err != nil {
				return err
			}
			po := models.SupplierPO{
				PONo:               poNo,
				EnquiryID:          enquiryID,
				SalesOrderID:       so.ID,
				SupplierID:         g.SupplierID,
				FinanceMeta:        g.FinanceMeta,
				ItemTotalQuantity:  g.ItemTotalQuantity,
				SupplierTotal:      g.SupplierTotal,
				FreightCharges:     g.FreightCharges,
				PackingCharges:     g.PackingCharges,
				SubTotal:           g.SubTotal,
				VatPercentage:      g.VatPercentage,
				VatAmount:          g.VatAmount,
				SupplierFinalTotal: g.SupplierFinalTotal,
				Level:              models.ShipmentLevelPreBill,
			}
			po.CreatedBy = actor.UserID
			po.UpdatedBy = actor.UserID
			if err := docs.CreateSupplierPO(&po); err != nil {
				return err
			}
			if err := docs.LinkItems(documentItems(models.DocumentSupplierPO, po.ID, []SupplierRollup{g}, actor)); err != nil {
				return err
			}
			pos = append(pos, po)
		}

		st.action = fmt.Sprintf("%d supplier purchase orders created", len(pos))
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, po := range pos {
		s.log.Info("supplier po created", zap.String("po_no", po.PONo), zap.String("supplier_id", po.SupplierID.String()))
	}
	return pos, nil
}

func (s *DocumentService) ListSupplierPOs(ctx context.Context, actor models.Actor, enquiryID types.SnowflakeID) ([]models.SupplierPO, error) {
	db := s.db.WithContext(ctx)
	if _, err := loadEnquiry(db, actor, enquiryID); err != nil {
		return nil, err
	}
	return repositories.NewDocumentRepository(db).ListSupplierPOs(enquiryID)
}

func dateOrNow(t *time.Time) time.Time {
	if t == nil {
		return time.Now()
	}
	return *t
}
