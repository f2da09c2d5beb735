package services

import (
	"context"
	"strings"

	"enquiry-app/finance"
	"enquiry-app/models"
	"enquiry-app/notification"
	"enquiry-app/repositories"
	"enquiry-app/types"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// RollupService computes live supplier and enquiry totals. Nothing here is
// persisted; issued documents freeze their own copy.
type RollupService struct {
	base
}

func NewRollupService(db *gorm.DB, log *zap.Logger, pub notification.Publisher) *RollupService {
	return &RollupService{base: newBase(db, log, pub)}
}

type RollupItem struct {
	SelectionID    types.SnowflakeID `json:"selection_id"`
	EnquiryItemID  types.SnowflakeID `json:"enquiry_item_id"`
	SupplierItemID types.SnowflakeID `json:"supplier_item_id"`
	PartNumber     string            `json:"part_number"`
	PartDesc       string            `json:"part_desc"`
	Quantity       string            `json:"quantity"`
	UnitPrice      decimal.Decimal   `json:"unit_price"`
	IsShortListed  bool              `json:"is_short_listed"`
}

// SupplierRollup is one supplier group. Its terms are taken from the
// oldest selection of the group.
type SupplierRollup struct {
	SupplierID      types.SnowflakeID  `json:"supplier_id"`
	SupplierName    string             `json:"supplier_name"`
	SupplierEmail   string             `json:"supplier_email"`
	FinanceMeta     models.FinanceMeta `json:"finance_meta"`
	VatGroupName    string             `json:"vat_group_name"`
	PaymentTermDays types.Maybe[int]   `json:"payment_term_days"`
	CurrencyLabel   string             `json:"currency_label"`
	Items           []RollupItem       `json:"items"`
	finance.SupplierTotals
}

// SupplierRollups groups the selections of an enquiry by supplier.
func (s *RollupService) SupplierRollups(ctx context.Context, actor models.Actor, enquiryID types.SnowflakeID, filter repositories.ShortlistFilter) ([]SupplierRollup, error) {
	db := s.db.WithContext(ctx)
	if _, err := loadEnquiry(db, actor, enquiryID); err != nil {
		return nil, err
	}
	return supplierRollups(db, enquiryID, filter)
}

type EnquiryRollupView struct {
	finance.EnquiryTotals
	CurrencyLabel string           `json:"currency_label"`
	Suppliers     []SupplierRollup `json:"suppliers"`
}

// EnquiryRollup sums the shortlisted supplier groups.
func (s *RollupService) EnquiryRollup(ctx context.Context, actor models.Actor, enquiryID types.SnowflakeID) (*EnquiryRollupView, error) {
	db := s.db.WithContext(ctx)
	e, err := loadEnquiry(db, actor, enquiryID)
	if err != nil {
		return nil, err
	}

	groups, err := supplierRollups(db, enquiryID, repositories.ShortlistedOnly)
	if err != nil {
		return nil, err
	}
	label, err := currencyLabel(db, e.CurrencyID)
	if err != nil {
		return nil, err
	}

	return &EnquiryRollupView{
		EnquiryTotals: enquiryTotals(groups),
		CurrencyLabel: label,
		Suppliers:     groups,
	}, nil
}

func enquiryTotals(groups []SupplierRollup) finance.EnquiryTotals {
	totals := make([]finance.SupplierTotals, 0, len(groups))
	for _, g := range groups {
		totals = append(totals, g.SupplierTotals)
	}
	return finance.EnquiryRollup(totals)
}

type CompareRow struct {
	SelectionID    types.SnowflakeID `json:"selection_id"`
	SupplierID     types.SnowflakeID `json:"supplier_id"`
	SupplierName   string            `json:"supplier_name"`
	Quantity       string            `json:"quantity"`
	UnitPrice      decimal.Decimal   `json:"unit_price"`
	PaymentOption  string            `json:"payment_option"`
	DeliveryTerm   string            `json:"delivery_term"`
	PaymentTermsID types.SnowflakeID `json:"payment_terms_id"`
	Color          string            `json:"color,omitempty"`
}

type CompareGroup struct {
	EnquiryItemID types.SnowflakeID `json:"enquiry_item_id"`
	PartNumber    string            `json:"part_number"`
	Rows          []CompareRow      `json:"rows"`
}

// Compare lays approved suppliers' terms side by side per item, tagging
// each row against filter when it is active.
func (s *RollupService) Compare(ctx context.Context, actor models.Actor, enquiryID types.SnowflakeID, filter finance.CompareFilter) ([]CompareGroup, error) {
	db := s.db.WithContext(ctx)
	if _, err := loadEnquiry(db, actor, enquiryID); err != nil {
		return nil, err
	}

	rows, err := repositories.NewSelectionRepository(db).CompareRows(enquiryID)
	if err != nil {
		return nil, err
	}
	lookup, err := loadLookups(db, enquiryID, rows)
	if err != nil {
		return nil, err
	}

	var out []CompareGroup
	for _, sel := range rows {
		item, ok := lookup.items[sel.EnquiryItemID]
		if !ok {
			continue
		}
		if len(out) == 0 || out[len(out)-1].EnquiryItemID != sel.EnquiryItemID {
			out = append(out, CompareGroup{EnquiryItemID: sel.EnquiryItemID, PartNumber: item.PartNumber})
		}
		price, err := finance.EffectiveUnitPrice(sel.FinalItemDetails.UnitPrice, lookup.supplierItems[sel.SupplierItemID].UnitPrice)
		if err != nil {
			return nil, err
		}

		meta := sel.FinanceMeta
		group := &out[len(out)-1]
		group.Rows = append(group.Rows, CompareRow{
			SelectionID:    sel.ID,
			SupplierID:     sel.SupplierID,
			SupplierName:   lookup.suppliers[sel.SupplierID].CompanyName,
			Quantity:       sel.Quantity,
			UnitPrice:      price,
			PaymentOption:  meta.PaymentOption,
			DeliveryTerm:   meta.DeliveryTerm,
			PaymentTermsID: meta.PaymentTermsID,
			Color: filter.Color(finance.Terms{
				PaymentOption:  meta.PaymentOption,
				DeliveryTerm:   meta.DeliveryTerm,
				PaymentTermsID: int64(meta.PaymentTermsID),
			}),
		})
	}
	return out, nil
}

type lookups struct {
	items         map[types.SnowflakeID]models.EnquiryItem
	suppliers     map[types.SnowflakeID]models.Supplier
	supplierItems map[types.SnowflakeID]models.SupplierItem
}

func loadLookups(db *gorm.DB, enquiryID types.SnowflakeID, rows []models.SupplierSelection) (*lookups, error) {
	items, err := repositories.NewItemRepository(db).ListByEnquiry(enquiryID)
	if err != nil {
		return nil, err
	}
	l := &lookups{items: make(map[types.SnowflakeID]models.EnquiryItem, len(items))}
	for _, it := range items {
		l.items[it.ID] = it
	}

	var supplierIDs, supplierItemIDs []types.SnowflakeID
	for _, r := range rows {
		supplierIDs = append(supplierIDs, r.SupplierID)
		supplierItemIDs = append(supplierItemIDs, r.SupplierItemID)
	}

	master := repositories.NewMasterRepository(db)
	if l.suppliers, err = master.SuppliersByIDs(uniqueIDs(supplierIDs)); err != nil {
		return nil, err
	}
	if l.supplierItems, err = master.SupplierItemsByIDs(uniqueIDs(supplierItemIDs)); err != nil {
		return nil, err
	}
	return l, nil
}

// supplierRollups is shared by the live views and by document issue, which
// calls it with its transaction.
func supplierRollups(db *gorm.DB, enquiryID types.SnowflakeID, filter repositories.ShortlistFilter) ([]SupplierRollup, error) {
	rows, err := repositories.NewSelectionRepository(db).ListByEnquiry(enquiryID, filter)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []SupplierRollup{}, nil
	}

	lookup, err := loadLookups(db, enquiryID, rows)
	if err != nil {
		return nil, err
	}

	// rows are ordered by supplier then id, so each group starts with its
	// oldest selection.
	var groups [][]models.SupplierSelection
	for i, r := range rows {
		if i == 0 || rows[i-1].SupplierID != r.SupplierID {
			groups = append(groups, nil)
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], r)
	}

	var vatIDs, termIDs []types.SnowflakeID
	for _, g := range groups {
		vatIDs = append(vatIDs, g[0].FinanceMeta.VatGroupID)
		termIDs = append(termIDs, g[0].FinanceMeta.PaymentTermsID)
	}
	master := repositories.NewMasterRepository(db)
	vatGroups, err := master.VatGroupsByIDs(uniqueIDs(vatIDs))
	if err != nil {
		return nil, err
	}
	terms, err := master.PaymentTermsByIDs(uniqueIDs(termIDs))
	if err != nil {
		return nil, err
	}

	out := make([]SupplierRollup, 0, len(groups))
	for _, g := range groups {
		meta := g[0].FinanceMeta
		vat := vatGroups[meta.VatGroupID]

		quantities := make([]string, 0, len(g))
		items := make([]RollupItem, 0, len(g))
		for _, sel := range g {
			quantities = append(quantities, sel.Quantity)
			catalog := lookup.supplierItems[sel.SupplierItemID]
			price, err := finance.EffectiveUnitPrice(sel.FinalItemDetails.UnitPrice, catalog.UnitPrice)
			if err != nil {
				return nil, err
			}
			item := lookup.items[sel.EnquiryItemID]
			desc := item.PartDesc
			if sel.FinalItemDetails.PartDesc != "" {
				desc = sel.FinalItemDetails.PartDesc
			}
			items = append(items, RollupItem{
				SelectionID:    sel.ID,
				EnquiryItemID:  sel.EnquiryItemID,
				SupplierItemID: sel.SupplierItemID,
				PartNumber:     item.PartNumber,
				PartDesc:       desc,
				Quantity:       sel.Quantity,
				UnitPrice:      price,
				IsShortListed:  sel.IsShortListed,
			})
		}

		totals, err := finance.SupplierRollup(finance.Charges{
			SupplierTotal:  meta.SupplierTotal,
			FreightCharges: meta.FreightCharges,
			PackingCharges: meta.PackingCharges,
			VatPercentage:  vat.Percentage,
		}, quantities)
		if err != nil {
			return nil, err
		}

		supplier := lookup.suppliers[g[0].SupplierID]
		rollup := SupplierRollup{
			SupplierID:     supplier.ID,
			SupplierName:   supplier.CompanyName,
			SupplierEmail:  supplier.Email,
			FinanceMeta:    meta,
			VatGroupName:   vat.Name,
			Items:          items,
			SupplierTotals: totals,
		}
		if term, ok := terms[meta.PaymentTermsID]; ok {
			rollup.PaymentTermDays = types.Some(term.NoOfDays)
		}
		if meta.CurrencyID != 0 {
			if rollup.CurrencyLabel, err = currencyLabel(db, meta.CurrencyID); err != nil {
				return nil, err
			}
		}
		out = append(out, rollup)
	}

	slices.SortStableFunc(out, func(a, b SupplierRollup) int {
		return strings.Compare(strings.ToLower(a.SupplierName), strings.ToLower(b.SupplierName))
	})
	return out, nil
}

// pricedTotal is sum(quantity * effective unit price) over rows.
func pricedTotal(db *gorm.DB, rows []models.SupplierSelection) (decimal.Decimal, error) {
	ids := make([]types.SnowflakeID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.SupplierItemID)
	}
	catalog, err := repositories.NewMasterRepository(db).SupplierItemsByIDs(uniqueIDs(ids))
	if err != nil {
		return decimal.Zero, err
	}

	lines := make([]finance.Line, 0, len(rows))
	for _, r := range rows {
		price, err := finance.EffectiveUnitPrice(r.FinalItemDetails.UnitPrice, catalog[r.SupplierItemID].UnitPrice)
		if err != nil {
			return decimal.Zero, err
		}
		lines = append(lines, finance.Line{Quantity: r.Quantity, UnitPrice: price})
	}
	return finance.LinesTotal(lines)
}
