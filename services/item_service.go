package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"enquiry-app/apperr"
	"enquiry-app/finance"
	"enquiry-app/importer"
	"enquiry-app/lifecycle"
	"enquiry-app/models"
	"enquiry-app/notification"
	"enquiry-app/repositories"
	"enquiry-app/types"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ItemService struct {
	base
}

func NewItemService(db *gorm.DB, log *zap.Logger, pub notification.Publisher) *ItemService {
	return &ItemService{base: newBase(db, log, pub)}
}

type ItemInput struct {
	PartNumber string `json:"part_number" validate:"required"`
	PartDesc   string `json:"part_desc"`
	HSCode     string `json:"hscode"`
	UnitPrice  string `json:"unit_price"`
	Quantity   string `json:"quantity"`
	Delivery   string `json:"delivery"`
	Notes      string `json:"notes"`
}

var partNumberSeparators = strings.NewReplacer("-", "", "/", "")

// PartNumberCode is the matching key between enquiry and supplier items:
// lower case with dashes and slashes removed.
func PartNumberCode(partNumber string) string {
	return strings.ToLower(partNumberSeparators.Replace(partNumber))
}

func (in ItemInput) validate() error {
	if strings.TrimSpace(in.PartNumber) == "" {
		return apperr.NewValidation("part number is required")
	}
	if _, err := finance.CoerceString(in.UnitPrice); err != nil {
		return err
	}
	q, err := finance.CoerceString(in.Quantity)
	if err != nil {
		return err
	}
	if q.IsNegative() {
		return apperr.NewValidation("quantity cannot be negative")
	}
	return nil
}

func (in ItemInput) apply(item *models.EnquiryItem) {
	item.PartNumber = strings.TrimSpace(in.PartNumber)
	item.PartNumberCode = PartNumberCode(item.PartNumber)
	item.PartDesc = in.PartDesc
	item.HSCode = in.HSCode
	item.UnitPrice = in.UnitPrice
	item.Quantity = in.Quantity
	if strings.TrimSpace(item.Quantity) == "" {
		item.Quantity = "1"
	}
	item.Delivery = in.Delivery
	item.Notes = in.Notes
}

func (s *ItemService) AddItem(ctx context.Context, actor models.Actor, enquiryID types.SnowflakeID, in ItemInput) (*models.EnquiryItem, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var item models.EnquiryItem
	_, err := s.transition(ctx, actor, enquiryID, lifecycle.OpAddItem, func(st *step) error {
		items := repositories.NewItemRepository(st.tx)
		inUse, err := items.PartNumbersInUse(enquiryID, 0)
		if err != nil {
			return err
		}
		if inUse[strings.TrimSpace(in.PartNumber)] {
			return apperr.NewPrecondition("DUPLICATE_PART_NUMBER", "part number %s is already on this enquiry", in.PartNumber)
		}

		item = models.EnquiryItem{EnquiryID: enquiryID}
		in.apply(&item)
		item.CreatedBy = actor.UserID
		item.UpdatedBy = actor.UserID
		if err := items.Create(&item); err != nil {
			return err
		}
		st.action = fmt.Sprintf("Enquiry item %s added", item.PartNumber)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem edits an item while no quote has been issued.
func (s *ItemService) UpdateItem(ctx context.Context, actor models.Actor, enquiryID, itemID types.SnowflakeID, in ItemInput) (*models.EnquiryItem, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var item *models.EnquiryItem
	_, err := s.transition(ctx, actor, enquiryID, lifecycle.OpEditItem, func(st *step) error {
		if err := itemsEditable(st.enquiry); err != nil {
			return err
		}
		items := repositories.NewItemRepository(st.tx)
		found, err := items.FindByID(enquiryID, itemID)
		if err != nil {
			return notFound(err, "Enquiry item")
		}
		inUse, err := items.PartNumbersInUse(enquiryID, itemID)
		if err != nil {
			return err
		}
		if inUse[strings.TrimSpace(in.PartNumber)] {
			return apperr.NewPrecondition("DUPLICATE_PART_NUMBER", "part number %s is already on this enquiry", in.PartNumber)
		}

		in.apply(found)
		if err := items.Update(found, actor.UserID); err != nil {
			return err
		}
		item = found
		st.action = fmt.Sprintf("Enquiry item %s updated", found.PartNumber)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem soft deletes an item and drops it from the shortlist.
func (s *ItemService) DeleteItem(ctx context.Context, actor models.Actor, enquiryID, itemID types.SnowflakeID) error {
	_, err := s.transition(ctx, actor, enquiryID, lifecycle.OpEditItem, func(st *step) error {
		if err := itemsEditable(st.enquiry); err != nil {
			return err
		}
		items := repositories.NewItemRepository(st.tx)
		item, err := items.FindByID(enquiryID, itemID)
		if err != nil {
			return notFound(err, "Enquiry item")
		}
		if err := items.SoftDelete(item.ID, actor.UserID); err != nil {
			return stale(err, "Enquiry item")
		}
		if err := repositories.NewSelectionRepository(st.tx).UnshortlistItem(item.ID, actor.UserID); err != nil {
			return err
		}
		st.action = fmt.Sprintf("Enquiry item %s deleted", item.PartNumber)
		return nil
	})
	return err
}

func itemsEditable(e *models.Enquiry) error {
	if e.IsQuoteCreated {
		return apperr.NewPrecondition("ITEM_LOCKED", "items of enquiry %s are locked once a quote exists", e.EnquiryNo)
	}
	return nil
}

type ImportResult struct {
	TotalRows     int      `json:"total_rows"`
	SuccessCount  int      `json:"success_count"`
	SkippedCount  int      `json:"skipped_count"`
	ErrorCount    int      `json:"error_count"`
	SkippedItems  []string `json:"skipped_items"`
	ErrorMessages []string `json:"error_messages"`
}

// BulkAddItems inserts parsed upload rows. Rows whose part number is
// already on the enquiry, or repeated in the file, are skipped.
func (s *ItemService) BulkAddItems(ctx context.Context, actor models.Actor, enquiryID types.SnowflakeID, rows []importer.ItemRow) (*ImportResult, error) {
	result := &ImportResult{TotalRows: len(rows)}

	_, err := s.transition(ctx, actor, enquiryID, lifecycle.OpAddItem, func(st *step) error {
		items := repositories.NewItemRepository(st.tx)
		inUse, err := items.PartNumbersInUse(enquiryID, 0)
		if err != nil {
			return err
		}

		var batch []models.EnquiryItem
		for _, row := range rows {
			in := ItemInput{
				PartNumber: row.PartNumber,
				PartDesc:   row.PartDesc,
				HSCode:     row.HSCode,
				UnitPrice:  row.UnitPrice,
				Quantity:   row.Quantity,
				Delivery:   row.Delivery,
				Notes:      row.Notes,
			}
			if err := in.validate(); err != nil {
				result.ErrorCount++
				result.ErrorMessages = append(result.ErrorMessages, fmt.Sprintf("Row %d: %v", row.Row, err))
				continue
			}
			partNumber := strings.TrimSpace(row.PartNumber)
			if inUse[partNumber] {
				result.SkippedCount++
				result.SkippedItems = append(result.SkippedItems, fmt.Sprintf("Row %d: %s (duplicate part number)", row.Row, row.PartNumber))
				continue
			}
			inUse[partNumber] = true

			item := models.EnquiryItem{EnquiryID: enquiryID}
			in.apply(&item)
			item.CreatedBy = actor.UserID
			item.UpdatedBy = actor.UserID
			batch = append(batch, item)
		}

		if len(batch) == 0 {
			st.skip = true
			return nil
		}
		if err := items.CreateInBatches(batch); err != nil {
			return err
		}
		result.SuccessCount = len(batch)
		st.action = fmt.Sprintf("%d enquiry items uploaded", len(batch))
		return nil
	})
	if err != nil && !errors.Is(err, errSkipped) {
		return nil, err
	}

	s.log.Info("enquiry items uploaded",
		zap.String("enquiry_id", enquiryID.String()),
		zap.Int("total", result.TotalRows),
		zap.Int("success", result.SuccessCount),
		zap.Int("skipped", result.SkippedCount),
		zap.Int("errors", result.ErrorCount))
	return result, nil
}

// itemsTotal is the customer side value of the requested items.
func itemsTotal(items []models.EnquiryItem) (decimal.Decimal, error) {
	lines := make([]finance.Line, 0, len(items))
	for _, it := range items {
		price, err := finance.CoerceString(it.UnitPrice)
		if err != nil {
			return decimal.Zero, err
		}
		lines = append(lines, finance.Line{Quantity: it.Quantity, UnitPrice: price})
	}
	return finance.LinesTotal(lines)
}
