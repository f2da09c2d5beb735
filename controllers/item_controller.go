package controllers

import (
	"errors"
	"strings"

	"enquiry-app/apperr"
	"enquiry-app/importer"
	"enquiry-app/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ItemController struct {
	base
	svc *services.ItemService
}

func NewItemController(svc *services.ItemService, log *zap.Logger) *ItemController {
	return &ItemController{base: newBase(log), svc: svc}
}

func (c *ItemController) AddItem(ctx *fiber.Ctx) error {
	actor, enquiryID, err := request(ctx, "id")
	if err != nil {
		return c.fail(ctx, err)
	}
	var in services.ItemInput
	if err := parse(ctx, &in); err != nil {
		return c.fail(ctx, err)
	}

	item, err := c.svc.AddItem(ctx.UserContext(), actor, enquiryID, in)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusCreated, "Item added successfully", item)
}

func (c *ItemController) UpdateItem(ctx *fiber.Ctx) error {
	actor, enquiryID, err := request(ctx, "id")
	if err != nil {
		return c.fail(ctx, err)
	}
	itemID, err := idParam(ctx, "itemId")
	if err != nil {
		return c.fail(ctx, err)
	}
	var in services.ItemInput
	if err := parse(ctx, &in); err != nil {
		return c.fail(ctx, err)
	}

	item, err := c.svc.UpdateItem(ctx.UserContext(), actor, enquiryID, itemID, in)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusOK, "Item updated successfully", item)
}

func (c *ItemController) DeleteItem(ctx *fiber.Ctx) error {
	actor, enquiryID, err := request(ctx, "id")
	if err != nil {
		return c.fail(ctx, err)
	}
	itemID, err := idParam(ctx, "itemId")
	if err != nil {
		return c.fail(ctx, err)
	}
	if err := c.svc.DeleteItem(ctx.UserContext(), actor, enquiryID, itemID); err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusOK, "Item deleted successfully", nil)
}

// UploadItems adds the rows of an uploaded xlsx workbook to the enquiry.
func (c *ItemController) UploadItems(ctx *fiber.Ctx) error {
	actor, enquiryID, err := request(ctx, "id")
	if err != nil {
		return c.fail(ctx, err)
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		return c.fail(ctx, apperr.NewValidation("file is required"))
	}
	if !strings.HasSuffix(strings.ToLower(file.Filename), ".xlsx") {
		return c.fail(ctx, apperr.NewValidation("only Excel files (.xlsx) are allowed"))
	}

	fileContent, err := file.Open()
	if err != nil {
		return c.fail(ctx, err)
	}
	defer fileContent.Close()

	rows, skipped, err := importer.ReadItems(fileContent)
	if errors.Is(err, importer.ErrNoSheet) || errors.Is(err, importer.ErrNoRows) {
		return c.fail(ctx, apperr.NewValidation("%v", err))
	}
	if err != nil {
		return c.fail(ctx, apperr.NewValidation("failed to read Excel file"))
	}

	result, err := c.svc.BulkAddItems(ctx.UserContext(), actor, enquiryID, rows)
	if err != nil {
		return c.fail(ctx, err)
	}
	result.TotalRows += len(skipped)
	result.SkippedCount += len(skipped)
	result.SkippedItems = append(result.SkippedItems, skipped...)

	return respond(ctx, fiber.StatusOK, "Items uploaded", result)
}
