package controllers

import (
	"enquiry-app/apperr"
	"enquiry-app/finance"
	"enquiry-app/models"
	"enquiry-app/repositories"
	"enquiry-app/services"
	"enquiry-app/types"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type SelectionController struct {
	base
	svc     *services.SelectionService
	rollups *services.RollupService
}

func NewSelectionController(svc *services.SelectionService, rollups *services.RollupService, log *zap.Logger) *SelectionController {
	return &SelectionController{base: newBase(log), svc: svc, rollups: rollups}
}

func (c *SelectionController) Candidates(ctx *fiber.Ctx) error {
	actor, enquiryID, err := request(ctx, "id")
	if err != nil {
		return c.fail(ctx, err)
	}
	items, err := c.svc.Candidates(ctx.UserContext(), actor, enquiryID)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusOK, "Candidates found", items)
}

func (c *SelectionController) Select(ctx *fiber.Ctx) error {
	actor, enquiryID, err := request(ctx, "id")
	if err != nil {
		return c.fail(ctx, err)
	}
	var in services.SelectInput
	if err := parse(ctx, &in); err != nil {
		return c.fail(ctx, err)
	}

	selection, err := c.svc.Select(ctx.UserContext(), actor, enquiryID, in)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusOK, "Supplier item selected", selection)
}

type shortlistInput struct {
	SelectionIDs []types.SnowflakeID `json:"selection_ids" validate:"required,min=1"`
	Shortlisted  bool                `json:"shortlisted"`
}

func (c *SelectionController) Shortlist(ctx *fiber.Ctx) error {
	actor, enquiryID, err := request(ctx, "id")
	if err != nil {
		return c.fail(ctx, err)
	}
	var in shortlistInput
	if err := parse(ctx, &in); err != nil {
		return c.fail(ctx, err)
	}

	enquiry, err := c.svc.Shortlist(ctx.UserContext(), actor, enquiryID, in.SelectionIDs, in.Shortlisted)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusOK, "Shortlist updated", enquiry)
}

type skipInput struct {
	Skipped bool `json:"skipped"`
}

func (c *SelectionController) Skip(ctx *fiber.Ctx) error {
	actor, enquiryID, err := request(ctx, "id")
	if err != nil {
		return c.fail(ctx, err)
	}
	selectionID, err := idParam(ctx, "selectionId")
	if err != nil {
		return c.fail(ctx, err)
	}
	var in skipInput
	if err := parse(ctx, &in); err != nil {
		return c.fail(ctx, err)
	}

	selection, err := c.svc.Skip(ctx.UserContext(), actor, enquiryID, selectionID, in.Skipped)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusOK, "Selection updated", selection)
}

func (c *SelectionController) supplierRequest(ctx *fiber.Ctx) (enquiryID, supplierID types.SnowflakeID, err error) {
	if enquiryID, err = idParam(ctx, "id"); err != nil {
		return
	}
	supplierID, err = idParam(ctx, "supplierId")
	return
}

func (c *SelectionController) UpdateSupplierFinance(ctx *fiber.Ctx) error {
	actor, err := actorOf(ctx)
	if err != nil {
		return c.fail(ctx, err)
	}
	enquiryID, supplierID, err := c.supplierRequest(ctx)
	if err != nil {
		return c.fail(ctx, err)
	}
	var in services.FinanceInput
	if err := parse(ctx, &in); err != nil {
		return c.fail(ctx, err)
	}

	if err := c.svc.UpdateSupplierFinance(ctx.UserContext(), actor, enquiryID, supplierID, in); err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusOK, "Supplier terms updated", nil)
}

func (c *SelectionController) RefreshSupplierTotal(ctx *fiber.Ctx) error {
	actor, err := actorOf(ctx)
	if err != nil {
		return c.fail(ctx, err)
	}
	enquiryID, supplierID, err := c.supplierRequest(ctx)
	if err != nil {
		return c.fail(ctx, err)
	}

	total, err := c.svc.RefreshSupplierTotal(ctx.UserContext(), actor, enquiryID, supplierID)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusOK, "Supplier total recalculated", fiber.Map{"supplier_total": total})
}

func (c *SelectionController) SendSupplierMail(ctx *fiber.Ctx) error {
	actor, err := actorOf(ctx)
	if err != nil {
		return c.fail(ctx, err)
	}
	enquiryID, supplierID, err := c.supplierRequest(ctx)
	if err != nil {
		return c.fail(ctx, err)
	}

	if err := c.svc.SendSupplierEnquiryMail(ctx.UserContext(), actor, enquiryID, supplierID); err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusOK, "Mail sent to supplier", nil)
}

// MailLogs takes an optional ?supplier_id= filter.
func (c *SelectionController) MailLogs(ctx *fiber.Ctx) error {
	actor, enquiryID, err := request(ctx, "id")
	if err != nil {
		return c.fail(ctx, err)
	}
	var supplierID types.SnowflakeID
	if raw := ctx.Query("supplier_id"); raw != "" {
		if supplierID, err = types.ParseSnowflakeID(raw); err != nil || supplierID <= 0 {
			return c.fail(ctx, apperr.NewValidation("invalid supplier_id"))
		}
	}

	logs, err := c.svc.MailLogs(ctx.UserContext(), actor, enquiryID, supplierID)
	if err != nil {
		return c.fail(ctx, err)
	}
	if logs == nil {
		logs = []models.MailLog{}
	}
	return respond(ctx, fiber.StatusOK, "Mail logs found", logs)
}

func (c *SelectionController) EnquiryRollup(ctx *fiber.Ctx) error {
	actor, enquiryID, err := request(ctx, "id")
	if err != nil {
		return c.fail(ctx, err)
	}
	view, err := c.rollups.EnquiryRollup(ctx.UserContext(), actor, enquiryID)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusOK, "Rollup computed", view)
}

// SupplierRollups takes ?shortlisted=true|false; without it every
// selection is grouped.
func (c *SelectionController) SupplierRollups(ctx *fiber.Ctx) error {
	actor, enquiryID, err := request(ctx, "id")
	if err != nil {
		return c.fail(ctx, err)
	}

	filter := repositories.AllSelections
	switch ctx.Query("shortlisted") {
	case "":
	case "true":
		filter = repositories.ShortlistedOnly
	case "false":
		filter = repositories.NotShortlisted
	default:
		return c.fail(ctx, apperr.NewValidation("shortlisted must be true or false"))
	}

	groups, err := c.rollups.SupplierRollups(ctx.UserContext(), actor, enquiryID, filter)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusOK, "Rollup computed", groups)
}

func (c *SelectionController) Compare(ctx *fiber.Ctx) error {
	actor, enquiryID, err := request(ctx, "id")
	if err != nil {
		return c.fail(ctx, err)
	}
	var filter finance.CompareFilter
	if err := ctx.QueryParser(&filter); err != nil {
		return c.fail(ctx, apperr.NewValidation("invalid filter: %v", err))
	}

	groups, err := c.rollups.Compare(ctx.UserContext(), actor, enquiryID, filter)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusOK, "Comparison computed", groups)
}
