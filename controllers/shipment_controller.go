package controllers

import (
	"enquiry-app/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ShipmentController struct {
	base
	svc   *services.ShipmentService
	bills *services.BillService
}

func NewShipmentController(svc *services.ShipmentService, bills *services.BillService, log *zap.Logger) *ShipmentController {
	return &ShipmentController{base: newBase(log), svc: svc, bills: bills}
}

func (c *ShipmentController) Tracking(ctx *fiber.Ctx) error {
	actor, enquiryID, err := request(ctx, "id")
	if err != nil {
		return c.fail(ctx, err)
	}
	tracking, err := c.svc.Tracking(ctx.UserContext(), actor, enquiryID)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusOK, "Shipment tracking loaded", tracking)
}

func (c *ShipmentController) CreateShipment(ctx *fiber.Ctx) error {
	actor, enquiryID, err := request(ctx, "id")
	if err != nil {
		return c.fail(ctx, err)
	}
	var in services.ShipmentInput
	if err := parse(ctx, &in); err != nil {
		return c.fail(ctx, err)
	}

	shipment, err := c.svc.CreateShipment(ctx.UserContext(), actor, enquiryID, in)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusCreated, "Shipment created successfully", shipment)
}

func (c *ShipmentController) CancelShipment(ctx *fiber.Ctx) error {
	actor, enquiryID, err := request(ctx, "id")
	if err != nil {
		return c.fail(ctx, err)
	}
	shipmentID, err := idParam(ctx, "shipmentId")
	if err != nil {
		return c.fail(ctx, err)
	}
	if err := c.svc.CancelShipment(ctx.UserContext(), actor, enquiryID, shipmentID); err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusOK, "Shipment cancelled", nil)
}

// Billable takes ?type=supplier|invoice.
func (c *ShipmentController) Billable(ctx *fiber.Ctx) error {
	actor, enquiryID, err := request(ctx, "id")
	if err != nil {
		return c.fail(ctx, err)
	}
	poID, err := idParam(ctx, "poId")
	if err != nil {
		return c.fail(ctx, err)
	}

	shipments, err := c.bills.Billable(ctx.UserContext(), actor, enquiryID, poID, ctx.Query("type"))
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusOK, "Billable shipments found", shipments)
}

func (c *ShipmentController) ListBills(ctx *fiber.Ctx) error {
	actor, enquiryID, err := request(ctx, "id")
	if err != nil {
		return c.fail(ctx, err)
	}
	poID, err := idParam(ctx, "poId")
	if err != nil {
		return c.fail(ctx, err)
	}

	bills, err := c.bills.ListBills(ctx.UserContext(), actor, enquiryID, poID)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusOK, "Bills found", bills)
}

func (c *ShipmentController) CreateBill(ctx *fiber.Ctx) error {
	actor, enquiryID, err := request(ctx, "id")
	if err != nil {
		return c.fail(ctx, err)
	}
	var in services.BillInput
	if err := parse(ctx, &in); err != nil {
		return c.fail(ctx, err)
	}

	bill, err := c.bills.CreateBill(ctx.UserContext(), actor, enquiryID, in)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusCreated, "Bill created successfully", bill)
}

func (c *ShipmentController) TrackingBoard(ctx *fiber.Ctx) error {
	actor, q, err := listRequest(ctx)
	if err != nil {
		return c.fail(ctx, err)
	}
	page, err := c.svc.TrackingBoard(ctx.UserContext(), actor, q)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusOK, "Order tracking loaded", page)
}

// ListAllBills takes ?type=supplier|invoice to show one kind only.
func (c *ShipmentController) ListAllBills(ctx *fiber.Ctx) error {
	actor, q, err := listRequest(ctx)
	if err != nil {
		return c.fail(ctx, err)
	}
	page, err := c.bills.ListAllBills(ctx.UserContext(), actor, q)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusOK, "Bills found", page)
}
