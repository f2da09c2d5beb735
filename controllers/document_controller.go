package controllers

import (
	"enquiry-app/models"
	"enquiry-app/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type DocumentController struct {
	base
	svc *services.DocumentService
}

func NewDocumentController(svc *services.DocumentService, log *zap.Logger) *DocumentController {
	return &DocumentController{base: newBase(log), svc: svc}
}

func (c *DocumentController) CreateQuote(ctx *fiber.Ctx) error {
	actor, enquiryID, err := request(ctx, "id")
	if err != nil {
		return c.fail(ctx, err)
	}
	var in services.QuoteInput
	if err := parse(ctx, &in); err != nil {
		return c.fail(ctx, err)
	}

	quote, err := c.svc.CreateQuote(ctx.UserContext(), actor, enquiryID, in)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusCreated, "Quote created successfully", quote)
}

func (c *DocumentController) GetQuote(ctx *fiber.Ctx) error {
	actor, id, err := request(ctx, "id")
	if err != nil {
		return c.fail(ctx, err)
	}
	quote, err := c.svc.GetQuote(ctx.UserContext(), actor, id)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusOK, "Quote found", quote)
}

func (c *DocumentController) ListQuotes(ctx *fiber.Ctx) error {
	actor, q, err := listRequest(ctx)
	if err != nil {
		return c.fail(ctx, err)
	}
	page, err := c.svc.ListQuotes(ctx.UserContext(), actor, q)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusOK, "Quotes found", page)
}

func (c *DocumentController) GetProformaInvoice(ctx *fiber.Ctx) error {
	actor, id, err := request(ctx, "id")
	if err != nil {
		return c.fail(ctx, err)
	}
	pi, err := c.svc.GetProformaInvoice(ctx.UserContext(), actor, id)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusOK, "Proforma invoice found", pi)
}

func (c *DocumentController) ListProformaInvoices(ctx *fiber.Ctx) error {
	actor, q, err := listRequest(ctx)
	if err != nil {
		return c.fail(ctx, err)
	}
	page, err := c.svc.ListProformaInvoices(ctx.UserContext(), actor, q)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusOK, "Proforma invoices found", page)
}

func (c *DocumentController) GetSalesOrder(ctx *fiber.Ctx) error {
	actor, id, err := request(ctx, "id")
	if err != nil {
		return c.fail(ctx, err)
	}
	so, err := c.svc.GetSalesOrder(ctx.UserContext(), actor, id)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusOK, "Sales order found", so)
}

func (c *DocumentController) ListSalesOrders(ctx *fiber.Ctx) error {
	actor, q, err := listRequest(ctx)
	if err != nil {
		return c.fail(ctx, err)
	}
	page, err := c.svc.ListSalesOrders(ctx.UserContext(), actor, q)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusOK, "Sales orders found", page)
}

func (c *DocumentController) CreateProformaInvoice(ctx *fiber.Ctx) error {
	actor, enquiryID, err := request(ctx, "id")
	if err != nil {
		return c.fail(ctx, err)
	}
	var in services.ProformaInvoiceInput
	if err := parse(ctx, &in); err != nil {
		return c.fail(ctx, err)
	}

	pi, err := c.svc.CreateProformaInvoice(ctx.UserContext(), actor, enquiryID, in)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusCreated, "Proforma invoice created successfully", pi)
}

func (c *DocumentController) CreateSalesOrder(ctx *fiber.Ctx) error {
	actor, enquiryID, err := request(ctx, "id")
	if err != nil {
		return c.fail(ctx, err)
	}
	var in services.SalesOrderInput
	if err := parse(ctx, &in); err != nil {
		return c.fail(ctx, err)
	}

	so, err := c.svc.CreateSalesOrder(ctx.UserContext(), actor, enquiryID, in)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusCreated, "Sales order created successfully", so)
}

func (c *DocumentController) CreateSupplierPOs(ctx *fiber.Ctx) error {
	actor, enquiryID, err := request(ctx, "id")
	if err != nil {
		return c.fail(ctx, err)
	}
	pos, err := c.svc.CreateSupplierPOs(ctx.UserContext(), actor, enquiryID)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusCreated, "Supplier purchase orders created successfully", pos)
}

func (c *DocumentController) ListSupplierPOs(ctx *fiber.Ctx) error {
	actor, enquiryID, err := request(ctx, "id")
	if err != nil {
		return c.fail(ctx, err)
	}
	pos, err := c.svc.ListSupplierPOs(ctx.UserContext(), actor, enquiryID)
	if err != nil {
		return c.fail(ctx, err)
	}
	if pos == nil {
		pos = []models.SupplierPO{}
	}
	return respond(ctx, fiber.StatusOK, "Supplier purchase orders found", pos)
}

func (c *DocumentController) ListAllSupplierPOs(ctx *fiber.Ctx) error {
	actor, q, err := listRequest(ctx)
	if err != nil {
		return c.fail(ctx, err)
	}
	page, err := c.svc.ListAllSupplierPOs(ctx.UserContext(), actor, q)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusOK, "Supplier purchase orders found", page)
}
