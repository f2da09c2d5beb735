package controllers

import (
	"enquiry-app/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type SupplierController struct {
	base
	svc *services.CatalogService
}

func NewSupplierController(svc *services.CatalogService, log *zap.Logger) *SupplierController {
	return &SupplierController{base: newBase(log), svc: svc}
}

func (c *SupplierController) CreateSupplier(ctx *fiber.Ctx) error {
	actor, _, err := request(ctx, "")
	if err != nil {
		return c.fail(ctx, err)
	}
	var in services.SupplierInput
	if err := parse(ctx, &in); err != nil {
		return c.fail(ctx, err)
	}

	supplier, err := c.svc.CreateSupplier(ctx.UserContext(), actor, in)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusCreated, "Supplier created successfully", supplier)
}

func (c *SupplierController) CreateSupplierItem(ctx *fiber.Ctx) error {
	actor, supplierID, err := request(ctx, "id")
	if err != nil {
		return c.fail(ctx, err)
	}
	var in services.SupplierItemInput
	if err := parse(ctx, &in); err != nil {
		return c.fail(ctx, err)
	}

	item, err := c.svc.CreateSupplierItem(ctx.UserContext(), actor, supplierID, in)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusCreated, "Supplier item created successfully", item)
}

func (c *SupplierController) UpdateSupplierItem(ctx *fiber.Ctx) error {
	actor, id, err := request(ctx, "id")
	if err != nil {
		return c.fail(ctx, err)
	}
	var in services.SupplierItemInput
	if err := parse(ctx, &in); err != nil {
		return c.fail(ctx, err)
	}

	item, err := c.svc.UpdateSupplierItem(ctx.UserContext(), actor, id, in)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusOK, "Supplier item updated successfully", item)
}
