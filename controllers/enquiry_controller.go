package controllers

import (
	"enquiry-app/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type LeadController struct {
	base
	svc *services.LeadService
}

func NewLeadController(svc *services.LeadService, log *zap.Logger) *LeadController {
	return &LeadController{base: newBase(log), svc: svc}
}

func (c *LeadController) CreateLead(ctx *fiber.Ctx) error {
	actor, _, err := request(ctx, "")
	if err != nil {
		return c.fail(ctx, err)
	}
	var in services.CreateLeadInput
	if err := parse(ctx, &in); err != nil {
		return c.fail(ctx, err)
	}

	lead, err := c.svc.CreateLead(ctx.UserContext(), actor, in)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusCreated, "Lead created successfully", lead)
}

func (c *LeadController) GetLead(ctx *fiber.Ctx) error {
	actor, id, err := request(ctx, "id")
	if err != nil {
		return c.fail(ctx, err)
	}
	lead, err := c.svc.GetLead(ctx.UserContext(), actor, id)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusOK, "Lead found", lead)
}

func (c *LeadController) QualifyLead(ctx *fiber.Ctx) error {
	actor, id, err := request(ctx, "id")
	if err != nil {
		return c.fail(ctx, err)
	}
	lead, err := c.svc.QualifyLead(ctx.UserContext(), actor, id)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusOK, "Lead qualified successfully", lead)
}

type EnquiryController struct {
	base
	svc *services.EnquiryService
}

func NewEnquiryController(svc *services.EnquiryService, log *zap.Logger) *EnquiryController {
	return &EnquiryController{base: newBase(log), svc: svc}
}

func (c *EnquiryController) ListEnquiries(ctx *fiber.Ctx) error {
	actor, q, err := listRequest(ctx)
	if err != nil {
		return c.fail(ctx, err)
	}
	page, err := c.svc.ListEnquiries(ctx.UserContext(), actor, q)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusOK, "Enquiries found", page)
}

func (c *EnquiryController) CreateEnquiry(ctx *fiber.Ctx) error {
	actor, _, err := request(ctx, "")
	if err != nil {
		return c.fail(ctx, err)
	}
	var in services.CreateEnquiryInput
	if err := parse(ctx, &in); err != nil {
		return c.fail(ctx, err)
	}

	enquiry, err := c.svc.CreateEnquiry(ctx.UserContext(), actor, in)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusCreated, "Enquiry created successfully", enquiry)
}

func (c *EnquiryController) GetEnquiry(ctx *fiber.Ctx) error {
	actor, id, err := request(ctx, "id")
	if err != nil {
		return c.fail(ctx, err)
	}
	detail, err := c.svc.GetEnquiry(ctx.UserContext(), actor, id)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusOK, "Enquiry found", detail)
}

func (c *EnquiryController) DeleteEnquiry(ctx *fiber.Ctx) error {
	actor, id, err := request(ctx, "id")
	if err != nil {
		return c.fail(ctx, err)
	}
	if err := c.svc.DeleteEnquiry(ctx.UserContext(), actor, id); err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusOK, "Enquiry deleted successfully", nil)
}

func (c *EnquiryController) Dashboard(ctx *fiber.Ctx) error {
	actor, _, err := request(ctx, "")
	if err != nil {
		return c.fail(ctx, err)
	}
	stages, err := c.svc.Dashboard(ctx.UserContext(), actor)
	if err != nil {
		return c.fail(ctx, err)
	}
	return respond(ctx, fiber.StatusOK, "Dashboard loaded", stages)
}
