package controllers

import (
	"errors"

	"enquiry-app/apperr"
	"enquiry-app/middleware"
	"enquiry-app/models"
	"enquiry-app/repositories"
	"enquiry-app/types"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var validate = validator.New()

// base is embedded by every controller.
type base struct {
	log *zap.Logger
}

func newBase(log *zap.Logger) base {
	if log == nil {
		log = zap.NewNop()
	}
	return base{log: log}
}

func respond(ctx *fiber.Ctx, status int, message string, data interface{}) error {
	return ctx.Status(status).JSON(apperr.OK(message, data))
}

func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.NotFound:
		return fiber.StatusNotFound
	case apperr.Conflict:
		return fiber.StatusConflict
	case apperr.Precondition, apperr.Validation:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// fail renders err in the response envelope. Expected outcomes carry
// their code; anything else is logged and hidden from the caller.
func (b *base) fail(ctx *fiber.Ctx, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Kind != apperr.Unexpected {
		return ctx.Status(statusOf(appErr.Kind)).JSON(apperr.Fail(appErr))
	}

	requestID := middleware.RequestIDOf(ctx)
	b.log.Error("request failed",
		zap.String("request_id", requestID),
		zap.String("method", ctx.Method()),
		zap.String("path", ctx.Path()),
		zap.Error(err))
	return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success":    false,
		"message":    "Something went wrong",
		"request_id": requestID,
	})
}

// parse reads the JSON body into out and validates its tags.
func parse(ctx *fiber.Ctx, out interface{}) error {
	if err := ctx.BodyParser(out); err != nil {
		return apperr.NewValidation("invalid request body: %v", err)
	}
	if err := validate.Struct(out); err != nil {
		return apperr.NewValidation("%v", err)
	}
	return nil
}

func actorOf(ctx *fiber.Ctx) (models.Actor, error) {
	actor, found := middleware.Actor(ctx)
	if !found {
		return models.Actor{}, errors.New("actor missing from request context")
	}
	return actor, nil
}

func idParam(ctx *fiber.Ctx, name string) (types.SnowflakeID, error) {
	id, err := types.ParseSnowflakeID(ctx.Params(name))
	if err != nil || id <= 0 {
		return 0, apperr.NewValidation("invalid %s", name)
	}
	return id, nil
}

// request bundles what nearly every handler reads first.
func request(ctx *fiber.Ctx, idName string) (models.Actor, types.SnowflakeID, error) {
	actor, err := actorOf(ctx)
	if err != nil {
		return actor, 0, err
	}
	if idName == "" {
		return actor, 0, nil
	}
	id, err := idParam(ctx, idName)
	return actor, id, err
}

// listRequest reads the actor and the page, limit and search query values
// of a list view.
func listRequest(ctx *fiber.Ctx) (models.Actor, repositories.ListQuery, error) {
	var q repositories.ListQuery
	actor, err := actorOf(ctx)
	if err != nil {
		return actor, q, err
	}
	if err := ctx.QueryParser(&q); err != nil {
		return actor, q, apperr.NewValidation("invalid query: %v", err)
	}
	return actor, q, nil
}
