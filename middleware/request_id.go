package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

// RequestID keeps the caller's correlation id or mints one, and echoes it
// on the response.
func RequestID(ctx *fiber.Ctx) error {
	id := ctx.Get(HeaderRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	ctx.Locals("requestID", id)
	ctx.Set(HeaderRequestID, id)
	return ctx.Next()
}

func RequestIDOf(ctx *fiber.Ctx) string {
	id, _ := ctx.Locals("requestID").(string)
	return id
}
