package middleware

import (
	"strings"

	"enquiry-app/config"
	"enquiry-app/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const actorKey = "actor"

func unauthorized(ctx *fiber.Ctx, message string) error {
	return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": "Unauthorized: " + message,
	})
}

// AuthMiddleware verifies the bearer token issued by the identity service
// and stores the caller as a models.Actor. Login itself happens elsewhere.
func AuthMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if authHeader == "" {
		return unauthorized(ctx, "missing Authorization header")
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
		return unauthorized(ctx, "invalid Authorization header format")
	}

	token, err := jwt.Parse(tokenParts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "invalid signing method")
		}
		return []byte(config.JWTSecret), nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return unauthorized(ctx, "invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return unauthorized(ctx, "invalid token")
	}
	actor, ok := actorFromClaims(claims)
	if !ok {
		return unauthorized(ctx, "invalid user ID")
	}

	ctx.Locals("userID", actor.UserID)
	ctx.Locals(actorKey, actor)
	return ctx.Next()
}

// actorFromClaims reads user_id (required), the organisation (falling back
// to the legacy unit claim) and the display fields.
func actorFromClaims(claims jwt.MapClaims) (models.Actor, bool) {
	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		return models.Actor{}, false
	}

	str := func(key string) string {
		s, _ := claims[key].(string)
		return s
	}
	org := str("organisation_id")
	if org == "" {
		org = str("unit")
	}

	return models.Actor{
		UserID:         int(userID),
		FirstName:      str("first_name"),
		LastName:       str("last_name"),
		Email:          str("email"),
		OrganisationID: org,
	}, true
}

// Actor returns the caller stored by AuthMiddleware.
func Actor(ctx *fiber.Ctx) (models.Actor, bool) {
	actor, ok := ctx.Locals(actorKey).(models.Actor)
	return actor, ok
}
