package middleware

import (
	"github.com/callcleaner/backend/internal/dto"
	"github.com/callcleaner/backend/internal/identity"
	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

// UserContext runs after JWTProtected. It resolves the caller's id once and tags
// the request's Sentry scope with it.
func UserContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := identity.GetUserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		identity.SetUserID(c, userID)

		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.Scope().SetUser(sentry.User{ID: userID.String(), Email: identity.Email(c)})
		}
		return c.Next()
	}
}
