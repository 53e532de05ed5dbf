package middleware

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/callcleaner/backend/internal/config"
	"github.com/callcleaner/backend/internal/dto"
	"github.com/callcleaner/backend/internal/identity"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AdminChecker resolves admin rights from the stored user, never from token claims.
type AdminChecker interface {
	IsAdmin(ctx context.Context, id uuid.UUID, adminEmails []string) bool
}

// AdminRequired lets a request through when X-Admin-Token matches ADMIN_TOKEN, or
// when the stored user holds the admin role or has a confirmed email listed in ADMIN_EMAILS.
func AdminRequired(users AdminChecker, cfg *config.Config) fiber.Handler {
	adminEmails := parseCSV(cfg.AdminEmails)

	return func(c *fiber.Ctx) error {
		if cfg.AdminToken != "" {
			if subtle.ConstantTimeCompare([]byte(c.Get("X-Admin-Token")), []byte(cfg.AdminToken)) == 1 {
				return c.Next()
			}
		}

		userID, err := identity.GetUserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		if users.IsAdmin(c.UserContext(), userID, adminEmails) {
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
