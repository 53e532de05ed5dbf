package identity

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserID(t *testing.T) {
	id := uuid.New()
	app := fiber.New()
	app.Get("/ok", func(c *fiber.Ctx) error {
		c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"sub": id.String(), "email": "a@b.co"}})
		got, err := GetUserID(c)
		require.NoError(t, err)
		assert.Equal(t, id, got)
		assert.Equal(t, "a@b.co", Email(c))
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		_, err := GetUserID(c)
		assert.ErrorIs(t, err, ErrNoIdentity)
		assert.Empty(t, Email(c))
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/nosub", func(c *fiber.Ctx) error {
		c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{}})
		_, err := GetUserID(c)
		assert.Error(t, err)
		return c.SendStatus(fiber.StatusNoContent)
	})

	for _, path := range []string{"/ok", "/missing", "/nosub"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode, path)
	}
}
