package handlers

import (
	"github.com/callcleaner/backend/internal/dto"
	"github.com/callcleaner/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// AppHandler serves app metadata and lets admins edit the remote config behind it.
type AppHandler struct {
	app *services.AppService
}

func NewAppHandler(app *services.AppService) *AppHandler {
	return &AppHandler{app: app}
}

func (h *AppHandler) Version(c *fiber.Ctx) error {
	v, err := h.app.Version(c.UserContext())
	if err != nil {
		return respondError(c, err, "app_version")
	}
	return c.JSON(v)
}

func (h *AppHandler) RequiredPermissions(c *fiber.Ctx) error {
	perms, err := h.app.RequiredPermissions(c.UserContext())
	if err != nil {
		return respondError(c, err, "required_permissions")
	}
	return c.JSON(perms)
}

func (h *AppHandler) VerifyPermissions(c *fiber.Ctx) error {
	var req dto.VerifyPermissionsRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	res, err := h.app.VerifyPermissions(c.UserContext(), req.Granted)
	if err != nil {
		return respondError(c, err, "verify_permissions")
	}
	return c.JSON(res)
}

func (h *AppHandler) PrivacyPolicy(c *fiber.Ctx) error {
	p, err := h.app.PrivacyPolicy(c.UserContext())
	if err != nil {
		return respondError(c, err, "privacy_policy")
	}
	return c.JSON(p)
}

// Config returns every remote config key with typed values.
func (h *AppHandler) Config(c *fiber.Ctx) error {
	cfg, err := h.app.Config(c.UserContext())
	if err != nil {
		return respondError(c, err, "app_config")
	}
	return c.JSON(cfg)
}

// SetConfig sets or updates a config key (admin only)
func (h *AppHandler) SetConfig(c *fiber.Ctx) error {
	var req dto.SetConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	rc, err := h.app.SetConfig(c.UserContext(), pathParam(c, "key"), req.Value, req.Type)
	if err != nil {
		return respondError(c, err, "set_config")
	}
	return c.JSON(dto.ConfigResponse{Key: rc.Key, Value: rc.Value, Type: rc.Type})
}

// DeleteConfig deletes a config key (admin only)
func (h *AppHandler) DeleteConfig(c *fiber.Ctx) error {
	if err := h.app.DeleteConfig(c.UserContext(), pathParam(c, "key")); err != nil {
		return respondError(c, err, "delete_config")
	}
	return c.JSON(dto.MessageResponse{Message: "Config deleted successfully"})
}
