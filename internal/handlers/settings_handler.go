package handlers

import (
	"github.com/callcleaner/backend/internal/dto"
	"github.com/callcleaner/backend/internal/models"
	"github.com/callcleaner/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type SettingsHandler struct {
	settings *services.SettingsService
}

func NewSettingsHandler(settings *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

func settingsResponse(s *models.UserSettings) dto.SettingsResponse {
	wh := dto.WorkingHoursPayload{Mode: s.WorkingHoursMode}
	if s.CustomStartTime != nil {
		wh.StartTime = *s.CustomStartTime
	}
	if s.CustomEndTime != nil {
		wh.EndTime = *s.CustomEndTime
	}
	return dto.SettingsResponse{
		BlockingMode:         s.BlockingMode,
		WorkingHours:         wh,
		NotificationsEnabled: s.NotificationsEnabled,
		UpdatedAt:            s.UpdatedAt,
	}
}

func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	s, err := h.settings.GetSettings(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err, "get_settings")
	}
	return c.JSON(settingsResponse(s))
}

func (h *SettingsHandler) UpdateBlockingMode(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	var req dto.BlockingModeRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	s, err := h.settings.UpdateBlockingMode(c.UserContext(), userID, req.Mode)
	if err != nil {
		return respondError(c, err, "update_blocking_mode")
	}
	return c.JSON(settingsResponse(s))
}

func (h *SettingsHandler) UpdateWorkingHours(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	var req dto.WorkingHoursPayload
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	s, err := h.settings.UpdateWorkingHours(c.UserContext(), userID, services.WorkingHours{
		Mode:  req.Mode,
		Start: req.StartTime,
		End:   req.EndTime,
	})
	if err != nil {
		return respondError(c, err, "update_working_hours")
	}
	return c.JSON(settingsResponse(s))
}

func (h *SettingsHandler) UpdateNotifications(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	var req dto.NotificationsRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if req.Enabled == nil {
		return badRequest(c, "enabled is required")
	}

	s, err := h.settings.UpdateNotifications(c.UserContext(), userID, *req.Enabled)
	if err != nil {
		return respondError(c, err, "update_notifications")
	}
	return c.JSON(settingsResponse(s))
}

func (h *SettingsHandler) GetWhitelist(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	entries, err := h.settings.GetWhitelist(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err, "get_whitelist")
	}

	out := make([]dto.WhitelistEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.WhitelistEntryResponse{PhoneNumber: e.PhoneNumber, Name: e.Name, CreatedAt: e.CreatedAt})
	}
	return c.JSON(out)
}

func (h *SettingsHandler) AddToWhitelist(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	var req dto.WhitelistRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	e, err := h.settings.AddToWhitelist(c.UserContext(), userID, req.PhoneNumber, req.Name)
	if err != nil {
		return respondError(c, err, "add_whitelist")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.WhitelistEntryResponse{
		PhoneNumber: e.PhoneNumber,
		Name:        e.Name,
		CreatedAt:   e.CreatedAt,
	})
}

func (h *SettingsHandler) RemoveFromWhitelist(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.settings.RemoveFromWhitelist(c.UserContext(), userID, pathParam(c, "number")); err != nil {
		return respondError(c, err, "remove_whitelist")
	}
	return c.JSON(dto.MessageResponse{Message: "Number removed from whitelist"})
}
