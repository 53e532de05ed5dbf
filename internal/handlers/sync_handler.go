package handlers

import (
	"github.com/callcleaner/backend/internal/dto"
	"github.com/callcleaner/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type SyncHandler struct {
	sync *services.SyncService
}

func NewSyncHandler(sync *services.SyncService) *SyncHandler {
	return &SyncHandler{sync: sync}
}

func (h *SyncHandler) LastUpdate(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	status, err := h.sync.LastUpdate(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err, "sync_last_update")
	}
	return c.JSON(dto.LastUpdateResponse{
		SettingsUpdatedAt:       status.SettingsUpdatedAt,
		BlockedNumbersUpdatedAt: status.BlockedNumbersUpdatedAt,
	})
}

func (h *SyncHandler) BlockedNumbers(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	var req dto.SyncBlockedNumbersRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	calls := make([]services.SyncedCall, 0, len(req.Numbers))
	for _, n := range req.Numbers {
		calls = append(calls, services.SyncedCall{PhoneNumber: n.PhoneNumber, BlockedAt: n.BlockedAt, CallType: n.CallType})
	}
	synced, err := h.sync.SyncBlockedNumbers(c.UserContext(), userID, calls)
	if err != nil {
		return respondError(c, err, "sync_blocked_numbers")
	}
	return c.JSON(dto.SyncBlockedNumbersResponse{Received: len(calls), Synced: synced})
}

func (h *SyncHandler) Settings(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	var req dto.SyncSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	applied, s, err := h.sync.SyncSettings(c.UserContext(), userID, services.SettingsSnapshot{
		BlockingMode: req.BlockingMode,
		WorkingHours: services.WorkingHours{
			Mode:  req.WorkingHours.Mode,
			Start: req.WorkingHours.StartTime,
			End:   req.WorkingHours.EndTime,
		},
		NotificationsEnabled: req.NotificationsEnabled,
		Timestamp:            req.Timestamp,
	})
	if err != nil {
		return respondError(c, err, "sync_settings")
	}
	return c.JSON(dto.SyncSettingsResponse{Applied: applied, Settings: settingsResponse(s)})
}
