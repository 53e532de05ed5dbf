package handlers

import (
	"github.com/callcleaner/backend/internal/dto"
	"github.com/callcleaner/backend/internal/models"
	"github.com/callcleaner/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type BlockedCallsHandler struct {
	calls *services.BlockedCallsService
}

func NewBlockedCallsHandler(calls *services.BlockedCallsService) *BlockedCallsHandler {
	return &BlockedCallsHandler{calls: calls}
}

func blockedCallResponses(calls []models.BlockedCall) []dto.BlockedCallResponse {
	out := make([]dto.BlockedCallResponse, 0, len(calls))
	for _, bc := range calls {
		out = append(out, dto.BlockedCallResponse{
			ID:                  bc.ID,
			PhoneNumber:         bc.PhoneNumber,
			BlockedAt:           bc.BlockedAt,
			CallType:            bc.CallType,
			ReportedAsIncorrect: bc.ReportedAsIncorrect,
		})
	}
	return out
}

func (h *BlockedCallsHandler) List(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	calls, page, err := h.calls.List(c.UserContext(), userID, c.QueryInt("page", 1), c.QueryInt("limit", 20))
	if err != nil {
		return respondError(c, err, "list_blocked_calls")
	}
	return c.JSON(dto.BlockedCallsResponse{Calls: blockedCallResponses(calls), Pagination: pageMeta(page)})
}

func (h *BlockedCallsHandler) Stats(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	stats, err := h.calls.Stats(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err, "blocked_call_stats")
	}
	return c.JSON(dto.BlockedCallStatsResponse{Today: stats.Today, ThisWeek: stats.ThisWeek, Total: stats.Total})
}

func (h *BlockedCallsHandler) Delete(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.calls.Delete(c.UserContext(), userID, c.Params("id")); err != nil {
		return respondError(c, err, "delete_blocked_call")
	}
	return c.JSON(dto.MessageResponse{Message: "Blocked call deleted"})
}

func (h *BlockedCallsHandler) DeleteAll(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	n, err := h.calls.DeleteAll(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err, "delete_all_blocked_calls")
	}
	return c.JSON(dto.DeletedResponse{Message: "Blocked calls deleted", Deleted: n})
}

func (h *BlockedCallsHandler) ReportWrong(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.calls.ReportWronglyBlocked(c.UserContext(), userID, c.Params("id")); err != nil {
		return respondError(c, err, "report_wrongly_blocked")
	}
	return c.JSON(dto.MessageResponse{Message: "Thanks, the call was marked as wrongly blocked"})
}
