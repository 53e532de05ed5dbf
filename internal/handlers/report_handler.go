package handlers

import (
	"github.com/callcleaner/backend/internal/dto"
	"github.com/callcleaner/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func (h *ReportHandler) Submit(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	rn, err := h.reports.SubmitReport(c.UserContext(), userID, req.PhoneNumber, req.SpamType, req.Description)
	if err != nil {
		return respondError(c, err, "submit_report")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ReportResponse{
		PhoneNumber:    rn.PhoneNumber,
		ReportCount:    rn.ReportCount,
		RiskLevel:      rn.RiskLevel,
		CommonSpamType: rn.CommonSpamType,
	})
}

func (h *ReportHandler) RecentCalls(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	calls, err := h.reports.GetRecentCalls(c.UserContext(), userID, c.QueryInt("limit", 10))
	if err != nil {
		return respondError(c, err, "recent_calls")
	}
	return c.JSON(blockedCallResponses(calls))
}

func (h *ReportHandler) SpamTypes(c *fiber.Ctx) error {
	return c.JSON(h.reports.GetSpamTypes())
}
