package handlers

import (
	"time"

	"github.com/callcleaner/backend/internal/dto"
	"github.com/callcleaner/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type NumberHandler struct {
	numbers *services.NumberCheckService
}

func NewNumberHandler(numbers *services.NumberCheckService) *NumberHandler {
	return &NumberHandler{numbers: numbers}
}

func (h *NumberHandler) CheckNumber(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	var req dto.CheckNumberRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	res, err := h.numbers.CheckNumber(c.UserContext(), userID, req.PhoneNumber)
	if err != nil {
		return respondError(c, err, "check_number")
	}
	return c.JSON(dto.CheckNumberResponse{
		PhoneNumber: req.PhoneNumber,
		IsSpam:      res.IsSpam,
		SpamType:    res.SpamType,
		RiskScore:   res.RiskScore,
	})
}

// IncomingCall decides what the device should do with a ringing call.
func (h *NumberHandler) IncomingCall(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	var req dto.IncomingCallRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if req.Timestamp.IsZero() {
		req.Timestamp = time.Now().UTC()
	}

	d, err := h.numbers.CheckIncomingCall(c.UserContext(), userID, req.PhoneNumber, req.Timestamp)
	if err != nil {
		return respondError(c, err, "incoming_call")
	}
	return c.JSON(dto.IncomingCallResponse{
		PhoneNumber: req.PhoneNumber,
		Action:      string(d.Action),
		Reason:      d.Reason,
		RiskScore:   d.RiskScore,
		IsSpam:      d.IsSpam,
	})
}

func (h *NumberHandler) NumberInfo(c *fiber.Ctx) error {
	info, err := h.numbers.GetNumberInfo(c.UserContext(), pathParam(c, "number"))
	if err != nil {
		return respondError(c, err, "number_info")
	}

	comments := make([]dto.CommentResponse, 0, len(info.Comments))
	for _, cm := range info.Comments {
		comments = append(comments, dto.CommentResponse{Text: cm.Text, CreatedAt: cm.CreatedAt})
	}
	return c.JSON(dto.NumberInfoResponse{
		PhoneNumber:     info.Number.PhoneNumber,
		ReportCount:     info.Number.ReportCount,
		RiskLevel:       info.Number.RiskLevel,
		IsSpam:          info.IsSpam,
		SpamType:        info.SpamType,
		FirstReportedAt: info.Number.FirstReportedAt,
		LastReportedAt:  info.Number.LastReportedAt,
		Comments:        comments,
	})
}
