package handlers

import (
	"github.com/callcleaner/backend/internal/dto"
	"github.com/callcleaner/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	users   *services.UserService
	numbers *services.NumberCheckService
}

func NewAdminHandler(users *services.UserService, numbers *services.NumberCheckService) *AdminHandler {
	return &AdminHandler{users: users, numbers: numbers}
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, page, err := h.users.List(c.UserContext(), c.QueryInt("page", 1), c.QueryInt("limit", 20))
	if err != nil {
		return respondError(c, err, "admin_list_users")
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.NewUserResponse(&users[i]))
	}
	return c.JSON(dto.UsersResponse{Users: out, Pagination: pageMeta(page)})
}

func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.users.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "admin_get_user")
	}
	return c.JSON(dto.NewUserResponse(user))
}

// DeactivateUser soft-disables an account; its data is kept.
func (h *AdminHandler) DeactivateUser(c *fiber.Ctx) error {
	if err := h.users.Deactivate(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err, "admin_deactivate_user")
	}
	return c.JSON(dto.MessageResponse{Message: "User deactivated"})
}

func (h *AdminHandler) ReportedNumbers(c *fiber.Ctx) error {
	numbers, page, err := h.numbers.ListReportedNumbers(c.UserContext(), c.QueryInt("page", 1), c.QueryInt("limit", 20))
	if err != nil {
		return respondError(c, err, "admin_reported_numbers")
	}
	out := make([]dto.ReportedNumberResponse, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, dto.ReportedNumberResponse{
			PhoneNumber:     n.PhoneNumber,
			ReportCount:     n.ReportCount,
			RiskLevel:       n.RiskLevel,
			CommonSpamType:  n.CommonSpamType,
			FirstReportedAt: n.FirstReportedAt,
			LastReportedAt:  n.LastReportedAt,
		})
	}
	return c.JSON(dto.ReportedNumbersResponse{Numbers: out, Pagination: pageMeta(page)})
}
