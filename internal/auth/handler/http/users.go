package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/astrovaani/auth-service/internal/auth/model"
	"github.com/astrovaani/auth-service/internal/auth/service"
)

type AdminHandler struct {
	authService *service.AuthService
}

func NewAdminHandler(authService *service.AuthService) *AdminHandler {
	return &AdminHandler{authService: authService}
}

// ListUsers streams the user directory for back-office tooling. The "after"
// cursor is the ID of the last user from the previous page.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	page := model.PaginationInput{
		Limit: c.QueryInt("limit", 0),
		After: c.Query("after"),
	}

	result, err := h.authService.ListUsers(c.UserContext(), page)
	if err != nil {
		return err
	}
	return c.JSON(result)
}
