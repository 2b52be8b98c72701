package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/astrovaani/auth-service/internal/auth"
	"github.com/astrovaani/auth-service/internal/auth/model"
	"github.com/astrovaani/auth-service/internal/auth/service"
	"github.com/astrovaani/auth-service/internal/errs"
)

type ProfileHandler struct {
	authService *service.AuthService
}

func NewProfileHandler(authService *service.AuthService) *ProfileHandler {
	return &ProfileHandler{authService: authService}
}

func (h *ProfileHandler) Me(c *fiber.Ctx) error {
	user := auth.CurrentUser(c)
	if user == nil {
		return errs.ErrAuthRequired
	}
	return c.JSON(user.Public())
}

func (h *ProfileHandler) UpdateMe(c *fiber.Ctx) error {
	user := auth.CurrentUser(c)
	if user == nil {
		return errs.ErrAuthRequired
	}

	var req model.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return errs.Validation(map[string]string{"body": "malformed JSON"})
	}
	if err := req.Validate(); err != nil {
		return err
	}

	updated, err := h.authService.UpdateProfile(c.UserContext(), user.ID, req, auth.MetaFromRequest(c))
	if err != nil {
		return err
	}
	return c.JSON(updated)
}
