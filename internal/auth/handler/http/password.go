package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/astrovaani/auth-service/internal/auth"
	"github.com/astrovaani/auth-service/internal/auth/model"
	"github.com/astrovaani/auth-service/internal/auth/service"
	"github.com/astrovaani/auth-service/internal/errs"
)

type PasswordHandler struct {
	authService *service.AuthService
}

func NewPasswordHandler(authService *service.AuthService) *PasswordHandler {
	return &PasswordHandler{authService: authService}
}

// ForgotPassword answers identically whether or not the account exists.
func (h *PasswordHandler) ForgotPassword(c *fiber.Ctx) error {
	var req model.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return errs.Validation(map[string]string{"body": "malformed JSON"})
	}
	if err := req.Validate(); err != nil {
		return err
	}

	if err := h.authService.ForgotPassword(c.UserContext(), req, auth.MetaFromRequest(c)); err != nil {
		return err
	}
	return c.JSON(model.MessageResponse{Message: model.ForgotPasswordMessage})
}

func (h *PasswordHandler) ResetPassword(c *fiber.Ctx) error {
	var req model.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return errs.Validation(map[string]string{"body": "malformed JSON"})
	}
	if err := req.Validate(); err != nil {
		return err
	}

	if err := h.authService.ResetPassword(c.UserContext(), req, auth.MetaFromRequest(c)); err != nil {
		return err
	}
	return c.JSON(model.MessageResponse{Message: "Password has been reset"})
}

func (h *PasswordHandler) ChangePassword(c *fiber.Ctx) error {
	user := auth.CurrentUser(c)
	if user == nil {
		return errs.ErrAuthRequired
	}

	var req model.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return errs.Validation(map[string]string{"body": "malformed JSON"})
	}
	if err := req.Validate(); err != nil {
		return err
	}

	if err := h.authService.ChangePassword(c.UserContext(), user.ID, req, auth.MetaFromRequest(c)); err != nil {
		return err
	}
	return c.JSON(model.MessageResponse{Message: "Password changed"})
}

func (h *PasswordHandler) VerifyIdentity(c *fiber.Ctx) error {
	user := auth.CurrentUser(c)
	if user == nil {
		return errs.ErrAuthRequired
	}

	var req model.VerifyIdentityRequest
	if err := c.BodyParser(&req); err != nil {
		return errs.Validation(map[string]string{"body": "malformed JSON"})
	}
	if err := req.Validate(); err != nil {
		return err
	}

	if err := h.authService.VerifyIdentity(c.UserContext(), user.ID, req, auth.MetaFromRequest(c)); err != nil {
		return err
	}
	return c.JSON(model.MessageResponse{Message: "Identity verified"})
}
