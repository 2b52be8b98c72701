package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/astrovaani/auth-service/internal/auth"
	"github.com/astrovaani/auth-service/internal/auth/model"
	"github.com/astrovaani/auth-service/internal/auth/service"
	"github.com/astrovaani/auth-service/internal/errs"
)

type LoginHandler struct {
	authService *service.AuthService
}

func NewLoginHandler(authService *service.AuthService) *LoginHandler {
	return &LoginHandler{authService: authService}
}

func (h *LoginHandler) MobileOtp(c *fiber.Ctx) error {
	var req model.MobileOtpLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errs.Validation(map[string]string{"body": "malformed JSON"})
	}
	if err := req.Validate(); err != nil {
		return err
	}

	resp, err := h.authService.LoginWithMobileOtp(c.UserContext(), req, auth.MetaFromRequest(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (h *LoginHandler) UserIDPassword(c *fiber.Ctx) error {
	var req model.UserIDPasswordLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errs.Validation(map[string]string{"body": "malformed JSON"})
	}
	if err := req.Validate(); err != nil {
		return err
	}

	resp, err := h.authService.LoginWithUserID(c.UserContext(), req, auth.MetaFromRequest(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (h *LoginHandler) MobilePassword(c *fiber.Ctx) error {
	var req model.MobilePasswordLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errs.Validation(map[string]string{"body": "malformed JSON"})
	}
	if err := req.Validate(); err != nil {
		return err
	}

	resp, err := h.authService.LoginWithMobilePassword(c.UserContext(), req, auth.MetaFromRequest(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (h *LoginHandler) Logout(c *fiber.Ctx) error {
	user := auth.CurrentUser(c)
	if user == nil {
		return errs.ErrAuthRequired
	}

	if err := h.authService.Logout(c.UserContext(), user.ID, auth.BearerToken(c), auth.MetaFromRequest(c)); err != nil {
		return err
	}
	return c.JSON(model.MessageResponse{Message: "Logged out"})
}
