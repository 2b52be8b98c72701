package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/astrovaani/auth-service/internal/auth"
	"github.com/astrovaani/auth-service/internal/auth/model"
	"github.com/astrovaani/auth-service/internal/auth/service"
	"github.com/astrovaani/auth-service/internal/errs"
)

type OtpHandler struct {
	authService *service.AuthService
}

func NewOtpHandler(authService *service.AuthService) *OtpHandler {
	return &OtpHandler{authService: authService}
}

// SendOtp issues a code for the requested purpose. The response reports
// issuance, not delivery; SMS dispatch is best effort.
func (h *OtpHandler) SendOtp(c *fiber.Ctx) error {
	var req model.SendOtpRequest
	if err := c.BodyParser(&req); err != nil {
		return errs.Validation(map[string]string{"body": "malformed JSON"})
	}
	if err := req.Validate(); err != nil {
		return err
	}

	if err := h.authService.SendOtp(c.UserContext(), req, auth.MetaFromRequest(c)); err != nil {
		return err
	}
	return c.JSON(model.MessageResponse{Message: "OTP sent"})
}
