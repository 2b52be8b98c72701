package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/astrovaani/auth-service/internal/auth"
	"github.com/astrovaani/auth-service/internal/auth/model"
	"github.com/astrovaani/auth-service/internal/auth/service"
	"github.com/astrovaani/auth-service/internal/errs"
)

type RegisterHandler struct {
	authService *service.AuthService
}

func NewRegisterHandler(authService *service.AuthService) *RegisterHandler {
	return &RegisterHandler{authService: authService}
}

// Register dispatches the step-tagged payload to the matching state-machine
// step. Steps 1-3 acknowledge; step 4 returns the bearer token and user.
func (h *RegisterHandler) Register(c *fiber.Ctx) error {
	var req model.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return errs.Validation(map[string]string{"body": "malformed JSON"})
	}

	payload, appErr := req.Payload()
	if appErr != nil {
		return appErr
	}

	ctx := c.UserContext()
	meta := auth.MetaFromRequest(c)

	switch p := payload.(type) {
	case model.Step1Payload:
		ack, err := h.authService.RegisterStep1(ctx, p)
		if err != nil {
			return err
		}
		return c.JSON(ack)
	case model.Step2Payload:
		ack, err := h.authService.RegisterStep2(ctx, p, meta)
		if err != nil {
			return err
		}
		return c.JSON(ack)
	case model.Step3Payload:
		ack, err := h.authService.RegisterStep3(p)
		if err != nil {
			return err
		}
		return c.JSON(ack)
	case model.Step4Payload:
		resp, err := h.authService.RegisterStep4(ctx, p, meta)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(resp)
	default:
		return errs.Validation(map[string]string{"step": "must be between 1 and 4"})
	}
}

// UsernameAvailable backs the live check on the step-1 form.
func (h *RegisterHandler) UsernameAvailable(c *fiber.Ctx) error {
	username := c.Query("username")
	if len(username) < 3 {
		return errs.Validation(map[string]string{"username": "must be at least 3 characters"})
	}

	available, err := h.authService.CheckUsernameAvailability(c.UserContext(), username)
	if err != nil {
		return err
	}

	return c.JSON(model.UsernameAvailability{Username: username, Available: available})
}
