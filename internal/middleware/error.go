package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/astrovaani/auth-service/internal/errs"
)

// ErrorHandler renders the error vocabulary as JSON. Unknown errors become a
// generic 500 so internals never leak to the caller.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var appErr *errs.Error
	if errors.As(err, &appErr) {
		return c.Status(appErr.Status).JSON(fiber.Map{"error": appErr})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"error": errs.New(errs.CodeForStatus(fiberErr.Code), fiberErr.Code, fiberErr.Message),
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": errs.ErrSomethingWentWrong,
	})
}
