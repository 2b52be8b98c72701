// Package auth holds the request-scoped identity helpers shared by the
// middleware and the HTTP handlers.
package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/astrovaani/auth-service/internal/auth/model"
)

const (
	localsUserKey  = "auth.currentUser"
	localsTokenKey = "auth.bearerToken"
)

func SetCurrentUser(c *fiber.Ctx, user *model.User, token string) {
	c.Locals(localsUserKey, user)
	c.Locals(localsTokenKey, token)
}

// CurrentUser returns the authenticated user for the request, or nil.
func CurrentUser(c *fiber.Ctx) *model.User {
	user, ok := c.Locals(localsUserKey).(*model.User)
	if !ok {
		return nil
	}
	return user
}

func BearerToken(c *fiber.Ctx) string {
	token, ok := c.Locals(localsTokenKey).(string)
	if !ok {
		return ""
	}
	return token
}

// MetaFromRequest captures the client facts stamped onto audit rows,
// OTP records, and sessions.
func MetaFromRequest(c *fiber.Ctx) model.RequestMeta {
	return model.RequestMeta{
		IPAddress: c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
}
