package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/astrovaani/auth-service/internal/auth"
	"github.com/astrovaani/auth-service/internal/auth/service"
	"github.com/astrovaani/auth-service/internal/errs"
	"github.com/astrovaani/auth-service/pkg/jwt"
)

func stripBearer(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Authenticate resolves the bearer token into a user. The token must carry a
// valid signature, must not be blacklisted, and its session row must still be
// active and unexpired; expiry wins even when the row says active.
func Authenticate(authService *service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := stripBearer(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return c.Next()
		}

		ctx := c.UserContext()

		if authService.IsTokenBlacklisted(ctx, token) {
			return c.Next()
		}

		claims, err := jwt.ValidateToken(token)
		if err != nil {
			return c.Next()
		}

		session, err := authService.GetSession(ctx, token)
		if err != nil || !session.Valid(time.Now()) {
			return c.Next()
		}

		user, err := authService.FindUserByID(ctx, claims.UserID)
		if err != nil {
			return c.Next()
		}

		authService.TouchSession(ctx, token)
		auth.SetCurrentUser(c, user, token)
		return c.Next()
	}
}

// RequireAuth guards routes that need an authenticated identity.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if auth.CurrentUser(c) == nil {
			return errs.ErrAuthRequired
		}
		return c.Next()
	}
}

// RequireAdmin guards the admin console routes.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := auth.CurrentUser(c)
		if user == nil {
			return errs.ErrAuthRequired
		}
		if !user.IsAdmin {
			return errs.ErrForbidden
		}
		return c.Next()
	}
}
