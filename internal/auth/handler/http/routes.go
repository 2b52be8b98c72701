package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/astrovaani/auth-service/internal/auth/service"
	"github.com/astrovaani/auth-service/internal/middleware"
)

// RegisterRoutes mounts the public auth surface and the authenticated
// profile and admin groups under /api.
func RegisterRoutes(app *fiber.App, authService *service.AuthService) {
	register := NewRegisterHandler(authService)
	login := NewLoginHandler(authService)
	otp := NewOtpHandler(authService)
	password := NewPasswordHandler(authService)
	profile := NewProfileHandler(authService)
	admin := NewAdminHandler(authService)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/send-otp", otp.SendOtp)
	authGroup.Post("/register", register.Register)
	authGroup.Get("/username-available", register.UsernameAvailable)
	authGroup.Post("/login/mobile-otp", login.MobileOtp)
	authGroup.Post("/login/userid-password", login.UserIDPassword)
	authGroup.Post("/login/mobile-password", login.MobilePassword)
	authGroup.Post("/forgot-password", password.ForgotPassword)
	authGroup.Post("/reset-password", password.ResetPassword)

	authGroup.Post("/logout", middleware.RequireAuth(), login.Logout)
	authGroup.Post("/change-password", middleware.RequireAuth(), password.ChangePassword)
	authGroup.Post("/verify-identity", middleware.RequireAuth(), password.VerifyIdentity)

	users := api.Group("/users", middleware.RequireAuth())
	users.Get("/me", profile.Me)
	users.Patch("/me", profile.UpdateMe)

	adminGroup := api.Group("/admin", middleware.RequireAuth(), middleware.RequireAdmin())
	adminGroup.Get("/users", admin.ListUsers)
}
