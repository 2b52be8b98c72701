package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrovaani/auth-service/internal/auth/model"
	"github.com/astrovaani/auth-service/internal/errs"
	"github.com/astrovaani/auth-service/pkg/password"
)

func TestForgotPassword(t *testing.T) {
	t.Run("silently ignores an unknown phone", func(t *testing.T) {
		env := newTestEnv(t)

		err := env.svc.ForgotPassword(context.Background(), model.ForgotPasswordRequest{
			PhoneNumber: "9000000000",
			CountryCode: "+91",
		}, testMeta)
		require.NoError(t, err)
		assert.Empty(t, env.store.otps)
	})

	t.Run("issues a reset code for a known phone", func(t *testing.T) {
		env := newTestEnv(t)
		seedPasswordUser(t, env)

		err := env.svc.ForgotPassword(context.Background(), model.ForgotPasswordRequest{
			PhoneNumber: "9876543210",
			CountryCode: "+91",
		}, testMeta)
		require.NoError(t, err)

		env.store.mu.Lock()
		defer env.store.mu.Unlock()
		require.Len(t, env.store.otps, 1)
		assert.Equal(t, model.PurposePasswordReset, env.store.otps[0].Purpose)
	})
}

func TestResetPassword(t *testing.T) {
	t.Run("replaces the hash after redemption", func(t *testing.T) {
		env := newTestEnv(t)
		user := seedPasswordUser(t, env)
		env.seedOtp(t, "9876543210", "+91", model.PurposePasswordReset, "123456")

		err := env.svc.ResetPassword(context.Background(), model.ResetPasswordRequest{
			PhoneNumber: "9876543210",
			CountryCode: "+91",
			Otp:         "123456",
			NewPassword: "new-secret-1",
		}, testMeta)
		require.NoError(t, err)

		got, err := env.svc.FindUserByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.NoError(t, password.CheckPasswordHash("new-secret-1", got.PasswordHash))

		events := env.store.eventsOfType(model.EventPasswordResetSuccess)
		assert.Len(t, events, 1)
	})

	t.Run("unknown phone gets the same rejection as a bad code", func(t *testing.T) {
		env := newTestEnv(t)

		err := env.svc.ResetPassword(context.Background(), model.ResetPasswordRequest{
			PhoneNumber: "9000000000",
			CountryCode: "+91",
			Otp:         "123456",
			NewPassword: "new-secret-1",
		}, testMeta)
		assert.Equal(t, errs.ErrInvalidOrExpiredOTP, err)

		events := env.store.eventsOfType(model.EventPasswordResetFailed)
		require.Len(t, events, 1)
		assert.Equal(t, model.RiskHigh, events[0].RiskLevel)
	})

	t.Run("rejects a registration-purpose code", func(t *testing.T) {
		env := newTestEnv(t)
		seedPasswordUser(t, env)
		env.seedOtp(t, "9876543210", "+91", model.PurposeRegistration, "123456")

		err := env.svc.ResetPassword(context.Background(), model.ResetPasswordRequest{
			PhoneNumber: "9876543210",
			CountryCode: "+91",
			Otp:         "123456",
			NewPassword: "new-secret-1",
		}, testMeta)
		assert.Equal(t, errs.ErrInvalidOrExpiredOTP, err)
	})
}

func TestChangePassword(t *testing.T) {
	t.Run("requires the current password", func(t *testing.T) {
		env := newTestEnv(t)
		user := seedPasswordUser(t, env)

		err := env.svc.ChangePassword(context.Background(), user.ID, model.ChangePasswordRequest{
			CurrentPassword: "wrong-password",
			NewPassword:     "new-secret-1",
		}, testMeta)
		assert.Equal(t, errs.ErrInvalidCredentials, err)
	})

	t.Run("rejects reusing the current password", func(t *testing.T) {
		env := newTestEnv(t)
		user := seedPasswordUser(t, env)

		err := env.svc.ChangePassword(context.Background(), user.ID, model.ChangePasswordRequest{
			CurrentPassword: "moonrise-9",
			NewPassword:     "moonrise-9",
		}, testMeta)
		require.Error(t, err)
		appErr, ok := err.(*errs.Error)
		require.True(t, ok)
		assert.Contains(t, appErr.Fields, "newPassword")
	})

	t.Run("applies a valid change", func(t *testing.T) {
		env := newTestEnv(t)
		user := seedPasswordUser(t, env)

		err := env.svc.ChangePassword(context.Background(), user.ID, model.ChangePasswordRequest{
			CurrentPassword: "moonrise-9",
			NewPassword:     "new-secret-1",
		}, testMeta)
		require.NoError(t, err)

		got, err := env.svc.FindUserByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.NoError(t, password.CheckPasswordHash("new-secret-1", got.PasswordHash))
	})
}

func TestVerifyIdentity(t *testing.T) {
	t.Run("accepts the current password", func(t *testing.T) {
		env := newTestEnv(t)
		user := seedPasswordUser(t, env)

		err := env.svc.VerifyIdentity(context.Background(), user.ID, model.VerifyIdentityRequest{
			Password: "moonrise-9",
		}, testMeta)
		require.NoError(t, err)

		events := env.store.eventsOfType(model.EventIdentityVerified)
		assert.Len(t, events, 1)
	})

	t.Run("accepts a dedicated verification code", func(t *testing.T) {
		env := newTestEnv(t)
		user := seedPasswordUser(t, env)
		env.seedOtp(t, "9876543210", "+91", model.PurposeIdentityVerification, "123456")

		err := env.svc.VerifyIdentity(context.Background(), user.ID, model.VerifyIdentityRequest{
			Otp: "123456",
		}, testMeta)
		require.NoError(t, err)
	})

	t.Run("rejects and audits a failed attempt", func(t *testing.T) {
		env := newTestEnv(t)
		user := seedPasswordUser(t, env)

		err := env.svc.VerifyIdentity(context.Background(), user.ID, model.VerifyIdentityRequest{
			Password: "wrong-password",
		}, testMeta)
		assert.Equal(t, errs.ErrInvalidCredentials, err)

		events := env.store.eventsOfType(model.EventIdentityVerifyFailed)
		require.Len(t, events, 1)
		assert.Equal(t, model.RiskHigh, events[0].RiskLevel)
	})
}
