package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrovaani/auth-service/internal/auth/model"
	"github.com/astrovaani/auth-service/internal/errs"
	"github.com/astrovaani/auth-service/pkg/password"
)

func seedPasswordUser(t *testing.T, env *testEnv) *model.User {
	t.Helper()
	hash, err := password.HashPassword("moonrise-9")
	require.NoError(t, err)
	u := &model.User{
		ID:           42,
		Username:     "ananya_stars",
		PasswordHash: hash,
		FullName:     "Ananya Sharma",
		PhoneNumber:  "9876543210",
		CountryCode:  "+91",
	}
	env.seedUser(t, u)
	return u
}

func TestLoginWithMobileOtp(t *testing.T) {
	t.Run("issues an extended session on a valid code", func(t *testing.T) {
		env := newTestEnv(t)
		seedPasswordUser(t, env)
		env.seedOtp(t, "9876543210", "+91", model.PurposeLogin, "123456")

		resp, err := env.svc.LoginWithMobileOtp(context.Background(), model.MobileOtpLoginRequest{
			PhoneNumber: "9876543210",
			CountryCode: "+91",
			Otp:         "123456",
		}, testMeta)
		require.NoError(t, err)
		require.NotEmpty(t, resp.Token)
		assert.Equal(t, int64(42), resp.User.ID)

		session := env.store.sessions[resp.Token]
		require.NotNil(t, session)
		assert.WithinDuration(t, time.Now().Add(model.SessionTTLOtpLogin), session.ExpiresAt, 5*time.Second)
	})

	t.Run("rejects an invalid code", func(t *testing.T) {
		env := newTestEnv(t)
		seedPasswordUser(t, env)

		_, err := env.svc.LoginWithMobileOtp(context.Background(), model.MobileOtpLoginRequest{
			PhoneNumber: "9876543210",
			CountryCode: "+91",
			Otp:         "000000",
		}, testMeta)
		assert.Equal(t, errs.ErrInvalidOrExpiredOTP, err)
	})

	t.Run("reports not-found for a verified but unregistered phone", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedOtp(t, "9000000000", "+91", model.PurposeLogin, "123456")

		_, err := env.svc.LoginWithMobileOtp(context.Background(), model.MobileOtpLoginRequest{
			PhoneNumber: "9000000000",
			CountryCode: "+91",
			Otp:         "123456",
		}, testMeta)
		assert.Equal(t, errs.ErrUserNotFound, err)
	})
}

func TestPasswordLogins(t *testing.T) {
	t.Run("userid login succeeds with the right password", func(t *testing.T) {
		env := newTestEnv(t)
		seedPasswordUser(t, env)

		resp, err := env.svc.LoginWithUserID(context.Background(), model.UserIDPasswordLoginRequest{
			UserID:   "ananya_stars",
			Password: "moonrise-9",
		}, testMeta)
		require.NoError(t, err)
		session := env.store.sessions[resp.Token]
		require.NotNil(t, session)
		assert.WithinDuration(t, time.Now().Add(model.SessionTTL), session.ExpiresAt, 5*time.Second)
	})

	t.Run("mobile-password login succeeds", func(t *testing.T) {
		env := newTestEnv(t)
		seedPasswordUser(t, env)

		_, err := env.svc.LoginWithMobilePassword(context.Background(), model.MobilePasswordLoginRequest{
			PhoneNumber: "9876543210",
			CountryCode: "+91",
			Password:    "moonrise-9",
		}, testMeta)
		require.NoError(t, err)
	})

	t.Run("failures are uniform and audited", func(t *testing.T) {
		env := newTestEnv(t)
		user := seedPasswordUser(t, env)

		_, err := env.svc.LoginWithUserID(context.Background(), model.UserIDPasswordLoginRequest{
			UserID: "no_such_user", Password: "whatever1",
		}, testMeta)
		assert.Equal(t, errs.ErrInvalidCredentials, err)

		_, err = env.svc.LoginWithUserID(context.Background(), model.UserIDPasswordLoginRequest{
			UserID: "ananya_stars", Password: "wrong-password",
		}, testMeta)
		assert.Equal(t, errs.ErrInvalidCredentials, err)

		_, err = env.svc.LoginWithMobilePassword(context.Background(), model.MobilePasswordLoginRequest{
			PhoneNumber: "9876543210", CountryCode: "+91", Password: "wrong-password",
		}, testMeta)
		assert.Equal(t, errs.ErrInvalidCredentials, err)

		events := env.store.eventsOfType(model.EventLoginFailed)
		require.Len(t, events, 3)
		for _, ev := range events {
			assert.Equal(t, model.RiskMedium, ev.RiskLevel)
		}

		got, err := env.svc.FindUserByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.FailedLoginAttempts)
	})
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	user := seedPasswordUser(t, env)

	resp, err := env.svc.LoginWithUserID(context.Background(), model.UserIDPasswordLoginRequest{
		UserID: "ananya_stars", Password: "moonrise-9",
	}, testMeta)
	require.NoError(t, err)

	require.NoError(t, env.svc.Logout(context.Background(), user.ID, resp.Token, testMeta))

	session := env.store.sessions[resp.Token]
	require.NotNil(t, session)
	assert.False(t, session.IsActive)
	assert.True(t, env.svc.IsTokenBlacklisted(context.Background(), resp.Token))

	events := env.store.eventsOfType(model.EventLogout)
	assert.Len(t, events, 1)
}

func TestCheckUsernameAvailability(t *testing.T) {
	env := newTestEnv(t)
	seedPasswordUser(t, env)

	available, err := env.svc.CheckUsernameAvailability(context.Background(), "ananya_stars")
	require.NoError(t, err)
	assert.False(t, available)

	available, err = env.svc.CheckUsernameAvailability(context.Background(), "fresh_name")
	require.NoError(t, err)
	assert.True(t, available)

	// Second lookup is served from the cache.
	env.store.mu.Lock()
	delete(env.store.users, 42)
	env.store.mu.Unlock()

	available, err = env.svc.CheckUsernameAvailability(context.Background(), "ananya_stars")
	require.NoError(t, err)
	assert.False(t, available)
}

func TestListUsers(t *testing.T) {
	env := newTestEnv(t)
	for i := int64(1); i <= 5; i++ {
		env.seedUser(t, &model.User{ID: i, Username: "user" + string(rune('a'+i)), PhoneNumber: "900000000" + string(rune('0'+i)), CountryCode: "+91"})
	}

	page, err := env.svc.ListUsers(context.Background(), model.PaginationInput{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Users, 2)
	assert.True(t, page.HasNext)
	require.NotNil(t, page.EndCursor)
	assert.Equal(t, "2", *page.EndCursor)

	page, err = env.svc.ListUsers(context.Background(), model.PaginationInput{Limit: 10, After: *page.EndCursor})
	require.NoError(t, err)
	assert.Len(t, page.Users, 3)
	assert.False(t, page.HasNext)
}

func TestUpdateProfile(t *testing.T) {
	t.Run("applies partial updates and resets email verification", func(t *testing.T) {
		env := newTestEnv(t)
		user := seedPasswordUser(t, env)

		newName := "Ananya S."
		newEmail := "new@example.com"
		updated, err := env.svc.UpdateProfile(context.Background(), user.ID, model.UpdateProfileRequest{
			FullName: &newName,
			Email:    &newEmail,
		}, testMeta)
		require.NoError(t, err)
		assert.Equal(t, "Ananya S.", updated.FullName)
		require.NotNil(t, updated.Email)
		assert.Equal(t, "new@example.com", *updated.Email)
		assert.False(t, updated.IsEmailVerified)
		assert.Empty(t, env.store.agreements)
	})

	t.Run("granting a consent appends to the agreement trail", func(t *testing.T) {
		env := newTestEnv(t)
		user := seedPasswordUser(t, env)

		yes := true
		updated, err := env.svc.UpdateProfile(context.Background(), user.ID, model.UpdateProfileRequest{
			Marketing:      &yes,
			DataProcessing: &yes,
		}, testMeta)
		require.NoError(t, err)
		assert.True(t, updated.MarketingConsent)
		assert.True(t, updated.DataProcessingConsent)

		require.Len(t, env.store.agreements, 2)
		types := map[string]bool{}
		for _, a := range env.store.agreements {
			types[a.AgreementType] = true
			assert.Equal(t, user.ID, a.UserID)
			assert.Equal(t, "profile_update", a.ConsentMethod)
			assert.Equal(t, testMeta.IPAddress, a.IPAddress)
		}
		assert.True(t, types[model.AgreementMarketing])
		assert.True(t, types[model.AgreementDataProcessing])
	})

	t.Run("re-sending an already-granted consent adds nothing", func(t *testing.T) {
		env := newTestEnv(t)
		user := seedPasswordUser(t, env)
		user.MarketingConsent = true

		yes := true
		_, err := env.svc.UpdateProfile(context.Background(), user.ID, model.UpdateProfileRequest{
			Marketing: &yes,
		}, testMeta)
		require.NoError(t, err)
		assert.Empty(t, env.store.agreements)
	})

	t.Run("withdrawing a consent clears the flag without a new row", func(t *testing.T) {
		env := newTestEnv(t)
		user := seedPasswordUser(t, env)
		user.MarketingConsent = true

		no := false
		updated, err := env.svc.UpdateProfile(context.Background(), user.ID, model.UpdateProfileRequest{
			Marketing: &no,
		}, testMeta)
		require.NoError(t, err)
		assert.False(t, updated.MarketingConsent)
		assert.Empty(t, env.store.agreements)
	})
}
