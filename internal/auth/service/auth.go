package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/astrovaani/auth-service/internal/auth/model"
	"github.com/astrovaani/auth-service/internal/auth/repository"
	"github.com/astrovaani/auth-service/internal/configs"
	"github.com/astrovaani/auth-service/internal/errs"
	"github.com/astrovaani/auth-service/pkg/ids"
	"github.com/astrovaani/auth-service/pkg/jwt"
	"github.com/astrovaani/auth-service/pkg/mail"
	"github.com/astrovaani/auth-service/pkg/password"
	"github.com/astrovaani/auth-service/pkg/sms"
)

const (
	LoginStreamKey = "login_events"

	blacklistPrefix     = "blacklist:"
	usernameCachePrefix = "username_exists:"
	usernameCacheTTL    = 5 * time.Minute
	otpRateLimitPrefix  = "otp_rate:"
	otpRateLimitMax     = 5
	otpRateLimitWindow  = 15 * time.Minute
)

// LoginEvent is published to the redis stream on every successful
// authentication; the telemetry worker consumes it out of band.
type LoginEvent struct {
	UserID    int64     `json:"user_id"`
	IPAddress string    `json:"ip_address"`
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
}

type CacheService interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, error)
	RawClient() *redis.Client
}

// TxRunner runs fn inside a storage transaction. Injectable so service tests
// can substitute a pass-through runner over in-memory repositories.
type TxRunner func(ctx context.Context, fn func(ctx context.Context, tx repository.DBTX) error) error

type AuthService struct {
	db      repository.DBTX
	repos   repository.Manager
	runTx   TxRunner
	cfg     *configs.Config
	cache   CacheService
	mailer  mail.Mailer
	sms     sms.Dispatcher
	log     *zap.Logger
	sfGroup singleflight.Group
}

func NewAuthService(
	db repository.DBTX,
	repos repository.Manager,
	runTx TxRunner,
	cfg *configs.Config,
	cache CacheService,
	mailer mail.Mailer,
	smsDispatcher sms.Dispatcher,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		db:     db,
		repos:  repos,
		runTx:  runTx,
		cfg:    cfg,
		cache:  cache,
		mailer: mailer,
		sms:    smsDispatcher,
		log:    log,
	}
}

// recordEvent appends to the audit trail. A failed audit write is logged but
// never turns a finished authentication outcome into an error.
func (s *AuthService) recordEvent(ctx context.Context, userID *int64, eventType, description, riskLevel string, meta model.RequestMeta, details map[string]interface{}) {
	var raw json.RawMessage
	if details != nil {
		if b, err := json.Marshal(details); err == nil {
			raw = b
		}
	}

	ev := &model.SecurityEvent{
		ID:          ids.NewKSUID(),
		UserID:      userID,
		EventType:   eventType,
		Description: description,
		RiskLevel:   riskLevel,
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
		Details:     raw,
		CreatedAt:   time.Now(),
	}

	if err := s.repos.Audit(s.db).Record(ctx, ev); err != nil {
		s.log.Error("failed to record security event",
			zap.String("event_type", eventType), zap.Error(err))
	}
}

// issueSession mints the bearer token and persists the session row. Both
// carry the same expiry so they invalidate together.
func (s *AuthService) issueSession(ctx context.Context, db repository.DBTX, user *model.User, ttl time.Duration, meta model.RequestMeta) (string, error) {
	token, err := jwt.GenerateToken(user.ID, user.Username, user.IsAdmin, ttl)
	if err != nil {
		return "", err
	}

	now := time.Now()
	session := &model.AuthSession{
		ID:             ids.NewKSUID(),
		UserID:         user.ID,
		Token:          token,
		IPAddress:      meta.IPAddress,
		UserAgent:      meta.UserAgent,
		IsActive:       true,
		ExpiresAt:      now.Add(ttl),
		LastAccessedAt: now,
		CreatedAt:      now,
	}

	if err := s.repos.Sessions(db).Create(ctx, session); err != nil {
		return "", err
	}
	return token, nil
}

func (s *AuthService) publishLoginEvent(ctx context.Context, userID int64, ip string) {
	rc := s.cache.RawClient()
	if rc == nil {
		return
	}

	event := LoginEvent{
		UserID:    userID,
		IPAddress: ip,
		Timestamp: time.Now(),
		EventType: "user_last_login",
	}
	eventData, err := json.Marshal(event)
	if err != nil {
		s.log.Error("failed to marshal login event", zap.Error(err))
		return
	}

	if _, err := rc.XAdd(ctx, &redis.XAddArgs{
		Stream: LoginStreamKey,
		MaxLen: 100000,
		Values: map[string]interface{}{"event": eventData},
	}).Result(); err != nil {
		s.log.Error("failed to publish login event", zap.Error(err))
	}
}

// finishLogin converges the three login methods: issue session, record the
// audit row, publish telemetry, return the public projection.
func (s *AuthService) finishLogin(ctx context.Context, user *model.User, ttl time.Duration, method string, meta model.RequestMeta) (*model.AuthResponse, error) {
	token, err := s.issueSession(ctx, s.db, user, ttl, meta)
	if err != nil {
		s.log.Error("failed to issue session", zap.Int64("user_id", user.ID), zap.Error(err))
		return nil, errs.ErrSomethingWentWrong
	}

	s.recordEvent(ctx, &user.ID, model.EventLoginSuccess,
		fmt.Sprintf("Successful login via %s", method), model.RiskLow, meta,
		map[string]interface{}{"method": method})

	s.publishLoginEvent(ctx, user.ID, meta.IPAddress)

	return &model.AuthResponse{Token: token, User: user.Public()}, nil
}

func (s *AuthService) failLogin(ctx context.Context, userID *int64, method, reason string, meta model.RequestMeta) error {
	s.recordEvent(ctx, userID, model.EventLoginFailed,
		"Login attempt failed", model.RiskMedium, meta,
		map[string]interface{}{"method": method, "reason": reason})

	if userID != nil {
		if err := s.repos.Users(s.db).IncrementFailedAttempts(ctx, *userID); err != nil {
			s.log.Error("failed to bump failed-attempt counter", zap.Error(err))
		}
	}
	return errs.ErrInvalidCredentials
}

// LoginWithMobileOtp is Method A: OTP proves phone possession, so an unknown
// phone is reported as not-found rather than invalid credentials.
func (s *AuthService) LoginWithMobileOtp(ctx context.Context, req model.MobileOtpLoginRequest, meta model.RequestMeta) (*model.AuthResponse, error) {
	ok, err := s.repos.Otps(s.db).Redeem(ctx, req.PhoneNumber, req.CountryCode, model.PurposeLogin, req.Otp, time.Now())
	if err != nil {
		s.log.Error("otp redemption failed", zap.Error(err))
		return nil, errs.ErrSomethingWentWrong
	}
	if !ok {
		s.recordEvent(ctx, nil, model.EventLoginFailed,
			"Login attempt failed", model.RiskMedium, meta,
			map[string]interface{}{"method": "mobile-otp", "reason": "invalid or expired otp"})
		return nil, errs.ErrInvalidOrExpiredOTP
	}

	user, err := s.repos.Users(s.db).GetByPhone(ctx, req.PhoneNumber, req.CountryCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ErrUserNotFound
		}
		return nil, errs.ErrSomethingWentWrong
	}

	return s.finishLogin(ctx, user, model.SessionTTLOtpLogin, "mobile-otp", meta)
}

// LoginWithUserID is Method B: identifier plus password.
func (s *AuthService) LoginWithUserID(ctx context.Context, req model.UserIDPasswordLoginRequest, meta model.RequestMeta) (*model.AuthResponse, error) {
	user, err := s.repos.Users(s.db).GetByUsername(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, s.failLogin(ctx, nil, "userid-password", "unknown identifier", meta)
		}
		return nil, errs.ErrSomethingWentWrong
	}

	if err := password.CheckPasswordHash(req.Password, user.PasswordHash); err != nil {
		return nil, s.failLogin(ctx, &user.ID, "userid-password", "wrong password", meta)
	}

	return s.finishLogin(ctx, user, model.SessionTTL, "userid-password", meta)
}

// LoginWithMobilePassword is Method C: phone pair plus password.
func (s *AuthService) LoginWithMobilePassword(ctx context.Context, req model.MobilePasswordLoginRequest, meta model.RequestMeta) (*model.AuthResponse, error) {
	user, err := s.repos.Users(s.db).GetByPhone(ctx, req.PhoneNumber, req.CountryCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, s.failLogin(ctx, nil, "mobile-password", "unknown phone", meta)
		}
		return nil, errs.ErrSomethingWentWrong
	}

	if err := password.CheckPasswordHash(req.Password, user.PasswordHash); err != nil {
		return nil, s.failLogin(ctx, &user.ID, "mobile-password", "wrong password", meta)
	}

	return s.finishLogin(ctx, user, model.SessionTTL, "mobile-password", meta)
}

// Logout deactivates the session row and blacklists the token for its
// remaining lifetime so it cannot authenticate again before expiry.
func (s *AuthService) Logout(ctx context.Context, userID int64, token string, meta model.RequestMeta) error {
	if err := s.repos.Sessions(s.db).Deactivate(ctx, token); err != nil {
		s.log.Error("failed to deactivate session", zap.Error(err))
		return errs.ErrSomethingWentWrong
	}

	if ttl := jwt.GetTokenRemainingTTL(token); ttl > 0 {
		if err := s.cache.Set(ctx, blacklistPrefix+token, "blacklisted", ttl); err != nil {
			s.log.Error("failed to blacklist token", zap.Error(err))
		}
	}

	s.recordEvent(ctx, &userID, model.EventLogout, "User logged out", model.RiskLow, meta, nil)
	return nil
}

func (s *AuthService) IsTokenBlacklisted(ctx context.Context, token string) bool {
	var val string
	err := s.cache.Get(ctx, blacklistPrefix+token, &val)
	return err == nil && val == "blacklisted"
}

// GetSession returns the session row for a bearer token; callers check
// Valid separately so an expired-but-active row still fails authentication.
func (s *AuthService) GetSession(ctx context.Context, token string) (*model.AuthSession, error) {
	return s.repos.Sessions(s.db).GetByToken(ctx, token)
}

func (s *AuthService) TouchSession(ctx context.Context, token string) {
	if err := s.repos.Sessions(s.db).Touch(ctx, token, time.Now()); err != nil {
		s.log.Warn("failed to touch session", zap.Error(err))
	}
}

func (s *AuthService) FindUserByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.repos.Users(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ErrUserNotFound
		}
		return nil, errs.ErrSomethingWentWrong
	}
	return user, nil
}

// UpdateLastLogin is invoked by the telemetry worker, not the request path.
func (s *AuthService) UpdateLastLogin(ctx context.Context, userID int64, ip string, at time.Time) error {
	return s.repos.Users(s.db).UpdateLoginTelemetry(ctx, userID, ip, at)
}

// CheckUsernameAvailability consults a short-lived cache behind singleflight
// so a burst of step-1 submissions for the same name hits the store once.
func (s *AuthService) CheckUsernameAvailability(ctx context.Context, username string) (bool, error) {
	cacheKey := usernameCachePrefix + username
	var exists bool
	if err := s.cache.Get(ctx, cacheKey, &exists); err == nil {
		return !exists, nil
	}

	result, err, _ := s.sfGroup.Do(cacheKey, func() (interface{}, error) {
		exists, err := s.repos.Users(s.db).ExistsByUsername(ctx, username)
		if err != nil {
			return false, err
		}
		_ = s.cache.Set(ctx, cacheKey, exists, usernameCacheTTL)
		return !exists, nil
	})
	if err != nil {
		return false, errs.ErrSomethingWentWrong
	}

	return result.(bool), nil
}

// ListUsers serves the admin console's paginated listing.
func (s *AuthService) ListUsers(ctx context.Context, page model.PaginationInput) (*model.UserPage, error) {
	limit := page.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	var afterID int64
	if page.After != "" {
		if _, err := fmt.Sscanf(page.After, "%d", &afterID); err != nil {
			return nil, errs.Validation(map[string]string{"after": "invalid cursor"})
		}
	}

	users, err := s.repos.Users(s.db).List(ctx, limit, afterID)
	if err != nil {
		return nil, errs.ErrSomethingWentWrong
	}

	out := &model.UserPage{Users: make([]*model.PublicUser, 0, len(users)), HasNext: len(users) == limit}
	for _, u := range users {
		out.Users = append(out.Users, u.Public())
	}
	if len(users) > 0 {
		cursor := fmt.Sprintf("%d", users[len(users)-1].ID)
		out.EndCursor = &cursor
	}
	return out, nil
}

// UpdateProfile applies a partial profile update; flipping a consent boolean
// to true appends a fresh LegalAgreement row to the historical trail.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, req model.UpdateProfileRequest, meta model.RequestMeta) (*model.PublicUser, error) {
	user, err := s.repos.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ErrUserNotFound
		}
		return nil, errs.ErrSomethingWentWrong
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Email != nil {
		user.Email = req.Email
		user.IsEmailVerified = false
	}
	if req.DateOfBirth != nil {
		user.DateOfBirth = req.DateOfBirth
	}
	if req.TimeOfBirth != nil {
		user.TimeOfBirth = req.TimeOfBirth
	}
	if req.PlaceOfBirth != nil {
		user.PlaceOfBirth = req.PlaceOfBirth
	}
	if req.PreferredLanguage != nil {
		user.PreferredLanguage = req.PreferredLanguage
	}
	if req.WhatsappNumber != nil {
		user.WhatsappNumber = req.WhatsappNumber
	}

	var granted []string
	if req.DataProcessing != nil {
		if *req.DataProcessing && !user.DataProcessingConsent {
			granted = append(granted, model.AgreementDataProcessing)
		}
		user.DataProcessingConsent = *req.DataProcessing
	}
	if req.Marketing != nil {
		if *req.Marketing && !user.MarketingConsent {
			granted = append(granted, model.AgreementMarketing)
		}
		user.MarketingConsent = *req.Marketing
	}

	err = s.runTx(ctx, func(ctx context.Context, tx repository.DBTX) error {
		if err := s.repos.Users(tx).UpdateProfile(ctx, user); err != nil {
			return err
		}

		// Consent history is append-only: each grant lands as a new row
		// rather than mutating an earlier one.
		agreements := s.repos.Agreements(tx)
		now := time.Now().UTC()
		for _, agreementType := range granted {
			row := &model.LegalAgreement{
				ID:            ids.NewKSUID(),
				UserID:        user.ID,
				AgreementType: agreementType,
				Version:       model.AgreementVersion,
				ConsentMethod: "profile_update",
				IPAddress:     meta.IPAddress,
				UserAgent:     meta.UserAgent,
				AcceptedAt:    now,
			}
			if err := agreements.Create(ctx, row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, errs.ErrSomethingWentWrong
	}

	return user.Public(), nil
}
