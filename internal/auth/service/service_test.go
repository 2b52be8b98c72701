package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/astrovaani/auth-service/internal/auth/model"
	"github.com/astrovaani/auth-service/internal/auth/repository"
	"github.com/astrovaani/auth-service/internal/configs"
	"github.com/astrovaani/auth-service/pkg/sms"
)

// In-memory doubles for the storage, cache, and dispatch dependencies. The
// store is shared by all repositories the fake manager hands out, mirroring
// how the real ones share a database.

type fakeStore struct {
	mu         sync.Mutex
	users      map[int64]*model.User
	otps       []*model.OtpVerification
	sessions   map[string]*model.AuthSession
	events     []*model.SecurityEvent
	agreements []*model.LegalAgreement
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[int64]*model.User),
		sessions: make(map[string]*model.AuthSession),
	}
}

func (s *fakeStore) eventsOfType(eventType string) []*model.SecurityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.SecurityEvent
	for _, ev := range s.events {
		if ev.EventType == eventType {
			out = append(out, ev)
		}
	}
	return out
}

type fakeUsers struct{ store *fakeStore }

func (r *fakeUsers) Create(ctx context.Context, u *model.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.users {
		if existing.Username == u.Username {
			return repository.ErrDuplicate
		}
		if existing.PhoneNumber == u.PhoneNumber && existing.CountryCode == u.CountryCode {
			return repository.ErrDuplicate
		}
	}
	cp := *u
	r.store.users[u.ID] = &cp
	return nil
}

func (r *fakeUsers) GetByID(ctx context.Context, id int64) (*model.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if u, ok := r.store.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUsers) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUsers) GetByPhone(ctx context.Context, phoneNumber, countryCode string) (*model.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if u.PhoneNumber == phoneNumber && u.CountryCode == countryCode {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUsers) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	if err == repository.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *fakeUsers) ExistsByPhone(ctx context.Context, phoneNumber, countryCode string) (bool, error) {
	_, err := r.GetByPhone(ctx, phoneNumber, countryCode)
	if err == repository.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *fakeUsers) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *fakeUsers) UpdateProfile(ctx context.Context, u *model.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *u
	r.store.users[u.ID] = &cp
	return nil
}

func (r *fakeUsers) UpdateLoginTelemetry(ctx context.Context, userID int64, ip string, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.LastLoginAt = &at
	u.LastLoginIP = &ip
	u.FailedLoginAttempts = 0
	return nil
}

func (r *fakeUsers) IncrementFailedAttempts(ctx context.Context, userID int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.FailedLoginAttempts++
	return nil
}

func (r *fakeUsers) List(ctx context.Context, limit int, afterID int64) ([]*model.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*model.User
	for _, u := range r.store.users {
		if u.ID > afterID {
			cp := *u
			out = append(out, &cp)
		}
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].ID < out[i].ID {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeOtps struct{ store *fakeStore }

func (r *fakeOtps) Create(ctx context.Context, rec *model.OtpVerification) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *rec
	r.store.otps = append(r.store.otps, &cp)
	return nil
}

func (r *fakeOtps) Redeem(ctx context.Context, phoneNumber, countryCode, purpose, code string, now time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, rec := range r.store.otps {
		if rec.PhoneNumber == phoneNumber && rec.CountryCode == countryCode &&
			rec.Purpose == purpose && rec.Code == code &&
			!rec.IsUsed && rec.ExpiresAt.After(now) {
			rec.IsUsed = true
			rec.UsedAt = &now
			return true, nil
		}
	}
	return false, nil
}

type fakeSessions struct{ store *fakeStore }

func (r *fakeSessions) Create(ctx context.Context, s *model.AuthSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *s
	r.store.sessions[s.Token] = &cp
	return nil
}

func (r *fakeSessions) GetByToken(ctx context.Context, token string) (*model.AuthSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if s, ok := r.store.sessions[token]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeSessions) Deactivate(ctx context.Context, token string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if s, ok := r.store.sessions[token]; ok {
		s.IsActive = false
	}
	return nil
}

func (r *fakeSessions) Touch(ctx context.Context, token string, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if s, ok := r.store.sessions[token]; ok {
		s.LastAccessedAt = at
	}
	return nil
}

type fakeAudit struct{ store *fakeStore }

func (r *fakeAudit) Record(ctx context.Context, ev *model.SecurityEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *ev
	r.store.events = append(r.store.events, &cp)
	return nil
}

type fakeAgreements struct{ store *fakeStore }

func (r *fakeAgreements) Create(ctx context.Context, a *model.LegalAgreement) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *a
	r.store.agreements = append(r.store.agreements, &cp)
	return nil
}

type fakeManager struct{ store *fakeStore }

func (m *fakeManager) Users(repository.DBTX) repository.UserRepository { return &fakeUsers{m.store} }
func (m *fakeManager) Otps(repository.DBTX) repository.OtpRepository   { return &fakeOtps{m.store} }
func (m *fakeManager) Sessions(repository.DBTX) repository.SessionRepository {
	return &fakeSessions{m.store}
}
func (m *fakeManager) Audit(repository.DBTX) repository.AuditRepository { return &fakeAudit{m.store} }
func (m *fakeManager) Agreements(repository.DBTX) repository.AgreementRepository {
	return &fakeAgreements{m.store}
}

type fakeCache struct {
	mu       sync.Mutex
	entries  map[string]interface{}
	counters map[string]int64
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		entries:  make(map[string]interface{}),
		counters: make(map[string]int64),
	}
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if !ok {
		return redis.Nil
	}
	switch d := dest.(type) {
	case *string:
		*d = v.(string)
	case *bool:
		*d = v.(bool)
	}
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

func (c *fakeCache) Allow(ctx context.Context, key string, limit int64, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[key]++
	return c.counters[key] <= limit, nil
}

func (c *fakeCache) RawClient() *redis.Client { return nil }

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *fakeMailer) SendPlainTextEmail(ctx context.Context, recipientEmail, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, recipientEmail)
	return nil
}

func (m *fakeMailer) SendHTMLEmail(ctx context.Context, recipientEmail, subject, htmlBody string) error {
	return m.SendPlainTextEmail(ctx, recipientEmail, subject, htmlBody)
}

type fakeSMS struct {
	mu   sync.Mutex
	sent []string
}

func (d *fakeSMS) Send(ctx context.Context, phoneNumber, countryCode, message string) sms.DispatchResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, countryCode+phoneNumber)
	return sms.DispatchResult{Success: true, MessageID: "fake-msg-id"}
}

type testEnv struct {
	svc    *AuthService
	store  *fakeStore
	cache  *fakeCache
	mailer *fakeMailer
	sms    *fakeSMS
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret-do-not-use")

	store := newFakeStore()
	cache := newFakeCache()
	mailer := &fakeMailer{}
	smsDispatch := &fakeSMS{}

	passthrough := func(ctx context.Context, fn func(ctx context.Context, tx repository.DBTX) error) error {
		return fn(ctx, nil)
	}

	svc := NewAuthService(
		nil,
		&fakeManager{store: store},
		passthrough,
		&configs.Config{},
		cache,
		mailer,
		smsDispatch,
		zap.NewNop(),
	)

	return &testEnv{svc: svc, store: store, cache: cache, mailer: mailer, sms: smsDispatch}
}

func (e *testEnv) seedOtp(t *testing.T, phone, cc, purpose, code string) {
	t.Helper()
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	e.store.otps = append(e.store.otps, &model.OtpVerification{
		ID:          "otp-" + code,
		PhoneNumber: phone,
		CountryCode: cc,
		Code:        code,
		Purpose:     purpose,
		ExpiresAt:   time.Now().Add(model.OtpTTL),
		CreatedAt:   time.Now(),
	})
}

func (e *testEnv) seedUser(t *testing.T, u *model.User) {
	t.Helper()
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	if u.Status == "" {
		u.Status = model.StatusActive
	}
	e.store.users[u.ID] = u
}

var testMeta = model.RequestMeta{IPAddress: "203.0.113.7", UserAgent: "go-test"}
