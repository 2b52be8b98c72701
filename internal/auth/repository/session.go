package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/astrovaani/auth-service/internal/auth/model"
)

type SessionRepository interface {
	Create(ctx context.Context, s *model.AuthSession) error
	GetByToken(ctx context.Context, token string) (*model.AuthSession, error)
	Deactivate(ctx context.Context, token string) error
	Touch(ctx context.Context, token string, at time.Time) error
}

type sessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, s *model.AuthSession) error {
	query := `INSERT INTO auth_sessions (
			id, user_id, token, refresh_token, ip_address, user_agent,
			is_active, expires_at, last_accessed_at, created_at
		) VALUES (
			:id, :user_id, :token, :refresh_token, :ip_address, :user_agent,
			:is_active, :expires_at, :last_accessed_at, :created_at
		)`

	_, err := namedExec(ctx, r.db, query, s)
	return mapWriteErr(err)
}

func (r *sessionRepository) GetByToken(ctx context.Context, token string) (*model.AuthSession, error) {
	query := `SELECT id, user_id, token, refresh_token, ip_address, user_agent,
			is_active, expires_at, last_accessed_at, created_at
		FROM auth_sessions WHERE token = ?`

	var s model.AuthSession
	if err := r.db.GetContext(ctx, &s, query, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepository) Deactivate(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE auth_sessions SET is_active = FALSE WHERE token = ?`, token)
	return err
}

func (r *sessionRepository) Touch(ctx context.Context, token string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE auth_sessions SET last_accessed_at = ? WHERE token = ?`, at, token)
	return err
}
