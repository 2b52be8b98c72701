package repository

import (
	"context"

	"github.com/astrovaani/auth-service/internal/auth/model"
)

// AuditRepository is append-only; security events are never mutated.
type AuditRepository interface {
	Record(ctx context.Context, ev *model.SecurityEvent) error
}

type auditRepository struct {
	db DBTX
}

func NewAuditRepository(db DBTX) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Record(ctx context.Context, ev *model.SecurityEvent) error {
	query := `INSERT INTO security_events (
			id, user_id, event_type, description, risk_level,
			ip_address, user_agent, details, created_at
		) VALUES (
			:id, :user_id, :event_type, :description, :risk_level,
			:ip_address, :user_agent, :details, :created_at
		)`

	_, err := namedExec(ctx, r.db, query, ev)
	return err
}
