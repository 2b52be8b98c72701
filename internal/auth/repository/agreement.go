package repository

import (
	"context"

	"github.com/astrovaani/auth-service/internal/auth/model"
)

// AgreementRepository keeps the historical consent trail. Re-acceptance
// appends new rows; nothing is updated in place.
type AgreementRepository interface {
	Create(ctx context.Context, a *model.LegalAgreement) error
}

type agreementRepository struct {
	db DBTX
}

func NewAgreementRepository(db DBTX) AgreementRepository {
	return &agreementRepository{db: db}
}

func (r *agreementRepository) Create(ctx context.Context, a *model.LegalAgreement) error {
	query := `INSERT INTO legal_agreements (
			id, user_id, agreement_type, version, consent_method,
			ip_address, user_agent, accepted_at
		) VALUES (
			:id, :user_id, :agreement_type, :version, :consent_method,
			:ip_address, :user_agent, :accepted_at
		)`

	_, err := namedExec(ctx, r.db, query, a)
	return err
}
