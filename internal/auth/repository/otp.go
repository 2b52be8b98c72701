package repository

import (
	"context"
	"time"

	"github.com/astrovaani/auth-service/internal/auth/model"
)

type OtpRepository interface {
	Create(ctx context.Context, rec *model.OtpVerification) error
	// Redeem atomically marks every matching unused, unexpired code as used.
	// It reports false when nothing matched, without distinguishing a wrong
	// code from an expired or consumed one.
	Redeem(ctx context.Context, phoneNumber, countryCode, purpose, code string, now time.Time) (bool, error)
}

type otpRepository struct {
	db DBTX
}

func NewOtpRepository(db DBTX) OtpRepository {
	return &otpRepository{db: db}
}

func (r *otpRepository) Create(ctx context.Context, rec *model.OtpVerification) error {
	query := `INSERT INTO otp_verifications (
			id, phone_number, country_code, code, purpose, is_used, expires_at,
			user_id, ip_address, user_agent, created_at
		) VALUES (
			:id, :phone_number, :country_code, :code, :purpose, :is_used, :expires_at,
			:user_id, :ip_address, :user_agent, :created_at
		)`

	_, err := namedExec(ctx, r.db, query, rec)
	return mapWriteErr(err)
}

func (r *otpRepository) Redeem(ctx context.Context, phoneNumber, countryCode, purpose, code string, now time.Time) (bool, error) {
	// Conditional update, not read-then-write: two concurrent redemptions of
	// the same code race on is_used and only the first flip wins. No LIMIT
	// clause here, sqlite3 does not accept one on UPDATE; when several
	// identical unexpired codes exist they are all consumed together.
	query := `UPDATE otp_verifications
		SET is_used = TRUE, used_at = ?
		WHERE phone_number = ? AND country_code = ? AND purpose = ? AND code = ?
			AND is_used = FALSE AND expires_at > ?`

	res, err := r.db.ExecContext(ctx, query, now, phoneNumber, countryCode, purpose, code, now)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
