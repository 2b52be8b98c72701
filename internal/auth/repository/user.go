package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"

	"github.com/astrovaani/auth-service/internal/auth/model"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique index.
	ErrDuplicate = errors.New("duplicate record")
)

const mysqlDuplicateEntry = 1062

// mapWriteErr translates driver-level uniqueness violations so callers can
// surface them as conflicts instead of opaque 500s. Both supported drivers
// are handled.
func mapWriteErr(err error) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return ErrDuplicate
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return ErrDuplicate
	}
	return err
}

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByPhone(ctx context.Context, phoneNumber, countryCode string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByPhone(ctx context.Context, phoneNumber, countryCode string) (bool, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	UpdateProfile(ctx context.Context, u *model.User) error
	UpdateLoginTelemetry(ctx context.Context, userID int64, ip string, at time.Time) error
	IncrementFailedAttempts(ctx context.Context, userID int64) error
	List(ctx context.Context, limit int, afterID int64) ([]*model.User, error)
}

const userColumns = `id, username, email, password_hash, full_name, phone_number, country_code,
	is_phone_verified, is_email_verified, is_verified, is_admin, status,
	date_of_birth, time_of_birth, place_of_birth, preferred_language, whatsapp_number,
	terms_accepted_at, privacy_accepted_at, disclaimer_accepted_at, return_policy_accepted_at,
	data_processing_consent, marketing_consent,
	last_login_at, last_login_ip, failed_login_attempts, locked_until,
	created_at, updated_at`

type userRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	query := `INSERT INTO users (
			id, username, email, password_hash, full_name, phone_number, country_code,
			is_phone_verified, is_email_verified, is_verified, is_admin, status,
			date_of_birth, time_of_birth, place_of_birth, preferred_language, whatsapp_number,
			terms_accepted_at, privacy_accepted_at, disclaimer_accepted_at, return_policy_accepted_at,
			data_processing_consent, marketing_consent, created_at, updated_at
		) VALUES (
			:id, :username, :email, :password_hash, :full_name, :phone_number, :country_code,
			:is_phone_verified, :is_email_verified, :is_verified, :is_admin, :status,
			:date_of_birth, :time_of_birth, :place_of_birth, :preferred_language, :whatsapp_number,
			:terms_accepted_at, :privacy_accepted_at, :disclaimer_accepted_at, :return_policy_accepted_at,
			:data_processing_consent, :marketing_consent, :created_at, :updated_at
		)`

	if _, err := namedExec(ctx, r.db, query, u); err != nil {
		return mapWriteErr(err)
	}
	return nil
}

func (r *userRepository) getOne(ctx context.Context, query string, args ...interface{}) (*model.User, error) {
	var u model.User
	if err := r.db.GetContext(ctx, &u, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

func (r *userRepository) GetByPhone(ctx context.Context, phoneNumber, countryCode string) (*model.User, error) {
	return r.getOne(ctx,
		`SELECT `+userColumns+` FROM users WHERE phone_number = ? AND country_code = ?`,
		phoneNumber, countryCode)
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = ?)`, username)
	return exists, err
}

func (r *userRepository) ExistsByPhone(ctx context.Context, phoneNumber, countryCode string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM users WHERE phone_number = ? AND country_code = ?)`,
		phoneNumber, countryCode)
	return exists, err
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, time.Now(), userID)
	return err
}

func (r *userRepository) UpdateProfile(ctx context.Context, u *model.User) error {
	query := `UPDATE users SET
			email = :email,
			full_name = :full_name,
			date_of_birth = :date_of_birth,
			time_of_birth = :time_of_birth,
			place_of_birth = :place_of_birth,
			preferred_language = :preferred_language,
			whatsapp_number = :whatsapp_number,
			data_processing_consent = :data_processing_consent,
			marketing_consent = :marketing_consent,
			updated_at = :updated_at
		WHERE id = :id`

	u.UpdatedAt = time.Now()
	_, err := namedExec(ctx, r.db, query, u)
	return mapWriteErr(err)
}

func (r *userRepository) UpdateLoginTelemetry(ctx context.Context, userID int64, ip string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = ?, last_login_ip = ?, failed_login_attempts = 0, updated_at = ? WHERE id = ?`,
		at, ip, time.Now(), userID)
	return err
}

func (r *userRepository) IncrementFailedAttempts(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET failed_login_attempts = failed_login_attempts + 1, updated_at = ? WHERE id = ?`,
		time.Now(), userID)
	return err
}

func (r *userRepository) List(ctx context.Context, limit int, afterID int64) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id > ? ORDER BY id ASC LIMIT ?`
	users := []*model.User{}
	if err := r.db.SelectContext(ctx, &users, query, afterID, limit); err != nil {
		return nil, err
	}
	return users, nil
}
