package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrovaani/auth-service/internal/auth/model"
)

func TestUserCreateDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := repo.Create(context.Background(), &model.User{
		ID:          1,
		Username:    "taken",
		PhoneNumber: "9876543210",
		CountryCode: "+91",
		Status:      model.StatusActive,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET failed_login_attempts").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := WithTx(context.Background(), db, func(ctx context.Context, tx DBTX) error {
		return NewUserRepository(tx).IncrementFailedAttempts(ctx, 7)
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxCommits(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET failed_login_attempts").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := WithTx(context.Background(), db, func(ctx context.Context, tx DBTX) error {
		return NewUserRepository(tx).IncrementFailedAttempts(ctx, 7)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
