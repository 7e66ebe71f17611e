package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/escola-api/internal/models"
)

func TestUserRepositoryFindByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "full_name", "role", "student_id", "active", "last_login", "created_at", "updated_at"}).
		AddRow("u-1", "ana@example.com", "hash", "Ana Souza", "STUDENT", "s-1", true, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE LOWER(email) = LOWER($1)")).
		WithArgs("ANA@example.com").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, user.Role)
	require.NotNil(t, user.StudentID)
	assert.Equal(t, "s-1", *user.StudentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindByEmailMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery("FROM users").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserRepositoryRefreshTokenLifecycle(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	expires := time.Now().Add(time.Hour)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO refresh_tokens")).
		WithArgs(sqlmock.AnyArg(), "u-1", "digest", expires, sqlmock.AnyArg(), "127.0.0.1", "go-test").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM refresh_tokens WHERE token_hash = $1")).
		WithArgs("digest").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token_hash", "expires_at", "created_at", "revoked_at", "ip_address", "user_agent"}).
			AddRow("rt-1", "u-1", "digest", expires, time.Now(), nil, "127.0.0.1", "go-test"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL")).
		WithArgs("rt-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ctx := context.Background()
	token := &models.RefreshToken{UserID: "u-1", TokenHash: "digest", ExpiresAt: expires, IPAddress: "127.0.0.1", UserAgent: "go-test"}
	require.NoError(t, repo.CreateRefreshToken(ctx, token))
	assert.NotEmpty(t, token.ID)

	found, err := repo.FindRefreshToken(ctx, "digest")
	require.NoError(t, err)
	assert.True(t, found.Usable(time.Now()))

	require.NoError(t, repo.RevokeRefreshToken(ctx, found.ID, time.Now()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryRevokeRefreshTokenConsumesOnce(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND revoked_at IS NULL")).
		WithArgs("rt-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND revoked_at IS NULL")).
		WithArgs("rt-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ctx := context.Background()
	require.NoError(t, repo.RevokeRefreshToken(ctx, "rt-1", time.Now()))
	assert.ErrorIs(t, repo.RevokeRefreshToken(ctx, "rt-1", time.Now()), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreateAuditLog(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO audit_logs").WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &models.AuditLog{Action: models.AuditActionPaymentRecord, Resource: "installment"}
	require.NoError(t, repo.CreateAuditLog(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
