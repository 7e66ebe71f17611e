package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/escola-api/internal/models"
)

func TestClassOfferingRepositoryList(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClassOfferingRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM class_offerings ORDER BY name ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "periodicity", "weekly_frequency", "created_at", "updated_at"}).
			AddRow("c-1", "Piano", "150.00", "monthly", 2, now, now).
			AddRow("c-2", "Violino", "420.50", "quarterly", 1, now, now))

	offerings, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, offerings, 2)
	assert.True(t, offerings[1].Price.Equal(decimal.RequireFromString("420.5")))
	assert.Equal(t, models.PeriodicityQuarterly, offerings[1].Periodicity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassOfferingRepositoryCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClassOfferingRepository(db)

	mock.ExpectExec("INSERT INTO class_offerings").WillReturnResult(sqlmock.NewResult(0, 1))

	offering := &models.ClassOffering{Name: "Piano", Price: decimal.RequireFromString("150"), Periodicity: models.PeriodicityMonthly, WeeklyFrequency: 2}
	require.NoError(t, repo.Create(context.Background(), offering))
	assert.NotEmpty(t, offering.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassOfferingRepositoryDeleteMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClassOfferingRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM class_offerings WHERE id = $1")).
		WithArgs("nope").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "nope"), sql.ErrNoRows)
}
