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

func TestEnrollmentRepositoryCreateActive(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (student_id, class_offering_id) WHERE active DO NOTHING")).
		WithArgs(sqlmock.AnyArg(), "student-1", "class-1", "2024-01-15", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	enrollment := &models.Enrollment{StudentID: "student-1", ClassOfferingID: "class-1", EnrollmentDate: models.DateOf(2024, time.January, 15)}
	created, err := repo.CreateActive(context.Background(), nil, enrollment)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, enrollment.ID)
	assert.True(t, enrollment.Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateActiveDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec("INSERT INTO enrollments").WillReturnResult(sqlmock.NewResult(0, 0))

	created, err := repo.CreateActive(context.Background(), nil, &models.Enrollment{StudentID: "s", ClassOfferingID: "c"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryList(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEnrollmentRepository(db)
	active := true

	rows := sqlmock.NewRows([]string{"id", "student_id", "class_offering_id", "enrollment_date", "active", "created_at", "updated_at", "student_name", "class_name", "price", "periodicity"}).
		AddRow("e-1", "student-1", "class-1", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true, time.Now(), time.Now(), "Ana", "Piano", "150.00", "monthly")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.student_id = $1 AND e.active = $2 ORDER BY e.enrollment_date DESC")).
		WithArgs("student-1", true).
		WillReturnRows(rows)

	items, err := repo.List(context.Background(), models.EnrollmentFilter{StudentID: "student-1", Active: &active})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Piano", items[0].ClassName)
	assert.Equal(t, "150", items[0].Price.String())
	assert.Equal(t, "2024-01-15", items[0].EnrollmentDate.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryDeactivate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET active = FALSE")).
		WithArgs("e-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET active = FALSE")).
		WithArgs("missing", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Deactivate(context.Background(), "e-1"))
	assert.ErrorIs(t, repo.Deactivate(context.Background(), "missing"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
