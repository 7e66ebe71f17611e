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

func TestScheduleSlotRepositoryCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewScheduleSlotRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (student_id, day_of_week, hour) DO NOTHING")).
		WithArgs(sqlmock.AnyArg(), "s-1", "c-1", 1, 9, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (student_id, day_of_week, hour) DO NOTHING")).
		WithArgs(sqlmock.AnyArg(), "s-1", "c-2", 1, 9, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ctx := context.Background()
	created, err := repo.Create(ctx, &models.ScheduleSlot{StudentID: "s-1", ClassOfferingID: "c-1", DayOfWeek: 1, Hour: 9})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Create(ctx, &models.ScheduleSlot{StudentID: "s-1", ClassOfferingID: "c-2", DayOfWeek: 1, Hour: 9})
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleSlotRepositoryListByStudent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewScheduleSlotRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "class_offering_id", "day_of_week", "hour", "created_at", "student_name", "class_name"}).
		AddRow("slot-1", "s-1", "c-1", 1, 9, time.Now(), "Ana", "Piano")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE ss.student_id = $1 ORDER BY ss.day_of_week ASC")).
		WithArgs("s-1").
		WillReturnRows(rows)

	slots, err := repo.List(context.Background(), "s-1")
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, 9, slots[0].Hour)
	assert.Equal(t, "Piano", slots[0].ClassName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleSlotRepositoryDeleteMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewScheduleSlotRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule_slots WHERE id = $1")).
		WithArgs("nope").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "nope"), sql.ErrNoRows)
}
