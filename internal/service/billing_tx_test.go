package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/escola-api/internal/models"
	"github.com/noah-isme/escola-api/internal/repository"
	appErrors "github.com/noah-isme/escola-api/pkg/errors"
)

func newSQLMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestEnrollRollsBackWhenInstallmentInsertFails(t *testing.T) {
	db, mock := newSQLMock(t)
	store := newMemStore()
	svc := NewEnrollmentService(
		repository.NewTxRunner(db),
		repository.NewEnrollmentRepository(db),
		repository.NewInstallmentRepository(db),
		memStudents{store}, memOfferings{store},
		fixedCalendar(2024, time.January, 15), nil, validator.New(), zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO enrollments").
		WithArgs(sqlmock.AnyArg(), "student-1", "piano", "2024-01-15", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO billing_installments").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "2024-02-10", "150", "pending", nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := svc.Enroll(context.Background(), models.EnrollRequest{StudentID: "student-1", ClassOfferingID: "piano"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrDataStore))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollDuplicateRollsBackWithoutInstallment(t *testing.T) {
	db, mock := newSQLMock(t)
	store := newMemStore()
	svc := NewEnrollmentService(
		repository.NewTxRunner(db),
		repository.NewEnrollmentRepository(db),
		repository.NewInstallmentRepository(db),
		memStudents{store}, memOfferings{store},
		fixedCalendar(2024, time.January, 15), nil, validator.New(), zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO enrollments").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.Enroll(context.Background(), models.EnrollRequest{StudentID: "student-1", ClassOfferingID: "piano"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrDuplicateEnrollment))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPaymentCommitsPaidAndSuccessorTogether(t *testing.T) {
	db, mock := newSQLMock(t)
	installments := repository.NewInstallmentRepository(db)
	svc := NewBillingService(repository.NewTxRunner(db), installments, repository.NewEnrollmentRepository(db), memStudents{newMemStore()},
		fixedCalendar(2024, time.February, 9), nil, zap.NewNop())

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE OF i, e")).
		WithArgs("inst-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "enrollment_id", "due_date", "amount", "status", "payment_date", "created_at", "updated_at", "enrollment_active", "offering_price", "periodicity"}).
			AddRow("inst-1", "enr-1", time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), "150.00", "pending", nil, now, now, true, "175.00", "monthly"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE billing_installments SET status = $2, payment_date = $3")).
		WithArgs("inst-1", "paid", "2024-02-09", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO billing_installments").
		WithArgs(sqlmock.AnyArg(), "enr-1", "2024-03-10", "175", "pending", nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := svc.RecordPayment(context.Background(), "inst-1")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-09", result.Installment.PaymentDate.String())
	assert.Equal(t, "2024-03-10", result.NextInstallment.DueDate.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPaymentInactiveEnrollmentRollsBack(t *testing.T) {
	db, mock := newSQLMock(t)
	svc := NewBillingService(repository.NewTxRunner(db), repository.NewInstallmentRepository(db), repository.NewEnrollmentRepository(db), memStudents{newMemStore()},
		fixedCalendar(2024, time.February, 9), nil, zap.NewNop())

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE OF i, e")).
		WithArgs("inst-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "enrollment_id", "due_date", "amount", "status", "payment_date", "created_at", "updated_at", "enrollment_active", "offering_price", "periodicity"}).
			AddRow("inst-1", "enr-1", time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), "150.00", "pending", nil, now, now, false, "150.00", "monthly"))
	mock.ExpectRollback()

	_, err := svc.RecordPayment(context.Background(), "inst-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrEnrollmentInactive))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMalformedInstallmentIDIsNotFound(t *testing.T) {
	db, mock := newSQLMock(t)
	svc := NewBillingService(repository.NewTxRunner(db), repository.NewInstallmentRepository(db), repository.NewEnrollmentRepository(db), memStudents{newMemStore()},
		fixedCalendar(2024, time.February, 9), nil, zap.NewNop())
	badUUID := &pq.Error{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE OF i, e").WithArgs("abc").WillReturnError(badUUID)
	mock.ExpectRollback()

	_, err := svc.RecordPayment(context.Background(), "abc")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	mock.ExpectExec("UPDATE billing_installments SET status").WillReturnError(badUUID)
	mock.ExpectQuery("FROM billing_installments WHERE id = \\$1").WithArgs("abc").WillReturnError(badUUID)

	_, err = svc.CancelInstallment(context.Background(), "abc")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
