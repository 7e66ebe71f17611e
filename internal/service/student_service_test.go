package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/escola-api/internal/models"
	appErrors "github.com/noah-isme/escola-api/pkg/errors"
)

type memStudentRepo struct {
	students  map[string]*models.Student
	guardians map[string]*models.Guardian
	enrolled  map[string]bool
	seq       int
}

func newMemStudentRepo() *memStudentRepo {
	return &memStudentRepo{
		students:  map[string]*models.Student{},
		guardians: map[string]*models.Guardian{},
		enrolled:  map[string]bool{},
	}
}

func (m *memStudentRepo) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	out := make([]models.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (m *memStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		c := *s
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memStudentRepo) ExistsByCPF(ctx context.Context, cpf, excludeID string) (bool, error) {
	for id, s := range m.students {
		if s.CPF == cpf && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStudentRepo) Create(ctx context.Context, exec sqlx.ExtContext, student *models.Student) error {
	student.ID = m.nextID("student")
	c := *student
	m.students[student.ID] = &c
	return nil
}

func (m *memStudentRepo) Update(ctx context.Context, exec sqlx.ExtContext, student *models.Student) error {
	if _, ok := m.students[student.ID]; !ok {
		return sql.ErrNoRows
	}
	c := *student
	c.Guardian = nil
	m.students[student.ID] = &c
	return nil
}

func (m *memStudentRepo) Delete(ctx context.Context, exec sqlx.ExtContext, id string) (*string, error) {
	s, ok := m.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if m.enrolled[id] {
		return nil, &pq.Error{Code: "23503"}
	}
	delete(m.students, id)
	return s.GuardianID, nil
}

func (m *memStudentRepo) FindGuardian(ctx context.Context, id string) (*models.Guardian, error) {
	if g, ok := m.guardians[id]; ok {
		c := *g
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memStudentRepo) SaveGuardian(ctx context.Context, exec sqlx.ExtContext, guardian *models.Guardian) error {
	if guardian.ID == "" {
		guardian.ID = m.nextID("guardian")
	}
	c := *guardian
	m.guardians[guardian.ID] = &c
	return nil
}

func (m *memStudentRepo) DeleteOrphanGuardian(ctx context.Context, exec sqlx.ExtContext, guardianID string) error {
	for _, s := range m.students {
		if s.GuardianID != nil && *s.GuardianID == guardianID {
			return nil
		}
	}
	delete(m.guardians, guardianID)
	return nil
}

func minorRequest(cpf string) models.CreateStudentRequest {
	return models.CreateStudentRequest{
		FullName:  "Clara Mendes",
		CPF:       cpf,
		BirthDate: models.DateOf(2012, time.May, 3),
		IsMinor:   true,
		Guardian: &models.GuardianInput{
			FullName: "Marta Mendes",
			CPF:      "987.654.321-00",
		},
	}
}

func TestStudentServiceCreateMinorWithGuardian(t *testing.T) {
	repo := newMemStudentRepo()
	svc := NewStudentService(&fakeTx{}, repo, nil, nil)

	student, err := svc.Create(context.Background(), minorRequest("123.456.789-09"))
	require.NoError(t, err)

	assert.Equal(t, "12345678909", student.CPF)
	require.NotNil(t, student.GuardianID)
	require.NotNil(t, student.Guardian)
	assert.Equal(t, "98765432100", student.Guardian.CPF)
	assert.Contains(t, repo.guardians, *student.GuardianID)
}

func TestStudentServiceCreateAdultSkipsGuardian(t *testing.T) {
	repo := newMemStudentRepo()
	svc := NewStudentService(&fakeTx{}, repo, nil, nil)

	student, err := svc.Create(context.Background(), models.CreateStudentRequest{
		FullName:  "Diego Alves",
		CPF:       "11122233344",
		BirthDate: models.DateOf(1990, time.January, 20),
	})
	require.NoError(t, err)
	assert.Nil(t, student.GuardianID)
	assert.Empty(t, repo.guardians)
}

func TestStudentServiceCreateValidation(t *testing.T) {
	svc := NewStudentService(&fakeTx{}, newMemStudentRepo(), nil, nil)

	cases := map[string]models.CreateStudentRequest{
		"minor without guardian": {FullName: "Clara Mendes", CPF: "12345678909", BirthDate: models.DateOf(2012, time.May, 3), IsMinor: true},
		"short cpf":              {FullName: "Clara Mendes", CPF: "123", BirthDate: models.DateOf(2012, time.May, 3)},
		"missing birth date":     {FullName: "Clara Mendes", CPF: "12345678909"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), req)
			assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
		})
	}
}

func TestStudentServiceCreateDuplicateCPF(t *testing.T) {
	repo := newMemStudentRepo()
	svc := NewStudentService(&fakeTx{}, repo, nil, nil)

	_, err := svc.Create(context.Background(), minorRequest("123.456.789-09"))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), minorRequest("12345678909"))
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Len(t, repo.students, 1)
}

func TestStudentServiceUpdateDetachesGuardianWhenAdult(t *testing.T) {
	repo := newMemStudentRepo()
	svc := NewStudentService(&fakeTx{}, repo, nil, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, minorRequest("12345678909"))
	require.NoError(t, err)
	guardianID := *created.GuardianID

	updated, err := svc.Update(ctx, created.ID, models.UpdateStudentRequest{
		FullName:  "Clara Mendes",
		CPF:       "12345678909",
		BirthDate: models.DateOf(2012, time.May, 3),
		IsMinor:   false,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.GuardianID)
	assert.NotContains(t, repo.guardians, guardianID)
}

func TestStudentServiceUpdateEditsExistingGuardian(t *testing.T) {
	repo := newMemStudentRepo()
	svc := NewStudentService(&fakeTx{}, repo, nil, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, minorRequest("12345678909"))
	require.NoError(t, err)

	req := models.UpdateStudentRequest{
		FullName:  "Clara Mendes",
		CPF:       "12345678909",
		BirthDate: models.DateOf(2012, time.May, 3),
		IsMinor:   true,
		Guardian:  &models.GuardianInput{FullName: "Paulo Mendes", CPF: "98765432100"},
	}
	updated, err := svc.Update(ctx, created.ID, req)
	require.NoError(t, err)

	assert.Equal(t, *created.GuardianID, *updated.GuardianID)
	assert.Len(t, repo.guardians, 1)
	assert.Equal(t, "Paulo Mendes", repo.guardians[*updated.GuardianID].FullName)
}

func TestStudentServiceUpdateCPFTakenByAnother(t *testing.T) {
	repo := newMemStudentRepo()
	svc := NewStudentService(&fakeTx{}, repo, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, minorRequest("12345678909"))
	require.NoError(t, err)
	other, err := svc.Create(ctx, models.CreateStudentRequest{FullName: "Diego Alves", CPF: "11122233344", BirthDate: models.DateOf(1990, time.January, 20)})
	require.NoError(t, err)

	_, err = svc.Update(ctx, other.ID, models.UpdateStudentRequest{FullName: "Diego Alves", CPF: "12345678909", BirthDate: models.DateOf(1990, time.January, 20)})
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestStudentServiceUpdateMissing(t *testing.T) {
	svc := NewStudentService(&fakeTx{}, newMemStudentRepo(), nil, nil)
	_, err := svc.Update(context.Background(), "nope", models.UpdateStudentRequest{FullName: "Diego Alves", CPF: "11122233344", BirthDate: models.DateOf(1990, time.January, 20)})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestStudentServiceDeleteRemovesOrphanGuardian(t *testing.T) {
	repo := newMemStudentRepo()
	svc := NewStudentService(&fakeTx{}, repo, nil, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, minorRequest("12345678909"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.Empty(t, repo.students)
	assert.Empty(t, repo.guardians)

	err = svc.Delete(ctx, created.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestStudentServiceDeleteWithEnrollmentHistory(t *testing.T) {
	repo := newMemStudentRepo()
	svc := NewStudentService(&fakeTx{}, repo, nil, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, minorRequest("12345678909"))
	require.NoError(t, err)
	repo.enrolled[created.ID] = true

	err = svc.Delete(ctx, created.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Len(t, repo.students, 1)
}

func TestStudentServiceGetLoadsGuardian(t *testing.T) {
	repo := newMemStudentRepo()
	svc := NewStudentService(&fakeTx{}, repo, nil, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, minorRequest("12345678909"))
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Guardian)
	assert.Equal(t, "Marta Mendes", got.Guardian.FullName)

	_, err = svc.Get(ctx, "missing")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestStudentServiceListAndCPFExists(t *testing.T) {
	repo := newMemStudentRepo()
	svc := NewStudentService(&fakeTx{}, repo, nil, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, minorRequest("12345678909"))
	require.NoError(t, err)

	students, pagination, err := svc.List(ctx, models.StudentFilter{PageSize: 500})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, models.MaxPageSize, pagination.PageSize)
	assert.Equal(t, 1, pagination.TotalCount)

	exists, err := svc.CPFExists(ctx, "123.456.789-09", "")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = svc.CPFExists(ctx, "12345678909", created.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStudentServiceWrapsStoreErrors(t *testing.T) {
	svc := NewStudentService(&fakeTx{}, failingStudentRepo{newMemStudentRepo()}, nil, nil)
	_, _, err := svc.List(context.Background(), models.StudentFilter{})
	assert.True(t, appErrors.Is(err, appErrors.ErrDataStore))
}

type failingStudentRepo struct{ *memStudentRepo }

func (failingStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	return nil, 0, errors.New("connection reset")
}
