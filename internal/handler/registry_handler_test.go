package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/escola-api/internal/models"
	appErrors "github.com/noah-isme/escola-api/pkg/errors"
)

type fakeStudents struct {
	lastFilter  models.StudentFilter
	lastCPF     string
	lastExclude string
	deleteErr   error
}

func (f *fakeStudents) List(_ context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	f.lastFilter = filter
	return []models.Student{{ID: "s1"}}, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: 1}, nil
}

func (f *fakeStudents) Get(_ context.Context, id string) (*models.Student, error) {
	return &models.Student{ID: id, FullName: "Ana Souza"}, nil
}

func (f *fakeStudents) CPFExists(_ context.Context, cpf, excludeID string) (bool, error) {
	f.lastCPF, f.lastExclude = cpf, excludeID
	return true, nil
}

func (f *fakeStudents) Create(_ context.Context, req models.CreateStudentRequest) (*models.Student, error) {
	return &models.Student{ID: "new", FullName: req.FullName}, nil
}

func (f *fakeStudents) Update(_ context.Context, id string, req models.UpdateStudentRequest) (*models.Student, error) {
	return &models.Student{ID: id, FullName: req.FullName}, nil
}

func (f *fakeStudents) Delete(context.Context, string) error {
	return f.deleteErr
}

type fakeAccounts struct {
	studentID string
	actor     *models.JWTClaims
}

func (f *fakeAccounts) RegisterStudentAccount(_ context.Context, actor *models.JWTClaims, studentID string, req models.StudentAccountRequest) (*models.User, error) {
	f.actor, f.studentID = actor, studentID
	return &models.User{ID: "u1", Email: req.Email}, nil
}

func TestStudentListPaging(t *testing.T) {
	students := &fakeStudents{}
	h := NewStudentHandler(students, &fakeAccounts{})

	c, rec := newTestContext(http.MethodGet, "/students?search=ana&page=2&limit=5", "", adminClaims())
	h.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ana", students.lastFilter.Search)
	assert.Equal(t, 2, students.lastFilter.Page)
	assert.Equal(t, 5, students.lastFilter.PageSize)
}

func TestStudentCheckCPF(t *testing.T) {
	students := &fakeStudents{}
	h := NewStudentHandler(students, &fakeAccounts{})

	c, rec := newTestContext(http.MethodGet, "/students/cpf/529.982.247-25?exclude=s1", "", adminClaims(), gin.Param{Key: "cpf", Value: "529.982.247-25"})
	h.CheckCPF(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "529.982.247-25", students.lastCPF)
	assert.Equal(t, "s1", students.lastExclude)
	assert.JSONEq(t, `{"exists":true}`, string(decode(t, rec).Data))
}

func TestStudentCreateAndDelete(t *testing.T) {
	h := NewStudentHandler(&fakeStudents{}, &fakeAccounts{})
	c, rec := newTestContext(http.MethodPost, "/students", `{"full_name":"Ana Souza","cpf":"52998224725","birth_date":"2000-01-01"}`, adminClaims())
	h.Create(c)
	assert.Equal(t, http.StatusCreated, rec.Code)

	h = NewStudentHandler(&fakeStudents{deleteErr: appErrors.Clone(appErrors.ErrConflict, "student has enrollment history")}, &fakeAccounts{})
	c, rec = newTestContext(http.MethodDelete, "/students/s1", "", adminClaims(), idParam("s1"))
	h.Delete(c)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestStudentRegisterAccount(t *testing.T) {
	accounts := &fakeAccounts{}
	h := NewStudentHandler(&fakeStudents{}, accounts)

	c, rec := newTestContext(http.MethodPost, "/students/s1/account", `{"email":"ana@escola.com","password":"secret1"}`, adminClaims(), idParam("s1"))
	h.RegisterAccount(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "s1", accounts.studentID)
	require.NotNil(t, accounts.actor)
	assert.Equal(t, "admin-1", accounts.actor.UserID)
}

type fakeClasses struct{}

func (fakeClasses) List(context.Context) ([]models.ClassOffering, error) {
	return []models.ClassOffering{{ID: "c1"}, {ID: "c2"}}, nil
}

func (fakeClasses) Get(_ context.Context, id string) (*models.ClassOffering, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
}

func (fakeClasses) Create(_ context.Context, req models.ClassOfferingRequest) (*models.ClassOffering, error) {
	return &models.ClassOffering{ID: "c3", Name: req.Name}, nil
}

func (fakeClasses) Update(_ context.Context, id string, req models.ClassOfferingRequest) (*models.ClassOffering, error) {
	return &models.ClassOffering{ID: id, Name: req.Name}, nil
}

func (fakeClasses) Delete(context.Context, string) error {
	return nil
}

func TestClassOfferingHandler(t *testing.T) {
	h := NewClassOfferingHandler(fakeClasses{})

	c, rec := newTestContext(http.MethodGet, "/classes", "", adminClaims())
	h.List(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, decode(t, rec).Meta["count"])

	c, rec = newTestContext(http.MethodGet, "/classes/x", "", adminClaims(), idParam("x"))
	h.Get(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = newTestContext(http.MethodPost, "/classes", `{"name":"Piano","price":"150.00","periodicity":"monthly","weekly_frequency":2}`, adminClaims())
	h.Create(c)
	assert.Equal(t, http.StatusCreated, rec.Code)

	c, _ = newTestContext(http.MethodDelete, "/classes/c1", "", adminClaims(), idParam("c1"))
	h.Delete(c)
	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
}

type fakeSettings struct {
	actor string
}

func (f *fakeSettings) Get(context.Context) (*models.SiteSettings, error) {
	return &models.SiteSettings{SchoolName: "Escola"}, nil
}

func (f *fakeSettings) Save(_ context.Context, actorID string, req models.SiteSettingsRequest) (*models.SiteSettings, error) {
	f.actor = actorID
	return &models.SiteSettings{SchoolName: req.SchoolName}, nil
}

func TestSettingsHandler(t *testing.T) {
	settings := &fakeSettings{}
	h := NewSettingsHandler(settings)

	c, rec := newTestContext(http.MethodGet, "/settings", "", nil)
	h.Get(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decode(t, rec).Data), "Escola")

	c, rec = newTestContext(http.MethodPut, "/settings", `{"school_name":"Escola Nova"}`, nil)
	h.Save(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = newTestContext(http.MethodPut, "/settings", `{"school_name":"Escola Nova"}`, adminClaims())
	h.Save(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin-1", settings.actor)
}
