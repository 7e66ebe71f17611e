package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/escola-api/internal/handler"
	"github.com/noah-isme/escola-api/internal/models"
	appErrors "github.com/noah-isme/escola-api/pkg/errors"
)

type tokenTable map[string]*models.JWTClaims

func (t tokenTable) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := t[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	Register(r, "/api/v1", Handlers{
		Auth:          handler.NewAuthHandler(nil),
		Settings:      handler.NewSettingsHandler(nil),
		Students:      handler.NewStudentHandler(nil, nil),
		Classes:       handler.NewClassOfferingHandler(nil),
		Enrollments:   handler.NewEnrollmentHandler(nil, nil),
		Installments:  handler.NewInstallmentHandler(nil),
		Schedule:      handler.NewScheduleHandler(nil),
		Announcements: handler.NewAnnouncementHandler(nil),
		Exports:       handler.NewExportHandler(nil),
		Me:            handler.NewMeHandler(handler.MeDeps{}),
	}, Deps{Tokens: tokenTable{
		"admin":   {UserID: "a1", Role: models.RoleAdmin},
		"student": {UserID: "u1", Role: models.RoleStudent, StudentID: "s1"},
	}})
	return r
}

func TestRouteTable(t *testing.T) {
	r := newEngine()
	registered := map[string]bool{}
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	expected := []string{
		"POST /api/v1/auth/admin/login",
		"POST /api/v1/auth/student/login",
		"POST /api/v1/auth/refresh",
		"POST /api/v1/auth/logout",
		"PUT /api/v1/auth/password",
		"GET /api/v1/settings",
		"PUT /api/v1/settings",
		"GET /api/v1/students",
		"GET /api/v1/students/cpf/:cpf",
		"POST /api/v1/students/:id/account",
		"DELETE /api/v1/classes/:id",
		"POST /api/v1/enrollments",
		"POST /api/v1/enrollments/:id/cancel",
		"GET /api/v1/enrollments/:id/installments",
		"GET /api/v1/installments",
		"POST /api/v1/installments/:id/pay",
		"POST /api/v1/installments/:id/cancel",
		"POST /api/v1/installments/:id/overdue",
		"PATCH /api/v1/installments/:id/amount",
		"GET /api/v1/schedule/slots",
		"DELETE /api/v1/schedule/slots/:id",
		"POST /api/v1/announcements/:id/publish",
		"POST /api/v1/exports/ledger",
		"GET /api/v1/exports/ledger/:id",
		"GET /api/v1/exports/download/:token",
		"GET /api/v1/me/profile",
		"GET /api/v1/me/installments",
		"GET /api/v1/me/announcements",
	}
	for _, route := range expected {
		assert.True(t, registered[route], "missing route %s", route)
	}
}

func TestRouteGuards(t *testing.T) {
	r := newEngine()
	cases := []struct {
		method, path, token string
		want                int
	}{
		{http.MethodGet, "/api/v1/students", "", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/students", "student", http.StatusForbidden},
		{http.MethodPost, "/api/v1/installments/i1/pay", "student", http.StatusForbidden},
		{http.MethodGet, "/api/v1/me/profile", "admin", http.StatusForbidden},
		{http.MethodPut, "/api/v1/auth/password", "bogus", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		if tc.token != "" {
			req.Header.Set("Authorization", "Bearer "+tc.token)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, tc.want, rec.Code, "%s %s as %q", tc.method, tc.path, tc.token)
	}
}
