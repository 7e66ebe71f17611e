package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/escola-api/internal/models"
	appErrors "github.com/noah-isme/escola-api/pkg/errors"
	"github.com/noah-isme/escola-api/pkg/response"
)

type studentProfileReader interface {
	Get(ctx context.Context, id string) (*models.Student, error)
}

type studentEnrollmentReader interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error)
}

type studentLedgerReader interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.InstallmentDetail, error)
}

type studentScheduleReader interface {
	ListByStudent(ctx context.Context, studentID string) (*models.WeeklyGrid, error)
}

type studentAnnouncementReader interface {
	ListForStudent(ctx context.Context, studentID string) ([]models.Announcement, error)
}

// MeDeps groups the read models behind the student area.
type MeDeps struct {
	Students      studentProfileReader
	Enrollments   studentEnrollmentReader
	Ledger        studentLedgerReader
	Schedule      studentScheduleReader
	Announcements studentAnnouncementReader
}

// MeHandler serves the signed-in student's own records.
type MeHandler struct {
	deps MeDeps
}

// NewMeHandler constructs MeHandler.
func NewMeHandler(deps MeDeps) *MeHandler {
	return &MeHandler{deps: deps}
}

func currentStudent(c *gin.Context) (string, bool) {
	claims := claimsFromContext(c)
	if claims == nil || claims.StudentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "student session required"))
		return "", false
	}
	return claims.StudentID, true
}

// Profile godoc
// @Summary Own student profile
// @Tags Me
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/profile [get]
// @Security BearerAuth
func (h *MeHandler) Profile(c *gin.Context) {
	studentID, ok := currentStudent(c)
	if !ok {
		return
	}
	student, err := h.deps.Students.Get(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Enrollments godoc
// @Summary Own enrollments
// @Tags Me
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/enrollments [get]
// @Security BearerAuth
func (h *MeHandler) Enrollments(c *gin.Context) {
	studentID, ok := currentStudent(c)
	if !ok {
		return
	}
	items, err := h.deps.Enrollments.List(c.Request.Context(), models.EnrollmentFilter{StudentID: studentID})
	if err != nil {
		response.Error(c, err)
		return
	}
	listed(c, items, len(items), nil)
}

// Installments godoc
// @Summary Own installments
// @Tags Me
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/installments [get]
// @Security BearerAuth
func (h *MeHandler) Installments(c *gin.Context) {
	studentID, ok := currentStudent(c)
	if !ok {
		return
	}
	rows, err := h.deps.Ledger.ListByStudent(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	listed(c, rows, len(rows), nil)
}

// Schedule godoc
// @Summary Own weekly schedule
// @Tags Me
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/schedule [get]
// @Security BearerAuth
func (h *MeHandler) Schedule(c *gin.Context) {
	studentID, ok := currentStudent(c)
	if !ok {
		return
	}
	grid, err := h.deps.Schedule.ListByStudent(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// Announcements godoc
// @Summary Announcements visible to the student
// @Tags Me
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/announcements [get]
// @Security BearerAuth
func (h *MeHandler) Announcements(c *gin.Context) {
	studentID, ok := currentStudent(c)
	if !ok {
		return
	}
	items, err := h.deps.Announcements.ListForStudent(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	listed(c, items, len(items), nil)
}
