package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/escola-api/internal/models"
	"github.com/noah-isme/escola-api/pkg/response"
)

type enrollmentService interface {
	Enroll(ctx context.Context, req models.EnrollRequest) (*models.EnrollmentResult, error)
	Cancel(ctx context.Context, id string) (*models.EnrollmentDetail, error)
	Get(ctx context.Context, id string) (*models.EnrollmentDetail, error)
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error)
}

type enrollmentLedger interface {
	ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.InstallmentDetail, error)
}

// EnrollmentHandler exposes enrollment endpoints.
type EnrollmentHandler struct {
	enrollments enrollmentService
	ledger      enrollmentLedger
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments enrollmentService, ledger enrollmentLedger) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments, ledger: ledger}
}

// List godoc
// @Summary List enrollments
// @Tags Enrollments
// @Produce json
// @Param student_id query string false "Filter by student"
// @Param class_id query string false "Filter by class offering"
// @Param active query bool false "Filter by active flag"
// @Success 200 {object} response.Envelope
// @Router /enrollments [get]
// @Security BearerAuth
func (h *EnrollmentHandler) List(c *gin.Context) {
	filter := models.EnrollmentFilter{
		StudentID:       c.Query("student_id"),
		ClassOfferingID: c.Query("class_id"),
	}
	switch c.Query("active") {
	case "true":
		v := true
		filter.Active = &v
	case "false":
		v := false
		filter.Active = &v
	}

	items, err := h.enrollments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	listed(c, items, len(items), nil)
}

// Get godoc
// @Summary Get enrollment
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id} [get]
// @Security BearerAuth
func (h *EnrollmentHandler) Get(c *gin.Context) {
	item, err := h.enrollments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Enroll godoc
// @Summary Enroll a student in a class
// @Description Creates the enrollment and its first installment due on the 10th of the next month.
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body models.EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /enrollments [post]
// @Security BearerAuth
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req models.EnrollRequest
	if !bindJSON(c, &req, "invalid enrollment payload") {
		return
	}
	result, err := h.enrollments.Enroll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Cancel godoc
// @Summary Cancel an enrollment
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/cancel [post]
// @Security BearerAuth
func (h *EnrollmentHandler) Cancel(c *gin.Context) {
	item, err := h.enrollments.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Installments godoc
// @Summary List the installments of an enrollment
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/installments [get]
// @Security BearerAuth
func (h *EnrollmentHandler) Installments(c *gin.Context) {
	rows, err := h.ledger.ListByEnrollment(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	listed(c, rows, len(rows), nil)
}
