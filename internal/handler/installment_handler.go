package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/escola-api/internal/models"
	appErrors "github.com/noah-isme/escola-api/pkg/errors"
	"github.com/noah-isme/escola-api/pkg/response"
)

type billingService interface {
	ListInstallments(ctx context.Context, filter models.InstallmentFilter) ([]models.InstallmentDetail, error)
	RecordPayment(ctx context.Context, id string) (*models.PaymentResult, error)
	CancelInstallment(ctx context.Context, id string) (bool, error)
	EditAmount(ctx context.Context, id string, amount decimal.Decimal) (*models.Installment, error)
	MarkOverdue(ctx context.Context, id string) (*models.Installment, error)
}

// InstallmentHandler exposes the billing ledger.
type InstallmentHandler struct {
	billing billingService
}

// NewInstallmentHandler constructs InstallmentHandler.
func NewInstallmentHandler(billing billingService) *InstallmentHandler {
	return &InstallmentHandler{billing: billing}
}

// List godoc
// @Summary List installments
// @Description Ordered by due date. Pending installments past due are reported with status overdue and label Atrasado.
// @Tags Installments
// @Produce json
// @Param student_id query string false "Filter by student"
// @Param q query string false "Case-insensitive substring of the student name or class name"
// @Success 200 {object} response.Envelope
// @Router /installments [get]
// @Security BearerAuth
func (h *InstallmentHandler) List(c *gin.Context) {
	filter := models.InstallmentFilter{
		StudentID: c.Query("student_id"),
		Search:    strings.TrimSpace(c.Query("q")),
	}
	rows, err := h.billing.ListInstallments(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	listed(c, rows, len(rows), nil)
}

// Pay godoc
// @Summary Record payment of an installment
// @Description Settles the installment and, while the enrollment is active, creates the next one.
// @Tags Installments
// @Produce json
// @Param id path string true "Installment ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /installments/{id}/pay [post]
// @Security BearerAuth
func (h *InstallmentHandler) Pay(c *gin.Context) {
	result, err := h.billing.RecordPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Cancel godoc
// @Summary Cancel an unpaid installment
// @Tags Installments
// @Produce json
// @Param id path string true "Installment ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /installments/{id}/cancel [post]
// @Security BearerAuth
func (h *InstallmentHandler) Cancel(c *gin.Context) {
	id := c.Param("id")
	cancelled, err := h.billing.CancelInstallment(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !cancelled {
		response.Error(c, appErrors.Clone(appErrors.ErrInstallmentSettled, "paid installments cannot be cancelled"))
		return
	}
	response.JSON(c, http.StatusOK, models.CancelInstallmentResult{ID: id, Cancelled: true}, nil)
}

// MarkOverdue godoc
// @Summary Persist the overdue status of a pending installment
// @Tags Installments
// @Produce json
// @Param id path string true "Installment ID"
// @Success 200 {object} response.Envelope
// @Router /installments/{id}/overdue [post]
// @Security BearerAuth
func (h *InstallmentHandler) MarkOverdue(c *gin.Context) {
	item, err := h.billing.MarkOverdue(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// EditAmount godoc
// @Summary Overwrite the amount of an open installment
// @Tags Installments
// @Accept json
// @Produce json
// @Param id path string true "Installment ID"
// @Param payload body models.EditAmountRequest true "New amount"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /installments/{id}/amount [patch]
// @Security BearerAuth
func (h *InstallmentHandler) EditAmount(c *gin.Context) {
	var req models.EditAmountRequest
	if !bindJSON(c, &req, "invalid amount payload") {
		return
	}
	item, err := h.billing.EditAmount(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}
