package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/escola-api/internal/models"
	"github.com/noah-isme/escola-api/pkg/response"
)

type scheduleService interface {
	AddSlot(ctx context.Context, req models.CreateSlotRequest) (*models.ScheduleSlot, error)
	RemoveSlot(ctx context.Context, id string) error
	ListSlots(ctx context.Context) (*models.WeeklyGrid, error)
}

// ScheduleHandler exposes the weekly schedule grid.
type ScheduleHandler struct {
	schedule scheduleService
}

// NewScheduleHandler constructs ScheduleHandler.
func NewScheduleHandler(schedule scheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedule: schedule}
}

// Grid godoc
// @Summary Weekly schedule grid
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedule/slots [get]
// @Security BearerAuth
func (h *ScheduleHandler) Grid(c *gin.Context) {
	grid, err := h.schedule.ListSlots(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// AddSlot godoc
// @Summary Book a weekly slot
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body models.CreateSlotRequest true "Slot payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedule/slots [post]
// @Security BearerAuth
func (h *ScheduleHandler) AddSlot(c *gin.Context) {
	var req models.CreateSlotRequest
	if !bindJSON(c, &req, "invalid slot payload") {
		return
	}
	slot, err := h.schedule.AddSlot(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slot)
}

// RemoveSlot godoc
// @Summary Free a weekly slot
// @Tags Schedule
// @Param id path string true "Slot ID"
// @Success 204
// @Router /schedule/slots/{id} [delete]
// @Security BearerAuth
func (h *ScheduleHandler) RemoveSlot(c *gin.Context) {
	if err := h.schedule.RemoveSlot(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
