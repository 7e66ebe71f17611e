package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/escola-api/internal/models"
	"github.com/noah-isme/escola-api/pkg/response"
)

type classOfferingService interface {
	List(ctx context.Context) ([]models.ClassOffering, error)
	Get(ctx context.Context, id string) (*models.ClassOffering, error)
	Create(ctx context.Context, req models.ClassOfferingRequest) (*models.ClassOffering, error)
	Update(ctx context.Context, id string, req models.ClassOfferingRequest) (*models.ClassOffering, error)
	Delete(ctx context.Context, id string) error
}

// ClassOfferingHandler exposes the class catalog.
type ClassOfferingHandler struct {
	classes classOfferingService
}

// NewClassOfferingHandler constructs ClassOfferingHandler.
func NewClassOfferingHandler(classes classOfferingService) *ClassOfferingHandler {
	return &ClassOfferingHandler{classes: classes}
}

// List godoc
// @Summary List class offerings
// @Tags Classes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classes [get]
// @Security BearerAuth
func (h *ClassOfferingHandler) List(c *gin.Context) {
	classes, err := h.classes.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	listed(c, classes, len(classes), nil)
}

// Get godoc
// @Summary Get class offering
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [get]
// @Security BearerAuth
func (h *ClassOfferingHandler) Get(c *gin.Context) {
	class, err := h.classes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Create godoc
// @Summary Create class offering
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body models.ClassOfferingRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Router /classes [post]
// @Security BearerAuth
func (h *ClassOfferingHandler) Create(c *gin.Context) {
	var req models.ClassOfferingRequest
	if !bindJSON(c, &req, "invalid class payload") {
		return
	}
	class, err := h.classes.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// Update godoc
// @Summary Update class offering
// @Description Price changes only affect installments generated afterwards.
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body models.ClassOfferingRequest true "Class payload"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [put]
// @Security BearerAuth
func (h *ClassOfferingHandler) Update(c *gin.Context) {
	var req models.ClassOfferingRequest
	if !bindJSON(c, &req, "invalid class payload") {
		return
	}
	class, err := h.classes.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Delete godoc
// @Summary Delete class offering
// @Tags Classes
// @Param id path string true "Class ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /classes/{id} [delete]
// @Security BearerAuth
func (h *ClassOfferingHandler) Delete(c *gin.Context) {
	if err := h.classes.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
