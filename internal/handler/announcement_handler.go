package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/escola-api/internal/models"
	"github.com/noah-isme/escola-api/pkg/response"
)

type announcementService interface {
	List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Announcement, error)
	Create(ctx context.Context, req models.AnnouncementRequest) (*models.Announcement, error)
	Update(ctx context.Context, id string, req models.AnnouncementRequest) (*models.Announcement, error)
	TogglePublished(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// AnnouncementHandler exposes announcement management.
type AnnouncementHandler struct {
	announcements announcementService
}

// NewAnnouncementHandler constructs AnnouncementHandler.
func NewAnnouncementHandler(announcements announcementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcements: announcements}
}

// List godoc
// @Summary List announcements
// @Tags Announcements
// @Produce json
// @Param published query bool false "Filter by published flag"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /announcements [get]
// @Security BearerAuth
func (h *AnnouncementHandler) List(c *gin.Context) {
	var filter models.AnnouncementFilter
	if raw := c.Query("published"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			filter.Published = &v
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	items, pagination, err := h.announcements.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	listed(c, items, len(items), pagination)
}

// Get godoc
// @Summary Get announcement
// @Tags Announcements
// @Produce json
// @Param id path string true "Announcement ID"
// @Success 200 {object} response.Envelope
// @Router /announcements/{id} [get]
// @Security BearerAuth
func (h *AnnouncementHandler) Get(c *gin.Context) {
	item, err := h.announcements.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Create announcement
// @Tags Announcements
// @Accept json
// @Produce json
// @Param payload body models.AnnouncementRequest true "Announcement payload"
// @Success 201 {object} response.Envelope
// @Router /announcements [post]
// @Security BearerAuth
func (h *AnnouncementHandler) Create(c *gin.Context) {
	var req models.AnnouncementRequest
	if !bindJSON(c, &req, "invalid announcement payload") {
		return
	}
	item, err := h.announcements.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update announcement
// @Tags Announcements
// @Accept json
// @Produce json
// @Param id path string true "Announcement ID"
// @Param payload body models.AnnouncementRequest true "Announcement payload"
// @Success 200 {object} response.Envelope
// @Router /announcements/{id} [put]
// @Security BearerAuth
func (h *AnnouncementHandler) Update(c *gin.Context) {
	var req models.AnnouncementRequest
	if !bindJSON(c, &req, "invalid announcement payload") {
		return
	}
	item, err := h.announcements.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// TogglePublished godoc
// @Summary Publish or unpublish an announcement
// @Tags Announcements
// @Produce json
// @Param id path string true "Announcement ID"
// @Success 200 {object} response.Envelope
// @Router /announcements/{id}/publish [post]
// @Security BearerAuth
func (h *AnnouncementHandler) TogglePublished(c *gin.Context) {
	id := c.Param("id")
	published, err := h.announcements.TogglePublished(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"id": id, "published": published}, nil)
}

// Delete godoc
// @Summary Delete announcement
// @Tags Announcements
// @Param id path string true "Announcement ID"
// @Success 204
// @Router /announcements/{id} [delete]
// @Security BearerAuth
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	if err := h.announcements.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
