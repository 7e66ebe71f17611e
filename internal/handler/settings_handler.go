package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/escola-api/internal/models"
	appErrors "github.com/noah-isme/escola-api/pkg/errors"
	"github.com/noah-isme/escola-api/pkg/response"
)

type siteSettingsService interface {
	Get(ctx context.Context) (*models.SiteSettings, error)
	Save(ctx context.Context, actorID string, req models.SiteSettingsRequest) (*models.SiteSettings, error)
}

// SettingsHandler exposes school branding.
type SettingsHandler struct {
	settings siteSettingsService
}

// NewSettingsHandler constructs SettingsHandler.
func NewSettingsHandler(settings siteSettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get godoc
// @Summary Get school branding
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.settings.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// Save godoc
// @Summary Update school branding
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body models.SiteSettingsRequest true "Settings payload"
// @Success 200 {object} response.Envelope
// @Router /settings [put]
// @Security BearerAuth
func (h *SettingsHandler) Save(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.SiteSettingsRequest
	if !bindJSON(c, &req, "invalid settings payload") {
		return
	}
	settings, err := h.settings.Save(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}
