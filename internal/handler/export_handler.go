package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/escola-api/internal/models"
	"github.com/noah-isme/escola-api/internal/service"
	appErrors "github.com/noah-isme/escola-api/pkg/errors"
	"github.com/noah-isme/escola-api/pkg/response"
)

type ledgerExportService interface {
	RequestExport(ctx context.Context, actor *models.JWTClaims, req models.LedgerExportRequest) (*models.LedgerExport, error)
	Status(ctx context.Context, id string) (*models.LedgerExport, error)
	Download(ctx context.Context, token string) (*service.LedgerDownload, error)
}

// ExportHandler exposes asynchronous ledger exports.
type ExportHandler struct {
	exports ledgerExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports ledgerExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// RequestLedger godoc
// @Summary Queue a ledger export
// @Tags Exports
// @Accept json
// @Produce json
// @Param payload body models.LedgerExportRequest true "Export payload"
// @Success 202 {object} response.Envelope
// @Router /exports/ledger [post]
// @Security BearerAuth
func (h *ExportHandler) RequestLedger(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.LedgerExportRequest
	if !bindJSON(c, &req, "invalid export payload") {
		return
	}
	job, err := h.exports.RequestExport(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Status godoc
// @Summary Get ledger export status
// @Tags Exports
// @Produce json
// @Param id path string true "Export ID"
// @Success 200 {object} response.Envelope
// @Router /exports/ledger/{id} [get]
// @Security BearerAuth
func (h *ExportHandler) Status(c *gin.Context) {
	job, err := h.exports.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Download godoc
// @Summary Download a finished export
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exports/download/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	file, err := h.exports.Download(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Body.Close()

	c.DataFromReader(http.StatusOK, -1, file.ContentType, file.Body, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, file.Filename),
		"Cache-Control":       "no-store",
	})
}
