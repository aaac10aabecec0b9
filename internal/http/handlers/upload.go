package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurochat-backend/internal/http/response"
	"github.com/yungbote/neurochat-backend/internal/observability"
	"github.com/yungbote/neurochat-backend/internal/platform/apierr"
	"github.com/yungbote/neurochat-backend/internal/services"
)

type UploadHandler struct {
	uploadService services.UploadService
	metrics       *observability.Metrics
}

func NewUploadHandler(uploadService services.UploadService, metrics *observability.Metrics) *UploadHandler {
	return &UploadHandler{uploadService: uploadService, metrics: metrics}
}

// POST /upload/:id
func (h *UploadHandler) Upload(c *gin.Context) {
	chatID, err := parseChatID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	fh, err := c.FormFile("file")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	ext := ""
	if fh != nil {
		ext, _ = services.UploadExt(fh.Filename)
	}
	res, err := h.uploadService.Extract(dbcFrom(c), chatID, fh)
	if err != nil {
		h.metrics.IncUpload(ext, apierr.From(err).Code)
		response.RespondAPIError(c, err)
		return
	}
	h.metrics.IncUpload(ext, "ok")
	response.RespondOK(c, gin.H{"ok": true, "extracted": res.Extracted})
}
