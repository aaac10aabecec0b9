package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/neurochat-backend/internal/http/response"
	"github.com/yungbote/neurochat-backend/internal/platform/ctxutil"
	"github.com/yungbote/neurochat-backend/internal/platform/logger"
	"github.com/yungbote/neurochat-backend/internal/realtime"
	"github.com/yungbote/neurochat-backend/internal/services"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{log: log.With("handler", "RealtimeHandler"), hub: hub}
}

// GET /api/events
func (h *RealtimeHandler) Events(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondAPIError(c, services.ErrUnauthorized)
		return
	}
	if _, ok := c.Writer.(http.Flusher); !ok {
		response.RespondError(c, http.StatusInternalServerError, "streaming_unsupported", realtime.ErrStreamingUnsupported)
		return
	}

	client := h.hub.NewSSEClient(rd.UserID)
	defer h.hub.CloseClient(client)
	h.hub.AddChannel(client, rd.UserID.String())

	h.log.Debug("events stream open", "user_id", rd.UserID, "client_id", client.ID)
	h.hub.ServeHTTP(c.Writer, c.Request, client)
	h.log.Debug("events stream closed", "user_id", rd.UserID, "client_id", client.ID)
}
