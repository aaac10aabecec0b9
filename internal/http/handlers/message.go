package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurochat-backend/internal/http/response"
	"github.com/yungbote/neurochat-backend/internal/observability"
	"github.com/yungbote/neurochat-backend/internal/platform/ctxutil"
	"github.com/yungbote/neurochat-backend/internal/platform/llm"
	"github.com/yungbote/neurochat-backend/internal/platform/logger"
	"github.com/yungbote/neurochat-backend/internal/realtime"
	"github.com/yungbote/neurochat-backend/internal/services"
)

const streamErrorEvent = "stream_error"

type MessageHandler struct {
	log            *logger.Logger
	messageService services.MessageService
	metrics        *observability.Metrics
	streamMode     string
}

func NewMessageHandler(log *logger.Logger, messageService services.MessageService, metrics *observability.Metrics, streamMode string) *MessageHandler {
	if streamMode == "" {
		streamMode = services.StreamModeSynthetic
	}
	return &MessageHandler{
		log:            log.With("handler", "MessageHandler"),
		messageService: messageService,
		metrics:        metrics,
		streamMode:     streamMode,
	}
}

type messageReq struct {
	Message string `json:"message" form:"message"`
}

// POST /chats/:id/chat
func (h *MessageHandler) Chat(c *gin.Context) {
	chatID, err := parseChatID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	var req messageReq
	_ = c.ShouldBind(&req)
	res, err := h.messageService.Send(dbcFrom(c), chatID, req.Message)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	out := gin.H{"reply": res.Reply}
	if res.ErrorKind != "" {
		out["model_error"] = string(res.ErrorKind)
	}
	response.RespondOK(c, out)
}

// sseReplyWriter maps a streamed reply onto event-stream frames.
type sseReplyWriter struct {
	stream  *realtime.EventStream
	outcome string
}

func (w *sseReplyWriter) Chunk(text string) error {
	return w.stream.Data(gin.H{"chunk": text})
}

func (w *sseReplyWriter) Done(full string) error {
	w.outcome = "done"
	return w.stream.Data(gin.H{"done": true, "full": full})
}

func (w *sseReplyWriter) Fail(kind llm.ErrorKind) error {
	w.outcome = string(kind)
	return w.stream.Event(streamErrorEvent, gin.H{"fallback": true, "kind": string(kind)})
}

// POST /chats/:id/send
func (h *MessageHandler) Send(c *gin.Context) {
	chatID, err := parseChatID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	var req messageReq
	_ = c.ShouldBind(&req)

	stream, err := realtime.NewEventStream(c.Writer)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "streaming_unsupported", err)
		return
	}
	w := &sseReplyWriter{stream: stream}
	err = h.messageService.Stream(dbcFrom(c), chatID, req.Message, w)
	switch {
	case err == nil:
	case !stream.Started():
		// Validation and ownership failures happen before the first frame.
		w.outcome = "rejected"
		response.RespondAPIError(c, err)
	case c.Request.Context().Err() != nil:
		w.outcome = "client_gone"
	default:
		w.outcome = "aborted"
		h.log.Warn("stream aborted", append([]interface{}{"chat_id", chatID, "error", err}, ctxutil.LogFields(c.Request.Context())...)...)
	}
	h.metrics.IncStream(h.streamMode, w.outcome)
}
