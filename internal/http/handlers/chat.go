package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurochat-backend/internal/http/response"
	"github.com/yungbote/neurochat-backend/internal/services"
)

type ChatHandler struct {
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

type titleReq struct {
	Title string `json:"title" form:"title"`
}

// POST /chats
func (h *ChatHandler) Create(c *gin.Context) {
	var req titleReq
	// An absent or malformed body creates a chat with the default title.
	_ = c.ShouldBind(&req)
	chat, err := h.chatService.Create(dbcFrom(c), req.Title)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "chat_id": chat.ID, "title": chat.Title})
}

// POST /chats/:id/rename
func (h *ChatHandler) Rename(c *gin.Context) {
	chatID, err := parseChatID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	var req titleReq
	_ = c.ShouldBind(&req)
	chat, err := h.chatService.Rename(dbcFrom(c), chatID, req.Title)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "title": chat.Title})
}

// DELETE /chats/:id
func (h *ChatHandler) Delete(c *gin.Context) {
	chatID, err := parseChatID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if err := h.chatService.Delete(dbcFrom(c), chatID); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// GET /chats/:id/messages
func (h *ChatHandler) Messages(c *gin.Context) {
	chatID, err := parseChatID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	chat, msgs, err := h.chatService.GetMessages(dbcFrom(c), chatID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	out := make([]gin.H, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, gin.H{
			"id":         m.ID,
			"role":       m.Role,
			"content":    m.Content,
			"created_at": m.CreatedAt,
		})
	}
	response.RespondOK(c, gin.H{"messages": out, "title": chat.Title})
}
