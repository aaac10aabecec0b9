package services

import (
	"context"

	"github.com/google/uuid"

	types "github.com/yungbote/neurochat-backend/internal/domain"
	"github.com/yungbote/neurochat-backend/internal/realtime"
)

// ChatNotifier pushes chat lifecycle events onto the owner's realtime channel.
type ChatNotifier interface {
	ChatCreated(userID uuid.UUID, chat *types.Chat)
	ChatRenamed(userID uuid.UUID, chat *types.Chat)
	ChatDeleted(userID uuid.UUID, chatID uuid.UUID)
	MessageCreated(userID uuid.UUID, chatID uuid.UUID, msg *types.Message)
}

type chatNotifier struct {
	emit SSEEmitter
}

func NewChatNotifier(emit SSEEmitter) ChatNotifier {
	return &chatNotifier{emit: emit}
}

func (n *chatNotifier) send(userID uuid.UUID, event realtime.SSEEvent, data map[string]any) {
	if n == nil || n.emit == nil || userID == uuid.Nil {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: userID.String(),
		Event:   event,
		Data:    data,
	})
}

func (n *chatNotifier) ChatCreated(userID uuid.UUID, chat *types.Chat) {
	n.send(userID, realtime.SSEEventChatCreated, map[string]any{"chat": chat})
}

func (n *chatNotifier) ChatRenamed(userID uuid.UUID, chat *types.Chat) {
	n.send(userID, realtime.SSEEventChatRenamed, map[string]any{"chat": chat})
}

func (n *chatNotifier) ChatDeleted(userID uuid.UUID, chatID uuid.UUID) {
	n.send(userID, realtime.SSEEventChatDeleted, map[string]any{"chat_id": chatID})
}

func (n *chatNotifier) MessageCreated(userID uuid.UUID, chatID uuid.UUID, msg *types.Message) {
	n.send(userID, realtime.SSEEventMessageCreated, map[string]any{"chat_id": chatID, "message": msg})
}
