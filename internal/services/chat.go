package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/neurochat-backend/internal/data/repos"
	types "github.com/yungbote/neurochat-backend/internal/domain"
	"github.com/yungbote/neurochat-backend/internal/platform/dbctx"
	"github.com/yungbote/neurochat-backend/internal/platform/logger"
)

// ChatService manages chats owned by the requesting user. Chats owned by anyone else
// behave exactly like missing ones.
type ChatService interface {
	Create(dbc dbctx.Context, title string) (*types.Chat, error)
	Rename(dbc dbctx.Context, chatID uuid.UUID, title string) (*types.Chat, error)
	Delete(dbc dbctx.Context, chatID uuid.UUID) error
	List(dbc dbctx.Context) ([]*types.Chat, error)
	GetMessages(dbc dbctx.Context, chatID uuid.UUID) (*types.Chat, []*types.Message, error)
}

type chatService struct {
	db       *gorm.DB
	log      *logger.Logger
	chats    repos.ChatRepo
	messages repos.MessageRepo
	notify   ChatNotifier
}

func NewChatService(db *gorm.DB, log *logger.Logger, chats repos.ChatRepo, messages repos.MessageRepo, notify ChatNotifier) ChatService {
	return &chatService{
		db:       db,
		log:      log.With("service", "ChatService"),
		chats:    chats,
		messages: messages,
		notify:   notify,
	}
}

func (s *chatService) Create(dbc dbctx.Context, title string) (*types.Chat, error) {
	userID, err := requestUserID(dbc)
	if err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = types.DefaultChatTitle
	}
	c, err := s.chats.Create(dbc, &types.Chat{UserID: userID, Title: title})
	if err != nil {
		s.log.Error("create chat failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("create chat: %w", err)
	}
	if s.notify != nil {
		s.notify.ChatCreated(userID, c)
	}
	return c, nil
}

// Rename ignores blank titles and returns the chat unchanged.
func (s *chatService) Rename(dbc dbctx.Context, chatID uuid.UUID, title string) (*types.Chat, error) {
	userID, err := requestUserID(dbc)
	if err != nil {
		return nil, err
	}
	c, err := s.owned(dbc, userID, chatID)
	if err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" || title == c.Title {
		return c, nil
	}
	n, err := s.chats.UpdateTitle(dbc, userID, chatID, title)
	if err != nil {
		return nil, fmt.Errorf("rename chat: %w", err)
	}
	if n == 0 {
		return nil, ErrChatNotFound
	}
	c.Title = title
	if s.notify != nil {
		s.notify.ChatRenamed(userID, c)
	}
	return c, nil
}

func (s *chatService) Delete(dbc dbctx.Context, chatID uuid.UUID) error {
	userID, err := requestUserID(dbc)
	if err != nil {
		return err
	}
	var deleted int64
	err = inTx(s.db, dbc, func(dbc dbctx.Context) error {
		n, err := s.chats.DeleteOwned(dbc, userID, chatID)
		if err != nil {
			return err
		}
		deleted = n
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	if deleted == 0 {
		return ErrChatNotFound
	}
	s.log.Debug("chat deleted", "user_id", userID, "chat_id", chatID)
	if s.notify != nil {
		s.notify.ChatDeleted(userID, chatID)
	}
	return nil
}

func (s *chatService) List(dbc dbctx.Context) ([]*types.Chat, error) {
	userID, err := requestUserID(dbc)
	if err != nil {
		return nil, err
	}
	return s.chats.ListByUser(dbc, userID)
}

func (s *chatService) GetMessages(dbc dbctx.Context, chatID uuid.UUID) (*types.Chat, []*types.Message, error) {
	userID, err := requestUserID(dbc)
	if err != nil {
		return nil, nil, err
	}
	c, err := s.owned(dbc, userID, chatID)
	if err != nil {
		return nil, nil, err
	}
	msgs, err := s.messages.ListByChat(dbc, c.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list messages: %w", err)
	}
	return c, msgs, nil
}

func (s *chatService) owned(dbc dbctx.Context, userID, chatID uuid.UUID) (*types.Chat, error) {
	c, err := s.chats.GetOwned(dbc, userID, chatID)
	if err != nil {
		return nil, fmt.Errorf("load chat: %w", err)
	}
	if c == nil {
		return nil, ErrChatNotFound
	}
	return c, nil
}
