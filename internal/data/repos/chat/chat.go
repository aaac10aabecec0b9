package chat

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurochat-backend/internal/domain"
	"github.com/yungbote/neurochat-backend/internal/platform/dbctx"
	"github.com/yungbote/neurochat-backend/internal/platform/logger"
)

// ChatRepo scopes every lookup and mutation by owner. A chat owned by someone else is
// reported exactly like a missing one.
type ChatRepo interface {
	Create(dbc dbctx.Context, c *types.Chat) (*types.Chat, error)
	GetOwned(dbc dbctx.Context, userID, chatID uuid.UUID) (*types.Chat, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Chat, error)
	UpdateTitle(dbc dbctx.Context, userID, chatID uuid.UUID, title string) (int64, error)
	DeleteOwned(dbc dbctx.Context, userID, chatID uuid.UUID) (int64, error)
}

type chatRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChatRepo(db *gorm.DB, log *logger.Logger) ChatRepo {
	return &chatRepo{db: db, log: log.With("repo", "ChatRepo")}
}

func (r *chatRepo) Create(dbc dbctx.Context, c *types.Chat) (*types.Chat, error) {
	if c == nil || c.UserID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if err := txx.WithContext(dbc.Ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// GetOwned returns nil, nil when the chat does not exist or is not owned by userID.
func (r *chatRepo) GetOwned(dbc dbctx.Context, userID, chatID uuid.UUID) (*types.Chat, error) {
	if userID == uuid.Nil || chatID == uuid.Nil {
		return nil, nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.Chat
	err := txx.WithContext(dbc.Ctx).
		Where("id = ? AND user_id = ?", chatID, userID).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *chatRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Chat, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	out := []*types.Chat{}
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.Chat{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *chatRepo) UpdateTitle(dbc dbctx.Context, userID, chatID uuid.UUID, title string) (int64, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	res := txx.WithContext(dbc.Ctx).
		Model(&types.Chat{}).
		Where("id = ? AND user_id = ?", chatID, userID).
		Update("title", title)
	return res.RowsAffected, res.Error
}

// DeleteOwned removes the chat's messages and then the chat. Run it inside a transaction.
func (r *chatRepo) DeleteOwned(dbc dbctx.Context, userID, chatID uuid.UUID) (int64, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	owned := txx.WithContext(dbc.Ctx).
		Model(&types.Chat{}).
		Select("id").
		Where("id = ? AND user_id = ?", chatID, userID)
	if err := txx.WithContext(dbc.Ctx).
		Where("chat_id IN (?)", owned).
		Delete(&types.Message{}).Error; err != nil {
		return 0, err
	}
	res := txx.WithContext(dbc.Ctx).
		Where("id = ? AND user_id = ?", chatID, userID).
		Delete(&types.Chat{})
	return res.RowsAffected, res.Error
}
