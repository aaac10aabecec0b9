package chat

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurochat-backend/internal/domain"
	"github.com/yungbote/neurochat-backend/internal/platform/dbctx"
	"github.com/yungbote/neurochat-backend/internal/platform/logger"
)

type MessageRepo interface {
	// Append assigns the next seq for the chat and inserts the row. Run it inside a
	// transaction so the seq read and the insert are atomic.
	Append(dbc dbctx.Context, m *types.Message) (*types.Message, error)
	GetMaxSeq(dbc dbctx.Context, chatID uuid.UUID) (int64, error)
	ListByChat(dbc dbctx.Context, chatID uuid.UUID) ([]*types.Message, error)
	CountByChat(dbc dbctx.Context, chatID uuid.UUID) (int64, error)
}

type messageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMessageRepo(db *gorm.DB, log *logger.Logger) MessageRepo {
	return &messageRepo{db: db, log: log.With("repo", "MessageRepo")}
}

func (r *messageRepo) Append(dbc dbctx.Context, m *types.Message) (*types.Message, error) {
	if m == nil || m.ChatID == uuid.Nil {
		return nil, fmt.Errorf("missing chat_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	maxSeq, err := r.GetMaxSeq(dbctx.Context{Ctx: dbc.Ctx, Tx: txx}, m.ChatID)
	if err != nil {
		return nil, err
	}
	m.Seq = maxSeq + 1
	if err := txx.WithContext(dbc.Ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

func (r *messageRepo) GetMaxSeq(dbc dbctx.Context, chatID uuid.UUID) (int64, error) {
	if chatID == uuid.Nil {
		return 0, fmt.Errorf("missing chat_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var maxSeq int64
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.Message{}).
		Select("COALESCE(MAX(seq), 0)").
		Where("chat_id = ?", chatID).
		Scan(&maxSeq).Error; err != nil {
		return 0, err
	}
	return maxSeq, nil
}

// ListByChat returns the full history in conversation order.
func (r *messageRepo) ListByChat(dbc dbctx.Context, chatID uuid.UUID) ([]*types.Message, error) {
	if chatID == uuid.Nil {
		return nil, fmt.Errorf("missing chat_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	out := []*types.Message{}
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.Message{}).
		Where("chat_id = ?", chatID).
		Order("created_at ASC").
		Order("seq ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *messageRepo) CountByChat(dbc dbctx.Context, chatID uuid.UUID) (int64, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var n int64
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.Message{}).
		Where("chat_id = ?", chatID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
