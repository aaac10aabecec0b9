package chat

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message rows are append-only.
type Message struct {
	ID       uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ChatID   uuid.UUID      `gorm:"type:uuid;not null;index:idx_message_chat_order,priority:1" json:"chat_id"`
	Chat     *Chat          `gorm:"constraint:OnDelete:CASCADE;foreignKey:ChatID;references:ID" json:"-"`
	Seq      int64          `gorm:"not null;index:idx_message_chat_order,priority:3" json:"seq"`
	Role     string         `gorm:"not null;column:role" json:"role"`
	Content  string         `gorm:"type:text;not null;column:content" json:"content"`
	Metadata datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"not null;index:idx_message_chat_order,priority:2" json:"created_at"`
}

func (Message) TableName() string { return "message" }

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
