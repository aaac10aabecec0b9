package domain

import (
	"github.com/yungbote/neurochat-backend/internal/domain/auth"
	"github.com/yungbote/neurochat-backend/internal/domain/chat"
	"github.com/yungbote/neurochat-backend/internal/domain/user"
)

const (
	DefaultChatTitle   = chat.DefaultTitle
	DefaultDisplayName = user.DefaultDisplayName

	RoleUser      = chat.RoleUser
	RoleAssistant = chat.RoleAssistant

	ThemeDark  = user.ThemeDark
	ThemeLight = user.ThemeLight
)

type User = user.User
type UserSession = auth.UserSession
type Chat = chat.Chat
type Message = chat.Message

var ValidTheme = user.ValidTheme

// Models lists every table in migration order.
func Models() []any {
	return []any{
		&User{},
		&UserSession{},
		&Chat{},
		&Message{},
	}
}
