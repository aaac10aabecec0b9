package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/neurochat-backend/internal/data/repos"
	"github.com/yungbote/neurochat-backend/internal/platform/logger"
)

type Repos struct {
	User        repos.UserRepo
	UserSession repos.UserSessionRepo
	Chat        repos.ChatRepo
	Message     repos.MessageRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:        repos.NewUserRepo(db, log),
		UserSession: repos.NewUserSessionRepo(db, log),
		Chat:        repos.NewChatRepo(db, log),
		Message:     repos.NewMessageRepo(db, log),
	}
}
