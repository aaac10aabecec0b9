package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/neurochat-backend/internal/platform/logger"
	"github.com/yungbote/neurochat-backend/internal/realtime"
	"github.com/yungbote/neurochat-backend/internal/services"
)

type Services struct {
	Auth      services.AuthService
	User      services.UserService
	Chat      services.ChatService
	Message   services.MessageService
	Upload    services.UploadService
	Extractor services.TextExtractor
	Notifier  services.ChatNotifier
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients, hub *realtime.SSEHub) Services {
	log.Info("Wiring services...")

	var emitter services.SSEEmitter = &services.HubEmitter{Hub: hub}
	if clients.SSEBus != nil {
		emitter = &services.RedisEmitter{Bus: clients.SSEBus, Log: log}
	}
	notify := services.NewChatNotifier(emitter)
	extractor := services.NewTextExtractor(log, clients.GcpVision, clients.GcpDocument)

	return Services{
		Auth:    services.NewAuthService(db, log, reposet.User, reposet.UserSession, cfg.Auth.SecretKey, cfg.SessionTTL()),
		User:    services.NewUserService(db, log, reposet.User),
		Chat:    services.NewChatService(db, log, reposet.Chat, reposet.Message, notify),
		Message: services.NewMessageService(db, log, reposet.Chat, reposet.Message, clients.Model, notify, services.MessageConfig{
			SystemInstruction: cfg.Model.SystemInstruction,
			StreamMode:        cfg.Stream.Mode,
			ChunkSize:         cfg.Stream.ChunkSize,
			ChunkDelay:        cfg.ChunkDelay(),
		}),
		Upload:    services.NewUploadService(db, log, reposet.Chat, reposet.Message, extractor, notify),
		Extractor: extractor,
		Notifier:  notify,
	}
}
