package app

import (
	"gorm.io/gorm"

	httpH "github.com/yungbote/neurochat-backend/internal/http/handlers"
	"github.com/yungbote/neurochat-backend/internal/observability"
	"github.com/yungbote/neurochat-backend/internal/platform/logger"
	"github.com/yungbote/neurochat-backend/internal/realtime"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Auth     *httpH.AuthHandler
	Page     *httpH.PageHandler
	Chat     *httpH.ChatHandler
	Message  *httpH.MessageHandler
	Upload   *httpH.UploadHandler
	User     *httpH.UserHandler
	Realtime *httpH.RealtimeHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, cfg Config, services Services, sseHub *realtime.SSEHub, metrics *observability.Metrics) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(db),
		Auth:     httpH.NewAuthHandler(log, services.Auth, cfg.Server.CookieSecure),
		Page:     httpH.NewPageHandler(log, services.Chat, services.User),
		Chat:     httpH.NewChatHandler(services.Chat),
		Message:  httpH.NewMessageHandler(log, services.Message, metrics, cfg.Stream.Mode),
		Upload:   httpH.NewUploadHandler(services.Upload, metrics),
		User:     httpH.NewUserHandler(services.User),
		Realtime: httpH.NewRealtimeHandler(log, sseHub),
	}
}
