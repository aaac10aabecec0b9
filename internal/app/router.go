package app

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurochat-backend/internal/http"
	httpH "github.com/yungbote/neurochat-backend/internal/http/handlers"
	"github.com/yungbote/neurochat-backend/internal/observability"
	"github.com/yungbote/neurochat-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) (*gin.Engine, error) {
	tmpl, err := httpH.LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return http.NewRouter(http.RouterConfig{
		Log:             log,
		Metrics:         metrics,
		Templates:       tmpl,
		ServiceName:     serviceName,
		CORSOrigins:     cfg.Server.CORSAllowedOrigins,
		HealthHandler:   handlers.Health,
		AuthHandler:     handlers.Auth,
		AuthMiddleware:  middleware.Auth,
		PageHandler:     handlers.Page,
		ChatHandler:     handlers.Chat,
		MessageHandler:  handlers.Message,
		UploadHandler:   handlers.Upload,
		UserHandler:     handlers.User,
		RealtimeHandler: handlers.Realtime,
	}), nil
}
