package http

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/neurochat-backend/internal/http/handlers"
	httpMW "github.com/yungbote/neurochat-backend/internal/http/middleware"
	"github.com/yungbote/neurochat-backend/internal/observability"
	"github.com/yungbote/neurochat-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	Templates   *template.Template
	ServiceName string
	CORSOrigins []string

	AuthHandler     *httpH.AuthHandler
	AuthMiddleware  *httpMW.AuthMiddleware
	PageHandler     *httpH.PageHandler
	ChatHandler     *httpH.ChatHandler
	MessageHandler  *httpH.MessageHandler
	UploadHandler   *httpH.UploadHandler
	UserHandler     *httpH.UserHandler
	RealtimeHandler *httpH.RealtimeHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log, "/healthcheck", "/metrics"))
	}
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
		r.GET("/metrics", func(c *gin.Context) { cfg.Metrics.WriteHTTP(c.Writer, c.Request) })
	}
	if cfg.Templates != nil {
		r.SetHTMLTemplate(cfg.Templates)
	}
	r.StaticFS("/static", httpH.StaticFS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	// Pages (public)
	if cfg.AuthHandler != nil {
		r.GET("/register", cfg.AuthHandler.ShowRegister)
		r.POST("/register", cfg.AuthHandler.SubmitRegister)
		r.GET("/login", cfg.AuthHandler.ShowLogin)
		r.POST("/login", cfg.AuthHandler.SubmitLogin)
		r.GET("/logout", cfg.AuthHandler.LogoutPage)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
		}
	}

	protected := r.Group("/")
	protectedAPI := api.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
		protectedAPI.Use(cfg.AuthMiddleware.RequireAuth())
	}

	// Pages (protected)
	if cfg.PageHandler != nil {
		protected.GET("/", cfg.PageHandler.Index)
		protected.GET("/profile", cfg.PageHandler.ShowProfile)
		protected.POST("/profile", cfg.PageHandler.SubmitProfile)
	}

	// Chats
	if cfg.ChatHandler != nil {
		protected.POST("/chats", cfg.ChatHandler.Create)
		protected.POST("/chats/:id/rename", cfg.ChatHandler.Rename)
		protected.DELETE("/chats/:id", cfg.ChatHandler.Delete)
		protected.GET("/chats/:id/messages", cfg.ChatHandler.Messages)
	}
	if cfg.MessageHandler != nil {
		protected.POST("/chats/:id/chat", cfg.MessageHandler.Chat)
		protected.POST("/chats/:id/send", cfg.MessageHandler.Send)
	}
	if cfg.UploadHandler != nil {
		protected.POST("/upload/:id", cfg.UploadHandler.Upload)
	}

	// Auth (protected)
	if cfg.AuthHandler != nil {
		protectedAPI.POST("/logout", cfg.AuthHandler.Logout)
	}

	// User (Me)
	if cfg.UserHandler != nil {
		protectedAPI.GET("/me", cfg.UserHandler.GetMe)
		protectedAPI.PATCH("/me", cfg.UserHandler.UpdateMe)
	}

	// Realtime (SSE)
	if cfg.RealtimeHandler != nil {
		protectedAPI.GET("/events", cfg.RealtimeHandler.Events)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "not found", "code": "not_found"}})
	})
	return r
}
