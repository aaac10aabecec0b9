package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurochat-backend/internal/data/repos"
	"github.com/yungbote/neurochat-backend/internal/data/repos/testutil"
	"github.com/yungbote/neurochat-backend/internal/http/middleware"
	"github.com/yungbote/neurochat-backend/internal/observability"
	"github.com/yungbote/neurochat-backend/internal/platform/llm"
	"github.com/yungbote/neurochat-backend/internal/realtime"
	"github.com/yungbote/neurochat-backend/internal/services"
)

type stubModel struct {
	reply string
	err   error
}

func (m *stubModel) Provider() string { return "stub" }

func (m *stubModel) Generate(ctx context.Context, prompt string) (llm.Reply, error) {
	if m.err != nil {
		return llm.Reply{}, m.err
	}
	return llm.PlainText(m.reply), nil
}

func (m *stubModel) Stream(ctx context.Context, prompt string, onDelta llm.DeltaFunc) (llm.Reply, error) {
	return m.Generate(ctx, prompt)
}

type testEnv struct {
	router  *gin.Engine
	model   *stubModel
	metrics *observability.Metrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := testutil.Logger(t)
	db := testutil.DB(t)

	userRepo := repos.NewUserRepo(db, log)
	sessionRepo := repos.NewUserSessionRepo(db, log)
	chatRepo := repos.NewChatRepo(db, log)
	messageRepo := repos.NewMessageRepo(db, log)

	hub := realtime.NewSSEHub(log)
	notify := services.NewChatNotifier(&services.HubEmitter{Hub: hub})
	model := &stubModel{reply: "hello there"}
	metrics := observability.NewMetrics()

	authService := services.NewAuthService(db, log, userRepo, sessionRepo, "test-secret", 0)
	chatService := services.NewChatService(db, log, chatRepo, messageRepo, notify)
	messageService := services.NewMessageService(db, log, chatRepo, messageRepo, model, notify, services.MessageConfig{ChunkSize: 5})
	uploadService := services.NewUploadService(db, log, chatRepo, messageRepo, services.NewTextExtractor(log, nil, nil), notify)
	userService := services.NewUserService(db, log, userRepo)

	tmpl, err := LoadTemplates()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}

	authH := NewAuthHandler(log, authService, false)
	pageH := NewPageHandler(log, chatService, userService)
	chatH := NewChatHandler(chatService)
	msgH := NewMessageHandler(log, messageService, metrics, services.StreamModeSynthetic)
	uploadH := NewUploadHandler(uploadService, metrics)
	userH := NewUserHandler(userService)

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.GET("/login", authH.ShowLogin)
	r.POST("/login", authH.SubmitLogin)
	r.POST("/register", authH.SubmitRegister)
	r.GET("/logout", authH.LogoutPage)
	r.POST("/api/register", authH.Register)
	r.GET("/healthcheck", NewHealthHandler(db).HealthCheck)

	protected := r.Group("/")
	protected.Use(middleware.NewAuthMiddleware(log, authService).RequireAuth())
	protected.GET("/", pageH.Index)
	protected.POST("/profile", pageH.SubmitProfile)
	protected.POST("/chats", chatH.Create)
	protected.POST("/chats/:id/rename", chatH.Rename)
	protected.DELETE("/chats/:id", chatH.Delete)
	protected.GET("/chats/:id/messages", chatH.Messages)
	protected.POST("/chats/:id/chat", msgH.Chat)
	protected.POST("/chats/:id/send", msgH.Send)
	protected.POST("/upload/:id", uploadH.Upload)
	protected.GET("/api/me", userH.GetMe)
	protected.PATCH("/api/me", userH.UpdateMe)

	return &testEnv{router: r, model: model, metrics: metrics}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doJSON(t *testing.T, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	return e.do(t, method, path, token, body, "application/json")
}

// register creates a user and returns its session token from the cookie.
func (e *testEnv) register(t *testing.T, email string) string {
	t.Helper()
	rec := e.doJSON(t, http.MethodPost, "/api/register", "", gin.H{"email": email, "password": "pw-123456"})
	if rec.Code != http.StatusOK {
		t.Fatalf("register %s: status=%d body=%s", email, rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c.Value
		}
	}
	t.Fatalf("register %s: no session cookie", email)
	return ""
}

func (e *testEnv) createChat(t *testing.T, token, title string) string {
	t.Helper()
	rec := e.doJSON(t, http.MethodPost, "/chats", token, gin.H{"title": title})
	if rec.Code != http.StatusOK {
		t.Fatalf("create chat: status=%d body=%s", rec.Code, rec.Body.String())
	}
	var out struct {
		ChatID string `json:"chat_id"`
	}
	decode(t, rec, &out)
	return out.ChatID
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decode(t, rec, &env)
	return env.Error.Code
}

var errUpstream = errors.New("upstream unavailable")

func sseDataLines(body string) []string {
	var out []string
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "data: ") {
			out = append(out, strings.TrimPrefix(line, "data: "))
		}
	}
	return out
}
