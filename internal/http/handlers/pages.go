package handlers

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurochat-backend/internal/http/response"
	"github.com/yungbote/neurochat-backend/internal/platform/apierr"
	"github.com/yungbote/neurochat-backend/internal/platform/logger"
	"github.com/yungbote/neurochat-backend/internal/services"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// LoadTemplates parses the page templates for gin's HTML renderer.
func LoadTemplates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

func StaticFS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

type PageHandler struct {
	log         *logger.Logger
	chatService services.ChatService
	userService services.UserService
}

func NewPageHandler(log *logger.Logger, chatService services.ChatService, userService services.UserService) *PageHandler {
	return &PageHandler{
		log:         log.With("handler", "PageHandler"),
		chatService: chatService,
		userService: userService,
	}
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

// GET /
func (h *PageHandler) Index(c *gin.Context) {
	dbc := dbcFrom(c)
	chats, err := h.chatService.List(dbc)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if wantsJSON(c) {
		out := make([]gin.H, 0, len(chats))
		for _, ch := range chats {
			out = append(out, gin.H{"id": ch.ID, "title": ch.Title, "created_at": ch.CreatedAt})
		}
		response.RespondOK(c, gin.H{"chats": out})
		return
	}
	me, err := h.userService.GetMe(dbc)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Title": "Chats",
		"User":  me,
		"Chats": chats,
	})
}

// GET /profile
func (h *PageHandler) ShowProfile(c *gin.Context) {
	me, err := h.userService.GetMe(dbcFrom(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.HTML(http.StatusOK, "profile.html", gin.H{"Title": "Profile", "User": me})
}

// POST /profile
func (h *PageHandler) SubmitProfile(c *gin.Context) {
	dbc := dbcFrom(c)
	me, err := h.userService.UpdateProfile(dbc, c.PostForm("display_name"), c.PostForm("theme"))
	if err == nil {
		c.Redirect(http.StatusFound, "/profile")
		return
	}
	ae := apierr.From(err)
	if ae.Code == "internal" {
		response.RespondAPIError(c, err)
		return
	}
	if me, err = h.userService.GetMe(dbc); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.HTML(ae.Status, "profile.html", gin.H{"Title": "Profile", "User": me, "Error": ae.Error()})
}
