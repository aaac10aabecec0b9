package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurochat-backend/internal/http/middleware"
	"github.com/yungbote/neurochat-backend/internal/http/response"
	"github.com/yungbote/neurochat-backend/internal/platform/apierr"
	"github.com/yungbote/neurochat-backend/internal/platform/logger"
	"github.com/yungbote/neurochat-backend/internal/services"
)

type AuthHandler struct {
	log          *logger.Logger
	authService  services.AuthService
	cookieSecure bool
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		log:          log.With("handler", "AuthHandler"),
		authService:  authService,
		cookieSecure: cookieSecure,
	}
}

type credentialsReq struct {
	Email       string `json:"email" form:"email"`
	Password    string `json:"password" form:"password"`
	DisplayName string `json:"display_name" form:"display_name"`
}

func userPayload(s *services.Session) gin.H {
	return gin.H{
		"id":           s.User.ID,
		"email":        s.User.Email,
		"display_name": s.User.DisplayName,
		"theme":        s.User.Theme,
	}
}

func (ah *AuthHandler) setSessionCookie(c *gin.Context, s *services.Session) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, s.Token, int(ah.authService.SessionTTL().Seconds()), "/", "", ah.cookieSecure, true)
}

func (ah *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", ah.cookieSecure, true)
}

// POST /api/register
func (ah *AuthHandler) Register(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	s, err := ah.authService.Register(c.Request.Context(), req.Email, req.Password, req.DisplayName, clientMeta(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	ah.setSessionCookie(c, s)
	response.RespondOK(c, gin.H{
		"ok":         true,
		"token":      s.Token,
		"expires_at": s.ExpiresAt,
		"user":       userPayload(s),
	})
}

// POST /api/login
func (ah *AuthHandler) Login(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	s, err := ah.authService.Login(c.Request.Context(), req.Email, req.Password, clientMeta(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	ah.setSessionCookie(c, s)
	response.RespondOK(c, gin.H{
		"ok":         true,
		"token":      s.Token,
		"expires_at": s.ExpiresAt,
		"user":       userPayload(s),
	})
}

// POST /api/logout
func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.Logout(c.Request.Context()); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	ah.clearSessionCookie(c)
	response.RespondOK(c, gin.H{"ok": true})
}

// GET /register
func (ah *AuthHandler) ShowRegister(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", gin.H{"Title": "Register"})
}

// POST /register
func (ah *AuthHandler) SubmitRegister(c *gin.Context) {
	var req credentialsReq
	_ = c.ShouldBind(&req)
	s, err := ah.authService.Register(c.Request.Context(), req.Email, req.Password, req.DisplayName, clientMeta(c))
	if err != nil {
		ah.renderFormError(c, "register.html", "Register", req.Email, err)
		return
	}
	ah.setSessionCookie(c, s)
	c.Redirect(http.StatusFound, "/")
}

// GET /login
func (ah *AuthHandler) ShowLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{"Title": "Log in"})
}

// POST /login
func (ah *AuthHandler) SubmitLogin(c *gin.Context) {
	var req credentialsReq
	_ = c.ShouldBind(&req)
	s, err := ah.authService.Login(c.Request.Context(), req.Email, req.Password, clientMeta(c))
	if err != nil {
		ah.renderFormError(c, "login.html", "Log in", req.Email, err)
		return
	}
	ah.setSessionCookie(c, s)
	c.Redirect(http.StatusFound, "/")
}

// GET /logout
func (ah *AuthHandler) LogoutPage(c *gin.Context) {
	if token := middleware.ExtractToken(c); token != "" {
		if ctx, err := ah.authService.Authenticate(c.Request.Context(), token); err == nil {
			if err := ah.authService.Logout(ctx); err != nil {
				ah.log.Warn("logout failed", "error", err)
			}
		}
	}
	ah.clearSessionCookie(c)
	c.Redirect(http.StatusFound, "/login")
}

func (ah *AuthHandler) renderFormError(c *gin.Context, page, title, email string, err error) {
	ae := apierr.From(err)
	msg := ae.Error()
	if ae.Code == "internal" {
		ah.log.Error("auth form failed", "page", page, "error", err)
		msg = "Something went wrong, please try again."
	}
	c.HTML(ae.Status, page, gin.H{
		"Title": title,
		"Error": msg,
		"Email": strings.TrimSpace(email),
	})
}
