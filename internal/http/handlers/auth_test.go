package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurochat-backend/internal/http/middleware"
)

func postForm(env *testEnv, path, token string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	return nil
}

func TestRegisterFormSetsCookieAndRedirects(t *testing.T) {
	env := newTestEnv(t)

	rec := postForm(env, "/register", "", url.Values{
		"email":        {"New@Example.com"},
		"password":     {"pw-123456"},
		"display_name": {"Newbie"},
	})
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/" {
		t.Fatalf("want=302 / got=%d %q", rec.Code, rec.Header().Get("Location"))
	}
	c := sessionCookie(rec)
	if c == nil || c.Value == "" || !c.HttpOnly {
		t.Fatalf("session cookie: got=%+v", c)
	}

	me := env.doJSON(t, http.MethodGet, "/api/me", c.Value, nil)
	var out struct {
		Email       string `json:"email"`
		DisplayName string `json:"display_name"`
		Theme       string `json:"theme"`
	}
	decode(t, me, &out)
	if out.Email != "new@example.com" || out.DisplayName != "Newbie" || out.Theme != "dark" {
		t.Fatalf("me: got=%+v", out)
	}
}

func TestLoginFormBadCredentialsRerenders(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@example.com")

	rec := postForm(env, "/login", "", url.Values{"email": {"a@example.com"}, "password": {"wrong"}})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want=401 got=%d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid email or password") {
		t.Fatalf("error not rendered: %s", rec.Body.String())
	}
	if sessionCookie(rec) != nil {
		t.Fatalf("no cookie expected on failed login")
	}

	rec = postForm(env, "/login", "", url.Values{"email": {"a@example.com"}, "password": {"pw-123456"}})
	if rec.Code != http.StatusFound || sessionCookie(rec) == nil {
		t.Fatalf("good login: status=%d", rec.Code)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "a@example.com")

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
		t.Fatalf("want=302 /login got=%d %q", rec.Code, rec.Header().Get("Location"))
	}
	if c := sessionCookie(rec); c == nil || c.MaxAge >= 0 {
		t.Fatalf("cookie should be cleared: %+v", c)
	}

	if rec := env.doJSON(t, http.MethodGet, "/api/me", token, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("revoked token: want=401 got=%d", rec.Code)
	}
}

func TestIndexRedirectsAnonymousBrowser(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
		t.Fatalf("want=302 /login got=%d", rec.Code)
	}
}

func TestDuplicateRegisterIsConflict(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@example.com")
	rec := env.doJSON(t, http.MethodPost, "/api/register", "", gin.H{"email": "A@example.com", "password": "x"})
	if rec.Code != http.StatusConflict || errorCode(t, rec) != "email_taken" {
		t.Fatalf("want=409/email_taken got=%d %s", rec.Code, rec.Body.String())
	}
}
