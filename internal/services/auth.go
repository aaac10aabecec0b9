package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/neurochat-backend/internal/data/repos"
	types "github.com/yungbote/neurochat-backend/internal/domain"
	"github.com/yungbote/neurochat-backend/internal/platform/ctxutil"
	"github.com/yungbote/neurochat-backend/internal/platform/dbctx"
	"github.com/yungbote/neurochat-backend/internal/platform/logger"
)

const DefaultSessionTTL = 7 * 24 * time.Hour

type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// ClientMeta is recorded on the session row.
type ClientMeta struct {
	UserAgent string
	IP        string
}

type Session struct {
	User      *types.User
	SessionID uuid.UUID
	Token     string
	ExpiresAt time.Time
}

type AuthService interface {
	Register(ctx context.Context, email, password, displayName string, meta ClientMeta) (*Session, error)
	Login(ctx context.Context, email, password string, meta ClientMeta) (*Session, error)
	Logout(ctx context.Context) error
	// Authenticate validates token and its session row and returns ctx carrying the
	// request identity.
	Authenticate(ctx context.Context, token string) (context.Context, error)
	PruneExpired(ctx context.Context) (int64, error)
	SessionTTL() time.Duration
}

type authService struct {
	db         *gorm.DB
	log        *logger.Logger
	users      repos.UserRepo
	sessions   repos.UserSessionRepo
	secret     []byte
	sessionTTL time.Duration
	now        func() time.Time
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	users repos.UserRepo,
	sessions repos.UserSessionRepo,
	secret string,
	sessionTTL time.Duration,
) AuthService {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &authService{
		db:         db,
		log:        log.With("service", "AuthService"),
		users:      users,
		sessions:   sessions,
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

func (as *authService) SessionTTL() time.Duration { return as.sessionTTL }

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (as *authService) Register(ctx context.Context, email, password, displayName string, meta ClientMeta) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var out *Session
	err = inTx(as.db, dbctx.Context{Ctx: ctx}, func(dbc dbctx.Context) error {
		exists, err := as.users.EmailExists(dbc, email)
		if err != nil {
			return err
		}
		if exists {
			return ErrEmailTaken
		}
		u, err := as.users.Create(dbc, &types.User{
			Email:        email,
			PasswordHash: string(hash),
			DisplayName:  displayName,
		})
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailTaken
			}
			return err
		}
		out, err = as.openSession(dbc, u, meta)
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrEmailTaken) {
			as.log.Error("register failed", "error", err)
		}
		return nil, err
	}
	as.log.Info("user registered", "user_id", out.User.ID)
	return out, nil
}

func (as *authService) Login(ctx context.Context, email, password string, meta ClientMeta) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	dbc := dbctx.Context{Ctx: ctx}
	u, err := as.users.GetByEmail(dbc, email)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		as.log.Debug("password mismatch", "user_id", u.ID)
		return nil, ErrInvalidCredentials
	}
	return as.openSession(dbc, u, meta)
}

func (as *authService) Logout(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.SessionID == uuid.Nil {
		return nil
	}
	if err := as.sessions.Revoke(dbctx.Context{Ctx: ctx}, rd.SessionID, as.now().UTC()); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	as.log.Debug("session revoked", "session_id", rd.SessionID)
	return nil
}

func (as *authService) Authenticate(ctx context.Context, token string) (context.Context, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return ctx, ErrUnauthorized
	}
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return as.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(as.now))
	if err != nil || !parsed.Valid {
		return ctx, ErrUnauthorized
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, ErrUnauthorized
	}
	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return ctx, ErrUnauthorized
	}

	sess, err := as.sessions.GetByID(dbctx.Context{Ctx: ctx}, sessionID)
	if err != nil {
		return ctx, fmt.Errorf("load session: %w", err)
	}
	if sess == nil || sess.UserID != userID || !sess.Active(as.now()) {
		return ctx, ErrUnauthorized
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: userID, SessionID: sessionID}), nil
}

func (as *authService) PruneExpired(ctx context.Context) (int64, error) {
	return as.sessions.DeleteExpired(dbctx.Context{Ctx: ctx}, as.now().UTC())
}

func (as *authService) openSession(dbc dbctx.Context, u *types.User, meta ClientMeta) (*Session, error) {
	now := as.now().UTC()
	sess, err := as.sessions.Create(dbc, &types.UserSession{
		UserID:    u.ID,
		ExpiresAt: now.Add(as.sessionTTL),
		UserAgent: meta.UserAgent,
		IP:        meta.IP,
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	claims := SessionClaims{
		SessionID: sess.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(as.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}
	return &Session{User: u, SessionID: sess.ID, Token: signed, ExpiresAt: sess.ExpiresAt}, nil
}
