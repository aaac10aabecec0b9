package services

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/neurochat-backend/internal/data/repos"
	types "github.com/yungbote/neurochat-backend/internal/domain"
	"github.com/yungbote/neurochat-backend/internal/platform/dbctx"
	"github.com/yungbote/neurochat-backend/internal/platform/logger"
)

type UserService interface {
	GetMe(dbc dbctx.Context) (*types.User, error)
	// UpdateProfile keeps the current value for any blank argument.
	UpdateProfile(dbc dbctx.Context, displayName, theme string) (*types.User, error)
}

type userService struct {
	db    *gorm.DB
	log   *logger.Logger
	users repos.UserRepo
}

func NewUserService(db *gorm.DB, log *logger.Logger, users repos.UserRepo) UserService {
	return &userService{
		db:    db,
		log:   log.With("service", "UserService"),
		users: users,
	}
}

func (us *userService) GetMe(dbc dbctx.Context) (*types.User, error) {
	userID, err := requestUserID(dbc)
	if err != nil {
		us.log.Warn("Request data not set in context")
		return nil, err
	}
	u, err := us.users.GetByID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, ErrUnauthorized
	}
	return u, nil
}

func (us *userService) UpdateProfile(dbc dbctx.Context, displayName, theme string) (*types.User, error) {
	u, err := us.GetMe(dbc)
	if err != nil {
		return nil, err
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = u.DisplayName
	}
	theme = strings.ToLower(strings.TrimSpace(theme))
	if theme == "" {
		theme = u.Theme
	}
	if !types.ValidTheme(theme) {
		return nil, ErrInvalidTheme
	}
	if displayName == u.DisplayName && theme == u.Theme {
		return u, nil
	}
	if err := us.users.UpdateProfile(dbc, u.ID, displayName, theme); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	u.DisplayName = displayName
	u.Theme = theme
	return u, nil
}
