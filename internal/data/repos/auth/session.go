package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurochat-backend/internal/domain"
	"github.com/yungbote/neurochat-backend/internal/platform/dbctx"
	"github.com/yungbote/neurochat-backend/internal/platform/logger"
)

type UserSessionRepo interface {
	Create(dbc dbctx.Context, s *types.UserSession) (*types.UserSession, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.UserSession, error)
	Revoke(dbc dbctx.Context, id uuid.UUID, at time.Time) error
	DeleteExpired(dbc dbctx.Context, before time.Time) (int64, error)
}

type userSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserSessionRepo(db *gorm.DB, baseLog *logger.Logger) UserSessionRepo {
	return &userSessionRepo{db: db, log: baseLog.With("repo", "UserSessionRepo")}
}

func (r *userSessionRepo) Create(dbc dbctx.Context, s *types.UserSession) (*types.UserSession, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if err := txx.WithContext(dbc.Ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID returns nil, nil when no row matches.
func (r *userSessionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.UserSession, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.UserSession
	err := txx.WithContext(dbc.Ctx).Where("id = ?", id).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userSessionRepo) Revoke(dbc dbctx.Context, id uuid.UUID, at time.Time) error {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&types.UserSession{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", at).Error
}

func (r *userSessionRepo) DeleteExpired(dbc dbctx.Context, before time.Time) (int64, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	res := txx.WithContext(dbc.Ctx).
		Where("expires_at < ?", before).
		Delete(&types.UserSession{})
	return res.RowsAffected, res.Error
}
