package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultDisplayName = "User"
	ThemeDark          = "dark"
	ThemeLight         = "light"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	PasswordHash string    `gorm:"not null;column:password_hash" json:"-"`
	DisplayName  string    `gorm:"not null;default:'User';column:display_name" json:"display_name"`
	Theme        string    `gorm:"not null;default:'dark';column:theme" json:"theme"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "user" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.DisplayName == "" {
		u.DisplayName = DefaultDisplayName
	}
	if u.Theme == "" {
		u.Theme = ThemeDark
	}
	return nil
}

func ValidTheme(theme string) bool {
	return theme == ThemeDark || theme == ThemeLight
}
