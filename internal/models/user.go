package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID         uint      `gorm:"primaryKey"`
	TelegramID int64     `gorm:"uniqueIndex;not null"`
	Username   string    `gorm:"type:varchar(80);not null"`
	Role       string    `gorm:"type:varchar(20);default:'player';index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// User roles
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RolePlayer    = "player"
)

// CanModerate reports whether the user may perform game-control actions at all.
// Whether they may control a specific game additionally depends on the game's
// assigned moderator.
func (u *User) CanModerate() bool {
	return u.Role == RoleAdmin || u.Role == RoleModerator
}

// BeforeSave validates the role value.
func (u *User) BeforeSave(tx *gorm.DB) error {
	validRoles := map[string]bool{
		RoleAdmin:     true,
		RoleModerator: true,
		RolePlayer:    true,
	}
	if !validRoles[u.Role] {
		return gorm.ErrInvalidData
	}
	return nil
}

func (User) TableName() string {
	return "users"
}

// LoginCode is a one-time code issued through the bot for signing in to
// the admin panel.
type LoginCode struct {
	ID         uint      `gorm:"primaryKey"`
	Code       string    `gorm:"type:varchar(6);uniqueIndex;not null"`
	TelegramID int64     `gorm:"not null;index"`
	IsUsed     bool      `gorm:"default:false"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UsedAt     *time.Time
}

func (LoginCode) TableName() string {
	return "login_codes"
}
