package models

import (
	"time"

	"gorm.io/gorm"
)

// Team is a persistent roster that can be attached to many games over
// time. The captain is always one of its members.
type Team struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"type:varchar(100);not null"`
	JoinCode  string `gorm:"type:varchar(6);uniqueIndex;not null"`
	CaptainID *uint  `gorm:"index"`
	Captain   *User  `gorm:"foreignKey:CaptainID"`
	Members   []TeamMember
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (t *Team) BeforeSave(tx *gorm.DB) error {
	if t.Name == "" || t.JoinCode == "" {
		return gorm.ErrInvalidData
	}
	return nil
}

func (Team) TableName() string {
	return "teams"
}

// TeamMember links a user to a team. A user belongs to at most one
// team at a time, enforced by the unique index on user_id.
type TeamMember struct {
	ID       uint `gorm:"primaryKey"`
	TeamID   uint `gorm:"not null;index"`
	UserID   uint `gorm:"not null;uniqueIndex"`
	User     User
	JoinedAt time.Time `gorm:"autoCreateTime"`
}

func (TeamMember) TableName() string {
	return "team_members"
}

// GamePresence records that a user entered a specific game with their
// team. It is the per-game counterpart of team membership: team rosters
// persist across games, presence is scoped to one.
type GamePresence struct {
	ID       uint      `gorm:"primaryKey"`
	GameID   uint      `gorm:"not null;index:idx_presence_game_user,unique"`
	UserID   uint      `gorm:"not null;index:idx_presence_game_user,unique"`
	TeamID   uint      `gorm:"not null;index"`
	JoinedAt time.Time `gorm:"autoCreateTime"`
}

func (GamePresence) TableName() string {
	return "game_presences"
}
