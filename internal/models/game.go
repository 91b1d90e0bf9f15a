package models

import (
	"time"

	"gorm.io/gorm"
)

// Game statuses. The lifecycle is linear with a pause loop:
// setup -> ready -> active <-> paused -> finished.
const (
	GameStatusSetup    = "setup"
	GameStatusReady    = "ready"
	GameStatusActive   = "active"
	GameStatusPaused   = "paused"
	GameStatusFinished = "finished"
)

// Game is one run of a quiz, hosted by a moderator, with a roster of
// teams that join by code. CurrentQuestionID is nil until the first
// advance and after the run finishes.
type Game struct {
	ID                uint `gorm:"primaryKey"`
	QuizID            uint `gorm:"not null;index"`
	Quiz              Quiz
	ModeratorID       uint   `gorm:"not null;index"`
	Moderator         User   `gorm:"foreignKey:ModeratorID"`
	Status            string `gorm:"type:varchar(20);default:'setup';index"`
	JoinCode          string `gorm:"type:varchar(6);uniqueIndex;not null"`
	CurrentQuestionID *uint
	CurrentQuestion   *Question `gorm:"foreignKey:CurrentQuestionID"`
	Teams             []Team    `gorm:"many2many:game_teams;"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	StartedAt         *time.Time
	FinishedAt        *time.Time
}

var validGameStatuses = map[string]bool{
	GameStatusSetup:    true,
	GameStatusReady:    true,
	GameStatusActive:   true,
	GameStatusPaused:   true,
	GameStatusFinished: true,
}

func (g *Game) BeforeSave(tx *gorm.DB) error {
	if g.Status == "" {
		g.Status = GameStatusSetup
	}
	if !validGameStatuses[g.Status] {
		return gorm.ErrInvalidData
	}
	if g.JoinCode == "" {
		return gorm.ErrInvalidData
	}
	return nil
}

// IsJoinable reports whether teams may still enter the roster.
func (g *Game) IsJoinable() bool {
	return g.Status == GameStatusSetup || g.Status == GameStatusReady
}

// IsRunning reports whether the game accepts submissions.
func (g *Game) IsRunning() bool {
	return g.Status == GameStatusActive
}

func (Game) TableName() string {
	return "games"
}

// gameTransitions is the allowed edge set of the lifecycle graph.
var gameTransitions = map[string][]string{
	GameStatusSetup:  {GameStatusReady},
	GameStatusReady:  {GameStatusActive},
	GameStatusActive: {GameStatusPaused, GameStatusFinished},
	GameStatusPaused: {GameStatusActive, GameStatusFinished},
}

// CanTransition reports whether moving from one status to another is a
// legal lifecycle edge.
func CanTransition(from, to string) bool {
	for _, next := range gameTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
