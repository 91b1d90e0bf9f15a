package models

import (
	"time"

	"gorm.io/gorm"
)

// Answer is one submission from a team for a question within a game.
// Rows are append only: a team resubmitting produces a new row, and a
// moderator review updates Score in place but never deletes.
type Answer struct {
	ID          uint   `gorm:"primaryKey"`
	GameID      uint   `gorm:"not null;index:idx_answer_lookup"`
	QuestionID  uint   `gorm:"not null;index:idx_answer_lookup"`
	TeamID      uint   `gorm:"not null;index:idx_answer_lookup"`
	SubmittedBy uint   `gorm:"not null"`
	Text        string `gorm:"type:text"`
	OptionIndex *int
	Score       *float64
	ReviewedBy  *uint
	ReviewedAt  *time.Time
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (a *Answer) BeforeSave(tx *gorm.DB) error {
	if a.GameID == 0 || a.QuestionID == 0 || a.TeamID == 0 || a.SubmittedBy == 0 {
		return gorm.ErrInvalidData
	}
	if a.Text == "" && a.OptionIndex == nil {
		return gorm.ErrInvalidData
	}
	return nil
}

// IsReviewed reports whether the answer has been scored, either by the
// auto grader or by a moderator.
func (a *Answer) IsReviewed() bool {
	return a.Score != nil
}

func (Answer) TableName() string {
	return "answers"
}
