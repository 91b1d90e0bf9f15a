package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Quiz is the authored content tree: ordered rounds, each with ordered
// questions. A quiz must not be edited once a game referencing it has
// gone active; the games layer treats it as a read-only snapshot.
type Quiz struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"type:varchar(200);not null"`
	Description string `gorm:"type:text"`
	CreatedBy   uint   `gorm:"not null;index"`
	Author      User   `gorm:"foreignKey:CreatedBy"`
	Rounds      []Round
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

type Round struct {
	ID        uint   `gorm:"primaryKey"`
	QuizID    uint   `gorm:"not null;index:idx_round_order,unique"`
	Title     string `gorm:"type:varchar(200);not null"`
	Order     int    `gorm:"column:round_order;not null;index:idx_round_order,unique"`
	Questions []Question
}

func (Round) TableName() string {
	return "rounds"
}

type Question struct {
	ID            uint           `gorm:"primaryKey"`
	RoundID       uint           `gorm:"not null;index:idx_question_order,unique"`
	Text          string         `gorm:"type:text;not null"`
	Type          string         `gorm:"type:varchar(20);default:'open'"`
	Options       datatypes.JSON `gorm:"type:jsonb"`
	CorrectAnswer string         `gorm:"type:text"`
	CorrectOption *int
	Points        float64 `gorm:"default:1.0"`
	TimeLimit     int     `gorm:"default:30"`
	Order         int     `gorm:"column:question_order;not null;index:idx_question_order,unique"`
}

// Question types
const (
	QuestionTypeOpen           = "open"
	QuestionTypeMultipleChoice = "multiple_choice"
)

// Defaults applied when authoring leaves them unset.
const (
	DefaultQuestionPoints    = 1.0
	DefaultQuestionTimeLimit = 30
)

// OptionList decodes the stored options column. Empty for open questions.
func (q *Question) OptionList() []string {
	if len(q.Options) == 0 {
		return nil
	}
	var opts []string
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil
	}
	return opts
}

// SetOptions encodes the option list into the JSON column.
func (q *Question) SetOptions(opts []string) error {
	raw, err := json.Marshal(opts)
	if err != nil {
		return err
	}
	q.Options = datatypes.JSON(raw)
	return nil
}

// BeforeSave enforces the type/options invariants: a multiple-choice
// question must carry options and a correct option index pointing into
// them; an open question carries neither.
func (q *Question) BeforeSave(tx *gorm.DB) error {
	switch q.Type {
	case QuestionTypeMultipleChoice:
		opts := q.OptionList()
		if len(opts) == 0 {
			return gorm.ErrInvalidData
		}
		if q.CorrectOption == nil || *q.CorrectOption < 0 || *q.CorrectOption >= len(opts) {
			return gorm.ErrInvalidData
		}
		if q.CorrectAnswer != "" && q.CorrectAnswer != opts[*q.CorrectOption] {
			return gorm.ErrInvalidData
		}
	case QuestionTypeOpen:
		if q.CorrectOption != nil {
			return gorm.ErrInvalidData
		}
	default:
		return gorm.ErrInvalidData
	}

	if q.Points <= 0 {
		q.Points = DefaultQuestionPoints
	}
	if q.TimeLimit <= 0 {
		q.TimeLimit = DefaultQuestionTimeLimit
	}
	return nil
}

func (Question) TableName() string {
	return "questions"
}
