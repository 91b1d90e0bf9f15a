package services

import (
	"github.com/ndonskov/trivia_bot/internal/models"
)

// Storage interfaces consumed by the services. The gorm repositories
// implement them for postgres; the tests use in-memory fakes.

type UserStore interface {
	GetByID(id uint) (*models.User, error)
	GetByTelegramID(tgID int64) (*models.User, error)
	Upsert(user *models.User) error
}

// CatalogStore serves authored quiz content. GetQuiz returns the full
// tree with rounds and questions in play order.
type CatalogStore interface {
	CreateQuiz(quiz *models.Quiz) error
	GetQuiz(id uint) (*models.Quiz, error)
	GetQuestion(id uint) (*models.Question, error)
	ListQuizzes() ([]models.Quiz, error)
}

type GameStore interface {
	Create(game *models.Game) error
	GetByID(id uint) (*models.Game, error)
	GetByJoinCode(code string) (*models.Game, error)
	ListByModerator(moderatorID uint) ([]models.Game, error)

	// Transition flips the status only when the current status is one
	// of from, reporting whether the row was updated. The store stamps
	// StartedAt on the first move to active and FinishedAt plus a
	// cleared question cursor on the move to finished.
	Transition(gameID uint, from []string, to string) (bool, error)

	// SetCurrentQuestion moves the question cursor, guarded on the
	// cursor still holding from so only one concurrent advance wins.
	SetCurrentQuestion(gameID uint, from, to *uint) (bool, error)

	AttachTeam(gameID, teamID uint) error
	TeamsOf(gameID uint) ([]models.Team, error)
}

type RosterStore interface {
	CreateTeam(team *models.Team) error
	// CreateTeamWithCaptain creates the team, its first membership and
	// the captain assignment as one transaction.
	CreateTeamWithCaptain(team *models.Team, captainID uint) error
	GetTeamByID(id uint) (*models.Team, error)
	GetTeamByJoinCode(code string) (*models.Team, error)
	UpdateTeam(team *models.Team) error

	AddMember(member *models.TeamMember) error
	RemoveMember(teamID, userID uint) error
	GetMembership(userID uint) (*models.TeamMember, error)
	ListMembers(teamID uint) ([]models.TeamMember, error)

	// RecordPresence is an idempotent upsert keyed on (game, user).
	RecordPresence(presence *models.GamePresence) error
	ListPresence(gameID uint) ([]models.GamePresence, error)
}

// AnswerStore is append only: submissions insert, reviews update the
// score in place, nothing deletes.
type AnswerStore interface {
	Create(answer *models.Answer) error
	GetByID(id uint) (*models.Answer, error)
	SetScore(answerID uint, score float64, reviewerID uint) error
	ListForQuestion(gameID, questionID uint) ([]models.Answer, error)
	ListForGame(gameID uint) ([]models.Answer, error)
}

type LoginCodeStore interface {
	Create(code *models.LoginCode) error
	// Consume marks the code used and returns it; a second consume of
	// the same code fails.
	Consume(code string) (*models.LoginCode, error)
}

// ScoreboardEntry is one team's running total, ordered by score
// descending with team ID as the tie break.
type ScoreboardEntry struct {
	TeamID   uint    `json:"team_id"`
	TeamName string  `json:"team_name"`
	Score    float64 `json:"score"`
	Answered int     `json:"answered"`
}

// Progress describes where a running game stands.
type Progress struct {
	GameID          uint   `json:"game_id"`
	Status          string `json:"status"`
	RoundTitle      string `json:"round_title,omitempty"`
	RoundNumber     int    `json:"round_number"`
	QuestionNumber  int    `json:"question_number"`
	QuestionID      uint   `json:"question_id,omitempty"`
	TotalQuestions  int    `json:"total_questions"`
	AskedQuestions  int    `json:"asked_questions"`
	TeamsInGame     int    `json:"teams_in_game"`
	AnswersReceived int    `json:"answers_received"`
}

// Notifier broadcasts game events to players after the state change has
// been committed. Implementations must not fail the calling operation;
// delivery problems are logged and swallowed.
type Notifier interface {
	GameStateChanged(game *models.Game)
	QuestionAdvanced(game *models.Game, question *models.Question, roundTitle string)
	QuizComplete(game *models.Game, scoreboard []ScoreboardEntry)
	PlayerJoined(game *models.Game, team *models.Team, user *models.User)
	ScoreboardUpdated(game *models.Game, scoreboard []ScoreboardEntry)
}

// NopNotifier satisfies Notifier without doing anything. Used in tests
// and as a default until the gateway is wired.
type NopNotifier struct{}

func (NopNotifier) GameStateChanged(*models.Game)                           {}
func (NopNotifier) QuestionAdvanced(*models.Game, *models.Question, string) {}
func (NopNotifier) QuizComplete(*models.Game, []ScoreboardEntry)            {}
func (NopNotifier) PlayerJoined(*models.Game, *models.Team, *models.User)   {}
func (NopNotifier) ScoreboardUpdated(*models.Game, []ScoreboardEntry)       {}
