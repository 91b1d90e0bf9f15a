package repositories

import (
	"time"

	"github.com/ndonskov/trivia_bot/internal/models"
	"github.com/ndonskov/trivia_bot/pkg/errors"
	"github.com/ndonskov/trivia_bot/pkg/utils"
	"gorm.io/gorm"
)

// GameRepository owns the games table. Status and cursor changes go
// through guarded updates so concurrent moderators cannot double-apply
// a transition.
type GameRepository struct {
	db *gorm.DB
}

func NewGameRepository(db *gorm.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) Create(game *models.Game) error {
	if err := r.db.Create(game).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create game")
	}
	return nil
}

func (r *GameRepository) GetByID(id uint) (*models.Game, error) {
	var game models.Game
	result := r.db.First(&game, id)

	if result.Error == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.ErrCodeNotFound, "game not found")
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get game")
	}

	return &game, nil
}

func (r *GameRepository) GetByJoinCode(code string) (*models.Game, error) {
	var game models.Game
	result := r.db.Where("join_code = ?", utils.NormalizeJoinCode(code)).First(&game)

	if result.Error == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.ErrCodeNotFound, "game not found")
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get game")
	}

	return &game, nil
}

func (r *GameRepository) ListByModerator(moderatorID uint) ([]models.Game, error) {
	var games []models.Game
	err := r.db.Where("moderator_id = ?", moderatorID).
		Order("created_at DESC").
		Find(&games).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to list games")
	}
	return games, nil
}

// Transition flips the status only when the current one is in from.
// The update is a single conditional statement; a zero row count means
// another writer got there first or the game was in the wrong state.
func (r *GameRepository) Transition(gameID uint, from []string, to string) (bool, error) {
	updates := map[string]interface{}{"status": to}
	now := time.Now().UTC()
	switch to {
	case models.GameStatusActive:
		// StartedAt is only stamped on the first activation; resumes
		// keep the original timestamp via COALESCE.
		updates["started_at"] = gorm.Expr("COALESCE(started_at, ?)", now)
	case models.GameStatusFinished:
		updates["finished_at"] = now
		updates["current_question_id"] = nil
	}

	result := r.db.Model(&models.Game{}).
		Where("id = ? AND status IN ?", gameID, from).
		Updates(updates)

	if result.Error != nil {
		return false, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to update game status")
	}
	return result.RowsAffected > 0, nil
}

// SetCurrentQuestion advances the cursor with a compare-and-set on its
// previous value, so only one of two racing advances lands.
func (r *GameRepository) SetCurrentQuestion(gameID uint, from, to *uint) (bool, error) {
	query := r.db.Model(&models.Game{}).
		Where("id = ? AND status = ?", gameID, models.GameStatusActive)
	if from == nil {
		query = query.Where("current_question_id IS NULL")
	} else {
		query = query.Where("current_question_id = ?", *from)
	}

	result := query.Update("current_question_id", to)
	if result.Error != nil {
		return false, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to advance question")
	}
	return result.RowsAffected > 0, nil
}

// AttachTeam adds the team to the game roster, idempotently.
func (r *GameRepository) AttachTeam(gameID, teamID uint) error {
	err := r.db.Exec(
		"INSERT INTO game_teams (game_id, team_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		gameID, teamID,
	).Error
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to attach team to game")
	}
	return nil
}

func (r *GameRepository) TeamsOf(gameID uint) ([]models.Team, error) {
	var teams []models.Team
	err := r.db.
		Joins("JOIN game_teams ON game_teams.team_id = teams.id").
		Where("game_teams.game_id = ?", gameID).
		Order("teams.id ASC").
		Find(&teams).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to list game teams")
	}
	return teams, nil
}
