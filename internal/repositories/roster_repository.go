package repositories

import (
	"github.com/ndonskov/trivia_bot/internal/models"
	"github.com/ndonskov/trivia_bot/pkg/errors"
	"github.com/ndonskov/trivia_bot/pkg/utils"
	"gorm.io/gorm"
)

type RosterRepository struct {
	db *gorm.DB
}

func NewRosterRepository(db *gorm.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

func (r *RosterRepository) CreateTeam(team *models.Team) error {
	if err := r.db.Create(team).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create team")
	}
	return nil
}

func (r *RosterRepository) CreateTeamWithCaptain(team *models.Team, captainID uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(team).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.TeamMember{TeamID: team.ID, UserID: captainID}).Error; err != nil {
			return err
		}
		team.CaptainID = &captainID
		return tx.Model(team).Update("captain_id", captainID).Error
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create team")
	}
	return nil
}

func (r *RosterRepository) GetTeamByID(id uint) (*models.Team, error) {
	var team models.Team
	result := r.db.First(&team, id)

	if result.Error == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.ErrCodeNotFound, "team not found")
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get team")
	}

	return &team, nil
}

func (r *RosterRepository) GetTeamByJoinCode(code string) (*models.Team, error) {
	var team models.Team
	result := r.db.Where("join_code = ?", utils.NormalizeJoinCode(code)).First(&team)

	if result.Error == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.ErrCodeNotFound, "team not found")
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get team")
	}

	return &team, nil
}

func (r *RosterRepository) UpdateTeam(team *models.Team) error {
	if err := r.db.Save(team).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to update team")
	}
	return nil
}

func (r *RosterRepository) AddMember(member *models.TeamMember) error {
	err := r.db.Create(member).Error
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeConflict, "user is already in a team")
	}
	return nil
}

func (r *RosterRepository) RemoveMember(teamID, userID uint) error {
	result := r.db.Where("team_id = ? AND user_id = ?", teamID, userID).
		Delete(&models.TeamMember{})
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to remove member")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.ErrCodeNotFound, "member not found")
	}
	return nil
}

func (r *RosterRepository) GetMembership(userID uint) (*models.TeamMember, error) {
	var member models.TeamMember
	result := r.db.Where("user_id = ?", userID).First(&member)

	if result.Error == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.ErrCodeNotFound, "membership not found")
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get membership")
	}

	return &member, nil
}

func (r *RosterRepository) ListMembers(teamID uint) ([]models.TeamMember, error) {
	var members []models.TeamMember
	err := r.db.Where("team_id = ?", teamID).
		Order("joined_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to list members")
	}
	return members, nil
}

// RecordPresence upserts on (game, user) so a repeat join is a no-op.
func (r *RosterRepository) RecordPresence(presence *models.GamePresence) error {
	err := r.db.Exec(
		"INSERT INTO game_presences (game_id, user_id, team_id, joined_at) VALUES (?, ?, ?, NOW()) ON CONFLICT (game_id, user_id) DO NOTHING",
		presence.GameID, presence.UserID, presence.TeamID,
	).Error
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to record presence")
	}
	return nil
}

func (r *RosterRepository) ListPresence(gameID uint) ([]models.GamePresence, error) {
	var presence []models.GamePresence
	err := r.db.Where("game_id = ?", gameID).
		Order("joined_at ASC").
		Find(&presence).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to list presence")
	}
	return presence, nil
}
