package services

import (
	"github.com/ndonskov/trivia_bot/internal/models"
	apperrors "github.com/ndonskov/trivia_bot/pkg/errors"
	"github.com/ndonskov/trivia_bot/pkg/logger"
	"github.com/ndonskov/trivia_bot/pkg/utils"
)

// RosterService manages teams, memberships and game entry. Teams are
// persistent across games; entering a game records a presence row and
// attaches the team to the game's roster.
type RosterService struct {
	roster   RosterStore
	games    GameStore
	users    UserStore
	notifier Notifier
	locks    *GameLocks

	codeLength int
}

func NewRosterService(roster RosterStore, games GameStore, users UserStore, notifier Notifier, locks *GameLocks, codeLength int) *RosterService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if locks == nil {
		locks = NewGameLocks()
	}
	return &RosterService{
		roster:     roster,
		games:      games,
		users:      users,
		notifier:   notifier,
		locks:      locks,
		codeLength: codeLength,
	}
}

// CreateTeam registers a new team with a fresh join code. The creator
// becomes its first member and captain.
func (s *RosterService) CreateTeam(creator *models.User, name string) (*models.Team, error) {
	if name == "" {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "team name is required")
	}
	if existing, err := s.roster.GetMembership(creator.ID); err == nil && existing != nil {
		return nil, apperrors.New(apperrors.ErrCodeConflict, "you are already in a team")
	}

	code, err := generateUniqueCode(s.codeLength, func(code string) (bool, error) {
		_, err := s.roster.GetTeamByJoinCode(code)
		if err == nil {
			return true, nil
		}
		if apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
			return false, nil
		}
		return false, err
	})
	if err != nil {
		return nil, err
	}

	team := &models.Team{Name: name, JoinCode: code}
	if err := s.roster.CreateTeamWithCaptain(team, creator.ID); err != nil {
		return nil, err
	}

	logger.Info("team created", "team_id", team.ID, "captain_id", creator.ID)
	return team, nil
}

// JoinTeam adds the user to the team behind the join code. A user can
// be in only one team at a time. A team left captainless adopts the
// newcomer.
func (s *RosterService) JoinTeam(user *models.User, code string) (*models.Team, error) {
	team, err := s.roster.GetTeamByJoinCode(utils.NormalizeJoinCode(code))
	if err != nil {
		return nil, err
	}

	if existing, err := s.roster.GetMembership(user.ID); err == nil && existing != nil {
		if existing.TeamID == team.ID {
			return team, nil
		}
		return nil, apperrors.New(apperrors.ErrCodeConflict, "you are already in another team")
	}

	if err := s.roster.AddMember(&models.TeamMember{TeamID: team.ID, UserID: user.ID}); err != nil {
		return nil, err
	}

	if team.CaptainID == nil {
		team.CaptainID = &user.ID
		if err := s.roster.UpdateTeam(team); err != nil {
			return nil, err
		}
	}

	return team, nil
}

// LeaveTeam removes the user from their team. A departing captain
// hands the role to the longest-standing remaining member.
func (s *RosterService) LeaveTeam(user *models.User) error {
	membership, err := s.roster.GetMembership(user.ID)
	if err != nil {
		return err
	}

	team, err := s.roster.GetTeamByID(membership.TeamID)
	if err != nil {
		return err
	}

	if err := s.roster.RemoveMember(team.ID, user.ID); err != nil {
		return err
	}

	if team.CaptainID != nil && *team.CaptainID == user.ID {
		return s.promoteSuccessor(team)
	}
	return nil
}

// RemoveMember ejects a member. Allowed for the team captain and for
// moderators and admins. The captain cannot be removed; captaincy has
// to be transferred first.
func (s *RosterService) RemoveMember(actor *models.User, teamID, userID uint) error {
	team, err := s.roster.GetTeamByID(teamID)
	if err != nil {
		return err
	}

	isCaptain := team.CaptainID != nil && *team.CaptainID == actor.ID
	if !isCaptain && !actor.CanModerate() {
		return apperrors.New(apperrors.ErrCodeUnauthorized, "only the captain or a moderator can remove members")
	}

	if team.CaptainID != nil && *team.CaptainID == userID {
		return apperrors.New(apperrors.ErrCodePrecondition, "transfer captaincy before removing the captain")
	}

	return s.roster.RemoveMember(teamID, userID)
}

func (s *RosterService) promoteSuccessor(team *models.Team) error {
	members, err := s.roster.ListMembers(team.ID)
	if err != nil {
		return err
	}
	if len(members) == 0 {
		team.CaptainID = nil
	} else {
		successor := members[0]
		for _, m := range members[1:] {
			if m.JoinedAt.Before(successor.JoinedAt) {
				successor = m
			}
		}
		team.CaptainID = &successor.UserID
	}
	return s.roster.UpdateTeam(team)
}

// TransferCaptain hands captaincy to another member of the same team.
func (s *RosterService) TransferCaptain(actor *models.User, teamID, newCaptainID uint) error {
	team, err := s.roster.GetTeamByID(teamID)
	if err != nil {
		return err
	}

	isCaptain := team.CaptainID != nil && *team.CaptainID == actor.ID
	if !isCaptain && !actor.CanModerate() {
		return apperrors.New(apperrors.ErrCodeUnauthorized, "only the captain or a moderator can transfer captaincy")
	}

	membership, err := s.roster.GetMembership(newCaptainID)
	if err != nil || membership == nil || membership.TeamID != teamID {
		return apperrors.New(apperrors.ErrCodeValidation, "new captain must be a member of the team")
	}

	team.CaptainID = &newCaptainID
	return s.roster.UpdateTeam(team)
}

// JoinGame enters the user's team into the game behind the join code.
// Joining is allowed while the game is in setup or ready, idempotent
// for repeat joins, and records the user's presence in this game.
func (s *RosterService) JoinGame(user *models.User, gameCode string) (*models.Game, error) {
	game, err := s.games.GetByJoinCode(utils.NormalizeJoinCode(gameCode))
	if err != nil {
		return nil, err
	}
	defer s.locks.Lock(game.ID)()

	// Re-read under the lock so a start that raced the code lookup
	// is seen here.
	game, err = s.games.GetByID(game.ID)
	if err != nil {
		return nil, err
	}
	if !game.IsJoinable() {
		return nil, apperrors.New(apperrors.ErrCodePrecondition, "game is no longer accepting teams")
	}

	membership, err := s.roster.GetMembership(user.ID)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodePrecondition, "join a team before joining a game")
	}
	team, err := s.roster.GetTeamByID(membership.TeamID)
	if err != nil {
		return nil, err
	}

	// Team names double as scoreboard labels, so they have to be
	// unique within one game.
	attached, err := s.games.TeamsOf(game.ID)
	if err != nil {
		return nil, err
	}
	for _, other := range attached {
		if other.ID != team.ID && other.Name == team.Name {
			return nil, apperrors.New(apperrors.ErrCodeValidation, "a team named "+team.Name+" is already in this game")
		}
	}

	if err := s.games.AttachTeam(game.ID, team.ID); err != nil {
		return nil, err
	}
	if err := s.roster.RecordPresence(&models.GamePresence{
		GameID: game.ID,
		UserID: user.ID,
		TeamID: team.ID,
	}); err != nil {
		return nil, err
	}

	s.notifier.PlayerJoined(game, team, user)
	logger.Info("player joined game", "game_id", game.ID, "team_id", team.ID, "user_id", user.ID)
	return game, nil
}

func (s *RosterService) ListMembers(teamID uint) ([]models.TeamMember, error) {
	return s.roster.ListMembers(teamID)
}

func (s *RosterService) TeamByID(teamID uint) (*models.Team, error) {
	return s.roster.GetTeamByID(teamID)
}

// TeamOf returns the team the user currently belongs to.
func (s *RosterService) TeamOf(userID uint) (*models.Team, error) {
	membership, err := s.roster.GetMembership(userID)
	if err != nil {
		return nil, err
	}
	return s.roster.GetTeamByID(membership.TeamID)
}
