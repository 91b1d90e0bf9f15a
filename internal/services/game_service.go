package services

import (
	"github.com/ndonskov/trivia_bot/internal/models"
	apperrors "github.com/ndonskov/trivia_bot/pkg/errors"
	"github.com/ndonskov/trivia_bot/pkg/logger"
)

// ScoreboardProvider is the slice of the answer service the game
// service needs when a run completes.
type ScoreboardProvider interface {
	GetScoreboard(gameID uint) ([]ScoreboardEntry, error)
}

// GameService drives the game lifecycle: creation, readiness checks,
// start/pause/resume/end and question advancement. Mutations are
// serialized through the shared per-game locks; the store's guarded
// updates back that up across processes.
type GameService struct {
	games    GameStore
	catalog  CatalogStore
	roster   RosterStore
	scores   ScoreboardProvider
	notifier Notifier
	locks    *GameLocks

	codeLength int
}

func NewGameService(games GameStore, catalog CatalogStore, roster RosterStore, scores ScoreboardProvider, notifier Notifier, locks *GameLocks, codeLength int) *GameService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if locks == nil {
		locks = NewGameLocks()
	}
	return &GameService{
		games:      games,
		catalog:    catalog,
		roster:     roster,
		scores:     scores,
		notifier:   notifier,
		locks:      locks,
		codeLength: codeLength,
	}
}

func (s *GameService) lock(gameID uint) func() {
	return s.locks.Lock(gameID)
}

// AdvanceResult is the outcome of AdvanceQuestion: either the next
// question to ask, or completion with the final scoreboard.
type AdvanceResult struct {
	Game       *models.Game
	Question   *models.Question
	RoundTitle string
	Complete   bool
	Scoreboard []ScoreboardEntry
}

// CreateGame opens a new run of the quiz in setup state with a fresh
// join code. Only moderators and admins may host.
func (s *GameService) CreateGame(actor *models.User, quizID uint) (*models.Game, error) {
	if !actor.CanModerate() {
		return nil, apperrors.New(apperrors.ErrCodeUnauthorized, "only moderators can host games")
	}

	if _, err := s.catalog.GetQuiz(quizID); err != nil {
		return nil, err
	}

	code, err := generateUniqueCode(s.codeLength, func(code string) (bool, error) {
		_, err := s.games.GetByJoinCode(code)
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

	game := &models.Game{
		QuizID:      quizID,
		ModeratorID: actor.ID,
		Status:      models.GameStatusSetup,
		JoinCode:    code,
	}
	if err := s.games.Create(game); err != nil {
		return nil, err
	}

	logger.Info("game created", "game_id", game.ID, "quiz_id", quizID, "moderator_id", actor.ID)
	return game, nil
}

func (s *GameService) GetGame(gameID uint) (*models.Game, error) {
	return s.games.GetByID(gameID)
}

func (s *GameService) GetGameByJoinCode(code string) (*models.Game, error) {
	return s.games.GetByJoinCode(code)
}

func (s *GameService) ListByModerator(moderatorID uint) ([]models.Game, error) {
	return s.games.ListByModerator(moderatorID)
}

// authorize checks that the actor may manage this game: admins manage
// any game, moderators only their own.
func (s *GameService) authorize(actor *models.User, game *models.Game) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}
	if actor.Role == models.RoleModerator && game.ModeratorID == actor.ID {
		return nil
	}
	return apperrors.New(apperrors.ErrCodeUnauthorized, "not the moderator of this game")
}

// MarkReady closes the setup phase. It requires at least one team in
// the game, and every team to have members and a captain.
func (s *GameService) MarkReady(actor *models.User, gameID uint) (*models.Game, error) {
	defer s.lock(gameID)()

	game, err := s.games.GetByID(gameID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, game); err != nil {
		return nil, err
	}
	if game.Status != models.GameStatusSetup {
		return nil, apperrors.New(apperrors.ErrCodeInvalidTransition, "game is not in setup")
	}

	teams, err := s.games.TeamsOf(gameID)
	if err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return nil, apperrors.New(apperrors.ErrCodePrecondition, "no teams have joined the game")
	}
	for _, team := range teams {
		members, err := s.roster.ListMembers(team.ID)
		if err != nil {
			return nil, err
		}
		if len(members) == 0 {
			return nil, apperrors.New(apperrors.ErrCodePrecondition, "team "+team.Name+" has no members")
		}
		if team.CaptainID == nil {
			return nil, apperrors.New(apperrors.ErrCodePrecondition, "team "+team.Name+" has no captain")
		}
	}

	return s.transition(gameID, []string{models.GameStatusSetup}, models.GameStatusReady)
}

// StartGame moves a ready game to active and points the cursor at the
// first question of the quiz. A quiz with no questions starts with an
// empty cursor; the first advance then finishes the game.
func (s *GameService) StartGame(actor *models.User, gameID uint) (*models.Game, error) {
	defer s.lock(gameID)()

	game, err := s.games.GetByID(gameID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, game); err != nil {
		return nil, err
	}
	if game.Status != models.GameStatusReady {
		return nil, apperrors.New(apperrors.ErrCodeInvalidTransition, "game cannot move to "+models.GameStatusActive)
	}

	// Rosters can change between ready and start. Every team still
	// needs a captain.
	teams, err := s.games.TeamsOf(gameID)
	if err != nil {
		return nil, err
	}
	for _, team := range teams {
		if team.CaptainID == nil {
			return nil, apperrors.New(apperrors.ErrCodePrecondition, "team "+team.Name+" has no captain")
		}
	}

	quiz, err := s.catalog.GetQuiz(game.QuizID)
	if err != nil {
		return nil, err
	}

	game, err = s.transition(gameID, []string{models.GameStatusReady}, models.GameStatusActive)
	if err != nil {
		return nil, err
	}

	first, roundTitle := nextQuestion(quiz, nil)
	if first == nil {
		return game, nil
	}

	ok, err := s.games.SetCurrentQuestion(gameID, nil, &first.ID)
	if err != nil {
		return nil, err
	}
	if ok {
		if game, err = s.games.GetByID(gameID); err != nil {
			return nil, err
		}
		s.notifier.QuestionAdvanced(game, first, roundTitle)
	}

	return game, nil
}

func (s *GameService) PauseGame(actor *models.User, gameID uint) (*models.Game, error) {
	return s.setStatus(actor, gameID, []string{models.GameStatusActive}, models.GameStatusPaused)
}

func (s *GameService) ResumeGame(actor *models.User, gameID uint) (*models.Game, error) {
	return s.setStatus(actor, gameID, []string{models.GameStatusPaused}, models.GameStatusActive)
}

// EndGame finishes the run early from either active or paused and
// publishes the final scoreboard.
func (s *GameService) EndGame(actor *models.User, gameID uint) (*models.Game, error) {
	defer s.lock(gameID)()

	game, err := s.games.GetByID(gameID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, game); err != nil {
		return nil, err
	}

	game, err = s.transitionQuiet(gameID, []string{models.GameStatusActive, models.GameStatusPaused}, models.GameStatusFinished)
	if err != nil {
		return nil, err
	}

	s.notifyComplete(game)
	return game, nil
}

func (s *GameService) setStatus(actor *models.User, gameID uint, from []string, to string) (*models.Game, error) {
	defer s.lock(gameID)()

	game, err := s.games.GetByID(gameID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, game); err != nil {
		return nil, err
	}

	return s.transition(gameID, from, to)
}

func (s *GameService) transition(gameID uint, from []string, to string) (*models.Game, error) {
	game, err := s.transitionQuiet(gameID, from, to)
	if err != nil {
		return nil, err
	}
	s.notifier.GameStateChanged(game)
	return game, nil
}

func (s *GameService) transitionQuiet(gameID uint, from []string, to string) (*models.Game, error) {
	ok, err := s.games.Transition(gameID, from, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeInvalidTransition, "game cannot move to "+to)
	}
	return s.games.GetByID(gameID)
}

// AdvanceQuestion moves the cursor to the next question in play order:
// the next question of the current round, then the first question of
// the next round. Past the last question the game finishes and the
// final scoreboard goes out. Exactly one of two concurrent advances
// wins; the other gets a conflict.
func (s *GameService) AdvanceQuestion(actor *models.User, gameID uint) (*AdvanceResult, error) {
	defer s.lock(gameID)()

	game, err := s.games.GetByID(gameID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, game); err != nil {
		return nil, err
	}
	if game.Status == models.GameStatusFinished {
		return nil, apperrors.New(apperrors.ErrCodeInvalidTransition, "game is already finished")
	}
	if game.Status != models.GameStatusActive {
		return nil, apperrors.New(apperrors.ErrCodePrecondition, "game is not active")
	}

	quiz, err := s.catalog.GetQuiz(game.QuizID)
	if err != nil {
		return nil, err
	}

	next, roundTitle := nextQuestion(quiz, game.CurrentQuestionID)
	if next == nil {
		game, err = s.transitionQuiet(gameID, []string{models.GameStatusActive}, models.GameStatusFinished)
		if err != nil {
			return nil, err
		}
		scoreboard := s.notifyComplete(game)
		return &AdvanceResult{Game: game, Complete: true, Scoreboard: scoreboard}, nil
	}

	ok, err := s.games.SetCurrentQuestion(gameID, game.CurrentQuestionID, &next.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeConflict, "question was already advanced")
	}

	game, err = s.games.GetByID(gameID)
	if err != nil {
		return nil, err
	}

	s.notifier.QuestionAdvanced(game, next, roundTitle)
	logger.Info("question advanced", "game_id", gameID, "question_id", next.ID)
	return &AdvanceResult{Game: game, Question: next, RoundTitle: roundTitle}, nil
}

func (s *GameService) notifyComplete(game *models.Game) []ScoreboardEntry {
	scoreboard, err := s.scores.GetScoreboard(game.ID)
	if err != nil {
		logger.Warn("failed to build final scoreboard", "game_id", game.ID, "error", err)
		scoreboard = nil
	}
	s.notifier.QuizComplete(game, scoreboard)
	return scoreboard
}

// GetProgress reports where a game stands: current round and question
// position, totals, roster and answer counts.
func (s *GameService) GetProgress(gameID uint) (*Progress, error) {
	game, err := s.games.GetByID(gameID)
	if err != nil {
		return nil, err
	}
	quiz, err := s.catalog.GetQuiz(game.QuizID)
	if err != nil {
		return nil, err
	}

	p := &Progress{
		GameID:         game.ID,
		Status:         game.Status,
		TotalQuestions: countQuestions(quiz),
	}

	if game.CurrentQuestionID != nil {
		asked := 0
	scan:
		for ri, round := range quiz.Rounds {
			for qi, q := range round.Questions {
				asked++
				if q.ID == *game.CurrentQuestionID {
					p.RoundTitle = round.Title
					p.RoundNumber = ri + 1
					p.QuestionNumber = qi + 1
					p.QuestionID = q.ID
					break scan
				}
			}
		}
		p.AskedQuestions = asked
	}

	if teams, err := s.games.TeamsOf(gameID); err == nil {
		p.TeamsInGame = len(teams)
	}

	return p, nil
}

// nextQuestion walks the quiz tree in play order and returns the
// question after current, or the very first question when current is
// nil. Returns nil past the end.
func nextQuestion(quiz *models.Quiz, current *uint) (*models.Question, string) {
	type slot struct {
		q          *models.Question
		roundTitle string
	}
	var flat []slot
	for ri := range quiz.Rounds {
		round := &quiz.Rounds[ri]
		for qi := range round.Questions {
			flat = append(flat, slot{&round.Questions[qi], round.Title})
		}
	}
	if len(flat) == 0 {
		return nil, ""
	}
	if current == nil {
		return flat[0].q, flat[0].roundTitle
	}
	for i, s := range flat {
		if s.q.ID == *current {
			if i+1 < len(flat) {
				return flat[i+1].q, flat[i+1].roundTitle
			}
			return nil, ""
		}
	}
	// Cursor points at a question no longer in the quiz. Restart from
	// the top rather than refusing to advance.
	return flat[0].q, flat[0].roundTitle
}

func countQuestions(quiz *models.Quiz) int {
	n := 0
	for _, r := range quiz.Rounds {
		n += len(r.Questions)
	}
	return n
}
