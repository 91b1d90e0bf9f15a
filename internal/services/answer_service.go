package services

import (
	"sort"

	"github.com/ndonskov/trivia_bot/internal/models"
	apperrors "github.com/ndonskov/trivia_bot/pkg/errors"
	"github.com/ndonskov/trivia_bot/pkg/logger"
)

// ScoringOptions tune how the scoreboard is built. SumAll counts every
// scored submission a team made; when false only the latest submission
// per question counts. UsePoints weights a correct answer by the
// question's point value instead of a flat 1.0.
type ScoringOptions struct {
	SumAll    bool
	UsePoints bool
}

// AnswerService records submissions, grades them and builds the
// scoreboard. Submissions append, reviews overwrite the score in
// place, nothing is ever deleted.
type AnswerService struct {
	answers  AnswerStore
	games    GameStore
	roster   RosterStore
	catalog  CatalogStore
	notifier Notifier
	locks    *GameLocks

	opts ScoringOptions
}

func NewAnswerService(answers AnswerStore, games GameStore, roster RosterStore, catalog CatalogStore, notifier Notifier, locks *GameLocks, opts ScoringOptions) *AnswerService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if locks == nil {
		locks = NewGameLocks()
	}
	return &AnswerService{
		answers:  answers,
		games:    games,
		roster:   roster,
		catalog:  catalog,
		notifier: notifier,
		locks:    locks,
		opts:     opts,
	}
}

// SubmitAnswer records one submission for the question currently being
// asked. A submission naming any other question is rejected as stale.
// Multiple-choice answers are graded on the spot; open answers wait
// for moderator review. The game lock is held from the cursor check
// through the append, so a concurrent advance cannot slip between
// them.
func (s *AnswerService) SubmitAnswer(user *models.User, gameID, questionID uint, text string, optionIndex *int) (*models.Answer, error) {
	defer s.locks.Lock(gameID)()

	game, err := s.games.GetByID(gameID)
	if err != nil {
		return nil, err
	}
	if !game.IsRunning() {
		return nil, apperrors.New(apperrors.ErrCodePrecondition, "game is not accepting answers")
	}
	if game.CurrentQuestionID == nil || *game.CurrentQuestionID != questionID {
		return nil, apperrors.New(apperrors.ErrCodeStaleSubmission, "that question is no longer open")
	}

	membership, err := s.roster.GetMembership(user.ID)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodePrecondition, "you are not in a team")
	}
	inGame, err := s.teamInGame(gameID, membership.TeamID)
	if err != nil {
		return nil, err
	}
	if !inGame {
		return nil, apperrors.New(apperrors.ErrCodePrecondition, "your team is not in this game")
	}

	question, err := s.catalog.GetQuestion(questionID)
	if err != nil {
		return nil, err
	}

	answer := &models.Answer{
		GameID:      gameID,
		QuestionID:  questionID,
		TeamID:      membership.TeamID,
		SubmittedBy: user.ID,
		Text:        text,
	}

	switch question.Type {
	case models.QuestionTypeMultipleChoice:
		opts := question.OptionList()
		if optionIndex == nil || *optionIndex < 0 || *optionIndex >= len(opts) {
			return nil, apperrors.New(apperrors.ErrCodeValidation, "pick one of the offered options")
		}
		answer.OptionIndex = optionIndex
		answer.Text = opts[*optionIndex]
		score := s.gradeChoice(question, *optionIndex)
		answer.Score = &score
	default:
		if text == "" {
			return nil, apperrors.New(apperrors.ErrCodeValidation, "answer text is required")
		}
	}

	if err := s.answers.Create(answer); err != nil {
		return nil, err
	}

	logger.Info("answer submitted", "game_id", gameID, "question_id", questionID, "team_id", membership.TeamID)
	return answer, nil
}

func (s *AnswerService) gradeChoice(question *models.Question, picked int) float64 {
	if question.CorrectOption == nil || picked != *question.CorrectOption {
		return 0
	}
	if s.opts.UsePoints {
		return question.Points
	}
	return 1.0
}

// ReviewAnswer is the moderator verdict on a submission. Reviewing an
// already scored answer overwrites the previous score.
func (s *AnswerService) ReviewAnswer(actor *models.User, answerID uint, correct bool) (*models.Answer, error) {
	answer, err := s.answers.GetByID(answerID)
	if err != nil {
		return nil, err
	}
	defer s.locks.Lock(answer.GameID)()

	game, err := s.games.GetByID(answer.GameID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeReview(actor, game); err != nil {
		return nil, err
	}

	score := 0.0
	if correct {
		score = 1.0
		if s.opts.UsePoints {
			question, err := s.catalog.GetQuestion(answer.QuestionID)
			if err != nil {
				return nil, err
			}
			score = question.Points
		}
	}

	if err := s.answers.SetScore(answerID, score, actor.ID); err != nil {
		return nil, err
	}

	answer, err = s.answers.GetByID(answerID)
	if err != nil {
		return nil, err
	}

	if scoreboard, err := s.GetScoreboard(game.ID); err == nil {
		s.notifier.ScoreboardUpdated(game, scoreboard)
	} else {
		logger.Warn("failed to rebuild scoreboard after review", "game_id", game.ID, "error", err)
	}

	return answer, nil
}

func (s *AnswerService) authorizeReview(actor *models.User, game *models.Game) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}
	if actor.Role == models.RoleModerator && game.ModeratorID == actor.ID {
		return nil
	}
	return apperrors.New(apperrors.ErrCodeUnauthorized, "not the moderator of this game")
}

// PendingReview lists unscored submissions for the question, oldest
// first, for the moderator review flow.
func (s *AnswerService) PendingReview(gameID, questionID uint) ([]models.Answer, error) {
	all, err := s.answers.ListForQuestion(gameID, questionID)
	if err != nil {
		return nil, err
	}
	var pending []models.Answer
	for _, a := range all {
		if !a.IsReviewed() {
			pending = append(pending, a)
		}
	}
	return pending, nil
}

// GetScoreboard totals every team's scored submissions. Teams that
// joined but never scored still appear with zero. Ordering is score
// descending, then team ID ascending so ties are stable.
func (s *AnswerService) GetScoreboard(gameID uint) ([]ScoreboardEntry, error) {
	teams, err := s.games.TeamsOf(gameID)
	if err != nil {
		return nil, err
	}
	answers, err := s.answers.ListForGame(gameID)
	if err != nil {
		return nil, err
	}

	counted := answers
	if !s.opts.SumAll {
		counted = latestPerQuestion(answers)
	}

	totals := make(map[uint]float64)
	answered := make(map[uint]int)
	for _, a := range counted {
		if a.Score == nil {
			continue
		}
		totals[a.TeamID] += *a.Score
		answered[a.TeamID]++
	}

	entries := make([]ScoreboardEntry, 0, len(teams))
	for _, team := range teams {
		entries = append(entries, ScoreboardEntry{
			TeamID:   team.ID,
			TeamName: team.Name,
			Score:    totals[team.ID],
			Answered: answered[team.ID],
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].TeamID < entries[j].TeamID
	})

	return entries, nil
}

func (s *AnswerService) teamInGame(gameID, teamID uint) (bool, error) {
	teams, err := s.games.TeamsOf(gameID)
	if err != nil {
		return false, err
	}
	for _, t := range teams {
		if t.ID == teamID {
			return true, nil
		}
	}
	return false, nil
}

// latestPerQuestion keeps only each team's newest submission per
// question. Answers arrive ordered by creation, so the last row wins.
func latestPerQuestion(answers []models.Answer) []models.Answer {
	type key struct{ teamID, questionID uint }
	latest := make(map[key]models.Answer)
	var order []key
	for _, a := range answers {
		k := key{a.TeamID, a.QuestionID}
		if _, seen := latest[k]; !seen {
			order = append(order, k)
		}
		latest[k] = a
	}
	out := make([]models.Answer, 0, len(order))
	for _, k := range order {
		out = append(out, latest[k])
	}
	return out
}
