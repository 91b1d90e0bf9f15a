package services

import (
	"sync"
	"time"

	"github.com/ndonskov/trivia_bot/internal/models"
	apperrors "github.com/ndonskov/trivia_bot/pkg/errors"
)

// In-memory store fakes backing the service tests. They mirror the
// guarantees of the gorm repositories: guarded status updates, unique
// membership, idempotent presence.

func errNotFound(what string) error {
	return apperrors.New(apperrors.ErrCodeNotFound, what+" not found")
}

func uintPtrEq(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

type memCatalogStore struct {
	mu      sync.Mutex
	nextID  uint
	quizzes map[uint]*models.Quiz
}

func newMemCatalogStore() *memCatalogStore {
	return &memCatalogStore{quizzes: make(map[uint]*models.Quiz)}
}

func (s *memCatalogStore) CreateQuiz(quiz *models.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	quiz.ID = s.nextID
	s.quizzes[quiz.ID] = quiz
	return nil
}

func (s *memCatalogStore) GetQuiz(id uint) (*models.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[id]
	if !ok {
		return nil, errNotFound("quiz")
	}
	return quiz, nil
}

func (s *memCatalogStore) GetQuestion(id uint) (*models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, quiz := range s.quizzes {
		for ri := range quiz.Rounds {
			for qi := range quiz.Rounds[ri].Questions {
				if quiz.Rounds[ri].Questions[qi].ID == id {
					return &quiz.Rounds[ri].Questions[qi], nil
				}
			}
		}
	}
	return nil, errNotFound("question")
}

func (s *memCatalogStore) ListQuizzes() ([]models.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Quiz, 0, len(s.quizzes))
	for _, q := range s.quizzes {
		out = append(out, *q)
	}
	return out, nil
}

type memUserStore struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[uint]*models.User)}
}

func (s *memUserStore) GetByID(id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, errNotFound("user")
	}
	cp := *u
	return &cp, nil
}

func (s *memUserStore) GetByTelegramID(tgID int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.TelegramID == tgID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, errNotFound("user")
}

func (s *memUserStore) Upsert(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == 0 {
		s.nextID++
		user.ID = s.nextID
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

type memRosterStore struct {
	mu       sync.Mutex
	nextID   uint
	teams    map[uint]*models.Team
	byCode   map[string]uint
	members  map[uint]*models.TeamMember // keyed by user ID
	presence map[[2]uint]*models.GamePresence
}

func newMemRosterStore() *memRosterStore {
	return &memRosterStore{
		teams:    make(map[uint]*models.Team),
		byCode:   make(map[string]uint),
		members:  make(map[uint]*models.TeamMember),
		presence: make(map[[2]uint]*models.GamePresence),
	}
}

func (s *memRosterStore) CreateTeam(team *models.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byCode[team.JoinCode]; taken {
		return apperrors.New(apperrors.ErrCodeAlreadyExists, "join code in use")
	}
	s.nextID++
	team.ID = s.nextID
	cp := *team
	s.teams[team.ID] = &cp
	s.byCode[team.JoinCode] = team.ID
	return nil
}

func (s *memRosterStore) CreateTeamWithCaptain(team *models.Team, captainID uint) error {
	if err := s.CreateTeam(team); err != nil {
		return err
	}
	if err := s.AddMember(&models.TeamMember{TeamID: team.ID, UserID: captainID}); err != nil {
		return err
	}
	team.CaptainID = &captainID
	return s.UpdateTeam(team)
}

func (s *memRosterStore) GetTeamByID(id uint) (*models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	team, ok := s.teams[id]
	if !ok {
		return nil, errNotFound("team")
	}
	cp := *team
	return &cp, nil
}

func (s *memRosterStore) GetTeamByJoinCode(code string) (*models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byCode[code]
	if !ok {
		return nil, errNotFound("team")
	}
	cp := *s.teams[id]
	return &cp, nil
}

func (s *memRosterStore) UpdateTeam(team *models.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.teams[team.ID]; !ok {
		return errNotFound("team")
	}
	cp := *team
	s.teams[team.ID] = &cp
	return nil
}

func (s *memRosterStore) AddMember(member *models.TeamMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.members[member.UserID]; exists {
		return apperrors.New(apperrors.ErrCodeAlreadyExists, "user already in a team")
	}
	s.nextID++
	member.ID = s.nextID
	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now()
	}
	cp := *member
	s.members[member.UserID] = &cp
	return nil
}

func (s *memRosterStore) RemoveMember(teamID, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[userID]
	if !ok || m.TeamID != teamID {
		return errNotFound("member")
	}
	delete(s.members, userID)
	return nil
}

func (s *memRosterStore) GetMembership(userID uint) (*models.TeamMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[userID]
	if !ok {
		return nil, errNotFound("membership")
	}
	cp := *m
	return &cp, nil
}

func (s *memRosterStore) ListMembers(teamID uint) ([]models.TeamMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.TeamMember
	for _, m := range s.members {
		if m.TeamID == teamID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *memRosterStore) RecordPresence(p *models.GamePresence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]uint{p.GameID, p.UserID}
	if _, exists := s.presence[key]; exists {
		return nil
	}
	s.nextID++
	p.ID = s.nextID
	p.JoinedAt = time.Now()
	cp := *p
	s.presence[key] = &cp
	return nil
}

func (s *memRosterStore) ListPresence(gameID uint) ([]models.GamePresence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.GamePresence
	for _, p := range s.presence {
		if p.GameID == gameID {
			out = append(out, *p)
		}
	}
	return out, nil
}

type memGameStore struct {
	mu     sync.Mutex
	nextID uint
	games  map[uint]*models.Game
	byCode map[string]uint
	teams  map[uint][]uint // gameID -> teamIDs
	roster *memRosterStore
}

func newMemGameStore(roster *memRosterStore) *memGameStore {
	return &memGameStore{
		games:  make(map[uint]*models.Game),
		byCode: make(map[string]uint),
		teams:  make(map[uint][]uint),
		roster: roster,
	}
}

func (s *memGameStore) Create(game *models.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byCode[game.JoinCode]; taken {
		return apperrors.New(apperrors.ErrCodeAlreadyExists, "join code in use")
	}
	s.nextID++
	game.ID = s.nextID
	game.CreatedAt = time.Now()
	cp := *game
	s.games[game.ID] = &cp
	s.byCode[game.JoinCode] = game.ID
	return nil
}

func (s *memGameStore) GetByID(id uint) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	if !ok {
		return nil, errNotFound("game")
	}
	cp := *game
	return &cp, nil
}

func (s *memGameStore) GetByJoinCode(code string) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byCode[code]
	if !ok {
		return nil, errNotFound("game")
	}
	cp := *s.games[id]
	return &cp, nil
}

func (s *memGameStore) ListByModerator(moderatorID uint) ([]models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Game
	for _, g := range s.games {
		if g.ModeratorID == moderatorID {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (s *memGameStore) Transition(gameID uint, from []string, to string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[gameID]
	if !ok {
		return false, errNotFound("game")
	}
	matched := false
	for _, f := range from {
		if game.Status == f {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}
	game.Status = to
	now := time.Now()
	if to == models.GameStatusActive && game.StartedAt == nil {
		game.StartedAt = &now
	}
	if to == models.GameStatusFinished {
		game.FinishedAt = &now
		game.CurrentQuestionID = nil
	}
	return true, nil
}

func (s *memGameStore) SetCurrentQuestion(gameID uint, from, to *uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[gameID]
	if !ok {
		return false, errNotFound("game")
	}
	if game.Status != models.GameStatusActive {
		return false, nil
	}
	if !uintPtrEq(game.CurrentQuestionID, from) {
		return false, nil
	}
	game.CurrentQuestionID = to
	return true, nil
}

func (s *memGameStore) AttachTeam(gameID, teamID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[gameID]; !ok {
		return errNotFound("game")
	}
	for _, id := range s.teams[gameID] {
		if id == teamID {
			return nil
		}
	}
	s.teams[gameID] = append(s.teams[gameID], teamID)
	return nil
}

func (s *memGameStore) TeamsOf(gameID uint) ([]models.Team, error) {
	s.mu.Lock()
	ids := append([]uint(nil), s.teams[gameID]...)
	s.mu.Unlock()

	out := make([]models.Team, 0, len(ids))
	for _, id := range ids {
		team, err := s.roster.GetTeamByID(id)
		if err != nil {
			return nil, err
		}
		out = append(out, *team)
	}
	return out, nil
}

type memAnswerStore struct {
	mu      sync.Mutex
	nextID  uint
	answers []*models.Answer
}

func newMemAnswerStore() *memAnswerStore {
	return &memAnswerStore{}
}

func (s *memAnswerStore) Create(answer *models.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	answer.ID = s.nextID
	answer.CreatedAt = time.Now()
	cp := *answer
	s.answers = append(s.answers, &cp)
	return nil
}

func (s *memAnswerStore) GetByID(id uint) (*models.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.answers {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, errNotFound("answer")
}

func (s *memAnswerStore) SetScore(answerID uint, score float64, reviewerID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.answers {
		if a.ID == answerID {
			now := time.Now()
			a.Score = &score
			a.ReviewedBy = &reviewerID
			a.ReviewedAt = &now
			return nil
		}
	}
	return errNotFound("answer")
}

func (s *memAnswerStore) ListForQuestion(gameID, questionID uint) ([]models.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Answer
	for _, a := range s.answers {
		if a.GameID == gameID && a.QuestionID == questionID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *memAnswerStore) ListForGame(gameID uint) ([]models.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Answer
	for _, a := range s.answers {
		if a.GameID == gameID {
			out = append(out, *a)
		}
	}
	return out, nil
}

type memLoginCodeStore struct {
	mu    sync.Mutex
	codes map[string]*models.LoginCode
}

func newMemLoginCodeStore() *memLoginCodeStore {
	return &memLoginCodeStore{codes: make(map[string]*models.LoginCode)}
}

func (s *memLoginCodeStore) Create(code *models.LoginCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.codes[code.Code]; exists {
		return apperrors.New(apperrors.ErrCodeAlreadyExists, "code in use")
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now()
	}
	cp := *code
	s.codes[code.Code] = &cp
	return nil
}

func (s *memLoginCodeStore) Consume(code string) (*models.LoginCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lc, ok := s.codes[code]
	if !ok || lc.IsUsed {
		return nil, apperrors.New(apperrors.ErrCodeNotFound, "login code is invalid or already used")
	}
	now := time.Now()
	lc.IsUsed = true
	lc.UsedAt = &now
	cp := *lc
	return &cp, nil
}

// recordingNotifier counts events for assertions.
type recordingNotifier struct {
	mu               sync.Mutex
	stateChanges     []string
	questionsAsked   []uint
	completeCount    int
	playerJoins      int
	scoreboardPushes int
}

func (n *recordingNotifier) GameStateChanged(game *models.Game) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stateChanges = append(n.stateChanges, game.Status)
}

func (n *recordingNotifier) QuestionAdvanced(game *models.Game, q *models.Question, roundTitle string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.questionsAsked = append(n.questionsAsked, q.ID)
}

func (n *recordingNotifier) QuizComplete(game *models.Game, scoreboard []ScoreboardEntry) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completeCount++
}

func (n *recordingNotifier) PlayerJoined(game *models.Game, team *models.Team, user *models.User) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.playerJoins++
}

func (n *recordingNotifier) ScoreboardUpdated(game *models.Game, scoreboard []ScoreboardEntry) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.scoreboardPushes++
}
