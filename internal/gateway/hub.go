package gateway

import (
	"sync"

	"github.com/ndonskov/trivia_bot/internal/models"
	"github.com/ndonskov/trivia_bot/internal/services"
	"github.com/ndonskov/trivia_bot/pkg/logger"
)

// Event kinds pushed to websocket spectators.
const (
	EventGameState        = "game_state"
	EventQuestionAdvanced = "question_advanced"
	EventScoreboardUpdate = "scoreboard_update"
	EventPlayerJoined     = "player_joined"
	EventQuizComplete     = "quiz_complete"
)

type Event struct {
	Type    string      `json:"type"`
	GameID  uint        `json:"game_id"`
	Payload interface{} `json:"payload"`
}

type questionPayload struct {
	QuestionID uint     `json:"question_id"`
	RoundTitle string   `json:"round_title"`
	Text       string   `json:"text"`
	Type       string   `json:"question_type"`
	Options    []string `json:"options,omitempty"`
	TimeLimit  int      `json:"time_limit"`
}

type statePayload struct {
	Status string `json:"status"`
}

type playerJoinedPayload struct {
	TeamName string `json:"team_name"`
	Username string `json:"username"`
}

// Hub fans events out to websocket clients grouped into per-game
// rooms. It is the projection-screen side of the system: clients only
// listen, all mutations go through the bot.
type Hub struct {
	mu    sync.RWMutex
	rooms map[uint]map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[uint]map[*client]struct{})}
}

func (h *Hub) join(gameID uint, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[gameID]
	if !ok {
		room = make(map[*client]struct{})
		h.rooms[gameID] = room
	}
	room[c] = struct{}{}
}

func (h *Hub) leave(gameID uint, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[gameID]
	if !ok {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, gameID)
	}
}

// Broadcast delivers the event to every client in the game's room.
// Clients that cannot keep up are dropped rather than blocking the
// game loop.
func (h *Hub) Broadcast(ev Event) {
	h.mu.RLock()
	var stale []*client
	for c := range h.rooms[ev.GameID] {
		select {
		case c.send <- ev:
		default:
			stale = append(stale, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stale {
		logger.Warn("dropping slow websocket client", "game_id", ev.GameID)
		h.leave(ev.GameID, c)
		c.close()
	}
}

// RoomSize reports how many clients watch the game. Used by tests and
// the progress view.
func (h *Hub) RoomSize(gameID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[gameID])
}

// Hub satisfies services.Notifier so it can sit next to the Telegram
// notifier behind the same fan-out.

func (h *Hub) GameStateChanged(game *models.Game) {
	h.Broadcast(Event{Type: EventGameState, GameID: game.ID, Payload: statePayload{Status: game.Status}})
}

func (h *Hub) QuestionAdvanced(game *models.Game, q *models.Question, roundTitle string) {
	h.Broadcast(Event{Type: EventQuestionAdvanced, GameID: game.ID, Payload: questionPayload{
		QuestionID: q.ID,
		RoundTitle: roundTitle,
		Text:       q.Text,
		Type:       q.Type,
		Options:    q.OptionList(),
		TimeLimit:  q.TimeLimit,
	}})
}

func (h *Hub) QuizComplete(game *models.Game, scoreboard []services.ScoreboardEntry) {
	h.Broadcast(Event{Type: EventQuizComplete, GameID: game.ID, Payload: scoreboard})
}

func (h *Hub) PlayerJoined(game *models.Game, team *models.Team, user *models.User) {
	h.Broadcast(Event{Type: EventPlayerJoined, GameID: game.ID, Payload: playerJoinedPayload{
		TeamName: team.Name,
		Username: user.Username,
	}})
}

func (h *Hub) ScoreboardUpdated(game *models.Game, scoreboard []services.ScoreboardEntry) {
	h.Broadcast(Event{Type: EventScoreboardUpdate, GameID: game.ID, Payload: scoreboard})
}

// MultiNotifier forwards each event to every wrapped notifier.
type MultiNotifier []services.Notifier

func (m MultiNotifier) GameStateChanged(game *models.Game) {
	for _, n := range m {
		n.GameStateChanged(game)
	}
}

func (m MultiNotifier) QuestionAdvanced(game *models.Game, q *models.Question, roundTitle string) {
	for _, n := range m {
		n.QuestionAdvanced(game, q, roundTitle)
	}
}

func (m MultiNotifier) QuizComplete(game *models.Game, scoreboard []services.ScoreboardEntry) {
	for _, n := range m {
		n.QuizComplete(game, scoreboard)
	}
}

func (m MultiNotifier) PlayerJoined(game *models.Game, team *models.Team, user *models.User) {
	for _, n := range m {
		n.PlayerJoined(game, team, user)
	}
}

func (m MultiNotifier) ScoreboardUpdated(game *models.Game, scoreboard []services.ScoreboardEntry) {
	for _, n := range m {
		n.ScoreboardUpdated(game, scoreboard)
	}
}
