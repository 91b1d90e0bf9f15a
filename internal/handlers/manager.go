package handlers

import (
	stderrors "errors"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/ndonskov/trivia_bot/internal/commands"
	"github.com/ndonskov/trivia_bot/internal/config"
	"github.com/ndonskov/trivia_bot/internal/models"
	"github.com/ndonskov/trivia_bot/internal/services"
	apperrors "github.com/ndonskov/trivia_bot/pkg/errors"
	"github.com/ndonskov/trivia_bot/pkg/logger"
)

// BotInterface is the slice of the bot the handlers need. Keeps the
// handlers free of a direct dependency on the telegram package.
type BotInterface interface {
	SendMessage(chatID int64, text string, keyboard interface{}) int
	EditMessage(chatID int64, messageID int, text string, keyboard interface{})
	AnswerCallbackQuery(queryID string, text string, showAlert bool)
}

// Session states for multi-step text input.
const (
	StateIdle          = ""
	StateAwaitTeamName = "await_team_name"
	StateAwaitTeamCode = "await_team_code"
	StateAwaitGameCode = "await_game_code"
)

type UserSession struct {
	State string
	// GameID remembers the game the player last joined, so a bare text
	// message can be routed to it as an open answer.
	GameID uint
}

type HandlerManager struct {
	Config    *config.Config
	Users     services.UserStore
	Catalog   services.CatalogStore
	GameSvc   *services.GameService
	RosterSvc *services.RosterService
	AnswerSvc *services.AnswerService
	AuthSvc   *services.AuthService

	sessions sync.Map // telegram ID -> *UserSession
}

func NewHandlerManager(
	cfg *config.Config,
	users services.UserStore,
	catalog services.CatalogStore,
	gameSvc *services.GameService,
	rosterSvc *services.RosterService,
	answerSvc *services.AnswerService,
	authSvc *services.AuthService,
) *HandlerManager {
	return &HandlerManager{
		Config:    cfg,
		Users:     users,
		Catalog:   catalog,
		GameSvc:   gameSvc,
		RosterSvc: rosterSvc,
		AnswerSvc: answerSvc,
		AuthSvc:   authSvc,
	}
}

func (h *HandlerManager) session(tgID int64) *UserSession {
	v, _ := h.sessions.LoadOrStore(tgID, &UserSession{})
	return v.(*UserSession)
}

// resolveUser upserts the sender so every update has a user row. The
// configured super admin gets the admin role on first contact.
func (h *HandlerManager) resolveUser(from *tgbotapi.User) (*models.User, error) {
	user := &models.User{
		TelegramID: from.ID,
		Username:   from.UserName,
		Role:       models.RolePlayer,
	}
	if h.Config.SuperAdminTgID != 0 && from.ID == h.Config.SuperAdminTgID {
		user.Role = models.RoleAdmin
	}
	if user.Username == "" {
		user.Username = from.FirstName
	}
	if err := h.Users.Upsert(user); err != nil {
		return nil, err
	}
	return user, nil
}

// HandleMessage routes a plain or command message.
func (h *HandlerManager) HandleMessage(message *tgbotapi.Message, bot BotInterface) {
	user, err := h.resolveUser(message.From)
	if err != nil {
		logger.Error("failed to resolve user", "telegram_id", message.From.ID, "error", err)
		bot.SendMessage(message.Chat.ID, "Something went wrong, try again.", nil)
		return
	}

	if message.IsCommand() {
		h.handleCommand(message, user, bot)
		return
	}

	h.handleText(message, user, bot)
}

func (h *HandlerManager) handleCommand(message *tgbotapi.Message, user *models.User, bot BotInterface) {
	chatID := message.Chat.ID

	switch message.Command() {
	case "start":
		h.handleStart(chatID, user, bot)
	case "help":
		h.handleHelp(chatID, user, bot)
	case "newteam":
		h.handleNewTeam(message, user, bot)
	case "jointeam":
		h.handleJoinTeam(message, user, bot)
	case "leaveteam":
		h.handleLeaveTeam(chatID, user, bot)
	case "myteam":
		h.handleMyTeam(chatID, user, bot)
	case "joingame":
		h.handleJoinGame(message, user, bot)
	case "login":
		h.handleLogin(chatID, user, bot)
	case "quizzes":
		h.handleListQuizzes(chatID, user, bot)
	case "newgame":
		h.handleNewGame(message, user, bot)
	case "mygames":
		h.handleMyGames(chatID, user, bot)
	case "progress":
		h.handleProgress(message, user, bot)
	case "review":
		h.handleReview(message, user, bot)
	default:
		bot.SendMessage(chatID, "Unknown command. Try /help.", nil)
	}
}

// HandleCallback decodes an inline button press and dispatches it.
func (h *HandlerManager) HandleCallback(query *tgbotapi.CallbackQuery, bot BotInterface) {
	user, err := h.resolveUser(query.From)
	if err != nil {
		bot.AnswerCallbackQuery(query.ID, "Something went wrong.", true)
		return
	}

	cmd, err := commands.ParseCallback(query.Data)
	if err != nil {
		logger.Warn("unparseable callback", "data", query.Data, "error", err)
		bot.AnswerCallbackQuery(query.ID, "This button has expired.", false)
		return
	}

	switch cmd.Kind {
	case commands.KindMarkReady, commands.KindStartGame, commands.KindPauseGame,
		commands.KindResumeGame, commands.KindEndGame, commands.KindAdvance,
		commands.KindScoreboard, commands.KindReview:
		h.handleModeratorCallback(query, cmd, user, bot)
	case commands.KindPickOption:
		h.handleOptionPick(query, cmd, user, bot)
	default:
		bot.AnswerCallbackQuery(query.ID, "This button has expired.", false)
	}
}

// userMessage turns an error into text safe to show the user.
func userMessage(err error) string {
	var appErr *apperrors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	return "Something went wrong, try again."
}
