package handlers

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/ndonskov/trivia_bot/internal/commands"
	"github.com/ndonskov/trivia_bot/internal/models"
	"github.com/ndonskov/trivia_bot/internal/security"
	"github.com/ndonskov/trivia_bot/pkg/logger"
)

func (h *HandlerManager) handleStart(chatID int64, user *models.User, bot BotInterface) {
	text := fmt.Sprintf(
		"Welcome to the quiz, %s!\n\n"+
			"Grab some teammates and get going:\n"+
			"/newteam <name> to found a team\n"+
			"/jointeam <code> to join one\n"+
			"/joingame <code> to enter a game",
		user.Username,
	)
	if user.CanModerate() {
		text += "\n\nYou can host: /quizzes to browse quizzes, /newgame <quiz id> to open a game."
	}
	bot.SendMessage(chatID, text, nil)
}

func (h *HandlerManager) handleHelp(chatID int64, user *models.User, bot BotInterface) {
	var b strings.Builder
	b.WriteString("Player commands:\n")
	b.WriteString("/newteam <name> create a team and become its captain\n")
	b.WriteString("/jointeam <code> join a team\n")
	b.WriteString("/myteam show your team\n")
	b.WriteString("/leaveteam leave your team\n")
	b.WriteString("/joingame <code> enter a game with your team\n")
	b.WriteString("/login get a one-time code for the web scoreboard\n")
	if user.CanModerate() {
		b.WriteString("\nModerator commands:\n")
		b.WriteString("/quizzes list available quizzes\n")
		b.WriteString("/newgame <quiz id> open a game\n")
		b.WriteString("/mygames list your games\n")
		b.WriteString("/progress <game id> where a game stands\n")
		b.WriteString("/review <game id> review pending answers\n")
	}
	bot.SendMessage(chatID, b.String(), nil)
}

func (h *HandlerManager) handleNewTeam(message *tgbotapi.Message, user *models.User, bot BotInterface) {
	chatID := message.Chat.ID
	name := security.SanitizeString(message.CommandArguments())
	if name == "" {
		h.session(user.TelegramID).State = StateAwaitTeamName
		bot.SendMessage(chatID, "What should the team be called?", nil)
		return
	}
	h.createTeam(chatID, user, name, bot)
}

func (h *HandlerManager) createTeam(chatID int64, user *models.User, name string, bot BotInterface) {
	if !security.ValidateTeamName(name) {
		bot.SendMessage(chatID, "Team names must be between 1 and 100 characters.", nil)
		return
	}
	team, err := h.RosterSvc.CreateTeam(user, name)
	if err != nil {
		bot.SendMessage(chatID, userMessage(err), nil)
		return
	}
	bot.SendMessage(chatID, fmt.Sprintf(
		"Team %s is in! You are the captain.\nTeammates join with:\n/jointeam %s",
		team.Name, team.JoinCode,
	), nil)
}

func (h *HandlerManager) handleJoinTeam(message *tgbotapi.Message, user *models.User, bot BotInterface) {
	chatID := message.Chat.ID
	code := strings.TrimSpace(message.CommandArguments())
	if code == "" {
		h.session(user.TelegramID).State = StateAwaitTeamCode
		bot.SendMessage(chatID, "Send me the team code.", nil)
		return
	}
	h.joinTeam(chatID, user, code, bot)
}

func (h *HandlerManager) joinTeam(chatID int64, user *models.User, code string, bot BotInterface) {
	team, err := h.RosterSvc.JoinTeam(user, code)
	if err != nil {
		bot.SendMessage(chatID, userMessage(err), nil)
		return
	}
	bot.SendMessage(chatID, fmt.Sprintf("You are on team %s.", team.Name), nil)
}

func (h *HandlerManager) handleLeaveTeam(chatID int64, user *models.User, bot BotInterface) {
	if err := h.RosterSvc.LeaveTeam(user); err != nil {
		bot.SendMessage(chatID, userMessage(err), nil)
		return
	}
	bot.SendMessage(chatID, "You left the team.", nil)
}

func (h *HandlerManager) handleMyTeam(chatID int64, user *models.User, bot BotInterface) {
	team, err := h.RosterSvc.TeamOf(user.ID)
	if err != nil {
		bot.SendMessage(chatID, "You are not in a team yet. /newteam or /jointeam to fix that.", nil)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Team %s (code %s)\n", team.Name, team.JoinCode)
	members, err := h.RosterSvc.ListMembers(team.ID)
	if err == nil {
		for _, m := range members {
			u, err := h.Users.GetByID(m.UserID)
			if err != nil {
				continue
			}
			line := "• " + u.Username
			if team.CaptainID != nil && *team.CaptainID == u.ID {
				line += " (captain)"
			}
			b.WriteString(line + "\n")
		}
	}
	bot.SendMessage(chatID, b.String(), nil)
}

func (h *HandlerManager) handleJoinGame(message *tgbotapi.Message, user *models.User, bot BotInterface) {
	chatID := message.Chat.ID
	code := strings.TrimSpace(message.CommandArguments())
	if code == "" {
		h.session(user.TelegramID).State = StateAwaitGameCode
		bot.SendMessage(chatID, "Send me the game code.", nil)
		return
	}
	h.joinGame(chatID, user, code, bot)
}

func (h *HandlerManager) joinGame(chatID int64, user *models.User, code string, bot BotInterface) {
	game, err := h.RosterSvc.JoinGame(user, code)
	if err != nil {
		bot.SendMessage(chatID, userMessage(err), nil)
		return
	}
	h.session(user.TelegramID).GameID = game.ID
	bot.SendMessage(chatID, "You're in. Questions will arrive here once the game starts.", nil)
}

func (h *HandlerManager) handleLogin(chatID int64, user *models.User, bot BotInterface) {
	lc, err := h.AuthSvc.IssueLoginCode(user)
	if err != nil {
		bot.SendMessage(chatID, userMessage(err), nil)
		return
	}
	bot.SendMessage(chatID, fmt.Sprintf(
		"Your one-time login code: %s\nIt works once and expires in %d minutes.",
		lc.Code, h.Config.LoginCodeTTLMinutes,
	), nil)
}

// handleText handles non-command messages: multi-step input first,
// then open answers for players inside an active game.
func (h *HandlerManager) handleText(message *tgbotapi.Message, user *models.User, bot BotInterface) {
	chatID := message.Chat.ID
	session := h.session(user.TelegramID)

	switch session.State {
	case StateAwaitTeamName:
		session.State = StateIdle
		h.createTeam(chatID, user, security.SanitizeString(message.Text), bot)
		return
	case StateAwaitTeamCode:
		session.State = StateIdle
		h.joinTeam(chatID, user, message.Text, bot)
		return
	case StateAwaitGameCode:
		session.State = StateIdle
		h.joinGame(chatID, user, message.Text, bot)
		return
	}

	if session.GameID == 0 {
		bot.SendMessage(chatID, "I didn't catch that. Try /help.", nil)
		return
	}

	h.submitOpenAnswer(chatID, user, session.GameID, message.Text, bot)
}

func (h *HandlerManager) submitOpenAnswer(chatID int64, user *models.User, gameID uint, text string, bot BotInterface) {
	game, err := h.GameSvc.GetGame(gameID)
	if err != nil || game.CurrentQuestionID == nil {
		bot.SendMessage(chatID, "There is no open question right now.", nil)
		return
	}

	answer := security.SanitizeString(text)
	if answer == "" {
		bot.SendMessage(chatID, "That answer came out empty after cleanup, try again.", nil)
		return
	}

	if _, err := h.AnswerSvc.SubmitAnswer(user, gameID, *game.CurrentQuestionID, answer, nil); err != nil {
		bot.SendMessage(chatID, userMessage(err), nil)
		return
	}
	bot.SendMessage(chatID, "Answer locked in.", nil)
}

// handleOptionPick handles a multiple-choice button press.
func (h *HandlerManager) handleOptionPick(query *tgbotapi.CallbackQuery, cmd commands.Command, user *models.User, bot BotInterface) {
	idx := cmd.OptionIndex
	answer, err := h.AnswerSvc.SubmitAnswer(user, cmd.GameID, cmd.QuestionID, "", &idx)
	if err != nil {
		bot.AnswerCallbackQuery(query.ID, userMessage(err), true)
		return
	}

	logger.Debug("option picked", "game_id", cmd.GameID, "question_id", cmd.QuestionID, "answer_id", answer.ID)
	bot.AnswerCallbackQuery(query.ID, "Answer locked in: "+answer.Text, false)
}
