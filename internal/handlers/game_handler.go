package handlers

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/ndonskov/trivia_bot/internal/commands"
	"github.com/ndonskov/trivia_bot/internal/models"
	"github.com/ndonskov/trivia_bot/internal/services"
)

func (h *HandlerManager) handleListQuizzes(chatID int64, user *models.User, bot BotInterface) {
	if !user.CanModerate() {
		bot.SendMessage(chatID, "Hosting is for moderators.", nil)
		return
	}

	quizzes, err := h.Catalog.ListQuizzes()
	if err != nil {
		bot.SendMessage(chatID, userMessage(err), nil)
		return
	}
	if len(quizzes) == 0 {
		bot.SendMessage(chatID, "No quizzes in the catalog yet.", nil)
		return
	}

	var b strings.Builder
	b.WriteString("Quizzes:\n")
	for _, q := range quizzes {
		fmt.Fprintf(&b, "%d. %s\n", q.ID, q.Title)
	}
	b.WriteString("\n/newgame <quiz id> to host one.")
	bot.SendMessage(chatID, b.String(), nil)
}

func (h *HandlerManager) handleNewGame(message *tgbotapi.Message, user *models.User, bot BotInterface) {
	chatID := message.Chat.ID

	quizID, err := strconv.ParseUint(strings.TrimSpace(message.CommandArguments()), 10, 32)
	if err != nil || quizID == 0 {
		bot.SendMessage(chatID, "Usage: /newgame <quiz id>. See /quizzes for the list.", nil)
		return
	}

	game, err := h.GameSvc.CreateGame(user, uint(quizID))
	if err != nil {
		bot.SendMessage(chatID, userMessage(err), nil)
		return
	}

	text := fmt.Sprintf(
		"Game opened!\n\nTeams join with:\n/joingame %s\n\nMark it ready once everyone is in.",
		game.JoinCode,
	)
	bot.SendMessage(chatID, text, ModeratorKeyboard(game))
}

func (h *HandlerManager) handleMyGames(chatID int64, user *models.User, bot BotInterface) {
	if !user.CanModerate() {
		bot.SendMessage(chatID, "Hosting is for moderators.", nil)
		return
	}

	games, err := h.GameSvc.ListByModerator(user.ID)
	if err != nil {
		bot.SendMessage(chatID, userMessage(err), nil)
		return
	}
	if len(games) == 0 {
		bot.SendMessage(chatID, "You have no games yet. /newgame <quiz id> opens one.", nil)
		return
	}

	var b strings.Builder
	b.WriteString("Your games:\n")
	for _, g := range games {
		fmt.Fprintf(&b, "#%d  code %s  %s\n", g.ID, g.JoinCode, g.Status)
	}
	b.WriteString("\n/progress <game id> for details.")
	bot.SendMessage(chatID, b.String(), nil)
}

func (h *HandlerManager) handleProgress(message *tgbotapi.Message, user *models.User, bot BotInterface) {
	chatID := message.Chat.ID
	gameID, err := strconv.ParseUint(strings.TrimSpace(message.CommandArguments()), 10, 32)
	if err != nil || gameID == 0 {
		bot.SendMessage(chatID, "Usage: /progress <game id>", nil)
		return
	}

	game, err := h.GameSvc.GetGame(uint(gameID))
	if err != nil {
		bot.SendMessage(chatID, userMessage(err), nil)
		return
	}

	p, err := h.GameSvc.GetProgress(game.ID)
	if err != nil {
		bot.SendMessage(chatID, userMessage(err), nil)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Game #%d (%s)\n", p.GameID, p.Status)
	if p.QuestionID != 0 {
		fmt.Fprintf(&b, "On %s, question %d (%d of %d overall)\n",
			p.RoundTitle, p.QuestionNumber, p.AskedQuestions, p.TotalQuestions)
	} else {
		fmt.Fprintf(&b, "%d questions queued\n", p.TotalQuestions)
	}
	fmt.Fprintf(&b, "%d teams in the game\n", p.TeamsInGame)

	bot.SendMessage(chatID, b.String(), ModeratorKeyboard(game))
}

// handleReview sends the unscored answers for the current question,
// each with accept and reject buttons.
func (h *HandlerManager) handleReview(message *tgbotapi.Message, user *models.User, bot BotInterface) {
	chatID := message.Chat.ID
	gameID, err := strconv.ParseUint(strings.TrimSpace(message.CommandArguments()), 10, 32)
	if err != nil || gameID == 0 {
		bot.SendMessage(chatID, "Usage: /review <game id>", nil)
		return
	}

	game, err := h.GameSvc.GetGame(uint(gameID))
	if err != nil {
		bot.SendMessage(chatID, userMessage(err), nil)
		return
	}
	if game.CurrentQuestionID == nil {
		bot.SendMessage(chatID, "No question is open in that game.", nil)
		return
	}

	pending, err := h.AnswerSvc.PendingReview(game.ID, *game.CurrentQuestionID)
	if err != nil {
		bot.SendMessage(chatID, userMessage(err), nil)
		return
	}
	if len(pending) == 0 {
		bot.SendMessage(chatID, "Nothing waiting for review.", nil)
		return
	}

	for _, answer := range pending {
		teamName := fmt.Sprintf("team %d", answer.TeamID)
		if team, err := h.RosterSvc.TeamByID(answer.TeamID); err == nil {
			teamName = team.Name
		}
		text := fmt.Sprintf("%s answered:\n\n%s", teamName, answer.Text)
		bot.SendMessage(chatID, text, ReviewKeyboard(game.ID, answer.ID))
	}
}

// handleModeratorCallback executes a control-panel button press.
func (h *HandlerManager) handleModeratorCallback(query *tgbotapi.CallbackQuery, cmd commands.Command, user *models.User, bot BotInterface) {
	chatID := query.Message.Chat.ID

	var (
		game *models.Game
		err  error
	)

	switch cmd.Kind {
	case commands.KindMarkReady:
		game, err = h.GameSvc.MarkReady(user, cmd.GameID)
	case commands.KindStartGame:
		game, err = h.GameSvc.StartGame(user, cmd.GameID)
	case commands.KindPauseGame:
		game, err = h.GameSvc.PauseGame(user, cmd.GameID)
	case commands.KindResumeGame:
		game, err = h.GameSvc.ResumeGame(user, cmd.GameID)
	case commands.KindEndGame:
		game, err = h.GameSvc.EndGame(user, cmd.GameID)
	case commands.KindAdvance:
		h.advance(query, cmd, user, bot)
		return
	case commands.KindScoreboard:
		h.sendScoreboard(query, cmd, user, bot)
		return
	case commands.KindReview:
		h.reviewAnswer(query, cmd, user, bot)
		return
	}

	if err != nil {
		bot.AnswerCallbackQuery(query.ID, userMessage(err), true)
		return
	}

	bot.AnswerCallbackQuery(query.ID, "Game is now "+game.Status+".", false)
	bot.EditMessage(chatID, query.Message.MessageID,
		fmt.Sprintf("Game #%d — %s (code %s)", game.ID, game.Status, game.JoinCode),
		ModeratorKeyboard(game))

	// Starting puts the first question up; show it to the moderator
	// the same way an advance would.
	if cmd.Kind == commands.KindStartGame && game.CurrentQuestionID != nil {
		if question, err := h.Catalog.GetQuestion(*game.CurrentQuestionID); err == nil {
			bot.SendMessage(chatID, questionText("", question), ModeratorKeyboard(game))
		}
	}
}

func (h *HandlerManager) advance(query *tgbotapi.CallbackQuery, cmd commands.Command, user *models.User, bot BotInterface) {
	chatID := query.Message.Chat.ID

	res, err := h.GameSvc.AdvanceQuestion(user, cmd.GameID)
	if err != nil {
		bot.AnswerCallbackQuery(query.ID, userMessage(err), true)
		return
	}

	if res.Complete {
		bot.AnswerCallbackQuery(query.ID, "That was the last question!", false)
		bot.SendMessage(chatID, "Quiz complete. Final standings:\n\n"+formatBoard(res.Scoreboard), nil)
		return
	}

	bot.AnswerCallbackQuery(query.ID, "Question is out.", false)
	bot.SendMessage(chatID, questionText(res.RoundTitle, res.Question), ModeratorKeyboard(res.Game))
}

func questionText(roundTitle string, q *models.Question) string {
	var b strings.Builder
	if roundTitle != "" {
		b.WriteString(roundTitle)
		b.WriteString("\n\n")
	}
	b.WriteString(q.Text)
	for i, o := range q.OptionList() {
		fmt.Fprintf(&b, "\n%d. %s", i+1, o)
	}
	return b.String()
}

func (h *HandlerManager) sendScoreboard(query *tgbotapi.CallbackQuery, cmd commands.Command, user *models.User, bot BotInterface) {
	board, err := h.AnswerSvc.GetScoreboard(cmd.GameID)
	if err != nil {
		bot.AnswerCallbackQuery(query.ID, userMessage(err), true)
		return
	}
	bot.AnswerCallbackQuery(query.ID, "", false)
	bot.SendMessage(query.Message.Chat.ID, "Scores so far:\n\n"+formatBoard(board), nil)
}

func (h *HandlerManager) reviewAnswer(query *tgbotapi.CallbackQuery, cmd commands.Command, user *models.User, bot BotInterface) {
	if _, err := h.AnswerSvc.ReviewAnswer(user, cmd.AnswerID, cmd.Correct); err != nil {
		bot.AnswerCallbackQuery(query.ID, userMessage(err), true)
		return
	}

	verdict := "rejected"
	if cmd.Correct {
		verdict = "accepted"
	}
	bot.AnswerCallbackQuery(query.ID, "Answer "+verdict+".", false)
	bot.EditMessage(query.Message.Chat.ID, query.Message.MessageID,
		fmt.Sprintf("%s\n\nVerdict: %s", query.Message.Text, verdict), nil)
}

func formatBoard(entries []services.ScoreboardEntry) string {
	if len(entries) == 0 {
		return "No teams on the board yet."
	}
	var b strings.Builder
	for i, e := range entries {
		score := strconv.FormatFloat(e.Score, 'f', -1, 64)
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, e.TeamName, score)
	}
	return b.String()
}
