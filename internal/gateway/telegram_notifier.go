package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"github.com/ndonskov/trivia_bot/internal/commands"
	"github.com/ndonskov/trivia_bot/internal/models"
	"github.com/ndonskov/trivia_bot/internal/services"
	"github.com/ndonskov/trivia_bot/pkg/logger"
)

const notifyTimeout = 10 * time.Second

// TelegramNotifier pushes game events to every player present in the
// game. Sends run concurrently and best effort: a player who blocked
// the bot must never fail a moderator's action.
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	roster services.RosterStore
	users  services.UserStore
}

func NewTelegramNotifier(api *tgbotapi.BotAPI, roster services.RosterStore, users services.UserStore) *TelegramNotifier {
	return &TelegramNotifier{api: api, roster: roster, users: users}
}

func (n *TelegramNotifier) GameStateChanged(game *models.Game) {
	var text string
	switch game.Status {
	case models.GameStatusReady:
		text = "The game is set. Waiting for the moderator to start."
	case models.GameStatusActive:
		text = "The game is on!"
	case models.GameStatusPaused:
		text = "The game is paused. Stretch your legs."
	case models.GameStatusFinished:
		text = "The game has ended."
	default:
		return
	}
	n.fanOut(game.ID, func(chatID int64) tgbotapi.Chattable {
		return tgbotapi.NewMessage(chatID, text)
	})
}

func (n *TelegramNotifier) QuestionAdvanced(game *models.Game, q *models.Question, roundTitle string) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n%s", roundTitle, q.Text)
	if q.TimeLimit > 0 {
		fmt.Fprintf(&b, "\n\nYou have %d seconds.", q.TimeLimit)
	}
	text := b.String()

	options := q.OptionList()
	n.fanOut(game.ID, func(chatID int64) tgbotapi.Chattable {
		msg := tgbotapi.NewMessage(chatID, text)
		if len(options) > 0 {
			msg.ReplyMarkup = optionKeyboard(game.ID, q.ID, options)
		}
		return msg
	})
}

func (n *TelegramNotifier) QuizComplete(game *models.Game, scoreboard []services.ScoreboardEntry) {
	text := "That's a wrap!\n\n" + FormatScoreboard(scoreboard)
	n.fanOut(game.ID, func(chatID int64) tgbotapi.Chattable {
		return tgbotapi.NewMessage(chatID, text)
	})
}

func (n *TelegramNotifier) PlayerJoined(game *models.Game, team *models.Team, user *models.User) {
	text := fmt.Sprintf("%s joined with team %s.", user.Username, team.Name)
	n.fanOut(game.ID, func(chatID int64) tgbotapi.Chattable {
		return tgbotapi.NewMessage(chatID, text)
	})
}

func (n *TelegramNotifier) ScoreboardUpdated(game *models.Game, scoreboard []services.ScoreboardEntry) {
	text := "Scores so far:\n\n" + FormatScoreboard(scoreboard)
	n.fanOut(game.ID, func(chatID int64) tgbotapi.Chattable {
		return tgbotapi.NewMessage(chatID, text)
	})
}

// fanOut sends one message per present player, concurrently. Failures
// are logged and swallowed.
func (n *TelegramNotifier) fanOut(gameID uint, build func(chatID int64) tgbotapi.Chattable) {
	presence, err := n.roster.ListPresence(gameID)
	if err != nil {
		logger.Warn("failed to list game presence for broadcast", "game_id", gameID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(16)
	for _, p := range presence {
		p := p
		g.Go(func() error {
			user, err := n.users.GetByID(p.UserID)
			if err != nil {
				logger.Warn("broadcast skipping unknown user", "user_id", p.UserID, "error", err)
				return nil
			}
			if _, err := n.api.Send(build(user.TelegramID)); err != nil {
				logger.Warn("broadcast send failed", "user_id", p.UserID, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func optionKeyboard(gameID, questionID uint, options []string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(options))
	for i, opt := range options {
		data := commands.Command{
			Kind:        commands.KindPickOption,
			GameID:      gameID,
			QuestionID:  questionID,
			OptionIndex: i,
		}.Encode()
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(opt, data),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// FormatScoreboard renders standings as plain text, medals for the top
// three.
func FormatScoreboard(entries []services.ScoreboardEntry) string {
	if len(entries) == 0 {
		return "No teams on the board yet."
	}
	medals := []string{"🥇", "🥈", "🥉"}
	var b strings.Builder
	for i, e := range entries {
		rank := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			rank = medals[i]
		}
		fmt.Fprintf(&b, "%s %s — %s\n", rank, e.TeamName, formatScore(e.Score))
	}
	return b.String()
}

func formatScore(score float64) string {
	if score == float64(int64(score)) {
		return fmt.Sprintf("%d", int64(score))
	}
	return fmt.Sprintf("%.1f", score)
}
