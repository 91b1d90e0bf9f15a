package handlers

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/ndonskov/trivia_bot/internal/commands"
	"github.com/ndonskov/trivia_bot/internal/models"
)

// ModeratorKeyboard is the control panel under moderator messages. The
// rows shift with the game status so only legal moves are offered.
func ModeratorKeyboard(game *models.Game) tgbotapi.InlineKeyboardMarkup {
	btn := func(label string, kind commands.Kind) tgbotapi.InlineKeyboardButton {
		return tgbotapi.NewInlineKeyboardButtonData(label, commands.Command{Kind: kind, GameID: game.ID}.Encode())
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	switch game.Status {
	case models.GameStatusSetup:
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			btn("✅ Mark ready", commands.KindMarkReady),
		))
	case models.GameStatusReady:
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			btn("▶️ Start game", commands.KindStartGame),
		))
	case models.GameStatusActive:
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			btn("➡️ Next question", commands.KindAdvance),
		))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			btn("⏸ Pause", commands.KindPauseGame),
			btn("🏁 End game", commands.KindEndGame),
		))
	case models.GameStatusPaused:
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			btn("▶️ Resume", commands.KindResumeGame),
			btn("🏁 End game", commands.KindEndGame),
		))
	}

	if game.Status != models.GameStatusSetup {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			btn("📊 Scoreboard", commands.KindScoreboard),
		))
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// ReviewKeyboard offers the accept/reject verdict for one answer.
func ReviewKeyboard(gameID, answerID uint) tgbotapi.InlineKeyboardMarkup {
	accept := commands.Command{Kind: commands.KindReview, GameID: gameID, AnswerID: answerID, Correct: true}.Encode()
	reject := commands.Command{Kind: commands.KindReview, GameID: gameID, AnswerID: answerID, Correct: false}.Encode()
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Correct", accept),
			tgbotapi.NewInlineKeyboardButtonData("❌ Incorrect", reject),
		),
	)
}
