package telegram

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/ndonskov/trivia_bot/internal/config"
	"github.com/ndonskov/trivia_bot/internal/handlers"
	"github.com/ndonskov/trivia_bot/internal/middleware"
	"github.com/ndonskov/trivia_bot/pkg/logger"
)

const (
	workerCount      = 10
	workerBufferSize = 100

	userRateLimit  = 20
	userRateWindow = 10 * time.Second
)

// Bot owns the long-polling loop and the worker pool that keeps
// per-user update processing ordered.
type Bot struct {
	api      *tgbotapi.BotAPI
	config   *config.Config
	handlers *handlers.HandlerManager
	limiter  *middleware.RateLimiter

	workerChans []chan tgbotapi.Update
}

// NewAPI authorizes a Telegram client. The client is created before
// the bot itself so notifiers can share it.
func NewAPI(cfg *config.Config) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	if cfg.AppEnv == "development" {
		api.Debug = true
	}

	logger.Info("Authorized on account", "username", api.Self.UserName)
	return api, nil
}

func InitBot(cfg *config.Config, api *tgbotapi.BotAPI, handlerMgr *handlers.HandlerManager) (*Bot, error) {
	bot := &Bot{
		api:         api,
		config:      cfg,
		handlers:    handlerMgr,
		limiter:     middleware.NewRateLimiter(userRateLimit, userRateWindow),
		workerChans: make([]chan tgbotapi.Update, workerCount),
	}

	for i := 0; i < workerCount; i++ {
		bot.workerChans[i] = make(chan tgbotapi.Update, workerBufferSize)
		go bot.startWorker(bot.workerChans[i])
	}

	go bot.startUpdateListener()

	return bot, nil
}

func (b *Bot) startUpdateListener() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	for {
		logger.Info("Starting update listener...")
		updates := b.api.GetUpdatesChan(u)

		for update := range updates {
			var userID int64
			if update.Message != nil {
				userID = update.Message.From.ID
			} else if update.CallbackQuery != nil {
				userID = update.CallbackQuery.From.ID
			}

			if userID != 0 {
				if !b.limiter.AllowUser(userID) {
					logger.Debug("Dropping update, user over rate limit", "user_id", userID)
					continue
				}
				// Hashed dispatch to workers to ensure per-user ordered processing
				workerIdx := userID % int64(len(b.workerChans))
				if workerIdx < 0 {
					workerIdx = -workerIdx
				}
				b.workerChans[workerIdx] <- update
			} else {
				go b.handleUpdate(update)
			}
		}

		logger.Warn("Update channel closed. Restarting in 5 seconds...")
		time.Sleep(5 * time.Second)
	}
}

func (b *Bot) startWorker(ch chan tgbotapi.Update) {
	for update := range ch {
		b.handleUpdate(update)
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic in handleUpdate", "error", r)
		}
	}()

	if update.Message != nil {
		b.handlers.HandleMessage(update.Message, b)
	} else if update.CallbackQuery != nil {
		b.handlers.HandleCallback(update.CallbackQuery, b)
	}
}

// SendMessage delivers a message and returns the sent message ID, or 0
// on failure. Transient network errors are retried.
func (b *Bot) SendMessage(chatID int64, text string, keyboard interface{}) int {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	switch kb := keyboard.(type) {
	case tgbotapi.ReplyKeyboardMarkup:
		msg.ReplyMarkup = kb
	case tgbotapi.InlineKeyboardMarkup:
		msg.ReplyMarkup = kb
	case tgbotapi.ReplyKeyboardRemove:
		msg.ReplyMarkup = kb
	}

	maxRetries := 3
	for i := 0; i < maxRetries; i++ {
		sentMsg, err := b.api.Send(msg)
		if err != nil {
			logger.Error("Failed to send message", "error", err, "chat_id", chatID, "attempt", i+1)

			if strings.Contains(err.Error(), "connection reset") ||
				strings.Contains(err.Error(), "timeout") ||
				strings.Contains(err.Error(), "network is unreachable") {
				time.Sleep(time.Duration(i+1) * time.Second)
				continue
			}
			return 0
		}
		return sentMsg.MessageID
	}
	return 0
}

func (b *Bot) EditMessage(chatID int64, messageID int, text string, keyboard interface{}) {
	msg := tgbotapi.NewEditMessageText(chatID, messageID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	if keyboard != nil {
		if kb, ok := keyboard.(tgbotapi.InlineKeyboardMarkup); ok {
			msg.ReplyMarkup = &kb
		}
	}

	if _, err := b.api.Send(msg); err != nil {
		if strings.Contains(err.Error(), "message is not modified") {
			return
		}
		logger.Error("Failed to edit message", "error", err, "chat_id", chatID, "message_id", messageID)
	}
}

func (b *Bot) AnswerCallbackQuery(queryID string, text string, showAlert bool) {
	callback := tgbotapi.NewCallback(queryID, text)
	callback.ShowAlert = showAlert
	if _, err := b.api.Request(callback); err != nil {
		logger.Error("Failed to answer callback query", "error", err, "query_id", queryID)
	}
}

func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
	logger.Info("Bot stopped receiving updates")
}
