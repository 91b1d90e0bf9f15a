package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/ndonskov/trivia_bot/internal/config"
	"github.com/ndonskov/trivia_bot/internal/database"
	"github.com/ndonskov/trivia_bot/internal/gateway"
	"github.com/ndonskov/trivia_bot/internal/handlers"
	"github.com/ndonskov/trivia_bot/internal/repositories"
	"github.com/ndonskov/trivia_bot/internal/services"
	"github.com/ndonskov/trivia_bot/pkg/logger"
	"github.com/ndonskov/trivia_bot/telegram"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	// Initialize logger
	logger.Init()
	defer logger.Sync()

	logger.Info("Starting Trivia Bot...")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", err)
	}

	// Validate production security settings
	if cfg.AppEnv == "production" {
		if err := cfg.ValidateProductionSecurity(); err != nil {
			logger.Fatal("Production security validation failed", err)
		}
		logger.Info("Production security validation passed")
	}

	// Connect to database with TLS
	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", err)
	}

	// Run GORM auto-migration
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Seed the demo quiz so a fresh install has something to host
	if err := database.SeedDemoQuiz(db, cfg.SuperAdminTgID); err != nil {
		logger.Warn("Failed to seed demo quiz", "error", err)
	}

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	catalogRepo := repositories.NewCatalogRepository(db)
	gameRepo := repositories.NewGameRepository(db)
	rosterRepo := repositories.NewRosterRepository(db)
	answerRepo := repositories.NewAnswerRepository(db)
	loginCodeRepo := repositories.NewLoginCodeRepository(db)

	// Telegram client comes up before the services so the notifier can
	// share it with the bot.
	api, err := telegram.NewAPI(cfg)
	if err != nil {
		logger.Fatal("Failed to authorize Telegram client", err)
	}

	hub := gateway.NewHub()
	tgNotifier := gateway.NewTelegramNotifier(api, rosterRepo, userRepo)
	notifier := gateway.MultiNotifier{hub, tgNotifier}

	// Services
	scoring := services.ScoringOptions{
		SumAll:    cfg.ScoringSumAll,
		UsePoints: cfg.ScoringUsePoints,
	}
	locks := services.NewGameLocks()
	answerSvc := services.NewAnswerService(answerRepo, gameRepo, rosterRepo, catalogRepo, notifier, locks, scoring)
	gameSvc := services.NewGameService(gameRepo, catalogRepo, rosterRepo, answerSvc, notifier, locks, cfg.JoinCodeLength)
	rosterSvc := services.NewRosterService(rosterRepo, gameRepo, userRepo, notifier, locks, cfg.JoinCodeLength)
	authSvc := services.NewAuthService(userRepo, loginCodeRepo, cfg.JWTSecret, cfg.GetLoginCodeTTL())

	// Handlers and bot
	handlerMgr := handlers.NewHandlerManager(cfg, userRepo, catalogRepo, gameSvc, rosterSvc, answerSvc, authSvc)
	bot, err := telegram.InitBot(cfg, api, handlerMgr)
	if err != nil {
		logger.Fatal("Failed to initialize bot", err)
	}

	// Web gateway: spectator websockets and the login code exchange
	wsHandler := gateway.NewWSHandler(hub, gameSvc)
	authHandler := gateway.NewAuthHandler(authSvc)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	mux.HandleFunc("/auth/exchange", authHandler.ExchangeCode)

	server := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("HTTP gateway listening", "port", cfg.AppPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP gateway failed", err)
		}
	}()

	logger.Info("Bot started successfully", "env", cfg.AppEnv)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down gracefully...")
	bot.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("HTTP gateway shutdown failed", "error", err)
	}

	logger.Info("Bot stopped")
}
