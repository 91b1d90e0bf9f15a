package database

import (
	"fmt"
	"time"

	"github.com/ndonskov/trivia_bot/internal/config"
	"github.com/ndonskov/trivia_bot/internal/models"
	"github.com/ndonskov/trivia_bot/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.GetDSN()

	var logLevel gormlogger.LogLevel
	if cfg.AppEnv == "development" {
		logLevel = gormlogger.Info
	} else {
		logLevel = gormlogger.Error
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// A live game night rarely exceeds a few hundred concurrent players,
	// so the pool stays modest compared to what postgres would allow.
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	logger.Info("Database connected successfully")
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	logger.Info("Running database migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.LoginCode{},
		&models.Quiz{},
		&models.Round{},
		&models.Question{},
		&models.Team{},
		&models.TeamMember{},
		&models.GamePresence{},
		&models.Game{},
		&models.Answer{},
	)

	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// SeedDemoQuiz creates a small two-round quiz so a fresh install has
// something to host immediately. No-op when any quiz already exists.
func SeedDemoQuiz(db *gorm.DB, adminTgID int64) error {
	var count int64
	db.Model(&models.Quiz{}).Count(&count)
	if count > 0 {
		return nil
	}

	logger.Info("Seeding demo quiz...")

	admin := models.User{TelegramID: adminTgID, Username: "admin", Role: models.RoleAdmin}
	if adminTgID != 0 {
		if err := db.Where("telegram_id = ?", adminTgID).FirstOrCreate(&admin).Error; err != nil {
			return fmt.Errorf("failed to seed admin user: %w", err)
		}
	} else {
		if err := db.Create(&admin).Error; err != nil {
			return fmt.Errorf("failed to seed admin user: %w", err)
		}
	}

	mcq := func(text string, correct int, opts ...string) models.Question {
		q := models.Question{
			Text:          text,
			Type:          models.QuestionTypeMultipleChoice,
			CorrectOption: &correct,
			CorrectAnswer: opts[correct],
			Points:        models.DefaultQuestionPoints,
			TimeLimit:     models.DefaultQuestionTimeLimit,
		}
		_ = q.SetOptions(opts)
		return q
	}

	quiz := models.Quiz{
		Title:       "Demo Pub Quiz",
		Description: "A short warm-up quiz for testing the flow",
		CreatedBy:   admin.ID,
		Rounds: []models.Round{
			{
				Title: "Geography",
				Order: 1,
				Questions: []models.Question{
					withOrder(mcq("What is the capital of France?", 0, "Paris", "London", "Berlin", "Rome"), 1),
					withOrder(models.Question{
						Text:          "Name the longest river in the world.",
						Type:          models.QuestionTypeOpen,
						CorrectAnswer: "Nile",
						Points:        models.DefaultQuestionPoints,
						TimeLimit:     60,
					}, 2),
				},
			},
			{
				Title: "Science",
				Order: 2,
				Questions: []models.Question{
					withOrder(mcq("Which planet is known as the Red Planet?", 1, "Venus", "Mars", "Jupiter", "Saturn"), 1),
				},
			},
		},
	}

	if err := db.Create(&quiz).Error; err != nil {
		return fmt.Errorf("failed to seed demo quiz: %w", err)
	}

	return nil
}

func withOrder(q models.Question, order int) models.Question {
	q.Order = order
	return q
}
