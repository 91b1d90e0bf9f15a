package repositories

import (
	"github.com/ndonskov/trivia_bot/internal/models"
	"github.com/ndonskov/trivia_bot/pkg/errors"
	"gorm.io/gorm"
)

// CatalogRepository serves authored quizzes. Loads always return the
// rounds and questions sorted by their play order so the services can
// walk the tree without re-sorting.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) CreateQuiz(quiz *models.Quiz) error {
	if err := r.db.Create(quiz).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create quiz")
	}
	return nil
}

func (r *CatalogRepository) GetQuiz(id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	result := r.db.
		Preload("Rounds", func(db *gorm.DB) *gorm.DB {
			return db.Order("round_order ASC")
		}).
		Preload("Rounds.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_order ASC")
		}).
		First(&quiz, id)

	if result.Error == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.ErrCodeNotFound, "quiz not found")
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get quiz")
	}

	return &quiz, nil
}

func (r *CatalogRepository) GetQuestion(id uint) (*models.Question, error) {
	var question models.Question
	result := r.db.First(&question, id)

	if result.Error == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.ErrCodeNotFound, "question not found")
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get question")
	}

	return &question, nil
}

func (r *CatalogRepository) ListQuizzes() ([]models.Quiz, error) {
	var quizzes []models.Quiz
	if err := r.db.Order("created_at DESC").Find(&quizzes).Error; err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to list quizzes")
	}
	return quizzes, nil
}
