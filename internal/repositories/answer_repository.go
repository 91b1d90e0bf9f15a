package repositories

import (
	"time"

	"github.com/ndonskov/trivia_bot/internal/models"
	"github.com/ndonskov/trivia_bot/pkg/errors"
	"gorm.io/gorm"
)

// AnswerRepository is append only: rows get inserted and reviewed,
// never deleted. Lists come back in submission order so latest-only
// scoring can take the last row per team and question.
type AnswerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{db: db}
}

func (r *AnswerRepository) Create(answer *models.Answer) error {
	if err := r.db.Create(answer).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to save answer")
	}
	return nil
}

func (r *AnswerRepository) GetByID(id uint) (*models.Answer, error) {
	var answer models.Answer
	result := r.db.First(&answer, id)

	if result.Error == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.ErrCodeNotFound, "answer not found")
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get answer")
	}

	return &answer, nil
}

func (r *AnswerRepository) SetScore(answerID uint, score float64, reviewerID uint) error {
	result := r.db.Model(&models.Answer{}).
		Where("id = ?", answerID).
		Updates(map[string]interface{}{
			"score":       score,
			"reviewed_by": reviewerID,
			"reviewed_at": time.Now().UTC(),
		})

	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to score answer")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.ErrCodeNotFound, "answer not found")
	}
	return nil
}

func (r *AnswerRepository) ListForQuestion(gameID, questionID uint) ([]models.Answer, error) {
	var answers []models.Answer
	err := r.db.Where("game_id = ? AND question_id = ?", gameID, questionID).
		Order("created_at ASC, id ASC").
		Find(&answers).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to list answers")
	}
	return answers, nil
}

func (r *AnswerRepository) ListForGame(gameID uint) ([]models.Answer, error) {
	var answers []models.Answer
	err := r.db.Where("game_id = ?", gameID).
		Order("created_at ASC, id ASC").
		Find(&answers).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to list answers")
	}
	return answers, nil
}
