package repositories

import (
	"time"

	"github.com/ndonskov/trivia_bot/internal/models"
	"github.com/ndonskov/trivia_bot/pkg/errors"
	"gorm.io/gorm"
)

type LoginCodeRepository struct {
	db *gorm.DB
}

func NewLoginCodeRepository(db *gorm.DB) *LoginCodeRepository {
	return &LoginCodeRepository{db: db}
}

func (r *LoginCodeRepository) Create(code *models.LoginCode) error {
	if err := r.db.Create(code).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create login code")
	}
	return nil
}

// Consume marks the code used in one guarded update, so the same code
// cannot log in twice.
func (r *LoginCodeRepository) Consume(code string) (*models.LoginCode, error) {
	var lc models.LoginCode

	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.LoginCode{}).
			Where("code = ? AND is_used = ?", code, false).
			Updates(map[string]interface{}{
				"is_used": true,
				"used_at": time.Now().UTC(),
			})
		if result.Error != nil {
			return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to consume login code")
		}
		if result.RowsAffected == 0 {
			return errors.New(errors.ErrCodeNotFound, "login code is invalid or already used")
		}
		return tx.Where("code = ?", code).First(&lc).Error
	})
	if err != nil {
		return nil, err
	}

	return &lc, nil
}
