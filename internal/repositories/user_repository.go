package repositories

import (
	"github.com/ndonskov/trivia_bot/internal/models"
	"github.com/ndonskov/trivia_bot/pkg/errors"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	result := r.db.First(&user, id)

	if result.Error == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.ErrCodeNotFound, "user not found")
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get user")
	}

	return &user, nil
}

func (r *UserRepository) GetByTelegramID(telegramID int64) (*models.User, error) {
	var user models.User
	result := r.db.Where("telegram_id = ?", telegramID).First(&user)

	if result.Error == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.ErrCodeNotFound, "user not found")
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get user")
	}

	return &user, nil
}

// Upsert creates the user on first contact and refreshes the username
// on subsequent ones. The role is never downgraded here.
func (r *UserRepository) Upsert(user *models.User) error {
	var existing models.User
	result := r.db.Where("telegram_id = ?", user.TelegramID).First(&existing)

	if result.Error == gorm.ErrRecordNotFound {
		if err := r.db.Create(user).Error; err != nil {
			return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create user")
		}
		return nil
	}
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to look up user")
	}

	existing.Username = user.Username
	if err := r.db.Save(&existing).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to update user")
	}
	*user = existing
	return nil
}

func (r *UserRepository) SetRole(userID uint, role string) error {
	result := r.db.Model(&models.User{}).Where("id = ?", userID).Update("role", role)
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to update role")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.ErrCodeNotFound, "user not found")
	}
	return nil
}
