package services

import (
	"time"

	"github.com/ndonskov/trivia_bot/internal/models"
	"github.com/ndonskov/trivia_bot/internal/security"
	apperrors "github.com/ndonskov/trivia_bot/pkg/errors"
	"github.com/ndonskov/trivia_bot/pkg/utils"
)

// AuthService backs the web login flow: the bot hands the user a short
// one-time code, the scoreboard page exchanges it for a session token.
type AuthService struct {
	users  UserStore
	codes  LoginCodeStore
	secret string
	ttl    time.Duration
}

func NewAuthService(users UserStore, codes LoginCodeStore, secret string, ttl time.Duration) *AuthService {
	return &AuthService{users: users, codes: codes, secret: secret, ttl: ttl}
}

// IssueLoginCode mints a one-time code tied to the user's Telegram ID.
func (s *AuthService) IssueLoginCode(user *models.User) (*models.LoginCode, error) {
	code := utils.GenerateJoinCode(6)
	if code == "" {
		return nil, apperrors.New(apperrors.ErrCodeInternalError, "failed to generate login code")
	}

	lc := &models.LoginCode{
		Code:       code,
		TelegramID: user.TelegramID,
	}
	if err := s.codes.Create(lc); err != nil {
		return nil, err
	}
	return lc, nil
}

// ExchangeLoginCode consumes the code and returns a signed session
// token. Expired or reused codes are rejected.
func (s *AuthService) ExchangeLoginCode(code string) (string, error) {
	lc, err := s.codes.Consume(utils.NormalizeJoinCode(code))
	if err != nil {
		return "", err
	}
	if time.Since(lc.CreatedAt) > s.ttl {
		return "", apperrors.New(apperrors.ErrCodeUnauthorized, "login code has expired")
	}

	user, err := s.users.GetByTelegramID(lc.TelegramID)
	if err != nil {
		return "", err
	}

	token, err := security.GenerateJWT(user.ID, user.TelegramID, user.Role, s.secret)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternalError, "failed to sign session token")
	}
	return token, nil
}
