package services

import (
	"testing"
	"time"

	"github.com/ndonskov/trivia_bot/internal/models"
	"github.com/ndonskov/trivia_bot/internal/security"
	apperrors "github.com/ndonskov/trivia_bot/pkg/errors"
)

const authTestSecret = "test_secret_key_minimum_32_chars"

func newAuthEnv(t *testing.T, ttl time.Duration) (*AuthService, *memLoginCodeStore, *models.User) {
	t.Helper()
	users := newMemUserStore()
	codes := newMemLoginCodeStore()
	user := &models.User{TelegramID: 555, Username: "alice", Role: models.RolePlayer}
	if err := users.Upsert(user); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	return NewAuthService(users, codes, authTestSecret, ttl), codes, user
}

func TestLoginCodeExchange(t *testing.T) {
	svc, _, user := newAuthEnv(t, 10*time.Minute)

	lc, err := svc.IssueLoginCode(user)
	if err != nil {
		t.Fatalf("IssueLoginCode() error = %v", err)
	}
	if len(lc.Code) != 6 {
		t.Errorf("Code = %q, want 6 chars", lc.Code)
	}

	token, err := svc.ExchangeLoginCode(lc.Code)
	if err != nil {
		t.Fatalf("ExchangeLoginCode() error = %v", err)
	}

	claims, err := security.ValidateJWT(token, authTestSecret)
	if err != nil {
		t.Fatalf("ValidateJWT() error = %v", err)
	}
	if claims.UserID != user.ID || claims.TelegramID != user.TelegramID {
		t.Errorf("claims = %+v, want user %d tg %d", claims, user.ID, user.TelegramID)
	}
}

func TestLoginCodeSingleUse(t *testing.T) {
	svc, _, user := newAuthEnv(t, 10*time.Minute)

	lc, err := svc.IssueLoginCode(user)
	if err != nil {
		t.Fatalf("IssueLoginCode() error = %v", err)
	}
	if _, err := svc.ExchangeLoginCode(lc.Code); err != nil {
		t.Fatalf("first ExchangeLoginCode() error = %v", err)
	}

	_, err = svc.ExchangeLoginCode(lc.Code)
	if !apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
		t.Errorf("second exchange error = %v, want NOT_FOUND", err)
	}
}

func TestLoginCodeExpiry(t *testing.T) {
	svc, codes, user := newAuthEnv(t, time.Minute)

	lc, err := svc.IssueLoginCode(user)
	if err != nil {
		t.Fatalf("IssueLoginCode() error = %v", err)
	}

	codes.mu.Lock()
	codes.codes[lc.Code].CreatedAt = time.Now().Add(-2 * time.Minute)
	codes.mu.Unlock()

	_, err = svc.ExchangeLoginCode(lc.Code)
	if !apperrors.IsCode(err, apperrors.ErrCodeUnauthorized) {
		t.Errorf("expired exchange error = %v, want UNAUTHORIZED", err)
	}
}

func TestLoginCodeUnknown(t *testing.T) {
	svc, _, _ := newAuthEnv(t, time.Minute)

	_, err := svc.ExchangeLoginCode("ABCDEF")
	if !apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
		t.Errorf("unknown code error = %v, want NOT_FOUND", err)
	}
}
