package security

import (
	"testing"
	"time"
)

const testSecret = "test_secret_key_minimum_32_chars"

func TestTokenRoundTrip(t *testing.T) {
	tests := []struct {
		name       string
		userID     uint
		telegramID int64
		role       string
	}{
		{
			name:       "player",
			userID:     1,
			telegramID: 123456789,
			role:       "player",
		},
		{
			name:       "moderator",
			userID:     2,
			telegramID: 987654321,
			role:       "moderator",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateJWT(tt.userID, tt.telegramID, tt.role, testSecret)
			if err != nil {
				t.Fatalf("GenerateJWT() error = %v", err)
			}
			if token == "" {
				t.Fatal("GenerateJWT() returned empty token")
			}

			claims, err := ValidateJWT(token, testSecret)
			if err != nil {
				t.Fatalf("ValidateJWT() error = %v", err)
			}

			if claims.UserID != tt.userID {
				t.Errorf("UserID = %d, want %d", claims.UserID, tt.userID)
			}
			if claims.TelegramID != tt.telegramID {
				t.Errorf("TelegramID = %d, want %d", claims.TelegramID, tt.telegramID)
			}
			if claims.Role != tt.role {
				t.Errorf("Role = %q, want %q", claims.Role, tt.role)
			}
			if claims.ExpiresAt.Time.Before(time.Now()) {
				t.Error("token already expired")
			}
		})
	}
}

func TestValidateJWT_InvalidToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"invalid format", "invalid.token.here"},
		{"random string", "randomstring"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ValidateJWT(tt.token, testSecret); err == nil {
				t.Error("ValidateJWT() expected error for invalid token, got nil")
			}
		})
	}
}

func TestValidateJWT_WrongSecret(t *testing.T) {
	token, err := GenerateJWT(1, 1, "player", testSecret)
	if err != nil {
		t.Fatalf("GenerateJWT() error = %v", err)
	}

	if _, err := ValidateJWT(token, "another_secret_key_of_32_chars!!"); err == nil {
		t.Error("ValidateJWT() accepted token signed with a different secret")
	}
}
