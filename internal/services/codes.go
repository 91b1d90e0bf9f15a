package services

import (
	apperrors "github.com/ndonskov/trivia_bot/pkg/errors"
	"github.com/ndonskov/trivia_bot/pkg/utils"
)

const joinCodeAttempts = 5

// generateUniqueCode draws random codes until one is not yet taken.
// Collisions are rare at six characters over a 36-symbol alphabet, so
// a handful of attempts is plenty.
func generateUniqueCode(length int, taken func(code string) (bool, error)) (string, error) {
	for i := 0; i < joinCodeAttempts; i++ {
		code := utils.GenerateJoinCode(length)
		if code == "" {
			return "", apperrors.New(apperrors.ErrCodeInternalError, "failed to generate join code")
		}
		inUse, err := taken(code)
		if err != nil {
			return "", err
		}
		if !inUse {
			return code, nil
		}
	}
	return "", apperrors.New(apperrors.ErrCodeConflict, "could not allocate a unique join code")
}
