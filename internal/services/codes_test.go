package services

import (
	"strings"
	"testing"

	apperrors "github.com/ndonskov/trivia_bot/pkg/errors"
)

func TestGenerateUniqueCode(t *testing.T) {
	t.Run("draws until free", func(t *testing.T) {
		calls := 0
		code, err := generateUniqueCode(6, func(code string) (bool, error) {
			calls++
			return calls < 3, nil
		})
		if err != nil {
			t.Fatalf("generateUniqueCode() error = %v", err)
		}
		if len(code) != 6 {
			t.Errorf("code = %q, want 6 chars", code)
		}
		if calls != 3 {
			t.Errorf("lookup calls = %d, want 3", calls)
		}
	})

	t.Run("gives up after repeated collisions", func(t *testing.T) {
		_, err := generateUniqueCode(6, func(string) (bool, error) {
			return true, nil
		})
		if !apperrors.IsCode(err, apperrors.ErrCodeConflict) {
			t.Errorf("exhausted retries error = %v, want CONFLICT", err)
		}
	})
}

// Ten thousand draws against a growing taken set: every allocated code
// must be unique and well formed.
func TestGenerateUniqueCodeMassAllocation(t *testing.T) {
	const n = 10000
	taken := make(map[string]bool, n)

	for i := 0; i < n; i++ {
		code, err := generateUniqueCode(6, func(code string) (bool, error) {
			return taken[code], nil
		})
		if err != nil {
			t.Fatalf("allocation #%d failed: %v", i, err)
		}
		if taken[code] {
			t.Fatalf("allocation #%d returned duplicate code %q", i, code)
		}
		if len(code) != 6 {
			t.Fatalf("code %q has length %d", code, len(code))
		}
		for _, r := range code {
			if !strings.ContainsRune("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789", r) {
				t.Fatalf("code %q contains invalid rune %q", code, r)
			}
		}
		taken[code] = true
	}
}
