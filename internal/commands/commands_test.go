package commands

import (
	"testing"

	apperrors "github.com/ndonskov/trivia_bot/pkg/errors"
)

func TestEncodeParseRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
	}{
		{"mark ready", Command{Kind: KindMarkReady, GameID: 7}},
		{"start", Command{Kind: KindStartGame, GameID: 7}},
		{"pause", Command{Kind: KindPauseGame, GameID: 42}},
		{"resume", Command{Kind: KindResumeGame, GameID: 42}},
		{"end", Command{Kind: KindEndGame, GameID: 1}},
		{"advance", Command{Kind: KindAdvance, GameID: 9}},
		{"scoreboard", Command{Kind: KindScoreboard, GameID: 9}},
		{"pick option", Command{Kind: KindPickOption, GameID: 3, QuestionID: 12, OptionIndex: 2}},
		{"review correct", Command{Kind: KindReview, GameID: 3, AnswerID: 55, Correct: true}},
		{"review incorrect", Command{Kind: KindReview, GameID: 3, AnswerID: 55, Correct: false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.cmd.Encode()
			if data == "" {
				t.Fatal("Encode() returned empty data")
			}
			if len(data) > 64 {
				t.Errorf("Encode() = %q exceeds the 64 byte callback limit", data)
			}
			got, err := ParseCallback(data)
			if err != nil {
				t.Fatalf("ParseCallback(%q) error = %v", data, err)
			}
			if got != tt.cmd {
				t.Errorf("round trip = %+v, want %+v", got, tt.cmd)
			}
		})
	}
}

func TestParseCallbackRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"no separator", "advance"},
		{"unknown verb", "fly:1"},
		{"zero game id", "adv:0"},
		{"non-numeric game id", "adv:abc"},
		{"negative option", "opt:1:2:-1"},
		{"option missing fields", "opt:1:2"},
		{"review bad flag", "rev:1:2:yes"},
		{"trailing fields", "adv:1:2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCallback(tt.data)
			if !apperrors.IsCode(err, apperrors.ErrCodeValidation) {
				t.Errorf("ParseCallback(%q) error = %v, want VALIDATION_ERROR", tt.data, err)
			}
		})
	}
}
