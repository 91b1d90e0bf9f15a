package commands

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/ndonskov/trivia_bot/pkg/errors"
)

// Command is a decoded inline-button press. Telegram callback data is
// parsed into a tagged variant exactly once, at the transport boundary;
// everything past the handlers works with typed fields.
type Kind int

const (
	KindUnknown Kind = iota
	KindMarkReady
	KindStartGame
	KindPauseGame
	KindResumeGame
	KindEndGame
	KindAdvance
	KindScoreboard
	KindPickOption
	KindReview
)

type Command struct {
	Kind   Kind
	GameID uint

	// KindPickOption
	QuestionID  uint
	OptionIndex int

	// KindReview
	AnswerID uint
	Correct  bool
}

// Wire verbs. Telegram caps callback data at 64 bytes, hence the short
// prefixes.
const (
	verbReady      = "rdy"
	verbStart      = "go"
	verbPause      = "ps"
	verbResume     = "rs"
	verbEnd        = "end"
	verbAdvance    = "adv"
	verbScoreboard = "sb"
	verbOption     = "opt"
	verbReview     = "rev"
)

var verbKinds = map[string]Kind{
	verbReady:      KindMarkReady,
	verbStart:      KindStartGame,
	verbPause:      KindPauseGame,
	verbResume:     KindResumeGame,
	verbEnd:        KindEndGame,
	verbAdvance:    KindAdvance,
	verbScoreboard: KindScoreboard,
	verbOption:     KindPickOption,
	verbReview:     KindReview,
}

var kindVerbs = func() map[Kind]string {
	m := make(map[Kind]string, len(verbKinds))
	for v, k := range verbKinds {
		m[k] = v
	}
	return m
}()

// Encode renders the command as callback data.
func (c Command) Encode() string {
	verb, ok := kindVerbs[c.Kind]
	if !ok {
		return ""
	}
	switch c.Kind {
	case KindPickOption:
		return fmt.Sprintf("%s:%d:%d:%d", verb, c.GameID, c.QuestionID, c.OptionIndex)
	case KindReview:
		correct := 0
		if c.Correct {
			correct = 1
		}
		return fmt.Sprintf("%s:%d:%d:%d", verb, c.GameID, c.AnswerID, correct)
	default:
		return fmt.Sprintf("%s:%d", verb, c.GameID)
	}
}

// ParseCallback decodes callback data back into a Command. Anything
// malformed comes back as a validation error, never a panic.
func ParseCallback(data string) (Command, error) {
	parts := strings.Split(data, ":")
	if len(parts) < 2 {
		return Command{}, badCallback(data)
	}

	kind, ok := verbKinds[parts[0]]
	if !ok {
		return Command{}, badCallback(data)
	}

	gameID, err := parseID(parts[1])
	if err != nil {
		return Command{}, badCallback(data)
	}
	cmd := Command{Kind: kind, GameID: gameID}

	switch kind {
	case KindPickOption:
		if len(parts) != 4 {
			return Command{}, badCallback(data)
		}
		if cmd.QuestionID, err = parseID(parts[2]); err != nil {
			return Command{}, badCallback(data)
		}
		idx, err := strconv.Atoi(parts[3])
		if err != nil || idx < 0 {
			return Command{}, badCallback(data)
		}
		cmd.OptionIndex = idx
	case KindReview:
		if len(parts) != 4 {
			return Command{}, badCallback(data)
		}
		if cmd.AnswerID, err = parseID(parts[2]); err != nil {
			return Command{}, badCallback(data)
		}
		switch parts[3] {
		case "0":
			cmd.Correct = false
		case "1":
			cmd.Correct = true
		default:
			return Command{}, badCallback(data)
		}
	default:
		if len(parts) != 2 {
			return Command{}, badCallback(data)
		}
	}

	return cmd, nil
}

func parseID(s string) (uint, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(v), nil
}

func badCallback(data string) error {
	return apperrors.New(apperrors.ErrCodeValidation, "unrecognized callback: "+data)
}
