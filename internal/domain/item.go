package domain

import (
	"fmt"
	"strings"
)

// Status is the memory state of a reviewable item.
type Status string

// Possible review status values
const (
	StatusNew      Status = "New"
	StatusLearning Status = "Learning"
	StatusKnown    Status = "Known"
	StatusWeak     Status = "Weak"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusNew, StatusLearning, StatusKnown, StatusWeak}

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusLearning, StatusKnown, StatusWeak:
		return true
	default:
		return false
	}
}

// ParseStatus converts a case-insensitive status name into a Status.
func ParseStatus(value string) (Status, error) {
	for _, s := range Statuses {
		if strings.EqualFold(string(s), strings.TrimSpace(value)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, value)
}

// ItemKind tags the concrete kind of a reviewable item.
type ItemKind string

// Possible item kinds
const (
	KindWord   ItemKind = "Word"
	KindPhrase ItemKind = "Phrase"
	KindRule   ItemKind = "Rule"
)

// IsCardKind reports whether k is a kind a Card may carry.
func (k ItemKind) IsCardKind() bool {
	return k == KindWord || k == KindPhrase
}

// NormalizeCardKind maps free-form input onto a card kind. Anything that is
// not "phrase" becomes a Word.
func NormalizeCardKind(value string) ItemKind {
	if strings.EqualFold(strings.TrimSpace(value), string(KindPhrase)) {
		return KindPhrase
	}
	return KindWord
}

// Level is a CEFR proficiency level.
type Level string

// CEFR levels
const (
	LevelA1 Level = "A1"
	LevelA2 Level = "A2"
	LevelB1 Level = "B1"
	LevelB2 Level = "B2"
	LevelC1 Level = "C1"
	LevelC2 Level = "C2"
)

// DefaultLevel is used for content that arrives without a level.
const DefaultLevel = LevelB1

// Levels lists the CEFR levels from easiest to hardest.
var Levels = []Level{LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2}

// Valid reports whether l is one of A1..C2.
func (l Level) Valid() bool {
	for _, known := range Levels {
		if l == known {
			return true
		}
	}
	return false
}

// ParseLevel normalises user or model supplied text ("b2", " C1 ") into a Level.
func ParseLevel(value string) (Level, error) {
	l := Level(strings.ToUpper(strings.TrimSpace(value)))
	if !l.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidLevel, value)
	}
	return l, nil
}

// Reviewable is anything that carries a review state and can be scheduled.
// The scheduler only reads the key, the kind tag and the state; every other
// field of the concrete item is opaque to it.
type Reviewable interface {
	ReviewKey() string
	ReviewKind() ItemKind
	State() ReviewState
}
