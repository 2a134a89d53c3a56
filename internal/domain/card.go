package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardFrontEmpty is returned when a card has no front text.
	ErrCardFrontEmpty = errors.New("card front cannot be empty")
)

// CardContent is the learner-editable part of a Card.
type CardContent struct {
	Front          string   `json:"front"`
	Back           string   `json:"back"`
	Example        string   `json:"example,omitempty"`
	Tags           []string `json:"tags"`
	Level          Level    `json:"level"`
	Kind           ItemKind `json:"type"`
	IsFavorite     bool     `json:"is_favorite"`
	RelatedRuleIDs []string `json:"related_rule_ids"`
}

// Normalize trims text fields and fills defaults for missing level, kind and
// list fields.
func (c CardContent) Normalize() CardContent {
	c.Front = strings.TrimSpace(c.Front)
	c.Back = strings.TrimSpace(c.Back)
	c.Example = strings.TrimSpace(c.Example)
	if c.Level == "" {
		c.Level = DefaultLevel
	}
	if c.Kind == "" {
		c.Kind = KindWord
	}
	c.Tags = cleanList(c.Tags)
	c.RelatedRuleIDs = cleanList(c.RelatedRuleIDs)
	return c
}

// Card is a vocabulary item: a word or phrase with its translation.
type Card struct {
	ID             string   `json:"id"`
	Front          string   `json:"front"`
	Back           string   `json:"back"`
	Example        string   `json:"example,omitempty"`
	Tags           []string `json:"tags"`
	Level          Level    `json:"level"`
	Kind           ItemKind `json:"type"`
	IsFavorite     bool     `json:"is_favorite"`
	RelatedRuleIDs []string `json:"related_rule_ids"`

	ReviewState

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCard creates a Card in the New state with a fresh short ID.
// Returns an error if validation fails.
func NewCard(content CardContent, now time.Time) (*Card, error) {
	card := &Card{
		ID:          shortuuid.New(),
		ReviewState: NewReviewState(),
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}
	card.setContent(content.Normalize())

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data, including its review state.
func (c *Card) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrCardIDEmpty
	}

	if strings.TrimSpace(c.Front) == "" {
		return ErrCardFrontEmpty
	}

	if !c.Kind.IsCardKind() {
		return fmt.Errorf("%w: card cannot be %q", ErrInvalidItemKind, c.Kind)
	}

	if !c.Level.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLevel, c.Level)
	}

	return c.ReviewState.Validate()
}

// Content returns the editable fields of the card.
func (c *Card) Content() CardContent {
	return CardContent{
		Front:          c.Front,
		Back:           c.Back,
		Example:        c.Example,
		Tags:           append([]string(nil), c.Tags...),
		Level:          c.Level,
		Kind:           c.Kind,
		IsFavorite:     c.IsFavorite,
		RelatedRuleIDs: append([]string(nil), c.RelatedRuleIDs...),
	}
}

// UpdateContent replaces the editable fields and bumps UpdatedAt.
// Review state is left untouched. The card is unchanged if the new content is invalid.
func (c *Card) UpdateContent(content CardContent, now time.Time) error {
	updated := *c
	updated.setContent(content.Normalize())
	if err := updated.Validate(); err != nil {
		return err
	}

	updated.UpdatedAt = now.UTC()
	*c = updated
	return nil
}

// NeedsEnrichment reports whether the card still lacks a translation.
func (c *Card) NeedsEnrichment() bool {
	return strings.TrimSpace(c.Back) == ""
}

// ReviewKey implements Reviewable.
func (c Card) ReviewKey() string { return c.ID }

// ReviewKind implements Reviewable.
func (c Card) ReviewKind() ItemKind { return c.Kind }

// State implements Reviewable.
func (c Card) State() ReviewState { return c.ReviewState.Clone() }

// WithReviewState returns a copy of the card carrying the given state.
func (c Card) WithReviewState(state ReviewState, now time.Time) Card {
	c.ReviewState = state.Clone()
	c.Tags = append([]string(nil), c.Tags...)
	c.RelatedRuleIDs = append([]string(nil), c.RelatedRuleIDs...)
	c.UpdatedAt = now.UTC()
	return c
}

func (c *Card) setContent(content CardContent) {
	c.Front = content.Front
	c.Back = content.Back
	c.Example = content.Example
	c.Tags = content.Tags
	c.Level = content.Level
	c.Kind = content.Kind
	c.IsFavorite = content.IsFavorite
	c.RelatedRuleIDs = content.RelatedRuleIDs
}

// cleanList trims entries, drops blanks and never returns nil.
func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
