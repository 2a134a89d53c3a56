package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"
)

// Rule-specific validation errors
var (
	// ErrRuleIDEmpty is returned when a rule ID is empty.
	ErrRuleIDEmpty = errors.New("rule ID cannot be empty")

	// ErrRuleTitleEmpty is returned when a rule has no title.
	ErrRuleTitleEmpty = errors.New("rule title cannot be empty")
)

// RuleContent is the learner-editable part of a Rule.
type RuleContent struct {
	Title       string   `json:"title"`
	Explanation string   `json:"explanation"`
	Examples    []string `json:"examples"`
	Level       Level    `json:"level"`
	IsFavorite  bool     `json:"is_favorite"`
}

// Normalize trims text fields and fills defaults.
func (c RuleContent) Normalize() RuleContent {
	c.Title = strings.TrimSpace(c.Title)
	c.Explanation = strings.TrimSpace(c.Explanation)
	if c.Level == "" {
		c.Level = DefaultLevel
	}
	c.Examples = cleanList(c.Examples)
	return c
}

// Rule is a grammar rule. The explanation is markdown.
// Rules are reviewed with the same state machine as cards.
type Rule struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Explanation string   `json:"explanation"`
	Examples    []string `json:"examples"`
	Level       Level    `json:"level"`
	IsFavorite  bool     `json:"is_favorite"`

	ReviewState

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewRule creates a Rule in the New state with a fresh short ID.
func NewRule(content RuleContent, now time.Time) (*Rule, error) {
	rule := &Rule{
		ID:          shortuuid.New(),
		ReviewState: NewReviewState(),
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}
	rule.setContent(content.Normalize())

	if err := rule.Validate(); err != nil {
		return nil, err
	}

	return rule, nil
}

// Validate checks if the Rule has valid data, including its review state.
func (r *Rule) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrRuleIDEmpty
	}

	if strings.TrimSpace(r.Title) == "" {
		return ErrRuleTitleEmpty
	}

	if !r.Level.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLevel, r.Level)
	}

	return r.ReviewState.Validate()
}

// Content returns the editable fields of the rule.
func (r *Rule) Content() RuleContent {
	return RuleContent{
		Title:       r.Title,
		Explanation: r.Explanation,
		Examples:    append([]string(nil), r.Examples...),
		Level:       r.Level,
		IsFavorite:  r.IsFavorite,
	}
}

// UpdateContent replaces the editable fields and bumps UpdatedAt.
func (r *Rule) UpdateContent(content RuleContent, now time.Time) error {
	updated := *r
	updated.setContent(content.Normalize())
	if err := updated.Validate(); err != nil {
		return err
	}

	updated.UpdatedAt = now.UTC()
	*r = updated
	return nil
}

// ReviewKey implements Reviewable.
func (r Rule) ReviewKey() string { return r.ID }

// ReviewKind implements Reviewable. Rules always report KindRule.
func (r Rule) ReviewKind() ItemKind { return KindRule }

// State implements Reviewable.
func (r Rule) State() ReviewState { return r.ReviewState.Clone() }

// WithReviewState returns a copy of the rule carrying the given state.
func (r Rule) WithReviewState(state ReviewState, now time.Time) Rule {
	r.ReviewState = state.Clone()
	r.Examples = append([]string(nil), r.Examples...)
	r.UpdatedAt = now.UTC()
	return r
}

func (r *Rule) setContent(content RuleContent) {
	r.Title = content.Title
	r.Explanation = content.Explanation
	r.Examples = content.Examples
	r.Level = content.Level
	r.IsFavorite = content.IsFavorite
}
