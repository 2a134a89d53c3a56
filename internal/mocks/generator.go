package mocks

import (
	"context"
	"sync"

	"github.com/xtlz/xtlz-english/internal/domain"
	"github.com/xtlz/xtlz-english/internal/generation"
)

var _ generation.Generator = (*MockGenerator)(nil)

// MockGenerator implements generation.Generator for testing
type MockGenerator struct {
	DraftCardFn func(ctx context.Context, term string) (*domain.CardDraft, error)
	DraftRuleFn func(ctx context.Context, topic string) (*domain.RuleDraft, error)

	// Default response values
	CardDraft *domain.CardDraft
	RuleDraft *domain.RuleDraft
	Err       error

	mu     sync.Mutex
	terms  []string
	topics []string
}

// DraftCard implements generation.Generator.
func (m *MockGenerator) DraftCard(ctx context.Context, term string) (*domain.CardDraft, error) {
	m.mu.Lock()
	m.terms = append(m.terms, term)
	m.mu.Unlock()

	if m.DraftCardFn != nil {
		return m.DraftCardFn(ctx, term)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.CardDraft == nil {
		return &domain.CardDraft{Term: term, Level: domain.DefaultLevel, Kind: domain.KindWord}, nil
	}
	draft := *m.CardDraft
	return &draft, nil
}

// DraftRule implements generation.Generator.
func (m *MockGenerator) DraftRule(ctx context.Context, topic string) (*domain.RuleDraft, error) {
	m.mu.Lock()
	m.topics = append(m.topics, topic)
	m.mu.Unlock()

	if m.DraftRuleFn != nil {
		return m.DraftRuleFn(ctx, topic)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.RuleDraft == nil {
		return &domain.RuleDraft{Title: topic, Level: domain.DefaultLevel, Examples: []string{}}, nil
	}
	draft := *m.RuleDraft
	draft.Examples = append([]string(nil), m.RuleDraft.Examples...)
	return &draft, nil
}

// DraftCardTerms returns the terms passed to DraftCard, in call order.
func (m *MockGenerator) DraftCardTerms() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.terms...)
}

// DraftRuleTopics returns the topics passed to DraftRule, in call order.
func (m *MockGenerator) DraftRuleTopics() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.topics...)
}

// NewMockGeneratorWithDraft creates a MockGenerator that returns draft for every card.
func NewMockGeneratorWithDraft(draft domain.CardDraft) *MockGenerator {
	return &MockGenerator{CardDraft: &draft}
}

// NewMockGeneratorWithError creates a MockGenerator that fails every call with err.
func NewMockGeneratorWithError(err error) *MockGenerator {
	return &MockGenerator{Err: err}
}
