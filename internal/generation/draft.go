package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xtlz/xtlz-english/internal/domain"
)

type cardResponse struct {
	Translation string `json:"translation"`
	Level       string `json:"level"`
	Type        string `json:"type"`
	Example     string `json:"example"`
}

type ruleResponse struct {
	Title       string   `json:"title"`
	Explanation string   `json:"explanation"`
	Examples    []string `json:"examples"`
	Level       string   `json:"level"`
}

// ParseCardDraft decodes a model answer into a draft for term.
// An unknown level falls back to the default level; any kind other than
// Phrase becomes Word.
func ParseCardDraft(term, raw string) (*domain.CardDraft, error) {
	var resp cardResponse
	if err := decodeJSON(raw, &resp); err != nil {
		return nil, err
	}

	translation := strings.TrimSpace(resp.Translation)
	if translation == "" {
		return nil, fmt.Errorf("%w: missing translation", ErrInvalidResponse)
	}

	return &domain.CardDraft{
		Term:        strings.TrimSpace(term),
		Translation: translation,
		Level:       parseLevel(resp.Level),
		Kind:        domain.NormalizeCardKind(resp.Type),
		Example:     strings.TrimSpace(resp.Example),
	}, nil
}

// ParseRuleDraft decodes a model answer into a rule draft. The topic is
// used as the title when the model omits one.
func ParseRuleDraft(topic, raw string) (*domain.RuleDraft, error) {
	var resp ruleResponse
	if err := decodeJSON(raw, &resp); err != nil {
		return nil, err
	}

	explanation := strings.TrimSpace(resp.Explanation)
	if explanation == "" {
		return nil, fmt.Errorf("%w: missing explanation", ErrInvalidResponse)
	}

	title := strings.TrimSpace(resp.Title)
	if title == "" {
		title = strings.TrimSpace(topic)
	}

	examples := make([]string, 0, len(resp.Examples))
	for _, e := range resp.Examples {
		if e = strings.TrimSpace(e); e != "" {
			examples = append(examples, e)
		}
	}

	return &domain.RuleDraft{
		Title:       title,
		Explanation: explanation,
		Examples:    examples,
		Level:       parseLevel(resp.Level),
	}, nil
}

// decodeJSON accepts a bare JSON object, optionally wrapped in a markdown
// code fence.
func decodeJSON(raw string, v any) error {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}
	if text == "" {
		return fmt.Errorf("%w: empty response", ErrInvalidResponse)
	}

	if err := json.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("%w: failed to parse JSON response: %v", ErrInvalidResponse, err)
	}
	return nil
}

func parseLevel(value string) domain.Level {
	level, err := domain.ParseLevel(value)
	if err != nil {
		return domain.DefaultLevel
	}
	return level
}
