package api

import (
	"strings"

	"github.com/xtlz/xtlz-english/internal/domain"
)

// OutcomeRequest is the body of POST /api/review/items/{id}/outcome.
type OutcomeRequest struct {
	Remembered *bool `json:"remembered" validate:"required"`
}

// SessionResultRequest is one answer inside a SessionRequest.
type SessionResultRequest struct {
	ItemID     string `json:"item_id"    validate:"required"`
	Remembered *bool  `json:"remembered" validate:"required"`
}

// SessionRequest is the body of POST /api/review/sessions.
type SessionRequest struct {
	Results []SessionResultRequest `json:"results" validate:"dive"`
}

// CardRequest is the body for creating or replacing a card.
type CardRequest struct {
	Front          string   `json:"front"            validate:"required,max=500"`
	Back           string   `json:"back"             validate:"max=1000"`
	Example        string   `json:"example"          validate:"max=2000"`
	Tags           []string `json:"tags"             validate:"max=50,dive,max=100"`
	Level          string   `json:"level"`
	Kind           string   `json:"type"`
	IsFavorite     bool     `json:"is_favorite"`
	RelatedRuleIDs []string `json:"related_rule_ids" validate:"max=100"`
	// AutoFill asks for a generated translation when Back is empty.
	// Ignored on update.
	AutoFill bool `json:"auto_fill"`
}

// Content converts the request into card content. Level and kind are
// validated by the domain when the card is built.
func (req CardRequest) Content() domain.CardContent {
	return domain.CardContent{
		Front:          req.Front,
		Back:           req.Back,
		Example:        req.Example,
		Tags:           req.Tags,
		Level:          parseLevel(req.Level),
		Kind:           parseCardKind(req.Kind),
		IsFavorite:     req.IsFavorite,
		RelatedRuleIDs: req.RelatedRuleIDs,
	}
}

// RuleRequest is the body for creating or replacing a grammar rule.
type RuleRequest struct {
	Title       string   `json:"title"       validate:"required,max=300"`
	Explanation string   `json:"explanation" validate:"max=20000"`
	Examples    []string `json:"examples"    validate:"max=50,dive,max=1000"`
	Level       string   `json:"level"`
	IsFavorite  bool     `json:"is_favorite"`
}

// Content converts the request into rule content.
func (req RuleRequest) Content() domain.RuleContent {
	return domain.RuleContent{
		Title:       req.Title,
		Explanation: req.Explanation,
		Examples:    req.Examples,
		Level:       parseLevel(req.Level),
		IsFavorite:  req.IsFavorite,
	}
}

// FavoriteRequest is the body of the favorite toggles.
type FavoriteRequest struct {
	Favorite *bool `json:"favorite" validate:"required"`
}

// CardDraftRequest asks for a generated translation.
type CardDraftRequest struct {
	Term string `json:"term" validate:"required,max=500"`
}

// RuleDraftRequest asks for a generated grammar explanation.
type RuleDraftRequest struct {
	Topic string `json:"topic" validate:"required,max=300"`
}

// RuleResponse is a rule with its explanation rendered to HTML.
type RuleResponse struct {
	domain.Rule
	ExplanationHTML string `json:"explanation_html"`
}

// RuleDraftResponse is a generated rule draft with rendered explanation.
type RuleDraftResponse struct {
	domain.RuleDraft
	ExplanationHTML string `json:"explanation_html"`
}

// ReviewItemResponse is one item of a review batch.
type ReviewItemResponse struct {
	ID   string          `json:"id"`
	Kind domain.ItemKind `json:"type"`
	Card *domain.Card    `json:"card,omitempty"`
	Rule *RuleResponse   `json:"rule,omitempty"`
}

// ReviewBatchResponse is the body of GET /api/review/batch.
type ReviewBatchResponse struct {
	Items       []ReviewItemResponse `json:"items"`
	DueCount    int                  `json:"due_count"`
	GeneratedAt string               `json:"generated_at"`
}

// ImportResponse reports what an import stored.
type ImportResponse struct {
	Cards    int  `json:"cards"`
	Rules    int  `json:"rules"`
	Replaced bool `json:"replaced"`
}

// parseLevel uppercases the level. Empty input keeps the default.
func parseLevel(value string) domain.Level {
	return domain.Level(strings.ToUpper(strings.TrimSpace(value)))
}

// parseCardKind accepts "word" and "phrase" in any case. Other values are
// passed through so the domain rejects them.
func parseCardKind(value string) domain.ItemKind {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return ""
	case strings.EqualFold(value, string(domain.KindWord)):
		return domain.KindWord
	case strings.EqualFold(value, string(domain.KindPhrase)):
		return domain.KindPhrase
	default:
		return domain.ItemKind(value)
	}
}
