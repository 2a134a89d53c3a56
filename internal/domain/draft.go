package domain

// CardDraft is AI-suggested content for a card whose front the learner typed.
type CardDraft struct {
	Term        string   `json:"term"`
	Translation string   `json:"translation"`
	Level       Level    `json:"level"`
	Kind        ItemKind `json:"type"`
	Example     string   `json:"example"`
}

// ApplyTo fills the empty fields of content from the draft. Fields the
// learner already entered are kept.
func (d CardDraft) ApplyTo(content CardContent) CardContent {
	if content.Back == "" {
		content.Back = d.Translation
	}
	if content.Example == "" {
		content.Example = d.Example
	}
	if content.Level == "" && d.Level.Valid() {
		content.Level = d.Level
	}
	if content.Kind == "" && d.Kind.IsCardKind() {
		content.Kind = d.Kind
	}
	return content
}

// RuleDraft is AI-suggested content for a grammar rule.
type RuleDraft struct {
	Title       string   `json:"title"`
	Explanation string   `json:"explanation"`
	Examples    []string `json:"examples"`
	Level       Level    `json:"level"`
}

// Content converts the draft into rule content ready to be saved.
func (d RuleDraft) Content() RuleContent {
	return RuleContent{
		Title:       d.Title,
		Explanation: d.Explanation,
		Examples:    append([]string(nil), d.Examples...),
		Level:       d.Level,
	}.Normalize()
}
