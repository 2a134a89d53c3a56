package generation

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

var cardPrompt = template.Must(template.New("card").Parse(`Translate the English word or phrase {{printf "%q" .Term}} into Russian.
Determine its CEFR level (A1, A2, B1, B2, C1, C2).
Determine if it is a single "Word" or a "Phrase".
Provide a short, simple example sentence in English containing it.

Return ONLY a JSON object with this structure:
{
  "translation": "Russian translation",
  "level": "Level",
  "type": "Word or Phrase",
  "example": "Example sentence"
}
`))

var rulePrompt = template.Must(template.New("rule").Parse(`Explain the English grammar topic {{printf "%q" .Topic}} to a Russian-speaking learner{{if .Level}} at CEFR level {{.Level}}{{end}}.
Write the explanation in Russian using short markdown (bold for key forms, lists for usage cases).
Give two or three short English example sentences.

Return ONLY a JSON object with this structure:
{
  "title": "Short English name of the topic",
  "explanation": "Markdown explanation",
  "examples": ["Example sentence"],
  "level": "CEFR level"
}
`))

// CardPrompt renders the prompt asking for a card draft of term.
func CardPrompt(term string) (string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return "", ErrEmptyPrompt
	}
	return render(cardPrompt, struct{ Term string }{term})
}

// RulePrompt renders the prompt asking for a rule draft about topic.
// level may be empty.
func RulePrompt(topic, level string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", ErrEmptyPrompt
	}
	return render(rulePrompt, struct{ Topic, Level string }{topic, level})
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute %s prompt template: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
