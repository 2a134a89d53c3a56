package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRule(t *testing.T) {
	t.Parallel()

	rule, err := NewRule(RuleContent{
		Title:       "Present Perfect",
		Explanation: "Links the past with the present.",
		Examples:    []string{"I have already finished.", ""},
	}, testNow)
	require.NoError(t, err)

	assert.NotEmpty(t, rule.ID)
	assert.Equal(t, []string{"I have already finished."}, rule.Examples)
	assert.Equal(t, DefaultLevel, rule.Level)
	assert.Equal(t, KindRule, rule.ReviewKind())
	assert.Equal(t, StatusNew, rule.Status)

	_, err = NewRule(RuleContent{Title: " "}, testNow)
	assert.ErrorIs(t, err, ErrRuleTitleEmpty)
}

func TestRuleUpdateContent(t *testing.T) {
	t.Parallel()

	rule, err := NewRule(RuleContent{Title: "Articles", Level: LevelA2}, testNow)
	require.NoError(t, err)

	later := testNow.Add(time.Hour)
	require.NoError(t, rule.UpdateContent(RuleContent{Title: "Articles: a/an/the", Level: LevelA2, IsFavorite: true}, later))
	assert.True(t, rule.IsFavorite)
	assert.Equal(t, later, rule.UpdatedAt)

	assert.ErrorIs(t, rule.UpdateContent(RuleContent{Title: "x", Level: "Q"}, later), ErrInvalidLevel)
	assert.Equal(t, "Articles: a/an/the", rule.Title)
}

func TestCollectionValidate(t *testing.T) {
	t.Parallel()

	card, err := NewCard(CardContent{Front: "cat"}, testNow)
	require.NoError(t, err)
	rule, err := NewRule(RuleContent{Title: "Plurals"}, testNow)
	require.NoError(t, err)

	c := Collection{Cards: []Card{*card}, Rules: []Rule{*rule}, Profile: NewProfile("Ann", LevelB1)}
	require.NoError(t, c.Validate())
	assert.Len(t, c.Reviewables(), 2)

	dup := *rule
	dup.ID = card.ID
	c.Rules = []Rule{dup}
	assert.ErrorIs(t, c.Validate(), ErrInvalidID)

	broken := *card
	broken.ViewCount = 3
	c = Collection{Cards: []Card{broken}, Profile: NewProfile("Ann", LevelB1)}
	assert.ErrorIs(t, c.Validate(), ErrInvalidReviewState)
}
