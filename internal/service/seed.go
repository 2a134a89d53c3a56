package service

import (
	"time"

	"github.com/xtlz/xtlz-english/internal/domain"
)

// SeedCollection returns the starter collection given to a new learner:
// two cards and one grammar rule. The phrase card starts in Learning and
// was last shown a day before now, so it is due immediately.
func SeedCollection(profile domain.Profile, now time.Time) (*domain.Collection, error) {
	word, err := domain.NewCard(domain.CardContent{
		Front:   "Serendipity",
		Back:    "Интуитивная прозорливость, счастливая случайность",
		Example: "It was serendipity that I found this shop.",
		Tags:    []string{"vocabulary", "advanced"},
		Level:   domain.LevelC1,
		Kind:    domain.KindWord,
	}, now)
	if err != nil {
		return nil, err
	}

	phrase, err := domain.NewCard(domain.CardContent{
		Front:      "Piece of cake",
		Back:       "Проще простого (пара пустяков)",
		Example:    "The exam was a piece of cake.",
		Tags:       []string{"idioms", "casual"},
		Level:      domain.LevelB1,
		Kind:       domain.KindPhrase,
		IsFavorite: true,
	}, now)
	if err != nil {
		return nil, err
	}
	lastShown := now.Add(-24 * time.Hour).UTC()
	phrase.ReviewState = domain.ReviewState{
		Status:               domain.StatusLearning,
		ViewCount:            2,
		SuccessCount:         1,
		ErrorCount:           1,
		LastShownDate:        &lastShown,
		ConsecutiveSuccesses: 1,
	}

	rule, err := domain.NewRule(domain.RuleContent{
		Title:       "Present Perfect",
		Explanation: "Используется для связи прошлого с настоящим. Важен **результат**, а не время.",
		Examples:    []string{"I have already finished my work.", "Have you ever been to London?"},
		Level:       domain.LevelB1,
	}, now)
	if err != nil {
		return nil, err
	}

	if profile.Stats == nil {
		profile.Stats = []domain.DailyStat{}
	}
	return &domain.Collection{
		Cards:   []domain.Card{*word, *phrase},
		Rules:   []domain.Rule{*rule},
		Profile: profile,
	}, nil
}
