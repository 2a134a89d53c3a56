package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/xtlz/xtlz-english/internal/domain"
)

// Common errors
var (
	ErrNilEnricher = errors.New("enricher cannot be nil")
	ErrEmptyCardID = errors.New("card ID cannot be empty")
)

// CardEnricher fills a stored card's empty fields from generated content.
type CardEnricher interface {
	EnrichCard(ctx context.Context, id string) (*domain.Card, error)
}

// cardEnrichmentPayload represents the serialized data stored in the task
type cardEnrichmentPayload struct {
	CardID string `json:"card_id"`
}

// CardEnrichmentTask asks the enricher to complete one card.
type CardEnrichmentTask struct {
	id       uuid.UUID
	cardID   string
	enricher CardEnricher
	logger   *slog.Logger

	mu     sync.Mutex
	status TaskStatus
}

var _ Task = (*CardEnrichmentTask)(nil)

// NewCardEnrichmentTask creates a new card enrichment task
func NewCardEnrichmentTask(cardID string, enricher CardEnricher, logger *slog.Logger) (*CardEnrichmentTask, error) {
	if enricher == nil {
		return nil, ErrNilEnricher
	}
	cardID = strings.TrimSpace(cardID)
	if cardID == "" {
		return nil, ErrEmptyCardID
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CardEnrichmentTask{
		id:       uuid.New(),
		cardID:   cardID,
		enricher: enricher,
		logger:   logger.With("task_type", TaskTypeCardEnrichment, "card_id", cardID),
		status:   TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *CardEnrichmentTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *CardEnrichmentTask) Type() string {
	return TaskTypeCardEnrichment
}

// CardID returns the ID of the card being enriched.
func (t *CardEnrichmentTask) CardID() string {
	return t.cardID
}

// Payload returns the task data as JSON
func (t *CardEnrichmentTask) Payload() []byte {
	payload, err := json.Marshal(cardEnrichmentPayload{CardID: t.cardID})
	if err != nil {
		t.logger.Error("failed to marshal payload", "error", err)
		return []byte{}
	}
	return payload
}

// Status returns the current task status
func (t *CardEnrichmentTask) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *CardEnrichmentTask) setStatus(status TaskStatus) {
	t.mu.Lock()
	t.status = status
	t.mu.Unlock()
}

// Execute enriches the card.
func (t *CardEnrichmentTask) Execute(ctx context.Context) error {
	t.setStatus(TaskStatusProcessing)
	t.logger.Debug("enriching card")

	card, err := t.enricher.EnrichCard(ctx, t.cardID)
	if err != nil {
		t.setStatus(TaskStatusFailed)
		return fmt.Errorf("enrich card %q: %w", t.cardID, err)
	}

	t.setStatus(TaskStatusCompleted)
	t.logger.Info("card enrichment finished", "has_back", card != nil && !card.NeedsEnrichment())
	return nil
}

// CardEnrichmentTaskFactory creates CardEnrichmentTask instances
type CardEnrichmentTaskFactory struct {
	enricher CardEnricher
	logger   *slog.Logger
}

// NewCardEnrichmentTaskFactory creates a new factory for CardEnrichmentTasks
func NewCardEnrichmentTaskFactory(enricher CardEnricher, logger *slog.Logger) *CardEnrichmentTaskFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &CardEnrichmentTaskFactory{
		enricher: enricher,
		logger:   logger,
	}
}

// CreateTask creates a new CardEnrichmentTask for the specified card
func (f *CardEnrichmentTaskFactory) CreateTask(cardID string) (Task, error) {
	return NewCardEnrichmentTask(cardID, f.enricher, f.logger)
}

// PendingCardLister lists cards that still need enrichment.
type PendingCardLister interface {
	PendingEnrichment(ctx context.Context, limit int) ([]string, error)
}

// PendingEnrichmentRecovery returns a RecoveryFunc that creates one task per
// card still awaiting enrichment, oldest first, up to limit.
func PendingEnrichmentRecovery(
	lister PendingCardLister,
	factory *CardEnrichmentTaskFactory,
	limit int,
) RecoveryFunc {
	return func(ctx context.Context) ([]Task, error) {
		ids, err := lister.PendingEnrichment(ctx, limit)
		if err != nil {
			return nil, err
		}

		tasks := make([]Task, 0, len(ids))
		for _, id := range ids {
			task, err := factory.CreateTask(id)
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, task)
		}
		return tasks, nil
	}
}
