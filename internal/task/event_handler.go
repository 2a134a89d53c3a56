package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xtlz/xtlz-english/internal/events"
)

// TaskSubmitter accepts tasks for background execution. TaskRunner implements it.
type TaskSubmitter interface {
	Submit(ctx context.Context, task Task) error
}

// EnrichmentEventHandler turns card enrichment events into queued tasks.
type EnrichmentEventHandler struct {
	factory *CardEnrichmentTaskFactory
	runner  TaskSubmitter
	logger  *slog.Logger
}

var _ events.EventHandler = (*EnrichmentEventHandler)(nil)

// NewEnrichmentEventHandler creates a new event handler that uses the given
// factory to create tasks and submits them to runner.
func NewEnrichmentEventHandler(
	factory *CardEnrichmentTaskFactory,
	runner TaskSubmitter,
	logger *slog.Logger,
) *EnrichmentEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EnrichmentEventHandler{
		factory: factory,
		runner:  runner,
		logger:  logger.With("component", "enrichment_event_handler"),
	}
}

// HandleEvent implements events.EventHandler. Events of other types are ignored.
func (h *EnrichmentEventHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	if event.Type != events.TypeCardEnrichmentRequested {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload events.CardEnrichmentPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	task, err := h.factory.CreateTask(payload.CardID)
	if err != nil {
		h.logger.Error("failed to create task",
			"error", err,
			"card_id", payload.CardID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.runner.Submit(ctx, task); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", task.ID(),
			"card_id", payload.CardID,
			"event_id", event.ID)
		return err
	}

	h.logger.Debug("enrichment task submitted",
		"task_id", task.ID(),
		"card_id", payload.CardID,
		"event_id", event.ID)
	return nil
}
