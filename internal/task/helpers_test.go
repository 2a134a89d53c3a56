package task

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/xtlz/xtlz-english/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// funcTask runs fn when executed.
type funcTask struct {
	id uuid.UUID
	fn func(ctx context.Context) error
}

func newFuncTask(fn func(ctx context.Context) error) *funcTask {
	return &funcTask{id: uuid.New(), fn: fn}
}

func (t *funcTask) ID() uuid.UUID                     { return t.id }
func (t *funcTask) Type() string                      { return "func" }
func (t *funcTask) Payload() []byte                   { return []byte("{}") }
func (t *funcTask) Status() TaskStatus                { return TaskStatusPending }
func (t *funcTask) Execute(ctx context.Context) error { return t.fn(ctx) }

// fakeEnricher records enriched card IDs.
type fakeEnricher struct {
	mu   sync.Mutex
	ids  []string
	err  error
	done chan string
}

func (e *fakeEnricher) EnrichCard(_ context.Context, id string) (*domain.Card, error) {
	e.mu.Lock()
	e.ids = append(e.ids, id)
	e.mu.Unlock()

	if e.done != nil {
		e.done <- id
	}
	if e.err != nil {
		return nil, e.err
	}
	return &domain.Card{ID: id, Front: "cat", Back: "кот"}, nil
}

func (e *fakeEnricher) PendingEnrichment(_ context.Context, limit int) ([]string, error) {
	if e.err != nil {
		return nil, e.err
	}
	ids := []string{"a", "b", "c"}
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}
	return ids, nil
}

func (e *fakeEnricher) enriched() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.ids...)
}

// recordingSubmitter records submitted tasks.
type recordingSubmitter struct {
	tasks []Task
	err   error
}

func (s *recordingSubmitter) Submit(_ context.Context, task Task) error {
	if s.err != nil {
		return s.err
	}
	s.tasks = append(s.tasks, task)
	return nil
}
