package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"stage-manager/internal/shared/kvstore"
)

const (
	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
	OutboxStatusFailed  = "failed"
)

const (
	retryStep     = 15 * time.Second
	maxRetrySteps = 10
	sentRetention = 24 * time.Hour
	maxErrorLen   = 500
)

type OutboxEvent struct {
	ID            string          `json:"id"`
	RequestID     string          `json:"request_id,omitempty"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Topic         string          `json:"topic"`
	Payload       json.RawMessage `json:"payload"`
	Status        string          `json:"status"`
	RetryCount    int             `json:"retry_count"`
	ErrorMessage  string          `json:"error_message,omitempty"`
	NextRetryAt   *time.Time      `json:"next_retry_at,omitempty"`
	ProcessedAt   *time.Time      `json:"processed_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

//go:generate mockgen -source=outbox_repo.go -destination=mock/outbox_repo_mock.go -package=mock

type OutboxRepository interface {
	Create(ctx context.Context, event OutboxEvent) error
	ListPending(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, reason string) error
}

// outboxRepository keeps the outbox as one collection in the key-value store.
// Every change is a single Store.Update, so the API and a separate worker
// process can share the collection.
type outboxRepository struct {
	store kvstore.Store
	now   func() time.Time
}

func NewOutboxRepository(store kvstore.Store) OutboxRepository {
	return &outboxRepository{store: store, now: func() time.Time { return time.Now().UTC() }}
}

func (r *outboxRepository) Create(ctx context.Context, event OutboxEvent) error {
	if event.Status == "" {
		event.Status = OutboxStatusPending
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = r.now()
	}
	if err := ValidateOutboxEvent(event); err != nil {
		return err
	}

	return kvstore.UpdateCollection(ctx, r.store, kvstore.KeyOutboxEvents, func(rows []OutboxEvent) ([]OutboxEvent, error) {
		return append(rows, event), nil
	})
}

func (r *outboxRepository) ListPending(ctx context.Context, limit int) ([]OutboxEvent, error) {
	rows, err := kvstore.LoadCollection[OutboxEvent](ctx, r.store, kvstore.KeyOutboxEvents)
	if err != nil {
		return nil, err
	}

	now := r.now()
	events := make([]OutboxEvent, 0, limit)
	for _, e := range rows {
		if e.Status != OutboxStatusPending && e.Status != OutboxStatusFailed {
			continue
		}
		if e.NextRetryAt != nil && e.NextRetryAt.After(now) {
			continue
		}
		events = append(events, e)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.Before(events[j].CreatedAt)
	})
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (r *outboxRepository) MarkSent(ctx context.Context, id string) error {
	return r.update(ctx, id, func(e *OutboxEvent, now time.Time) {
		e.Status = OutboxStatusSent
		e.ErrorMessage = ""
		e.NextRetryAt = nil
		e.ProcessedAt = &now
	})
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	if len(reason) > maxErrorLen {
		reason = reason[:maxErrorLen]
	}
	return r.update(ctx, id, func(e *OutboxEvent, now time.Time) {
		e.Status = OutboxStatusFailed
		e.RetryCount++
		e.ErrorMessage = reason
		steps := e.RetryCount
		if steps > maxRetrySteps {
			steps = maxRetrySteps
		}
		next := now.Add(time.Duration(steps) * retryStep)
		e.NextRetryAt = &next
	})
}

func (r *outboxRepository) update(ctx context.Context, id string, fn func(e *OutboxEvent, now time.Time)) error {
	return kvstore.UpdateCollection(ctx, r.store, kvstore.KeyOutboxEvents, func(rows []OutboxEvent) ([]OutboxEvent, error) {
		now := r.now()
		found := false
		kept := rows[:0]
		for i := range rows {
			if rows[i].ID == id {
				fn(&rows[i], now)
				found = true
			}
			// sent events are dropped once they are older than the retention window
			if rows[i].Status == OutboxStatusSent && rows[i].ProcessedAt != nil &&
				now.Sub(*rows[i].ProcessedAt) > sentRetention {
				continue
			}
			kept = append(kept, rows[i])
		}
		if !found {
			return nil, fmt.Errorf("outbox event %s not found", id)
		}
		return kept, nil
	})
}

func ValidateOutboxEvent(event OutboxEvent) error {
	if event.ID == "" {
		return errors.New("outbox id is required")
	}
	if event.Topic == "" {
		return errors.New("outbox topic is required")
	}
	if len(event.Payload) == 0 {
		return errors.New("outbox payload is required")
	}
	switch event.Status {
	case OutboxStatusPending, OutboxStatusSent, OutboxStatusFailed:
		return nil
	default:
		return fmt.Errorf("invalid outbox status: %s", event.Status)
	}
}
