package kafka

import (
	"context"
	"encoding/json"
	"time"

	"stage-manager/internal/shared/contextutil"

	"github.com/google/uuid"
)

// NewOutboxEvent encodes payload and stamps the request id carried by ctx.
func NewOutboxEvent(ctx context.Context, aggregateType, aggregateID, eventType, topic string, payload any) (OutboxEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return OutboxEvent{}, err
	}

	return OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Topic:         topic,
		Payload:       data,
		Status:        OutboxStatusPending,
		CreatedAt:     time.Now().UTC(),
	}, nil
}
