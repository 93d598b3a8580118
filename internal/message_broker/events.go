package message_broker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/RezaEskandarii/prnotifier/types"
)

// ExecutionEvent is published after every schedule run.
type ExecutionEvent struct {
	Instance     string             `json:"instance"`
	ScheduleName string             `json:"scheduleName"`
	Log          types.ExecutionLog `json:"log"`
	DurationMs   int64              `json:"executionTimeMs"`
}

func NewExecutionEvent(instance, scheduleName string, entry types.ExecutionLog) ExecutionEvent {
	return ExecutionEvent{
		Instance:     instance,
		ScheduleName: scheduleName,
		Log:          entry,
		DurationMs:   entry.ExecutionTimeMs(),
	}
}

// PublishEvent encodes event as JSON and publishes it on broker.
func PublishEvent(ctx context.Context, broker MessageBroker, event ExecutionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal execution event: %w", err)
	}
	if err := broker.Publish(ctx, payload); err != nil {
		return fmt.Errorf("publish execution event: %w", err)
	}
	return nil
}

// DecodeEvent parses a message produced by PublishEvent.
func DecodeEvent(message []byte) (ExecutionEvent, error) {
	var event ExecutionEvent
	if err := json.Unmarshal(message, &event); err != nil {
		return ExecutionEvent{}, fmt.Errorf("decode execution event: %w", err)
	}
	return event, nil
}
