package worker

import (
	"context"

	"captainhub.app/relay/internal/model"
	"captainhub.app/relay/internal/queue"
)

// Consumer abstracts the message queue for testability.
type Consumer interface {
	Read(ctx context.Context) ([]queue.Message, error)
	ClaimStale(ctx context.Context) ([]queue.Message, error)
	Ack(ctx context.Context, msg queue.Message) error
	Requeue(ctx context.Context, msg queue.Message, errMsg string) error
	SendDLQ(ctx context.Context, msg queue.Message, errMsg string) error
}

// EventStore is the slice of the event record store the worker needs.
type EventStore interface {
	GetByID(ctx context.Context, id int64) (*model.EventRecord, error)
	MarkForwarded(ctx context.Context, id int64) error
	MarkForwardFailed(ctx context.Context, id int64, errMsg string) error
}

// Forwarder delivers one persisted event downstream.
type Forwarder interface {
	Forward(ctx context.Context, rec *model.EventRecord, traceID string) error
}
