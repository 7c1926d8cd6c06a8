package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"captainhub.app/relay/common/logger"
	"captainhub.app/relay/internal/model"
	"captainhub.app/relay/internal/queue"
	"captainhub.app/relay/internal/store"
)

// maxErrorLen caps error text stored on records and stream entries.
const maxErrorLen = 1000

type Config struct {
	MaxAttempts int
	Concurrency int
	// ErrorBackoff is how long Run pauses after a failed read.
	ErrorBackoff time.Duration
}

type Worker struct {
	consumer  Consumer
	events    EventStore
	forwarder Forwarder
	status    queue.StatusPublisher
	cfg       Config

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func New(consumer Consumer, events EventStore, forwarder Forwarder, status queue.StatusPublisher, cfg Config) *Worker {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = time.Second
	}
	return &Worker{
		consumer:  consumer,
		events:    events,
		forwarder: forwarder,
		status:    status,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

func (w *Worker) Run(ctx context.Context) error {
	defer close(w.stoppedCh)

	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "relay.worker"})
	slog.InfoContext(ctx, "worker started", "concurrency", w.cfg.Concurrency, "max_attempts", w.cfg.MaxAttempts)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			slog.InfoContext(ctx, "worker stopping")
			return nil
		default:
		}

		messages, err := w.consumer.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.ErrorContext(ctx, "batch read error", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-w.stopCh:
				return nil
			case <-time.After(w.cfg.ErrorBackoff):
			}
			continue
		}

		w.HandleBatch(ctx, messages)
	}
}

func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.stoppedCh
}

// HandleBatch processes messages concurrently, bounded by Config.Concurrency,
// and returns once all of them are settled.
func (w *Worker) HandleBatch(ctx context.Context, messages []queue.Message) {
	var g errgroup.Group
	g.SetLimit(w.cfg.Concurrency)
	for _, msg := range messages {
		g.Go(func() error {
			w.Handle(ctx, msg)
			return nil
		})
	}
	_ = g.Wait()
}

// Handle processes one message and settles it: acked on success, requeued
// while attempts remain, dead-lettered otherwise.
func (w *Worker) Handle(ctx context.Context, msg queue.Message) {
	msgID := msg.ID
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		MessageID:     &msgID,
		EventRecordID: &msg.EventRecordID,
		EventID:       logger.Ptr(msg.EventID),
		EventType:     logger.Ptr(msg.EventType),
		WorkspaceID:   msg.WorkspaceID,
	})

	sc := logger.StartSpanFromTraceID(ctx, msg.TraceID, "worker.forward_event",
		trace.WithSpanKind(trace.SpanKindConsumer))
	defer sc.End()
	ctx = sc.Context()
	sc.SetEvent(msg.EventID, msg.Fingerprint, msg.WorkspaceID)

	if err := w.processSafe(ctx, msg); err != nil {
		sc.RecordError(err)
		slog.ErrorContext(ctx, "message processing failed", "error", err, "attempt", msg.Attempt)
		w.handleFailed(ctx, msg, err)
	}
}

func (w *Worker) processSafe(ctx context.Context, msg queue.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in message processing", "panic", r)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.ProcessMessage(ctx, msg)
}

// ProcessMessage forwards the event behind msg and acks it. Redelivered
// messages for records already forwarded are acked without a second POST.
func (w *Worker) ProcessMessage(ctx context.Context, msg queue.Message) error {
	start := time.Now()

	rec, err := w.events.GetByID(ctx, msg.EventRecordID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slog.WarnContext(ctx, "event record not found, dropping message")
			w.ack(ctx, msg)
			return nil
		}
		return fmt.Errorf("loading event record: %w", err)
	}

	switch {
	case rec.ForwardStatus == model.ForwardStatusForwarded:
		slog.InfoContext(ctx, "event already forwarded, acking redelivery")
		w.ack(ctx, msg)
		return nil
	case rec.WorkspaceID == nil:
		slog.InfoContext(ctx, "event has no owning workspace, not forwarding")
		w.ack(ctx, msg)
		return nil
	}

	if err := w.forwarder.Forward(ctx, rec, msg.TraceID); err != nil {
		return err
	}

	if err := w.events.MarkForwarded(ctx, rec.ID); err != nil {
		// The agent has the event; a redelivery would post it again.
		return &PermanentError{Err: fmt.Errorf("marking event forwarded: %w", err)}
	}
	w.publish(ctx, rec, model.ForwardStatusForwarded, "")
	w.ack(ctx, msg)

	slog.InfoContext(ctx, "event forwarded", "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (w *Worker) handleFailed(ctx context.Context, msg queue.Message, err error) {
	errMsg := logger.Truncate(err.Error(), maxErrorLen)

	if !IsPermanent(err) && msg.Attempt < w.cfg.MaxAttempts {
		slog.WarnContext(ctx, "requeuing failed message", "attempt", msg.Attempt)
		if requeueErr := w.consumer.Requeue(ctx, msg, errMsg); requeueErr != nil {
			slog.ErrorContext(ctx, "failed to requeue message", "error", requeueErr)
		}
		return
	}

	slog.ErrorContext(ctx, "giving up on message, sending to DLQ",
		"attempts", msg.Attempt,
		"permanent", IsPermanent(err))

	if markErr := w.events.MarkForwardFailed(ctx, msg.EventRecordID, errMsg); markErr != nil {
		slog.ErrorContext(ctx, "failed to mark event forward failure", "error", markErr)
	}
	if msg.WorkspaceID != nil {
		w.publish(ctx, &model.EventRecord{
			ID:          msg.EventRecordID,
			EventID:     msg.EventID,
			EventType:   msg.EventType,
			WorkspaceID: msg.WorkspaceID,
		}, model.ForwardStatusFailed, errMsg)
	}
	if dlqErr := w.consumer.SendDLQ(ctx, msg, errMsg); dlqErr != nil {
		slog.ErrorContext(ctx, "failed to send to DLQ", "error", dlqErr)
	}
}

func (w *Worker) ack(ctx context.Context, msg queue.Message) {
	if err := w.consumer.Ack(ctx, msg); err != nil {
		// the reclaimer will pick it up again; the status check keeps that safe
		slog.WarnContext(ctx, "failed to ack message", "error", err)
	}
}

func (w *Worker) publish(ctx context.Context, rec *model.EventRecord, status model.ForwardStatus, errMsg string) {
	if w.status == nil || rec.WorkspaceID == nil {
		return
	}
	if err := w.status.Publish(ctx, *rec.WorkspaceID, queue.StatusUpdate{
		EventRecordID: rec.ID,
		EventID:       rec.EventID,
		EventType:     rec.EventType,
		Status:        string(status),
		Error:         errMsg,
	}); err != nil {
		slog.WarnContext(ctx, "failed to publish event status", "error", err)
	}
}
