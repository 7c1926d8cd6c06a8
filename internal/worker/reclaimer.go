package worker

import (
	"context"
	"log/slog"
	"time"

	"captainhub.app/relay/common/logger"
)

// Reclaimer periodically takes over messages a crashed consumer read but
// never acked, and runs them through the worker.
type Reclaimer struct {
	consumer Consumer
	worker   *Worker
	interval time.Duration

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func NewReclaimer(consumer Consumer, worker *Worker, interval time.Duration) *Reclaimer {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Reclaimer{
		consumer:  consumer,
		worker:    worker,
		interval:  interval,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Run blocks until Stop is called or ctx is done.
func (r *Reclaimer) Run(ctx context.Context) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "relay.worker.reclaimer",
	})

	defer close(r.stoppedCh)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "reclaimer started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			slog.InfoContext(ctx, "reclaimer stopping")
			return
		case <-ticker.C:
			r.ReclaimOnce(ctx)
		}
	}
}

func (r *Reclaimer) Stop() {
	close(r.stopCh)
	<-r.stoppedCh
}

// ReclaimOnce runs one reclaim cycle and returns how many messages it handled.
func (r *Reclaimer) ReclaimOnce(ctx context.Context) int {
	messages, err := r.consumer.ClaimStale(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "reclaim cycle error", "error", err)
		return 0
	}
	if len(messages) == 0 {
		return 0
	}

	start := time.Now()
	r.worker.HandleBatch(ctx, messages)
	slog.InfoContext(ctx, "reclaimed messages handled",
		"count", len(messages),
		"duration_ms", time.Since(start).Milliseconds())
	return len(messages)
}
