package notification

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/delordemm1/agency-portfolio-api/internal/metrics"
)

// Outbox is the consumer side of the queue. A dequeued notification stays reserved until it is
// acknowledged or dead-lettered; Requeue hands unacknowledged ones back after a restart.
type Outbox interface {
	Dequeue(ctx context.Context, timeout time.Duration) (Notification, bool, error)
	Ack(ctx context.Context, n Notification) error
	DeadLetter(ctx context.Context, n Notification, cause error) error
	Requeue(ctx context.Context) (int, error)
	Len(ctx context.Context) (int64, error)
}

type WorkerConfig struct {
	Concurrency     int
	MaxRetries      uint64
	PollTimeout     time.Duration
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func (c WorkerConfig) withDefaults() WorkerConfig {
	if c.Concurrency < 1 {
		c.Concurrency = 1
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = 5 * time.Second
	}
	if c.InitialInterval <= 0 {
		c.InitialInterval = 500 * time.Millisecond
	}
	if c.MaxInterval <= 0 {
		c.MaxInterval = 30 * time.Second
	}
	return c
}

// Worker drains the outbox with a fixed pool of goroutines.
type Worker struct {
	outbox  Outbox
	sender  Sender
	log     *slog.Logger
	metrics *metrics.Recorder
	cfg     WorkerConfig
}

func NewWorker(outbox Outbox, sender Sender, log *slog.Logger, m *metrics.Recorder, cfg WorkerConfig) *Worker {
	return &Worker{outbox: outbox, sender: sender, log: log, metrics: m, cfg: cfg.withDefaults()}
}

// Run blocks until ctx is cancelled and every in-flight delivery has finished.
func (w *Worker) Run(ctx context.Context) {
	if moved, err := w.outbox.Requeue(ctx); err != nil {
		w.log.Error("failed to requeue unacknowledged mail", "error", err)
	} else if moved > 0 {
		w.log.Warn("requeued unacknowledged mail", "count", moved)
	}
	w.log.Info("mail worker started", "concurrency", w.cfg.Concurrency)
	var wg sync.WaitGroup
	for i := 0; i < w.cfg.Concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w.loop(ctx, id)
		}(i)
	}
	wg.Wait()
	w.log.Info("mail worker stopped")
}

func (w *Worker) loop(ctx context.Context, id int) {
	for ctx.Err() == nil {
		n, ok, err := w.outbox.Dequeue(ctx, w.cfg.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.log.Error("dequeue failed", "worker", id, "error", err)
			sleep(ctx, w.cfg.InitialInterval)
			continue
		}
		if !ok {
			if depth, err := w.outbox.Len(ctx); err == nil {
				w.metrics.OutboxDepth(depth)
			}
			continue
		}
		// Delivery outlives cancellation; if the process dies first the message is still on the
		// processing list and is requeued on the next start.
		w.deliver(context.WithoutCancel(ctx), n)
	}
}

func (w *Worker) deliver(ctx context.Context, n Notification) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = w.cfg.InitialInterval
	policy.MaxInterval = w.cfg.MaxInterval
	policy.MaxElapsedTime = 0

	op := func() error {
		n.Attempts++
		err := w.sender.Send(ctx, n)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrPermanent) {
			return backoff.Permanent(err)
		}
		w.metrics.MailDelivery("retry")
		w.log.Warn("mail delivery failed, will retry", "id", n.ID, "attempt", n.Attempts, "error", err)
		return err
	}

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(policy, w.cfg.MaxRetries), ctx))
	if err == nil {
		w.metrics.MailDelivery("sent")
		w.log.Info("mail delivered", "id", n.ID, "template", n.Template, "attempts", n.Attempts)
		if err := w.outbox.Ack(ctx, n); err != nil {
			w.log.Error("failed to acknowledge notification", "id", n.ID, "error", err)
		}
		return
	}

	w.metrics.MailDelivery("dead")
	w.log.Error("mail dead-lettered", "id", n.ID, "template", n.Template, "attempts", n.Attempts, "error", err)
	if dlErr := w.outbox.DeadLetter(ctx, n, err); dlErr != nil {
		w.log.Error("failed to dead-letter notification", "id", n.ID, "error", dlErr)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
