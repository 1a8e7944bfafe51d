package notification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

type BreakerConfig struct {
	MaxFailures uint32
	Interval    time.Duration
	Timeout     time.Duration
}

// BreakerSender stops calling a failing provider for Timeout after MaxFailures consecutive errors.
// Permanent errors do not count as provider failures.
type BreakerSender struct {
	next Sender
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerSender(next Sender, name string, cfg BreakerConfig, log *slog.Logger) *BreakerSender {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrPermanent)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("mail circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}
	return &BreakerSender{next: next, cb: gobreaker.NewCircuitBreaker(st)}
}

func (b *BreakerSender) Send(ctx context.Context, n Notification) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Send(ctx, n)
	})
	return err
}

func (b *BreakerSender) State() gobreaker.State { return b.cb.State() }
