package notification

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delordemm1/agency-portfolio-api/internal/domainerr"
	"github.com/delordemm1/agency-portfolio-api/internal/notification/templates"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newQueue(t *testing.T) *RedisQueue {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisQueue(rdb)
}

type recordingSender struct {
	mu    sync.Mutex
	sent  []Notification
	calls int
	err   error
	onHit func()
}

func (s *recordingSender) Send(_ context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, n)
	if s.onHit != nil {
		s.onHit()
	}
	return nil
}

type failingQueue struct{}

func (failingQueue) Enqueue(context.Context, Notification) error { return errors.New("redis down") }

func TestServiceSendEnqueues(t *testing.T) {
	q := newQueue(t)
	svc := NewService(discardLogger(), q, templates.NewEngine(templates.Config{}, nil), "noreply@agency.test")

	require.NoError(t, svc.Send(context.Background(), Notification{To: []string{"a@x.com"}, Subject: "hi", TextBody: "body"}))

	n, ok, err := q.Dequeue(context.Background(), time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, "noreply@agency.test", n.From)
	assert.Equal(t, []string{"a@x.com"}, n.To)
	assert.False(t, n.EnqueuedAt.IsZero())
}

func TestServiceSendRequiresRecipients(t *testing.T) {
	svc := NewService(discardLogger(), newQueue(t), templates.NewEngine(templates.Config{}, nil), "x@y.z")
	assert.Error(t, svc.Send(context.Background(), Notification{Subject: "hi"}))
}

func TestServiceSendQueueFailureIsProviderUnavailable(t *testing.T) {
	svc := NewService(discardLogger(), failingQueue{}, templates.NewEngine(templates.Config{}, nil), "x@y.z")
	err := svc.Send(context.Background(), Notification{To: []string{"a@x.com"}, Subject: "s", TextBody: "b"})
	require.ErrorIs(t, err, domainerr.ErrProviderUnavailable)
}

func TestSendTemplate(t *testing.T) {
	q := newQueue(t)
	svc := NewService(discardLogger(), q, templates.NewEngine(templates.Config{}, nil), "noreply@agency.test")

	err := SendTemplate(context.Background(), svc, templates.PasswordResetCode, "support@agency.test",
		[]string{"a@x.com"}, templates.PasswordResetCodeData{FirstName: "Ada", Code: "048213", ExpiresInMinutes: 15})
	require.NoError(t, err)

	n, ok, err := q.Dequeue(context.Background(), time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "support@agency.test", n.From)
	assert.Equal(t, "user.password_reset_code", n.Template)
	assert.Contains(t, n.TextBody, "048213")
	assert.Contains(t, n.HTMLBody, "048213")
}

func TestDequeueTimesOutEmpty(t *testing.T) {
	q := newQueue(t)
	_, ok, err := q.Dequeue(context.Background(), time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWorkerRunDeliversInOrder(t *testing.T) {
	q := newQueue(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, subject := range []string{"one", "two", "three"} {
		require.NoError(t, q.Enqueue(ctx, Notification{ID: subject, To: []string{"a@x.com"}, Subject: subject}))
	}

	sender := &recordingSender{}
	sender.onHit = func() {
		if len(sender.sent) == 3 {
			cancel()
		}
	}
	w := NewWorker(q, sender, discardLogger(), nil, WorkerConfig{Concurrency: 1, PollTimeout: time.Second})

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("worker did not stop")
	}
	require.Len(t, sender.sent, 3)
	assert.Equal(t, "one", sender.sent[0].Subject)
	assert.Equal(t, "three", sender.sent[2].Subject)
}

func TestWorkerRetriesThenDeadLetters(t *testing.T) {
	q := newQueue(t)
	sender := &recordingSender{err: errors.New("smtp timeout")}
	w := NewWorker(q, sender, discardLogger(), nil, WorkerConfig{
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
	})

	w.deliver(context.Background(), Notification{ID: "n1", To: []string{"a@x.com"}})

	assert.Equal(t, 3, sender.calls)
	dead, err := q.DeadLetters(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, "n1", dead[0].ID)
	assert.Equal(t, 3, dead[0].Attempts)
	assert.Equal(t, "smtp timeout", dead[0].LastError)
}

func TestWorkerDoesNotRetryPermanentFailures(t *testing.T) {
	q := newQueue(t)
	sender := &recordingSender{err: ErrPermanent}
	w := NewWorker(q, sender, discardLogger(), nil, WorkerConfig{MaxRetries: 5, InitialInterval: time.Millisecond})

	w.deliver(context.Background(), Notification{ID: "n2", To: []string{"bad"}})

	assert.Equal(t, 1, sender.calls)
	dead, err := q.DeadLetters(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, dead, 1)
}

func TestWorkerSucceedsAfterTransientFailure(t *testing.T) {
	q := newQueue(t)
	flaky := &flakySender{failures: 2}
	w := NewWorker(q, flaky, discardLogger(), nil, WorkerConfig{MaxRetries: 5, InitialInterval: time.Millisecond})

	w.deliver(context.Background(), Notification{ID: "n3", To: []string{"a@x.com"}})

	assert.Equal(t, 3, flaky.calls)
	dead, err := q.DeadLetters(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, dead)
}

type flakySender struct {
	failures int
	calls    int
}

func (f *flakySender) Send(context.Context, Notification) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("temporary")
	}
	return nil
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	inner := &recordingSender{err: errors.New("provider down")}
	b := NewBreakerSender(inner, "test", BreakerConfig{MaxFailures: 2, Timeout: time.Minute}, discardLogger())

	for i := 0; i < 2; i++ {
		assert.Error(t, b.Send(context.Background(), Notification{}))
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	err := b.Send(context.Background(), Notification{})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, inner.calls)
}

func TestBreakerIgnoresPermanentErrors(t *testing.T) {
	inner := &recordingSender{err: ErrPermanent}
	b := NewBreakerSender(inner, "test", BreakerConfig{MaxFailures: 1}, discardLogger())

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, b.Send(context.Background(), Notification{}), ErrPermanent)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBuildMessage(t *testing.T) {
	email, err := buildMessage(Notification{
		From:     "noreply@agency.test",
		To:       []string{"a@x.com"},
		Subject:  "Hello",
		HTMLBody: "<p>hi</p>",
		TextBody: "hi",
	})
	require.NoError(t, err)
	raw := email.GetMessage()
	assert.Contains(t, raw, "Subject: Hello")
	assert.Contains(t, raw, "<p>hi</p>")
}

func (q *RedisQueue) reserved(t *testing.T) int64 {
	t.Helper()
	n, err := q.rdb.LLen(context.Background(), q.processing).Result()
	require.NoError(t, err)
	return n
}

func TestDequeuedMessageStaysReservedUntilAck(t *testing.T) {
	q := newQueue(t)
	ctx := context.Background()
	require.NoError(t, q.Enqueue(ctx, Notification{ID: "n1", To: []string{"a@x.com"}}))

	n, ok, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	depth, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, depth)
	assert.Equal(t, int64(1), q.reserved(t))

	require.NoError(t, q.Ack(ctx, n))
	assert.Zero(t, q.reserved(t))
}

func TestRequeueRestoresUnacknowledgedInOrder(t *testing.T) {
	q := newQueue(t)
	ctx := context.Background()
	for _, id := range []string{"one", "two"} {
		require.NoError(t, q.Enqueue(ctx, Notification{ID: id, To: []string{"a@x.com"}}))
	}
	// Taken by a worker that never finished.
	for range 2 {
		_, ok, err := q.Dequeue(ctx, time.Second)
		require.NoError(t, err)
		require.True(t, ok)
	}

	moved, err := q.Requeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, moved)
	assert.Zero(t, q.reserved(t))

	first, _, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	second, _, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "one", first.ID)
	assert.Equal(t, "two", second.ID)
}

func TestWorkerReleasesReservationOnSuccessAndDeadLetter(t *testing.T) {
	q := newQueue(t)
	ctx := context.Background()
	require.NoError(t, q.Enqueue(ctx, Notification{ID: "ok", To: []string{"a@x.com"}}))
	require.NoError(t, q.Enqueue(ctx, Notification{ID: "bad", To: []string{"b@x.com"}}))

	n, _, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	NewWorker(q, &recordingSender{}, discardLogger(), nil, WorkerConfig{}).deliver(ctx, n)
	assert.Zero(t, q.reserved(t))

	n, _, err = q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	NewWorker(q, &recordingSender{err: ErrPermanent}, discardLogger(), nil, WorkerConfig{}).deliver(ctx, n)
	assert.Zero(t, q.reserved(t))
	dead, err := q.DeadLetters(ctx, 10)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, "bad", dead[0].ID)
}

func TestWorkerRunDeliversMessagesLeftByACrash(t *testing.T) {
	q := newQueue(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, q.Enqueue(ctx, Notification{ID: "orphan", To: []string{"a@x.com"}, Subject: "orphan"}))
	_, ok, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	sender := &recordingSender{}
	sender.onHit = cancel
	done := make(chan struct{})
	go func() {
		NewWorker(q, sender, discardLogger(), nil, WorkerConfig{PollTimeout: time.Second}).Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("worker did not stop")
	}
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "orphan", sender.sent[0].ID)
	assert.Zero(t, q.reserved(t))
}
