package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gunnas32/QR-Stock/internal/infra"
	"github.com/gunnas32/QR-Stock/internal/model"
)

// stubNotifier counts deliveries and fails the first failN calls.
type stubNotifier struct {
	mu    sync.Mutex
	name  string
	calls int
	failN int
}

var _ infra.Notifier = (*stubNotifier)(nil)

func (n *stubNotifier) Name() string { return n.name }

func (n *stubNotifier) Notify(_ context.Context, _ model.AlertIntent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	if n.calls <= n.failN {
		return errors.New(n.name + " unavailable")
	}
	return nil
}

func (n *stubNotifier) delivered() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

func rawIntent(t *testing.T) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(testIntent("abc12345"))
	require.NoError(t, err)
	return raw
}

func TestAlertWorkerDeliversToAllChannels(t *testing.T) {
	mail := &stubNotifier{name: "smtp"}
	hook := &stubNotifier{name: "webhook"}
	w := NewAlertWorker([]infra.Notifier{mail, hook}, infra.NewCircuitBreaker(infra.DefaultCBConfig()))

	require.NoError(t, w.Process(context.Background(), rawIntent(t)))
	assert.Equal(t, 1, mail.delivered())
	assert.Equal(t, 1, hook.delivered())
}

func TestAlertWorkerRetriesThenSucceeds(t *testing.T) {
	mail := &stubNotifier{name: "smtp", failN: 1}
	w := NewAlertWorker([]infra.Notifier{mail}, infra.NewCircuitBreaker(infra.DefaultCBConfig()))

	require.NoError(t, w.Process(context.Background(), rawIntent(t)))
	assert.Equal(t, 2, mail.delivered())
}

func TestAlertWorkerReportsExhaustedChannel(t *testing.T) {
	// A tripped breaker makes every attempt fail fast, so the test does not
	// sit through the backoff schedule.
	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Minute})
	require.Error(t, cb.Execute(func() error { return errors.New("boom") }))

	mail := &stubNotifier{name: "smtp", failN: 99}
	w := NewAlertWorker([]infra.Notifier{mail}, cb)

	err := w.Process(context.Background(), rawIntent(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, infra.ErrCircuitOpen)
	assert.Contains(t, err.Error(), "smtp")
}

func TestAlertWorkerSwallowsPoisonPayload(t *testing.T) {
	w := NewAlertWorker(nil, infra.NewCircuitBreaker(infra.DefaultCBConfig()))
	assert.NoError(t, w.Process(context.Background(), json.RawMessage(`{broken`)))
}

func TestAlertWorkerSkipsEmptyRecipient(t *testing.T) {
	mail := &stubNotifier{name: "smtp"}
	w := NewAlertWorker([]infra.Notifier{mail}, infra.NewCircuitBreaker(infra.DefaultCBConfig()))

	raw, err := json.Marshal(model.AlertIntent{ItemCode: "abc12345"})
	require.NoError(t, err)
	require.NoError(t, w.Process(context.Background(), raw))
	assert.Zero(t, mail.delivered())
}

func TestWithRetryStopsOnSuccess(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), 3, func(int) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetryHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := withRetry(ctx, 3, func(int) error {
		calls++
		return errors.New("nope")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls, "cancelled context must stop before the second attempt")
}
