package worker

// alert_worker.go
// Delivers queued low-stock alerts through every configured notifier
// (SMTP, webhook). Each channel gets bounded retries with exponential
// backoff behind the shared circuit breaker; exhausted intents are
// dead-lettered by the pool. Redriven intents go to every channel again,
// so delivery is at-least-once per channel.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gunnas32/QR-Stock/internal/infra"
	"github.com/gunnas32/QR-Stock/internal/model"
)

// MaxDeliveryAttempts bounds the in-worker retry loop per channel.
const MaxDeliveryAttempts = 3

// AlertWorker turns dequeued alert jobs into notifier calls.
type AlertWorker struct {
	notifiers []infra.Notifier
	cb        *infra.CircuitBreaker
}

func NewAlertWorker(notifiers []infra.Notifier, cb *infra.CircuitBreaker) *AlertWorker {
	return &AlertWorker{notifiers: notifiers, cb: cb}
}

// Process delivers one intent. It returns an error only when at least one
// channel failed after all retries, which sends the job to the DLQ.
func (w *AlertWorker) Process(ctx context.Context, payload json.RawMessage) error {
	var intent model.AlertIntent
	if err := json.Unmarshal(payload, &intent); err != nil {
		log.Error().Err(err).Msg("alert_worker: invalid payload")
		return nil // poison, retrying cannot help
	}
	if intent.Recipient == "" {
		log.Warn().Str("code", intent.ItemCode).Msg("alert_worker: empty recipient, skipping")
		return nil
	}
	if len(w.notifiers) == 0 {
		log.Warn().Str("code", intent.ItemCode).Msg("alert_worker: no notifiers configured, dropping alert")
		return nil
	}

	var failed []string
	var lastErr error
	for _, n := range w.notifiers {
		err := withRetry(ctx, MaxDeliveryAttempts, func(attempt int) error {
			deliverErr := w.cb.Execute(func() error {
				return n.Notify(ctx, intent)
			})
			if deliverErr != nil && !errors.Is(deliverErr, infra.ErrCircuitOpen) {
				log.Warn().
					Err(deliverErr).
					Str("channel", n.Name()).
					Str("code", intent.ItemCode).
					Int("attempt", attempt+1).
					Msg("alert_worker: delivery attempt failed")
			}
			return deliverErr
		})
		if err != nil {
			failed = append(failed, n.Name())
			lastErr = err
			continue
		}
		log.Info().
			Str("channel", n.Name()).
			Str("code", intent.ItemCode).
			Str("recipient", intent.Recipient).
			Int("quantity", intent.Quantity).
			Msg("alert_worker: low-stock alert delivered")
	}

	if len(failed) > 0 {
		return fmt.Errorf("delivery via %s failed: %w", strings.Join(failed, ","), lastErr)
	}
	return nil
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s. An open circuit
// aborts the loop instead of consuming the remaining attempts.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		err := fn(i)
		if err == nil {
			return nil
		}
		lastErr = err
		if errors.Is(err, infra.ErrCircuitOpen) {
			return err
		}
	}
	return lastErr
}
