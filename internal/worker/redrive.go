package worker

// redrive.go
// Background goroutine that periodically drains the dead letter queue back
// onto the alert queue, giving parked intents another delivery pass once the
// notifier endpoints recover. Uses the circuit breaker as the recovery
// signal: while it is open the tick is skipped entirely.

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gunnas32/QR-Stock/internal/infra"
)

const (
	redriveTickInterval = time.Minute
	redriveBatchSize    = 10

	// RedriveAttemptCap retires a job for good once its accumulated attempts
	// reach it.
	RedriveAttemptCap = 12
)

// StartRedriveCron launches the redrive goroutine. It respects ctx for
// graceful shutdown.
func StartRedriveCron(ctx context.Context, d *Dispatcher, cb *infra.CircuitBreaker) {
	go func() {
		ticker := time.NewTicker(redriveTickInterval)
		defer ticker.Stop()

		log.Info().Msg("redrive_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("redrive_cron: shutting down")
				return
			case <-ticker.C:
				redriveTick(ctx, d, cb)
			}
		}
	}()
}

func redriveTick(ctx context.Context, d *Dispatcher, cb *infra.CircuitBreaker) {
	// If the breaker is open the channels are still down; leave the DLQ be.
	if cb.State() == infra.CBOpen {
		log.Debug().Msg("redrive_cron: circuit breaker is open, skipping tick")
		return
	}

	entries := d.takeDeadLetters(ctx, redriveBatchSize)
	if len(entries) == 0 {
		return
	}
	log.Info().Int("count", len(entries)).Msg("redrive_cron: re-enqueueing dead letters")

	for _, entry := range entries {
		if entry.Attempts >= RedriveAttemptCap {
			log.Error().
				Str("job_type", entry.JobType).
				Int("attempts", entry.Attempts).
				Str("reason", entry.Reason).
				Msg("redrive_cron: attempt cap reached, retiring job")
			continue
		}
		job := Job{Type: entry.JobType, Payload: entry.Payload, Attempts: entry.Attempts}
		if err := d.enqueue(ctx, job); err != nil {
			log.Error().Err(err).Str("job_type", entry.JobType).Msg("redrive_cron: re-enqueue failed")
			// Park it again rather than lose it.
			d.deadLetter(ctx, job, "redrive re-enqueue failed: "+err.Error(), entry.Attempts)
		}
	}
}
