package worker

// dlq.go — Dead Letter Queue
// Jobs whose delivery attempts are exhausted land here. With Redis it is a
// list under dlq:{original_queue}; without, a bounded in-process ring that
// drops its oldest entry when full.

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// dlqRingCapacity bounds the in-process dead letter ring.
const dlqRingCapacity = 256

// DLQEntry wraps a failed job with metadata for debugging.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      string          `json:"failed_at"` // ISO 8601
	Attempts      int             `json:"attempts"`
}

// deadLetter records a job that exhausted its delivery attempts.
func (d *Dispatcher) deadLetter(ctx context.Context, job Job, reason string, attempts int) {
	entry := DLQEntry{
		OriginalQueue: QueueAlerts,
		JobType:       job.Type,
		Payload:       job.Payload,
		Reason:        reason,
		FailedAt:      time.Now().UTC().Format(time.RFC3339),
		Attempts:      attempts,
	}

	if d.rdb != nil {
		data, err := json.Marshal(entry)
		if err != nil {
			log.Error().Err(err).Msg("dlq: failed to marshal entry")
			return
		}
		if err := d.rdb.LPush(ctx, DLQPrefix+QueueAlerts, data).Err(); err != nil {
			log.Error().Err(err).Str("dlq_key", DLQPrefix+QueueAlerts).Msg("dlq: failed to push")
			return
		}
	} else {
		d.dlq.push(entry)
	}

	log.Warn().
		Str("job_type", job.Type).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("dlq: job moved to dead letter queue")
}

// DLQLength returns the number of dead-lettered jobs for monitoring.
func (d *Dispatcher) DLQLength(ctx context.Context) (int64, error) {
	if d.rdb != nil {
		return d.rdb.LLen(ctx, DLQPrefix+QueueAlerts).Result()
	}
	return int64(d.dlq.len()), nil
}

// takeDeadLetters pops up to max entries for redriving, oldest first.
func (d *Dispatcher) takeDeadLetters(ctx context.Context, max int) []DLQEntry {
	if d.rdb != nil {
		out := make([]DLQEntry, 0, max)
		for len(out) < max {
			raw, err := d.rdb.RPop(ctx, DLQPrefix+QueueAlerts).Result()
			if err != nil {
				break // empty or unreachable
			}
			var entry DLQEntry
			if err := json.Unmarshal([]byte(raw), &entry); err != nil {
				log.Error().Err(err).Msg("dlq: dropping undecodable entry")
				continue
			}
			out = append(out, entry)
		}
		return out
	}
	return d.dlq.take(max)
}

// deadLetterRing is the in-process DLQ: bounded, oldest-out when full.
type deadLetterRing struct {
	mu      sync.Mutex
	entries []DLQEntry
	cap     int
}

func newDeadLetterRing(capacity int) *deadLetterRing {
	return &deadLetterRing{cap: capacity}
}

func (r *deadLetterRing) push(entry DLQEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) >= r.cap {
		r.entries = r.entries[1:]
	}
	r.entries = append(r.entries, entry)
}

func (r *deadLetterRing) take(max int) []DLQEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if max > len(r.entries) {
		max = len(r.entries)
	}
	out := make([]DLQEntry, max)
	copy(out, r.entries[:max])
	r.entries = r.entries[max:]
	return out
}

func (r *deadLetterRing) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
