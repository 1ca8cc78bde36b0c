package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/gunnas32/QR-Stock/internal/model"
)

// QueueAlerts is the Redis list the dispatcher feeds and the pool drains.
const QueueAlerts = "jobs:alerts"

// channelQueueDepth bounds the in-process fallback queue used when no Redis
// is configured.
const channelQueueDepth = 1024

// popTimeout is how long a worker blocks on Redis before re-checking its
// context.
const popTimeout = 5 * time.Second

// ErrQueueFull is returned when the in-process queue cannot take another
// job without blocking the caller.
var ErrQueueFull = errors.New("worker: queue full")

// Job is the generic envelope for all async tasks. Attempts carries the
// delivery attempts already spent across dead-letter redrives.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts,omitempty"`
}

// Processor handles one job payload. A returned error dead-letters the job;
// nil acknowledges it. Unparseable payloads are the processor's to swallow,
// retrying them can never succeed.
type Processor interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// Dispatcher enqueues async jobs and owns the queue they live on: a Redis
// list consumed via BRPOP when a client is configured, otherwise a buffered
// in-process channel drained by the same worker loop.
type Dispatcher struct {
	rdb *redis.Client
	ch  chan []byte
	dlq *deadLetterRing
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	d := &Dispatcher{rdb: rdb}
	if rdb == nil {
		d.ch = make(chan []byte, channelQueueDepth)
		d.dlq = newDeadLetterRing(dlqRingCapacity)
	}
	return d
}

// EnqueueAlert pushes a fired alert intent onto the delivery queue.
func (d *Dispatcher) EnqueueAlert(ctx context.Context, intent model.AlertIntent) error {
	payload, err := json.Marshal(intent)
	if err != nil {
		return err
	}
	return d.enqueue(ctx, Job{Type: "alert", Payload: payload})
}

func (d *Dispatcher) enqueue(ctx context.Context, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if d.rdb != nil {
		return d.rdb.LPush(ctx, QueueAlerts, encoded).Err()
	}
	select {
	case d.ch <- encoded:
		return nil
	default:
		return ErrQueueFull
	}
}

// StartPool launches numWorkers goroutines consuming the alert queue.
// Each goroutine blocks on BRPOP (or the channel) — zero CPU when idle.
// All exit when ctx is cancelled.
func (d *Dispatcher) StartPool(ctx context.Context, numWorkers int, proc Processor) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		go d.runWorker(ctx, i, proc)
	}
	mode := "redis"
	if d.rdb == nil {
		mode = "in-process"
	}
	log.Info().Int("workers", numWorkers).Str("queue", mode).Msg("worker pool started")
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, proc Processor) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		default:
			raw, ok := d.pop(ctx)
			if !ok {
				continue
			}
			d.handle(ctx, raw, proc)
		}
	}
}

// pop blocks until a job, a timeout, or cancellation. false means try again.
func (d *Dispatcher) pop(ctx context.Context) ([]byte, bool) {
	if d.rdb != nil {
		result, err := d.rdb.BRPop(ctx, popTimeout, QueueAlerts).Result()
		if err != nil || len(result) < 2 {
			return nil, false // timeout or context cancelled
		}
		return []byte(result[1]), true
	}
	select {
	case <-ctx.Done():
		return nil, false
	case raw := <-d.ch:
		return raw, true
	}
}

func (d *Dispatcher) handle(ctx context.Context, raw []byte, proc Processor) {
	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		log.Error().Err(err).Msg("dropping undecodable job")
		return
	}
	if err := proc.Process(ctx, job.Payload); err != nil {
		d.deadLetter(ctx, job, err.Error(), job.Attempts+MaxDeliveryAttempts)
	}
}
