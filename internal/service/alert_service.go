package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gunnas32/QR-Stock/internal/model"
)

// AlertQueue accepts fired alert intents for asynchronous delivery. The
// worker dispatcher implements it; tests substitute a recorder.
type AlertQueue interface {
	EnqueueAlert(ctx context.Context, intent model.AlertIntent) error
}

// AlertService decides when a transaction's quantity change fires a
// low-stock alert, and hands fired intents to the delivery queue.
type AlertService interface {
	// Evaluate inspects one committed-to-be quantity change. It returns a
	// delivery intent when the change crosses the item's threshold downward,
	// recording the firing level on the pending item, and nil otherwise.
	// Callers invoke it before persisting so the recorded level is durable
	// with the transaction itself.
	Evaluate(pending *model.Item, oldQty, newQty int) *model.AlertIntent

	// Dispatch queues an intent after the transaction committed. Failures
	// are logged and swallowed; delivery is best-effort by contract.
	Dispatch(ctx context.Context, intent model.AlertIntent)
}

type alertService struct {
	queue AlertQueue
	now   func() time.Time
}

func NewAlertService(queue AlertQueue) AlertService {
	return &alertService{queue: queue, now: time.Now}
}

func (s *alertService) Evaluate(pending *model.Item, oldQty, newQty int) *model.AlertIntent {
	if pending.AlertThreshold <= 0 || pending.AlertRecipient == "" {
		return nil
	}
	// Fire only on a strict downward crossing. Sitting below the threshold
	// does not re-fire, and a drop that starts at or below it was already
	// alerted when it first crossed.
	if oldQty <= pending.AlertThreshold || newQty > pending.AlertThreshold {
		return nil
	}
	level := newQty
	pending.LastAlertLevel = &level
	return &model.AlertIntent{
		Recipient: pending.AlertRecipient,
		ItemCode:  pending.Code,
		ItemName:  pending.Name,
		Quantity:  newQty,
		Threshold: pending.AlertThreshold,
		FiredAt:   s.now().UTC(),
	}
}

func (s *alertService) Dispatch(ctx context.Context, intent model.AlertIntent) {
	if s.queue == nil {
		return
	}
	if err := s.queue.EnqueueAlert(ctx, intent); err != nil {
		log.Error().Err(err).
			Str("code", intent.ItemCode).
			Str("recipient", intent.Recipient).
			Msg("could not queue low-stock alert")
	}
}
