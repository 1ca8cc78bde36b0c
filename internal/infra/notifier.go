package infra

import (
	"context"

	"github.com/gunnas32/QR-Stock/internal/model"
)

// Notifier delivers one fired low-stock alert to a single channel. The alert
// worker fans a fired intent out to every configured notifier; a failure of
// one channel never blocks another.
type Notifier interface {
	// Name identifies the channel in logs and dead-letter entries.
	Name() string
	Notify(ctx context.Context, intent model.AlertIntent) error
}
