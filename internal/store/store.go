// Package store persists the registry. Stores are pure sinks: the registry
// in memory stays authoritative and all reads are served from it, so a store
// only has to make accepted mutations durable and hand everything back once
// at startup.
package store

import (
	"context"

	"github.com/gunnas32/QR-Stock/internal/model"
)

// Store is implemented by the JSON snapshot store and the Postgres store.
// Every method is called synchronously inside the mutation that needs it; an
// error aborts that mutation before anything becomes visible.
type Store interface {
	// Load returns every persisted item with its full history. A store that
	// has never been written to returns an empty slice, not an error.
	Load(ctx context.Context) ([]*model.Item, error)

	// SaveItem makes one item's pending state durable. entry is the ledger
	// record being appended by this mutation, or nil for metadata-only
	// updates; item.History already contains it.
	SaveItem(ctx context.Context, item *model.Item, entry *model.Entry) error

	// Rename durably re-keys an item. item already carries the new code and
	// the full history.
	Rename(ctx context.Context, oldCode string, item *model.Item) error

	Close() error
}
