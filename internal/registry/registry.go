// Package registry holds the authoritative in-memory inventory. It owns all
// locking: the registry mutex guards the code namespace (create and rename),
// a per-item mutex serializes each item's read-modify-write, and committed
// state is published through an atomic pointer so readers never block and
// never observe a half-applied change.
package registry

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gunnas32/QR-Stock/internal/model"
)

// ErrUnchanged aborts a Mutate without publishing and without error. Callers
// use it when the requested change turns out to be a no-op.
var ErrUnchanged = errors.New("registry: item unchanged")

// lookupRetries bounds the re-fetch loop when an item is renamed between the
// namespace lookup and acquiring its lock.
const lookupRetries = 8

type itemState struct {
	mu sync.Mutex
	// cur points at the committed item. Published values are never mutated;
	// writers clone, modify, persist, then swap the pointer.
	cur atomic.Pointer[model.Item]
}

// CommitFunc persists a pending item before it becomes visible. Returning an
// error aborts the operation; the registry publishes nothing.
type CommitFunc func(pending *model.Item) error

// RenameCommitFunc persists a re-key. pending already carries the new code.
type RenameCommitFunc func(oldCode string, pending *model.Item) error

// Registry is safe for concurrent use by any number of goroutines.
type Registry struct {
	mu    sync.RWMutex
	items map[string]*itemState
	now   func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock substitutes the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func New(opts ...Option) *Registry {
	r := &Registry{
		items: make(map[string]*itemState),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load seeds the registry from persisted items, taking ownership of the
// slice. Each item's quantity is checked against its ledger replay; on
// mismatch the replay wins, since the ledger is the source of truth.
func (r *Registry) Load(items []*model.Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range items {
		if replayed := it.Replay(); replayed != it.Quantity {
			log.Warn().
				Str("code", it.Code).
				Int("stored", it.Quantity).
				Int("replayed", replayed).
				Msg("stored quantity disagrees with ledger replay, adopting replay")
			it.Quantity = replayed
		}
		if it.History == nil {
			it.History = []model.Entry{}
		}
		st := &itemState{}
		st.cur.Store(it)
		r.items[it.Code] = st
	}
}

// Get returns a copy of the item, or ErrNotFound.
func (r *Registry) Get(code string) (*model.Item, error) {
	r.mu.RLock()
	st := r.items[code]
	r.mu.RUnlock()
	if st == nil {
		return nil, model.ErrNotFound
	}
	return st.cur.Load().Clone(), nil
}

// List returns copies of every item ordered by name.
func (r *Registry) List() []*model.Item {
	r.mu.RLock()
	states := make([]*itemState, 0, len(r.items))
	for _, st := range r.items {
		states = append(states, st)
	}
	r.mu.RUnlock()

	items := make([]*model.Item, 0, len(states))
	for _, st := range states {
		items = append(items, st.cur.Load().Clone())
	}
	model.SortItemsByName(items)
	return items
}

// Len reports the number of registered items.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Create registers a new item with quantity zero and an empty history. An
// empty code asks the allocator for one; an explicit code that is already
// taken fails with ErrDuplicateCode. commit runs before the item becomes
// visible; its error aborts the create.
//
// The namespace lock is held across commit so no concurrent create or rename
// can claim the code while it is being persisted.
func (r *Registry) Create(code, name string, commit CommitFunc) (*model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if code == "" {
		var err error
		if code, err = r.allocateLocked(); err != nil {
			return nil, err
		}
	} else if _, taken := r.items[code]; taken {
		return nil, fmt.Errorf("create %q: %w", code, model.ErrDuplicateCode)
	}

	now := r.now()
	item := &model.Item{
		Code:      code,
		Name:      name,
		History:   []model.Entry{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if commit != nil {
		if err := commit(item); err != nil {
			return nil, err
		}
	}
	st := &itemState{}
	st.cur.Store(item)
	r.items[code] = st
	return item.Clone(), nil
}

// Mutate applies fn to a private copy of the item under its lock and
// publishes the copy when fn returns nil. fn typically validates, appends a
// ledger entry, and persists; any error leaves the committed state untouched.
// Returning ErrUnchanged discards the copy without error.
//
// The returned item is the state readers observe after the call.
func (r *Registry) Mutate(code string, fn CommitFunc) (*model.Item, error) {
	for attempt := 0; attempt < lookupRetries; attempt++ {
		r.mu.RLock()
		st := r.items[code]
		r.mu.RUnlock()
		if st == nil {
			return nil, fmt.Errorf("mutate %q: %w", code, model.ErrNotFound)
		}

		st.mu.Lock()
		cur := st.cur.Load()
		if cur.Code != code {
			// Renamed while we waited for the lock; look the code up again.
			st.mu.Unlock()
			continue
		}
		pending := cur.Clone()
		pending.UpdatedAt = r.now()
		if err := fn(pending); err != nil {
			st.mu.Unlock()
			if errors.Is(err, ErrUnchanged) {
				return cur.Clone(), nil
			}
			return nil, err
		}
		st.cur.Store(pending)
		st.mu.Unlock()
		return pending.Clone(), nil
	}
	return nil, fmt.Errorf("mutate %q: %w", code, model.ErrNotFound)
}

// Rename re-keys an item. The item keeps its quantity, history, and alert
// settings; only the code changes. Renaming an item to its own code is a
// no-op. commit runs with both the item lock and the namespace lock held, so
// the old and new codes stay pinned until the re-key is durable.
func (r *Registry) Rename(oldCode, newCode string, commit RenameCommitFunc) (*model.Item, error) {
	if oldCode == newCode {
		return r.Get(oldCode)
	}
	for attempt := 0; attempt < lookupRetries; attempt++ {
		r.mu.RLock()
		st := r.items[oldCode]
		r.mu.RUnlock()
		if st == nil {
			return nil, fmt.Errorf("rename %q: %w", oldCode, model.ErrNotFound)
		}

		st.mu.Lock()
		cur := st.cur.Load()
		if cur.Code != oldCode {
			st.mu.Unlock()
			continue
		}

		// Whenever both locks are held, the item lock is acquired first.
		r.mu.Lock()
		if _, taken := r.items[newCode]; taken {
			r.mu.Unlock()
			st.mu.Unlock()
			return nil, fmt.Errorf("rename to %q: %w", newCode, model.ErrDuplicateCode)
		}
		pending := cur.Clone()
		pending.Code = newCode
		pending.UpdatedAt = r.now()
		for i := range pending.History {
			pending.History[i].ItemCode = newCode
		}
		if commit != nil {
			if err := commit(oldCode, pending); err != nil {
				r.mu.Unlock()
				st.mu.Unlock()
				return nil, err
			}
		}
		delete(r.items, oldCode)
		r.items[newCode] = st
		st.cur.Store(pending)
		r.mu.Unlock()
		st.mu.Unlock()
		return pending.Clone(), nil
	}
	return nil, fmt.Errorf("rename %q: %w", oldCode, model.ErrNotFound)
}
