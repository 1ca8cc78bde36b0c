package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/gunnas32/QR-Stock/internal/model"
)

// DefaultSnapshotPath matches the data file of the original spreadsheet-era
// tool, so an existing inventory is picked up in place.
const DefaultSnapshotPath = "inventory_data.json"

// SnapshotStore keeps the whole inventory in a single JSON document keyed by
// item code and rewrites it wholesale on every accepted mutation. It holds
// its own mirror of the persisted state, so a rewrite never has to read the
// live registry and concurrent mutations of different items cannot clobber
// each other's committed writes.
type SnapshotStore struct {
	mu     sync.Mutex
	path   string
	mirror map[string]*model.Item
}

func NewSnapshot(path string) *SnapshotStore {
	if path == "" {
		path = DefaultSnapshotPath
	}
	return &SnapshotStore{path: path, mirror: make(map[string]*model.Item)}
}

func (s *SnapshotStore) Load(_ context.Context) ([]*model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Info().Str("path", s.path).Msg("no snapshot yet, starting empty")
		return []*model.Item{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", s.path, err)
	}

	byCode := make(map[string]*model.Item)
	if err := json.Unmarshal(raw, &byCode); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", s.path, err)
	}

	items := make([]*model.Item, 0, len(byCode))
	for code, it := range byCode {
		it.Code = code
		for i := range it.History {
			it.History[i].ItemCode = code
		}
		if it.History == nil {
			it.History = []model.Entry{}
		}
		s.mirror[code] = it.Clone()
		items = append(items, it)
	}
	return items, nil
}

func (s *SnapshotStore) SaveItem(_ context.Context, item *model.Item, _ *model.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, existed := s.mirror[item.Code]
	s.mirror[item.Code] = item.Clone()
	if err := s.writeLocked(); err != nil {
		// Roll the mirror back so a later write does not resurrect state the
		// caller was told is not committed.
		if existed {
			s.mirror[item.Code] = prev
		} else {
			delete(s.mirror, item.Code)
		}
		return err
	}
	return nil
}

func (s *SnapshotStore) Rename(_ context.Context, oldCode string, item *model.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.mirror[oldCode]
	delete(s.mirror, oldCode)
	s.mirror[item.Code] = item.Clone()
	if err := s.writeLocked(); err != nil {
		delete(s.mirror, item.Code)
		if prev != nil {
			s.mirror[oldCode] = prev
		}
		return err
	}
	return nil
}

func (s *SnapshotStore) Close() error { return nil }

// writeLocked flushes the mirror through a temp file and an atomic rename,
// so a crash mid-write leaves the previous snapshot intact. Callers hold
// s.mu.
func (s *SnapshotStore) writeLocked() error {
	data, err := json.MarshalIndent(s.mirror, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".inventory-*.json")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
