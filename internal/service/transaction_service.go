package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gunnas32/QR-Stock/internal/dto"
	"github.com/gunnas32/QR-Stock/internal/model"
	"github.com/gunnas32/QR-Stock/internal/registry"
	"github.com/gunnas32/QR-Stock/internal/store"
)

// TransactionService runs stock movements against the registry and serves
// ledger reads. Apply is the only write path for quantities; everything it
// accepts is durable before the caller hears about it.
type TransactionService interface {
	Apply(ctx context.Context, code string, req dto.ApplyTransactionRequest) (*dto.TransactionResponse, error)
	ListForItem(ctx context.Context, code string, filter dto.LedgerFilter) (*dto.LedgerListResponse, error)
	ListAll(ctx context.Context, filter dto.LedgerFilter) (*dto.LedgerListResponse, error)
}

type transactionService struct {
	reg    *registry.Registry
	st     store.Store
	alerts AlertService
	now    func() time.Time
}

func NewTransactionService(reg *registry.Registry, st store.Store, alerts AlertService) TransactionService {
	return &transactionService{reg: reg, st: st, alerts: alerts, now: time.Now}
}

func (s *transactionService) Apply(ctx context.Context, code string, req dto.ApplyTransactionRequest) (*dto.TransactionResponse, error) {
	kind := model.TxKind(req.Kind)
	if !kind.Valid() {
		return nil, fmt.Errorf("kind %q: %w", req.Kind, model.ErrInvalidQuantity)
	}

	var (
		intent   *model.AlertIntent
		recorded *model.Entry
	)
	updated, err := s.reg.Mutate(code, func(pending *model.Item) error {
		old := pending.Quantity
		entry, err := s.buildEntry(pending, kind, req)
		if err != nil {
			return err
		}
		pending.History = append(pending.History, *entry)
		intent = s.alerts.Evaluate(pending, old, pending.Quantity)
		if err := s.st.SaveItem(ctx, pending, entry); err != nil {
			log.Error().Err(err).Str("code", pending.Code).Str("kind", req.Kind).Msg("transaction not persisted")
			return fmt.Errorf("%w: %v", model.ErrPersistence, err)
		}
		recorded = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The change is committed; delivery must not affect the outcome.
	if intent != nil {
		s.alerts.Dispatch(ctx, *intent)
	}

	resp := &dto.TransactionResponse{Quantity: updated.Quantity}
	if recorded != nil {
		log.Info().
			Str("code", updated.Code).
			Str("kind", string(recorded.Kind)).
			Int("quantity", recorded.Quantity).
			Int("stock", updated.Quantity).
			Msg("transaction applied")
		er := entryToResponse(recorded)
		resp.Entry = &er
	}
	return resp, nil
}

// buildEntry validates the request against the current quantity, applies the
// change to pending, and returns the ledger record. registry.ErrUnchanged
// signals the manual no-op case.
func (s *transactionService) buildEntry(pending *model.Item, kind model.TxKind, req dto.ApplyTransactionRequest) (*model.Entry, error) {
	old := pending.Quantity
	entry := model.Entry{
		ID:       uuid.New(),
		ItemCode: pending.Code,
		Kind:     kind,
		Person:   req.Person,
		Notes:    req.Notes,
		At:       s.now().UTC(),
	}

	switch kind {
	case model.TxIn:
		if req.Quantity <= 0 {
			return nil, fmt.Errorf("in of %d: %w", req.Quantity, model.ErrInvalidQuantity)
		}
		pending.Quantity = old + req.Quantity
		entry.Quantity = req.Quantity

	case model.TxOut:
		if req.Quantity <= 0 {
			return nil, fmt.Errorf("out of %d: %w", req.Quantity, model.ErrInvalidQuantity)
		}
		if req.Quantity > old {
			return nil, fmt.Errorf("out of %d with %d on hand: %w", req.Quantity, old, model.ErrInsufficientStock)
		}
		pending.Quantity = old - req.Quantity
		entry.Quantity = req.Quantity
		entry.Job = req.Job

	case model.TxManual:
		// Quantity is the target count; the ledger keeps the magnitude plus
		// the signed delta so a replay lands on the same number.
		target := req.Quantity
		if target < 0 {
			return nil, fmt.Errorf("manual target %d: %w", target, model.ErrInvalidQuantity)
		}
		diff := target - old
		if diff == 0 {
			return nil, registry.ErrUnchanged
		}
		pending.Quantity = target
		entry.Quantity = diff
		if diff < 0 {
			entry.Quantity = -diff
		}
		entry.Delta = diff
		entry.Notes = fmt.Sprintf("manual adjust from %d to %d", old, target)
		if req.Notes != "" {
			entry.Notes += "; " + req.Notes
		}
	}
	return &entry, nil
}

func (s *transactionService) ListForItem(_ context.Context, code string, filter dto.LedgerFilter) (*dto.LedgerListResponse, error) {
	item, err := s.reg.Get(code)
	if err != nil {
		return nil, err
	}
	entries := make([]model.Entry, len(item.History))
	copy(entries, item.History)
	return pageLedger(entries, filter), nil
}

func (s *transactionService) ListAll(ctx context.Context, filter dto.LedgerFilter) (*dto.LedgerListResponse, error) {
	if filter.Code != "" {
		return s.ListForItem(ctx, filter.Code, filter)
	}
	var entries []model.Entry
	for _, item := range s.reg.List() {
		entries = append(entries, item.History...)
	}
	return pageLedger(entries, filter), nil
}

// pageLedger filters, orders newest first, and pages in memory. The registry
// is the source of truth for reads, so both stores share this path. The
// stable ascending sort plus reversal puts the latest-appended of two
// same-timestamp entries first.
func pageLedger(entries []model.Entry, filter dto.LedgerFilter) *dto.LedgerListResponse {
	if filter.Kind != "" {
		kept := entries[:0]
		for _, e := range entries {
			if string(e.Kind) == filter.Kind {
				kept = append(kept, e)
			}
		}
		entries = kept
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].At.Before(entries[j].At)
	})
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 50
	}
	start := (page - 1) * limit
	if start > len(entries) {
		start = len(entries)
	}
	end := start + limit
	if end > len(entries) {
		end = len(entries)
	}

	return &dto.LedgerListResponse{
		Data:  entriesToResponses(entries[start:end]),
		Total: len(entries),
		Page:  page,
		Limit: limit,
	}
}
