package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gunnas32/QR-Stock/internal/dto"
	"github.com/gunnas32/QR-Stock/internal/label"
	"github.com/gunnas32/QR-Stock/internal/model"
	"github.com/gunnas32/QR-Stock/internal/registry"
	"github.com/gunnas32/QR-Stock/internal/store"
)

// historyTail caps how much history rides along on single-item reads; the
// ledger endpoints page through the rest.
const historyTail = 20

// scanTail is the shorter slice shown on the public scan landing.
const scanTail = 5

// ItemService defines the contract for item registry management.
type ItemService interface {
	Create(ctx context.Context, req dto.CreateItemRequest) (*dto.ItemResponse, error)
	Get(ctx context.Context, code string) (*dto.ItemResponse, error)
	List(ctx context.Context) (*dto.ItemListResponse, error)
	Update(ctx context.Context, code string, req dto.UpdateItemRequest) (*dto.ItemResponse, error)
	Rename(ctx context.Context, code string, req dto.RenameItemRequest) (*dto.ItemResponse, error)
	Scan(ctx context.Context, code string) (*dto.ScanResponse, error)
}

type itemService struct {
	reg     *registry.Registry
	st      store.Store
	baseURL string
}

func NewItemService(reg *registry.Registry, st store.Store, baseURL string) ItemService {
	return &itemService{reg: reg, st: st, baseURL: baseURL}
}

func (s *itemService) Create(ctx context.Context, req dto.CreateItemRequest) (*dto.ItemResponse, error) {
	item, err := s.reg.Create(req.Code, req.Name, func(pending *model.Item) error {
		pending.AlertThreshold = req.AlertThreshold
		pending.AlertRecipient = req.AlertRecipient
		return s.persist(ctx, pending, nil)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("code", item.Code).Str("name", item.Name).Msg("item created")
	resp := s.itemToResponse(item, 0)
	return &resp, nil
}

func (s *itemService) Get(_ context.Context, code string) (*dto.ItemResponse, error) {
	item, err := s.reg.Get(code)
	if err != nil {
		return nil, err
	}
	resp := s.itemToResponse(item, historyTail)
	return &resp, nil
}

func (s *itemService) List(_ context.Context) (*dto.ItemListResponse, error) {
	items := s.reg.List()
	out := dto.ItemListResponse{
		Data:  make([]dto.ItemResponse, 0, len(items)),
		Total: len(items),
	}
	for _, it := range items {
		out.Data = append(out.Data, s.itemToResponse(it, 0))
	}
	return &out, nil
}

func (s *itemService) Update(ctx context.Context, code string, req dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	if req.Name == nil && req.AlertThreshold == nil && req.AlertRecipient == nil {
		item, err := s.reg.Get(code)
		if err != nil {
			return nil, err
		}
		resp := s.itemToResponse(item, 0)
		return &resp, nil
	}

	item, err := s.reg.Mutate(code, func(pending *model.Item) error {
		if req.Name != nil {
			pending.Name = *req.Name
		}
		if req.AlertThreshold != nil {
			pending.AlertThreshold = *req.AlertThreshold
		}
		if req.AlertRecipient != nil {
			pending.AlertRecipient = *req.AlertRecipient
		}
		return s.persist(ctx, pending, nil)
	})
	if err != nil {
		return nil, err
	}
	resp := s.itemToResponse(item, 0)
	return &resp, nil
}

func (s *itemService) Rename(ctx context.Context, code string, req dto.RenameItemRequest) (*dto.ItemResponse, error) {
	item, err := s.reg.Rename(code, req.NewCode, func(oldCode string, pending *model.Item) error {
		if err := s.st.Rename(ctx, oldCode, pending); err != nil {
			log.Error().Err(err).Str("from", oldCode).Str("to", pending.Code).Msg("rename not persisted")
			return fmt.Errorf("%w: %v", model.ErrPersistence, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("from", code).Str("to", item.Code).Msg("item renamed")
	resp := s.itemToResponse(item, 0)
	return &resp, nil
}

func (s *itemService) Scan(_ context.Context, code string) (*dto.ScanResponse, error) {
	item, err := s.reg.Get(code)
	if err != nil {
		return nil, err
	}
	return &dto.ScanResponse{
		Code:     item.Code,
		Name:     item.Name,
		Quantity: item.Quantity,
		Recent:   entriesToResponses(tailOf(item.History, scanTail)),
	}, nil
}

// persist funnels every item write through the store and folds any failure
// into the persistence error the API maps to HTTP 500.
func (s *itemService) persist(ctx context.Context, item *model.Item, entry *model.Entry) error {
	if err := s.st.SaveItem(ctx, item, entry); err != nil {
		log.Error().Err(err).Str("code", item.Code).Msg("item not persisted")
		return fmt.Errorf("%w: %v", model.ErrPersistence, err)
	}
	return nil
}

func (s *itemService) itemToResponse(it *model.Item, tail int) dto.ItemResponse {
	resp := dto.ItemResponse{
		Code:           it.Code,
		Name:           it.Name,
		Quantity:       it.Quantity,
		AlertThreshold: it.AlertThreshold,
		AlertRecipient: it.AlertRecipient,
		LastAlertLevel: it.LastAlertLevel,
		DeepLink:       label.DeepLink(s.baseURL, it.Code),
		CreatedAt:      it.CreatedAt,
		UpdatedAt:      it.UpdatedAt,
	}
	if tail > 0 {
		resp.History = entriesToResponses(tailOf(it.History, tail))
	}
	return resp
}

// tailOf returns up to n trailing entries, newest first.
func tailOf(history []model.Entry, n int) []model.Entry {
	if len(history) < n {
		n = len(history)
	}
	out := make([]model.Entry, 0, n)
	for i := len(history) - 1; i >= len(history)-n; i-- {
		out = append(out, history[i])
	}
	return out
}

func entriesToResponses(entries []model.Entry) []dto.EntryResponse {
	out := make([]dto.EntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, entryToResponse(&entries[i]))
	}
	return out
}

func entryToResponse(e *model.Entry) dto.EntryResponse {
	return dto.EntryResponse{
		ID:       e.ID.String(),
		ItemCode: e.ItemCode,
		Kind:     string(e.Kind),
		Quantity: e.Quantity,
		Delta:    e.Delta,
		Person:   e.Person,
		Job:      e.Job,
		Notes:    e.Notes,
		At:       e.At,
	}
}
