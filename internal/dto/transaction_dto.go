package dto

import "time"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ApplyTransactionRequest struct {
	Kind string `json:"kind" validate:"required,oneof=in out manual"`
	// Quantity is the movement size for in/out and the absolute target count
	// for manual.
	Quantity int    `json:"quantity" validate:"min=0"`
	Person   string `json:"person"   validate:"omitempty,max=120"`
	Job      string `json:"job"      validate:"omitempty,max=120"`
	Notes    string `json:"notes"    validate:"omitempty,max=500"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type LedgerFilter struct {
	Code  string `form:"code"`
	Kind  string `form:"kind"             validate:"omitempty,oneof=in out manual"`
	Page  int    `form:"page,default=1"   validate:"min=1"`
	Limit int    `form:"limit,default=50" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type EntryResponse struct {
	ID       string    `json:"id"`
	ItemCode string    `json:"item_code,omitempty"`
	Kind     string    `json:"kind"`
	Quantity int       `json:"quantity"`
	Delta    int       `json:"delta,omitempty"`
	Person   string    `json:"person,omitempty"`
	Job      string    `json:"job,omitempty"`
	Notes    string    `json:"notes,omitempty"`
	At       time.Time `json:"at"`
}

// TransactionResponse reports the post-transaction quantity. Entry is null
// when a manual adjustment matched the current count and recorded nothing.
type TransactionResponse struct {
	Quantity int            `json:"quantity"`
	Entry    *EntryResponse `json:"entry,omitempty"`
}

type LedgerListResponse struct {
	Data  []EntryResponse `json:"data"`
	Total int             `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
