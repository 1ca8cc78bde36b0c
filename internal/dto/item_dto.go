package dto

import "time"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateItemRequest struct {
	// Code is optional; when omitted the allocator assigns one.
	Code           string `json:"code"            validate:"omitempty,min=3,max=32,alphanum"`
	Name           string `json:"name"            validate:"required,min=1,max=120"`
	AlertThreshold int    `json:"alert_threshold" validate:"min=0"`
	AlertRecipient string `json:"alert_recipient" validate:"omitempty,email"`
}

type UpdateItemRequest struct {
	Name           *string `json:"name"            validate:"omitempty,min=1,max=120"`
	AlertThreshold *int    `json:"alert_threshold" validate:"omitempty,min=0"`
	AlertRecipient *string `json:"alert_recipient" validate:"omitempty,email"`
}

type RenameItemRequest struct {
	NewCode string `json:"new_code" validate:"required,min=3,max=32,alphanum"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemResponse struct {
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Quantity       int             `json:"quantity"`
	AlertThreshold int             `json:"alert_threshold"`
	AlertRecipient string          `json:"alert_recipient,omitempty"`
	LastAlertLevel *int            `json:"last_alert_level,omitempty"`
	DeepLink       string          `json:"deep_link"`
	History        []EntryResponse `json:"history,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type ItemListResponse struct {
	Data  []ItemResponse `json:"data"`
	Total int            `json:"total"`
}

// ScanResponse is returned by the public QR landing endpoint (no auth required).
type ScanResponse struct {
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Recent   []EntryResponse `json:"recent"`
}
