package model

import (
	"time"

	"github.com/google/uuid"
)

// TxKind discriminates ledger entries.
type TxKind string

const (
	TxIn     TxKind = "in"     // stock received
	TxOut    TxKind = "out"    // stock checked out against a job
	TxManual TxKind = "manual" // count corrected to an absolute target
)

// Valid reports whether k is one of the three ledger kinds.
func (k TxKind) Valid() bool {
	return k == TxIn || k == TxOut || k == TxManual
}

// Entry is one immutable ledger record. Quantity is always the positive
// magnitude of the movement; for MANUAL entries Delta additionally keeps the
// signed difference so a replay can reproduce the corrected count.
type Entry struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ItemCode string    `gorm:"not null;index" json:"-"`
	Kind     TxKind    `gorm:"not null" json:"action"`
	Quantity int       `gorm:"not null" json:"qty"`
	Delta    int       `json:"delta,omitempty"`
	Person   string    `json:"person,omitempty"`
	Job      string    `json:"job,omitempty"`
	Notes    string    `json:"note,omitempty"`
	At       time.Time `gorm:"not null;index" json:"at"`
}

// TableName overrides GORM's default pluralization (entries → ledger_entries).
func (Entry) TableName() string { return "ledger_entries" }

// SignedDelta is the entry's contribution to a quantity replay.
func (e *Entry) SignedDelta() int {
	switch e.Kind {
	case TxIn:
		return e.Quantity
	case TxOut:
		return -e.Quantity
	case TxManual:
		return e.Delta
	}
	return 0
}
