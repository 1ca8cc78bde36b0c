package model

import (
	"sort"
	"strings"
	"time"
)

// Item is one tracked stock line. Code is the stable identity printed on the
// QR label; renames re-key the registry but keep the rest of the record.
// Quantity is always the replay of History and never goes negative.
type Item struct {
	Code           string `gorm:"primaryKey" json:"-"`
	Name           string `gorm:"index;not null" json:"name"`
	Quantity       int    `gorm:"not null;default:0" json:"quantity"`
	AlertThreshold int    `gorm:"not null;default:0" json:"alert_threshold,omitempty"`
	AlertRecipient string `json:"alert_recipient,omitempty"`
	// LastAlertLevel records the quantity at which the low-stock alert last
	// fired, so repeated OUTs below the threshold do not re-alert.
	LastAlertLevel *int      `json:"last_alert_level,omitempty"`
	History        []Entry   `gorm:"-" json:"history"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Clone returns a deep copy. Registry readers receive clones so callers can
// never mutate committed state through a returned pointer.
func (it *Item) Clone() *Item {
	cp := *it
	if it.LastAlertLevel != nil {
		lvl := *it.LastAlertLevel
		cp.LastAlertLevel = &lvl
	}
	cp.History = make([]Entry, len(it.History))
	copy(cp.History, it.History)
	return &cp
}

// Replay folds History from zero: IN adds, OUT subtracts, MANUAL applies its
// signed delta. The result must equal Quantity for a consistent record.
func (it *Item) Replay() int {
	total := 0
	for i := range it.History {
		total += it.History[i].SignedDelta()
	}
	return total
}

// SortItemsByName orders items by display name, case-insensitive, with the
// code as tiebreaker so listings are stable.
func SortItemsByName(items []*Item) {
	sort.Slice(items, func(i, j int) bool {
		a, b := strings.ToLower(items[i].Name), strings.ToLower(items[j].Name)
		if a != b {
			return a < b
		}
		return items[i].Code < items[j].Code
	})
}
