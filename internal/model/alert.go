package model

import "time"

// AlertIntent is the payload of one fired low-stock alert, queued for
// asynchronous delivery. It is self-contained so workers never have to read
// the registry.
type AlertIntent struct {
	Recipient string    `json:"recipient"`
	ItemCode  string    `json:"item_code"`
	ItemName  string    `json:"item_name"`
	Quantity  int       `json:"quantity"`
	Threshold int       `json:"threshold"`
	FiredAt   time.Time `json:"fired_at"`
}
