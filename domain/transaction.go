package domain

import (
	"strings"
	"time"
)

type Mode string

const (
	ModeIn  Mode = "IN"
	ModeOut Mode = "OUT"
)

// ParseMode accepts IN/OUT in any case.
func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToUpper(strings.TrimSpace(s))) {
	case ModeIn:
		return ModeIn, true
	case ModeOut:
		return ModeOut, true
	}
	return "", false
}

type Action string

const (
	ActionCheckin  Action = "CHECKIN"
	ActionCheckout Action = "CHECKOUT"
)

// ActionFor maps a movement mode to the action reported to callers.
func ActionFor(m Mode) Action {
	if m == ModeOut {
		return ActionCheckout
	}
	return ActionCheckin
}

type LogEntry struct {
	ID         int64     `json:"id" db:"id"`
	Timestamp  time.Time `json:"timestamp" db:"created_at"`
	ItemID     string    `json:"itemId" db:"item_id"`
	LocationID string    `json:"locationId" db:"location_id"`
	Mode       Mode      `json:"mode" db:"mode"`
	Qty        int64     `json:"qty" db:"qty"`
	Actor      string    `json:"actor" db:"actor"`
	Reason     string    `json:"reason,omitempty" db:"reason"`
	WorkOrder  string    `json:"workOrder,omitempty" db:"work_order"`
	CardHex    string    `json:"cardHex,omitempty" db:"card_hex"`
}
