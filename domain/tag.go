package domain

import "time"

type TagMapping struct {
	CardHex        string    `json:"cardHex" yaml:"cardHex"`
	ItemID         string    `json:"itemId" yaml:"itemId"`
	LastLocationID string    `json:"lastLocationId" yaml:"locationId"`
	UpdatedAt      time.Time `json:"updatedAt" yaml:"-"`
}

type UnknownScan struct {
	ID         string    `json:"id" db:"id"`
	Timestamp  time.Time `json:"timestamp" db:"created_at"`
	CardHex    string    `json:"cardHex" db:"card_hex"`
	Mode       Mode      `json:"mode" db:"mode"`
	Qty        int64     `json:"qty" db:"qty"`
	Actor      string    `json:"actor" db:"actor"`
	LocationID string    `json:"locationId,omitempty" db:"location_id"`
	Error      string    `json:"error" db:"error"`
}
