package domain

import "time"

// StockRow is the quantity of one item at one location, optionally one expiry lot.
type StockRow struct {
	ItemID     string     `json:"itemId" yaml:"itemId"`
	LocationID string     `json:"locationId" yaml:"locationId"`
	Qty        int64      `json:"qty" yaml:"qty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty" yaml:"expiresAt"`
}
