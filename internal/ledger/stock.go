package ledger

import (
	"math"
	"sort"
	"time"

	"rfidledger/m/domain"
)

// stockLedger keeps quantity-at-location rows. Rows are never pruned: an
// emptied lot stays at qty 0.
type stockLedger struct {
	rows []*domain.StockRow
}

func sameExpiry(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func (s *stockLedger) row(itemID, locationID string, expiresAt *time.Time) *domain.StockRow {
	for _, r := range s.rows {
		if r.ItemID == itemID && r.LocationID == locationID && sameExpiry(r.ExpiresAt, expiresAt) {
			return r
		}
	}
	return nil
}

// getOrCreate returns the lot row for the key, creating it at qty 0.
func (s *stockLedger) getOrCreate(itemID, locationID string, expiresAt *time.Time) *domain.StockRow {
	if r := s.row(itemID, locationID, expiresAt); r != nil {
		return r
	}
	r := &domain.StockRow{ItemID: itemID, LocationID: locationID}
	if expiresAt != nil {
		t := expiresAt.UTC()
		r.ExpiresAt = &t
	}
	s.rows = append(s.rows, r)
	return r
}

// lots returns the rows of an item at a location, earliest expiry first and
// lots without expiry last.
func (s *stockLedger) lots(itemID, locationID string) []*domain.StockRow {
	var out []*domain.StockRow
	for _, r := range s.rows {
		if r.ItemID == itemID && r.LocationID == locationID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].ExpiresAt, out[j].ExpiresAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.Before(*b)
	})
	return out
}

func (s *stockLedger) available(itemID, locationID string) int64 {
	var qty int64
	for _, r := range s.lots(itemID, locationID) {
		qty += r.Qty
	}
	return qty
}

// check validates a movement without applying it.
func (s *stockLedger) check(itemID, locationID string, mode domain.Mode, qty int64) error {
	if qty < 1 {
		return newError(KindInvalidQty, "qty must be at least 1, got %d", qty)
	}
	switch mode {
	case domain.ModeOut:
		if have := s.available(itemID, locationID); qty > have {
			return newError(KindInsufficientStock, "%s at %s has %d, requested %d", itemID, locationID, have, qty)
		}
	case domain.ModeIn:
		// Rows and location sums never exceed the item total.
		if total := s.total(itemID); qty > math.MaxInt64-total {
			return newError(KindInvalidQty, "qty %d would overflow the %d units of %s on hand", qty, total, itemID)
		}
	}
	return nil
}

func (s *stockLedger) total(itemID string) int64 {
	var total int64
	for _, r := range s.rows {
		if r.ItemID == itemID {
			total += r.Qty
		}
	}
	return total
}

// adjust applies a movement that check already accepted and returns the
// item's quantity at the location afterwards.
func (s *stockLedger) adjust(itemID, locationID string, mode domain.Mode, qty int64, expiresAt *time.Time) int64 {
	if mode == domain.ModeIn {
		s.getOrCreate(itemID, locationID, expiresAt).Qty += qty
		return s.available(itemID, locationID)
	}
	remaining := qty
	for _, r := range s.lots(itemID, locationID) {
		if remaining == 0 {
			break
		}
		take := min(r.Qty, remaining)
		r.Qty -= take
		remaining -= take
	}
	return s.available(itemID, locationID)
}

// recalculate re-sums every row of the item. Totals are never adjusted
// incrementally.
func (s *stockLedger) recalculate(item *domain.Item) {
	total := s.total(item.ID)
	item.Total = total
	item.Status = statusFor(total, item.ReorderPoint)
}

func (s *stockLedger) snapshot(itemID string) []domain.StockRow {
	out := make([]domain.StockRow, 0, len(s.rows))
	for _, r := range s.rows {
		if itemID != "" && r.ItemID != itemID {
			continue
		}
		cp := *r
		if r.ExpiresAt != nil {
			t := *r.ExpiresAt
			cp.ExpiresAt = &t
		}
		out = append(out, cp)
	}
	return out
}

// expiring returns non-empty lots whose expiry is on or before cutoff,
// earliest first.
func (s *stockLedger) expiring(cutoff time.Time) []domain.StockRow {
	var out []domain.StockRow
	for _, r := range s.snapshot("") {
		if r.Qty > 0 && r.ExpiresAt != nil && !r.ExpiresAt.After(cutoff) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ExpiresAt.Before(*out[j].ExpiresAt) })
	return out
}
