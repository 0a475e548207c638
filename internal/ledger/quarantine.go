package ledger

import "rfidledger/m/domain"

// quarantine is a bounded buffer of unresolved scans. It never influences
// the ledger.
type quarantine struct {
	capacity int
	entries  []domain.UnknownScan // oldest first
}

func newQuarantine(capacity int) *quarantine {
	if capacity <= 0 {
		capacity = DefaultQuarantineCapacity
	}
	return &quarantine{capacity: capacity}
}

func (q *quarantine) record(e domain.UnknownScan) {
	q.entries = append(q.entries, e)
	if over := len(q.entries) - q.capacity; over > 0 {
		q.entries = append(q.entries[:0:0], q.entries[over:]...)
	}
}

func (q *quarantine) list() []domain.UnknownScan {
	out := make([]domain.UnknownScan, 0, len(q.entries))
	for i := len(q.entries) - 1; i >= 0; i-- {
		out = append(out, q.entries[i])
	}
	return out
}

// clear drops every entry for the tag and reports how many were removed.
func (q *quarantine) clear(cardHex string) int {
	kept := q.entries[:0]
	removed := 0
	for _, e := range q.entries {
		if e.CardHex == cardHex {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	q.entries = kept
	return removed
}
