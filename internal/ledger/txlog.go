package ledger

import (
	"time"

	"rfidledger/m/domain"
)

// txLog is append-only. Entries are never edited or removed.
type txLog struct {
	entries []domain.LogEntry
	nextID  int64
}

func (l *txLog) append(e domain.LogEntry, now time.Time) domain.LogEntry {
	l.nextID++
	e.ID = l.nextID
	e.Timestamp = now
	l.entries = append(l.entries, e)
	return e
}

// list returns entries most-recent-first, optionally filtered by item.
// A limit <= 0 means no limit.
func (l *txLog) list(itemID string, limit int) []domain.LogEntry {
	out := make([]domain.LogEntry, 0)
	for i := len(l.entries) - 1; i >= 0; i-- {
		if itemID != "" && l.entries[i].ItemID != itemID {
			continue
		}
		out = append(out, l.entries[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
