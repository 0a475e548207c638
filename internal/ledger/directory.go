package ledger

import (
	"sort"
	"strings"
	"time"

	"rfidledger/m/domain"
)

// NormalizeTag returns the canonical form of a raw tag read: upper-case,
// without an 0x prefix, whitespace, or ':'/'-' separators.
func NormalizeTag(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "0X")
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', ':', '-':
			return -1
		}
		return r
	}, s)
}

// directory maps normalized tags to items and their last known location.
// Badges live in a separate set and never resolve to an item.
type directory struct {
	entries map[string]*domain.TagMapping
	badges  map[string]struct{}
}

func newDirectory() *directory {
	return &directory{
		entries: make(map[string]*domain.TagMapping),
		badges:  make(map[string]struct{}),
	}
}

func (d *directory) isBadge(tag string) bool {
	_, ok := d.badges[tag]
	return ok
}

func (d *directory) addBadge(tag string) {
	d.badges[tag] = struct{}{}
	delete(d.entries, tag)
}

func (d *directory) lookup(tag string) (*domain.TagMapping, bool) {
	m, ok := d.entries[tag]
	return m, ok
}

func (d *directory) set(tag, itemID, locationID string, now time.Time) domain.TagMapping {
	m := &domain.TagMapping{CardHex: tag, ItemID: itemID, LastLocationID: locationID, UpdatedAt: now}
	d.entries[tag] = m
	return *m
}

func (d *directory) remove(tag string) bool {
	if _, ok := d.entries[tag]; !ok {
		return false
	}
	delete(d.entries, tag)
	return true
}

func (d *directory) list() []domain.TagMapping {
	out := make([]domain.TagMapping, 0, len(d.entries))
	for _, m := range d.entries {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CardHex < out[j].CardHex })
	return out
}
