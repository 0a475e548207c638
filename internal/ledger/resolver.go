package ledger

import (
	"github.com/google/uuid"

	"rfidledger/m/domain"
)

// Transition reports a directory change caused by a scan.
type Transition string

const (
	TransitionConsumed        Transition = "CONSUMED"
	TransitionConsumedToTrash Transition = "CONSUMED_TO_TRASH"
)

// ScanRequest is a raw RFID scan as received from a reader client.
type ScanRequest struct {
	CardHex    string
	Mode       string
	Qty        int64
	Actor      string
	LocationID string
	Reason     string
	WorkOrder  string
}

// Scan resolves a tag read into a ledger movement. Unmapped tags are
// quarantined and reported as CARD_NOT_MAPPED.
func (l *Ledger) Scan(req ScanRequest) (Result, error) {
	res, unknown, err := l.scanLocked(req)
	if unknown != nil {
		l.notifyUnknown(*unknown)
	}
	if err == nil {
		l.notifyEntry(res.LogEntry)
	}
	return res, err
}

func (l *Ledger) scanLocked(req ScanRequest) (Result, *domain.UnknownScan, error) {
	tag := NormalizeTag(req.CardHex)
	if tag == "" {
		return Result{}, nil, newError(KindInvalidRequest, "cardHex is required")
	}
	mode, ok := domain.ParseMode(req.Mode)
	if !ok {
		return Result{}, nil, newError(KindInvalidMode, "mode must be IN or OUT, got %q", req.Mode)
	}
	qty := req.Qty
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return Result{}, nil, newError(KindInvalidQty, "qty must be at least 1, got %d", qty)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.tags.isBadge(tag) {
		return Result{}, nil, newError(KindBadgeScan, "tag %s is an operator badge", tag)
	}

	entry, ok := l.tags.lookup(tag)
	if !ok {
		actor := req.Actor
		if actor == "" {
			actor = defaultActor
		}
		scan := domain.UnknownScan{
			ID:         uuid.NewString(),
			Timestamp:  l.now(),
			CardHex:    tag,
			Mode:       mode,
			Qty:        qty,
			Actor:      actor,
			LocationID: req.LocationID,
			Error:      string(KindCardNotMapped),
		}
		l.quarantine.record(scan)
		return Result{}, &scan, newError(KindCardNotMapped, "tag %s has no mapping", tag)
	}

	item, ok := l.catalog.item(entry.ItemID)
	if !ok {
		return Result{}, nil, newError(KindBadItemMapping, "tag %s maps to missing item %s", tag, entry.ItemID)
	}

	m := movement{
		item:      item,
		mode:      mode,
		qty:       qty,
		actor:     req.Actor,
		reason:    req.Reason,
		workOrder: req.WorkOrder,
		cardHex:   tag,
	}

	switch item.Category {
	case domain.CategoryFood:
		return l.consumeFood(entry, m, req.LocationID)
	case domain.CategoryTrash:
		if mode != domain.ModeIn {
			return Result{}, nil, newError(KindTrashOnlyIn, "disposal item %s can only be checked in", item.ID)
		}
		if l.catalog.disposal == "" {
			return Result{}, nil, newError(KindUnknownLocation, "no disposal location registered")
		}
		m.locationID = l.catalog.disposal
	case domain.CategoryGen:
		if err := l.requireLocation(req.LocationID); err != nil {
			return Result{}, nil, err
		}
		m.locationID = req.LocationID
	default:
		m.locationID = l.effectiveLocation(req.LocationID, entry.LastLocationID)
		if !l.catalog.hasLocation(m.locationID) {
			return Result{}, nil, newError(KindUnknownLocation, "location %q not registered", m.locationID)
		}
	}

	if err := l.stock.check(item.ID, m.locationID, mode, qty); err != nil {
		return Result{}, nil, err
	}
	res := l.commit(m)
	entry.LastLocationID = m.locationID
	entry.UpdatedAt = res.LogEntry.Timestamp
	return res, nil, nil
}

// consumeFood checks out a consumable and remaps its tag to the paired
// disposal item at the consumption location. Without a paired item in the
// catalog the tag keeps resolving to the consumed item.
func (l *Ledger) consumeFood(entry *domain.TagMapping, m movement, locationID string) (Result, *domain.UnknownScan, error) {
	if m.mode != domain.ModeOut {
		return Result{}, nil, newError(KindFoodOnlyOut, "consumable %s can only be checked out", m.item.ID)
	}
	if err := l.requireLocation(locationID); err != nil {
		return Result{}, nil, err
	}
	m.locationID = locationID
	if err := l.stock.check(m.item.ID, locationID, m.mode, m.qty); err != nil {
		return Result{}, nil, err
	}

	res := l.commit(m)
	entry.LastLocationID = locationID
	entry.UpdatedAt = res.LogEntry.Timestamp
	res.Transition = TransitionConsumed
	if paired, ok := l.catalog.pairedDisposal(m.item); ok {
		entry.ItemID = paired.ID
		res.Transition = TransitionConsumedToTrash
		res.NextItemID = paired.ID
	}
	return res, nil, nil
}

func (l *Ledger) requireLocation(locationID string) error {
	if locationID == "" {
		return newError(KindUnknownLocation, "locationId is required for this tag")
	}
	if !l.catalog.hasLocation(locationID) {
		return newError(KindUnknownLocation, "location %q not registered", locationID)
	}
	return nil
}

// effectiveLocation picks the request location, then the tag's last known
// location, then the configured default.
func (l *Ledger) effectiveLocation(requested, last string) string {
	switch {
	case requested != "":
		return requested
	case last != "":
		return last
	}
	return l.defaultLocationID
}

func (l *Ledger) checkMapping(tag, itemID, locationID string) error {
	if tag == "" {
		return newError(KindInvalidRequest, "cardHex is required")
	}
	if l.tags.isBadge(tag) {
		return newError(KindBadgeScan, "tag %s is an operator badge", tag)
	}
	if _, ok := l.catalog.item(itemID); !ok {
		return newError(KindUnknownItem, "item %q not in catalog", itemID)
	}
	if !l.catalog.hasLocation(locationID) {
		return newError(KindUnknownLocation, "location %q not registered", locationID)
	}
	return nil
}

// SetMapping creates or overwrites a tag mapping and clears the tag's
// quarantined scans.
func (l *Ledger) SetMapping(cardHex, itemID, locationID string) (domain.TagMapping, int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tag := NormalizeTag(cardHex)
	if err := l.checkMapping(tag, itemID, locationID); err != nil {
		return domain.TagMapping{}, 0, err
	}
	m := l.tags.set(tag, itemID, locationID, l.now())
	return m, l.quarantine.clear(tag), nil
}

// ForceMove relocates a tag without touching stock.
func (l *Ledger) ForceMove(cardHex, locationID string) (domain.TagMapping, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tag := NormalizeTag(cardHex)
	if tag == "" {
		return domain.TagMapping{}, newError(KindInvalidRequest, "cardHex is required")
	}
	entry, ok := l.tags.lookup(tag)
	if !ok {
		return domain.TagMapping{}, newError(KindCardNotMapped, "tag %s has no mapping", tag)
	}
	if !l.catalog.hasLocation(locationID) {
		return domain.TagMapping{}, newError(KindUnknownLocation, "location %q not registered", locationID)
	}
	entry.LastLocationID = locationID
	entry.UpdatedAt = l.now()
	return *entry, nil
}

func (l *Ledger) RemoveMapping(cardHex string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tag := NormalizeTag(cardHex)
	if !l.tags.remove(tag) {
		return newError(KindCardNotMapped, "tag %s has no mapping", tag)
	}
	return nil
}
