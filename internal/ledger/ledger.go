// Package ledger holds the in-memory inventory ledger: item catalog, location
// registry, stock rows, transaction log, RFID tag directory and the
// unknown-scan quarantine, all behind a single lock.
package ledger

import (
	"fmt"
	"sync"
	"time"

	"rfidledger/m/domain"
)

const (
	DefaultQuarantineCapacity = 200
	defaultActor              = "unknown"
)

// Observer is notified of committed log entries and quarantined scans. It is
// called after the ledger lock has been released.
type Observer interface {
	EntryAppended(entry domain.LogEntry)
	ScanQuarantined(scan domain.UnknownScan)
}

type Options struct {
	QuarantineCapacity int
	DefaultLocationID  string
	Now                func() time.Time
	Observers          []Observer
}

// Ledger is safe for concurrent use. Every mutation runs validate-then-commit
// under the write lock, so no caller observes a half-applied scan.
type Ledger struct {
	mu         sync.RWMutex
	catalog    *catalog
	stock      *stockLedger
	log        *txLog
	tags       *directory
	quarantine *quarantine

	defaultLocationID string
	now               func() time.Time
	observers         []Observer
}

func New(opts Options) *Ledger {
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Ledger{
		catalog:           newCatalog(),
		stock:             &stockLedger{},
		log:               &txLog{},
		tags:              newDirectory(),
		quarantine:        newQuarantine(opts.QuarantineCapacity),
		defaultLocationID: opts.DefaultLocationID,
		now:               now,
		observers:         opts.Observers,
	}
}

// AddObserver registers o for future notifications.
func (l *Ledger) AddObserver(o Observer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observers = append(l.observers, o)
}

// Seed is the reference data a ledger starts from.
type Seed struct {
	Items     []domain.Item       `yaml:"items"`
	Locations []domain.Location   `yaml:"locations"`
	Stocks    []domain.StockRow   `yaml:"stocks"`
	Tags      []domain.TagMapping `yaml:"tags"`
	Badges    []string            `yaml:"badges"`
}

// Load adds seed data. References are checked so a broken seed fails at
// start instead of on the first scan.
func (l *Ledger) Load(seed Seed) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, loc := range seed.Locations {
		if loc.ID == "" {
			return fmt.Errorf("location with empty id")
		}
		l.catalog.addLocation(loc)
	}
	for _, item := range seed.Items {
		if item.ID == "" {
			return fmt.Errorf("item with empty id")
		}
		if !item.Category.Valid() {
			return fmt.Errorf("item %s: unknown category %q", item.ID, item.Category)
		}
		l.catalog.addItem(item)
	}
	for _, row := range seed.Stocks {
		item, ok := l.catalog.item(row.ItemID)
		if !ok {
			return fmt.Errorf("stock row: unknown item %s", row.ItemID)
		}
		if !l.catalog.hasLocation(row.LocationID) {
			return fmt.Errorf("stock row %s: unknown location %s", row.ItemID, row.LocationID)
		}
		if row.Qty < 0 {
			return fmt.Errorf("stock row %s@%s: negative qty", row.ItemID, row.LocationID)
		}
		l.stock.getOrCreate(row.ItemID, row.LocationID, row.ExpiresAt).Qty += row.Qty
		l.stock.recalculate(item)
	}
	for _, raw := range seed.Badges {
		l.tags.addBadge(NormalizeTag(raw))
	}
	now := l.now()
	for _, m := range seed.Tags {
		tag := NormalizeTag(m.CardHex)
		if err := l.checkMapping(tag, m.ItemID, m.LastLocationID); err != nil {
			return fmt.Errorf("tag %s: %w", m.CardHex, err)
		}
		l.tags.set(tag, m.ItemID, m.LastLocationID, now)
	}
	return nil
}

// Items returns the catalog with derived totals. With status set, only items
// in that status are returned.
func (l *Ledger) Items(status domain.StockStatus) []domain.Item {
	l.mu.RLock()
	defer l.mu.RUnlock()
	all := l.catalog.itemList()
	if status == "" {
		return all
	}
	out := make([]domain.Item, 0, len(all))
	for _, item := range all {
		if item.Status == status {
			out = append(out, item)
		}
	}
	return out
}

func (l *Ledger) Item(id string) (domain.Item, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	item, ok := l.catalog.item(id)
	if !ok {
		return domain.Item{}, false
	}
	return *item, true
}

func (l *Ledger) Locations() []domain.Location {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.catalog.locationList()
}

// Stocks returns stock rows, all of them when itemID is empty.
func (l *Ledger) Stocks(itemID string) []domain.StockRow {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.stock.snapshot(itemID)
}

// Expiring returns non-empty lots expiring within the given window.
func (l *Ledger) Expiring(within time.Duration) []domain.StockRow {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.stock.expiring(l.now().Add(within))
}

// Logs returns the transaction log most-recent-first.
func (l *Ledger) Logs(itemID string, limit int) []domain.LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.log.list(itemID, limit)
}

func (l *Ledger) Mappings() []domain.TagMapping {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tags.list()
}

// Mapping looks up a tag in any raw form.
func (l *Ledger) Mapping(cardHex string) (domain.TagMapping, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	m, ok := l.tags.lookup(NormalizeTag(cardHex))
	if !ok {
		return domain.TagMapping{}, false
	}
	return *m, true
}

// Unknown returns quarantined scans most-recent-first.
func (l *Ledger) Unknown() []domain.UnknownScan {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.quarantine.list()
}

func (l *Ledger) QuarantineLen() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.quarantine.entries)
}

// Result describes a committed movement.
type Result struct {
	Action     domain.Action      `json:"action"`
	CardHex    string             `json:"cardHex,omitempty"`
	ItemID     string             `json:"itemId"`
	LocationID string             `json:"locationId"`
	Qty        int64              `json:"qty"`
	NewQty     int64              `json:"newQty"`
	Total      int64              `json:"total"`
	Status     domain.StockStatus `json:"status"`
	Transition Transition         `json:"transition,omitempty"`
	NextItemID string             `json:"nextItemId,omitempty"`
	LogEntry   domain.LogEntry    `json:"logEntry"`
}

// AdjustRequest is a direct ledger movement that bypasses tag resolution.
type AdjustRequest struct {
	ItemID     string
	LocationID string
	Mode       domain.Mode
	Qty        int64
	Actor      string
	Reason     string
	WorkOrder  string
	ExpiresAt  *time.Time
}

// Adjust moves stock of an item at a location and logs it.
func (l *Ledger) Adjust(req AdjustRequest) (Result, error) {
	res, err := l.adjustLocked(req)
	if err == nil {
		l.notifyEntry(res.LogEntry)
	}
	return res, err
}

func (l *Ledger) adjustLocked(req AdjustRequest) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if req.Mode != domain.ModeIn && req.Mode != domain.ModeOut {
		return Result{}, newError(KindInvalidMode, "mode must be IN or OUT")
	}
	item, ok := l.catalog.item(req.ItemID)
	if !ok {
		return Result{}, newError(KindUnknownItem, "item %q not in catalog", req.ItemID)
	}
	if !l.catalog.hasLocation(req.LocationID) {
		return Result{}, newError(KindUnknownLocation, "location %q not registered", req.LocationID)
	}
	if err := l.stock.check(item.ID, req.LocationID, req.Mode, req.Qty); err != nil {
		return Result{}, err
	}
	return l.commit(movement{
		item:       item,
		locationID: req.LocationID,
		mode:       req.Mode,
		qty:        req.Qty,
		actor:      req.Actor,
		reason:     req.Reason,
		workOrder:  req.WorkOrder,
		expiresAt:  req.ExpiresAt,
	}), nil
}

// movement is a validated ledger change ready to be applied.
type movement struct {
	item       *domain.Item
	locationID string
	mode       domain.Mode
	qty        int64
	actor      string
	reason     string
	workOrder  string
	cardHex    string
	expiresAt  *time.Time
}

// commit applies a validated movement: adjust, recalculate, log. Callers
// hold the write lock.
func (l *Ledger) commit(m movement) Result {
	newQty := l.stock.adjust(m.item.ID, m.locationID, m.mode, m.qty, m.expiresAt)
	l.stock.recalculate(m.item)

	actor := m.actor
	if actor == "" {
		actor = defaultActor
	}
	entry := l.log.append(domain.LogEntry{
		ItemID:     m.item.ID,
		LocationID: m.locationID,
		Mode:       m.mode,
		Qty:        m.qty,
		Actor:      actor,
		Reason:     m.reason,
		WorkOrder:  m.workOrder,
		CardHex:    m.cardHex,
	}, l.now())

	return Result{
		Action:     domain.ActionFor(m.mode),
		CardHex:    m.cardHex,
		ItemID:     m.item.ID,
		LocationID: m.locationID,
		Qty:        m.qty,
		NewQty:     newQty,
		Total:      m.item.Total,
		Status:     m.item.Status,
		LogEntry:   entry,
	}
}

func (l *Ledger) notifyEntry(entry domain.LogEntry) {
	for _, o := range l.observerList() {
		o.EntryAppended(entry)
	}
}

func (l *Ledger) notifyUnknown(scan domain.UnknownScan) {
	for _, o := range l.observerList() {
		o.ScanQuarantined(scan)
	}
}

func (l *Ledger) observerList() []Observer {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.observers
}
