package ledger

import (
	"sort"

	"rfidledger/m/domain"
)

// catalog holds items and locations. Items carry derived totals that only
// recalculate may write.
type catalog struct {
	items     map[string]*domain.Item
	locations map[string]domain.Location
	disposal  string
}

func newCatalog() *catalog {
	return &catalog{
		items:     make(map[string]*domain.Item),
		locations: make(map[string]domain.Location),
	}
}

func (c *catalog) addItem(item domain.Item) {
	item.Total = 0
	item.Status = statusFor(0, item.ReorderPoint)
	c.items[item.ID] = &item
}

func (c *catalog) addLocation(loc domain.Location) {
	c.locations[loc.ID] = loc
	if loc.Disposal && c.disposal == "" {
		c.disposal = loc.ID
	}
}

func (c *catalog) item(id string) (*domain.Item, bool) {
	item, ok := c.items[id]
	return item, ok
}

func (c *catalog) hasLocation(id string) bool {
	_, ok := c.locations[id]
	return ok
}

// pairedDisposal returns the disposal counterpart of item when the catalog
// actually contains it.
func (c *catalog) pairedDisposal(item *domain.Item) (*domain.Item, bool) {
	if item.PairedDisposalID == "" {
		return nil, false
	}
	return c.item(item.PairedDisposalID)
}

func (c *catalog) itemList() []domain.Item {
	out := make([]domain.Item, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *catalog) locationList() []domain.Location {
	out := make([]domain.Location, 0, len(c.locations))
	for _, loc := range c.locations {
		out = append(out, loc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func statusFor(total, reorderPoint int64) domain.StockStatus {
	if total <= reorderPoint {
		return domain.StatusRisk
	}
	return domain.StatusOK
}
