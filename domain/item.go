package domain

// Category classifies an item for scan-mode restrictions and the consumable remap.
type Category string

const (
	CategoryNone  Category = ""
	CategoryGen   Category = "GEN"
	CategoryFood  Category = "FOOD"
	CategoryTrash Category = "TRASH"
)

// Valid reports whether c is a known category (the empty category is valid).
func (c Category) Valid() bool {
	switch c {
	case CategoryNone, CategoryGen, CategoryFood, CategoryTrash:
		return true
	}
	return false
}

// StockStatus is the derived risk status of an item.
type StockStatus string

const (
	StatusOK   StockStatus = "OK"
	StatusRisk StockStatus = "RISK"
)

type Item struct {
	ID               string      `json:"id" yaml:"id"`
	SKU              string      `json:"sku" yaml:"sku"`
	Name             string      `json:"name" yaml:"name"`
	Description      string      `json:"description,omitempty" yaml:"description"`
	SafetyStock      int64       `json:"safetyStock,omitempty" yaml:"safetyStock"`
	ReorderPoint     int64       `json:"reorderPoint" yaml:"reorderPoint"`
	Category         Category    `json:"category,omitempty" yaml:"category"`
	PairedDisposalID string      `json:"pairedDisposalId,omitempty" yaml:"pairedDisposalId"`
	Total            int64       `json:"total" yaml:"-"`
	Status           StockStatus `json:"status" yaml:"-"`
}
