package model

import "github.com/shopspring/decimal"

type ItemStatus string

const (
	ItemStatusActive   ItemStatus = "active"
	ItemStatusInactive ItemStatus = "inactive"
)

func (s ItemStatus) Valid() bool {
	return s == ItemStatusActive || s == ItemStatusInactive
}

// Item is a stocked article. Quantity is only ever written by the stock guard;
// catalog edits touch the metadata fields.
type Item struct {
	BaseModel
	Code            string          `db:"code" json:"code"`
	Name            string          `db:"name" json:"name"`
	CategoryID      *string         `db:"category_id" json:"category_id"`
	Location        *string         `db:"location" json:"location"`
	Quantity        int64           `db:"quantity" json:"quantity"`
	MinimumQuantity int64           `db:"minimum_quantity" json:"minimum_quantity"`
	UnitPrice       decimal.Decimal `db:"unit_price" json:"unit_price"`
	Status          ItemStatus      `db:"status" json:"status"`
}

func (i *Item) IsActive() bool {
	return i.Status == ItemStatusActive
}

// Margin is how far the item sits above its reorder threshold; zero or less means low stock.
func (i *Item) Margin() int64 {
	return i.Quantity - i.MinimumQuantity
}

func (i *Item) IsLowStock() bool {
	return i.IsActive() && i.Quantity <= i.MinimumQuantity
}
