package dto

import "github.com/shopspring/decimal"

type CreateItemInput struct {
	Code            string
	Name            string
	CategoryID      string
	Location        string
	MinimumQuantity int64
	UnitPrice       decimal.Decimal
	InitialQuantity int64
}

// UpdateItemInput replaces the item's metadata. Quantity is not editable here.
type UpdateItemInput struct {
	ID              string
	Name            string
	CategoryID      string
	Location        string
	MinimumQuantity int64
	UnitPrice       decimal.Decimal
}
