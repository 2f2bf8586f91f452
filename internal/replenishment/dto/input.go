package dto

import "github.com/shopspring/decimal"

type SubmitInput struct {
	ItemID        string
	Quantity      int64
	Priority      string // low, medium, high; empty means medium
	Reason        string
	SupplierInfo  *string
	EstimatedCost *decimal.Decimal
}

type ApproveInput struct {
	ID               string
	ApprovedQuantity *int64 // defaults to the requested quantity
	ActualCost       *decimal.Decimal
	Notes            *string
}

type ReceiveInput struct {
	ID               string
	ReceivedQuantity *int64 // defaults to the approved, then the requested quantity
	ActualCost       *decimal.Decimal
}
