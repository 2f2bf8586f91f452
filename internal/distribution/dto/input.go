package dto

type SubmitInput struct {
	ItemID   string
	Quantity int64
	Purpose  string
	Urgency  string // low, normal (or medium), high; empty means normal
}

type ApproveInput struct {
	ID               string
	ApprovedQuantity *int64 // defaults to the requested quantity
	Remarks          *string
}
