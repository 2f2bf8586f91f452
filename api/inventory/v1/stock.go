package inventoryv1

import (
	"context"
	"time"

	"google.golang.org/grpc"
)

type StockMovement struct {
	ID               string    `json:"id"`
	Sequence         int64     `json:"sequence"`
	ItemID           string    `json:"item_id"`
	Kind             string    `json:"kind"`
	Quantity         int64     `json:"quantity"`
	PreviousQuantity int64     `json:"previous_quantity"`
	NewQuantity      int64     `json:"new_quantity"`
	Reason           string    `json:"reason"`
	ReferenceType    string    `json:"reference_type,omitempty"`
	ReferenceID      string    `json:"reference_id,omitempty"`
	ActorID          string    `json:"actor_id"`
	CreatedAt        time.Time `json:"created_at"`
}

type AdjustStockRequest struct {
	ItemID   string `json:"item_id"`
	Kind     string `json:"kind"`
	Quantity int64  `json:"quantity"`
	Reason   string `json:"reason"`
}

type MoveResponse struct {
	Item     *Item          `json:"item"`
	Movement *StockMovement `json:"movement"`
}

type ListMovementsRequest struct {
	ItemID        string `json:"item_id,omitempty"`
	Kind          string `json:"kind,omitempty"`
	ReferenceType string `json:"reference_type,omitempty"`
	ReferenceID   string `json:"reference_id,omitempty"`
	Page          int32  `json:"page,omitempty"`
	PageSize      int32  `json:"page_size,omitempty"`
}

type ListMovementsResponse struct {
	Movements []*StockMovement `json:"movements"`
	Total     int32            `json:"total"`
}

type VerifyLedgerRequest struct {
	ItemID string `json:"item_id"`
}

type LedgerReport struct {
	ItemID           string `json:"item_id"`
	StoredQuantity   int64  `json:"stored_quantity"`
	ReplayedQuantity int64  `json:"replayed_quantity"`
	Movements        int32  `json:"movements"`
	Consistent       bool   `json:"consistent"`
	BrokenMovementID string `json:"broken_movement_id,omitempty"`
}

const StockServiceName = "inventory.v1.StockService"

const (
	StockService_AdjustStock_FullMethodName   = "/" + StockServiceName + "/AdjustStock"
	StockService_ListMovements_FullMethodName = "/" + StockServiceName + "/ListMovements"
	StockService_VerifyLedger_FullMethodName  = "/" + StockServiceName + "/VerifyLedger"
)

type StockServiceServer interface {
	AdjustStock(context.Context, *AdjustStockRequest) (*MoveResponse, error)
	ListMovements(context.Context, *ListMovementsRequest) (*ListMovementsResponse, error)
	VerifyLedger(context.Context, *VerifyLedgerRequest) (*LedgerReport, error)
}

var StockService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: StockServiceName,
	HandlerType: (*StockServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(StockServiceName, "AdjustStock", StockServiceServer.AdjustStock),
		unary(StockServiceName, "ListMovements", StockServiceServer.ListMovements),
		unary(StockServiceName, "VerifyLedger", StockServiceServer.VerifyLedger),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: metadataFile,
}

func RegisterStockServiceServer(s grpc.ServiceRegistrar, srv StockServiceServer) {
	s.RegisterService(&StockService_ServiceDesc, srv)
}

type StockServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewStockServiceClient(cc grpc.ClientConnInterface) *StockServiceClient {
	return &StockServiceClient{cc: cc}
}

func (c *StockServiceClient) AdjustStock(ctx context.Context, in *AdjustStockRequest, opts ...grpc.CallOption) (*MoveResponse, error) {
	return invoke[MoveResponse](ctx, c.cc, StockService_AdjustStock_FullMethodName, in, opts)
}

func (c *StockServiceClient) ListMovements(ctx context.Context, in *ListMovementsRequest, opts ...grpc.CallOption) (*ListMovementsResponse, error) {
	return invoke[ListMovementsResponse](ctx, c.cc, StockService_ListMovements_FullMethodName, in, opts)
}

func (c *StockServiceClient) VerifyLedger(ctx context.Context, in *VerifyLedgerRequest, opts ...grpc.CallOption) (*LedgerReport, error) {
	return invoke[LedgerReport](ctx, c.cc, StockService_VerifyLedger_FullMethodName, in, opts)
}
