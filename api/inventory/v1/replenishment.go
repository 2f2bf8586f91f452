package inventoryv1

import (
	"context"
	"time"

	"google.golang.org/grpc"
)

type ReplenishmentRequest struct {
	ID                string     `json:"id"`
	ItemID            string     `json:"item_id"`
	RequestedQuantity int64      `json:"requested_quantity"`
	ApprovedQuantity  *int64     `json:"approved_quantity,omitempty"`
	ReceivedQuantity  *int64     `json:"received_quantity,omitempty"`
	Priority          string     `json:"priority"`
	Reason            string     `json:"reason"`
	SupplierInfo      string     `json:"supplier_info,omitempty"`
	EstimatedCost     string     `json:"estimated_cost,omitempty"`
	ActualCost        string     `json:"actual_cost,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	Status            string     `json:"status"`
	RequestedBy       string     `json:"requested_by"`
	ApprovedBy        string     `json:"approved_by,omitempty"`
	ReceivedBy        string     `json:"received_by,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	ProcessedAt       *time.Time `json:"processed_at,omitempty"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type SubmitReplenishmentRequest struct {
	ItemID        string  `json:"item_id"`
	Quantity      int64   `json:"quantity"`
	Priority      string  `json:"priority,omitempty"`
	Reason        string  `json:"reason"`
	SupplierInfo  *string `json:"supplier_info,omitempty"`
	EstimatedCost *string `json:"estimated_cost,omitempty"`
}

type ApproveReplenishmentRequest struct {
	ID               string  `json:"id"`
	ApprovedQuantity *int64  `json:"approved_quantity,omitempty"`
	ActualCost       *string `json:"actual_cost,omitempty"`
	Notes            *string `json:"notes,omitempty"`
}

type RejectReplenishmentRequest struct {
	ID    string `json:"id"`
	Notes string `json:"notes"`
}

type ReceiveReplenishmentRequest struct {
	ID               string  `json:"id"`
	ReceivedQuantity *int64  `json:"received_quantity,omitempty"`
	ActualCost       *string `json:"actual_cost,omitempty"`
}

type ReceiveResponse struct {
	Request  *ReplenishmentRequest `json:"request"`
	Movement *StockMovement        `json:"movement"`
}

type ListReplenishmentsRequest struct {
	Status      string `json:"status,omitempty"`
	ItemID      string `json:"item_id,omitempty"`
	RequestedBy string `json:"requested_by,omitempty"`
	Page        int32  `json:"page,omitempty"`
	PageSize    int32  `json:"page_size,omitempty"`
}

type ListReplenishmentsResponse struct {
	Requests []*ReplenishmentRequest `json:"requests"`
	Total    int32                   `json:"total"`
}

const ReplenishmentServiceName = "inventory.v1.ReplenishmentService"

const (
	ReplenishmentService_Submit_FullMethodName      = "/" + ReplenishmentServiceName + "/Submit"
	ReplenishmentService_Approve_FullMethodName     = "/" + ReplenishmentServiceName + "/Approve"
	ReplenishmentService_Reject_FullMethodName      = "/" + ReplenishmentServiceName + "/Reject"
	ReplenishmentService_MarkOrdered_FullMethodName = "/" + ReplenishmentServiceName + "/MarkOrdered"
	ReplenishmentService_Receive_FullMethodName     = "/" + ReplenishmentServiceName + "/Receive"
	ReplenishmentService_Delete_FullMethodName      = "/" + ReplenishmentServiceName + "/Delete"
	ReplenishmentService_Get_FullMethodName         = "/" + ReplenishmentServiceName + "/Get"
	ReplenishmentService_List_FullMethodName        = "/" + ReplenishmentServiceName + "/List"
)

type ReplenishmentServiceServer interface {
	Submit(context.Context, *SubmitReplenishmentRequest) (*ReplenishmentRequest, error)
	Approve(context.Context, *ApproveReplenishmentRequest) (*ReplenishmentRequest, error)
	Reject(context.Context, *RejectReplenishmentRequest) (*ReplenishmentRequest, error)
	MarkOrdered(context.Context, *GetRequest) (*ReplenishmentRequest, error)
	Receive(context.Context, *ReceiveReplenishmentRequest) (*ReceiveResponse, error)
	Delete(context.Context, *GetRequest) (*Empty, error)
	Get(context.Context, *GetRequest) (*ReplenishmentRequest, error)
	List(context.Context, *ListReplenishmentsRequest) (*ListReplenishmentsResponse, error)
}

var ReplenishmentService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ReplenishmentServiceName,
	HandlerType: (*ReplenishmentServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(ReplenishmentServiceName, "Submit", ReplenishmentServiceServer.Submit),
		unary(ReplenishmentServiceName, "Approve", ReplenishmentServiceServer.Approve),
		unary(ReplenishmentServiceName, "Reject", ReplenishmentServiceServer.Reject),
		unary(ReplenishmentServiceName, "MarkOrdered", ReplenishmentServiceServer.MarkOrdered),
		unary(ReplenishmentServiceName, "Receive", ReplenishmentServiceServer.Receive),
		unary(ReplenishmentServiceName, "Delete", ReplenishmentServiceServer.Delete),
		unary(ReplenishmentServiceName, "Get", ReplenishmentServiceServer.Get),
		unary(ReplenishmentServiceName, "List", ReplenishmentServiceServer.List),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: metadataFile,
}

func RegisterReplenishmentServiceServer(s grpc.ServiceRegistrar, srv ReplenishmentServiceServer) {
	s.RegisterService(&ReplenishmentService_ServiceDesc, srv)
}

type ReplenishmentServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewReplenishmentServiceClient(cc grpc.ClientConnInterface) *ReplenishmentServiceClient {
	return &ReplenishmentServiceClient{cc: cc}
}

func (c *ReplenishmentServiceClient) Submit(ctx context.Context, in *SubmitReplenishmentRequest, opts ...grpc.CallOption) (*ReplenishmentRequest, error) {
	return invoke[ReplenishmentRequest](ctx, c.cc, ReplenishmentService_Submit_FullMethodName, in, opts)
}

func (c *ReplenishmentServiceClient) Approve(ctx context.Context, in *ApproveReplenishmentRequest, opts ...grpc.CallOption) (*ReplenishmentRequest, error) {
	return invoke[ReplenishmentRequest](ctx, c.cc, ReplenishmentService_Approve_FullMethodName, in, opts)
}

func (c *ReplenishmentServiceClient) Reject(ctx context.Context, in *RejectReplenishmentRequest, opts ...grpc.CallOption) (*ReplenishmentRequest, error) {
	return invoke[ReplenishmentRequest](ctx, c.cc, ReplenishmentService_Reject_FullMethodName, in, opts)
}

func (c *ReplenishmentServiceClient) MarkOrdered(ctx context.Context, in *GetRequest, opts ...grpc.CallOption) (*ReplenishmentRequest, error) {
	return invoke[ReplenishmentRequest](ctx, c.cc, ReplenishmentService_MarkOrdered_FullMethodName, in, opts)
}

func (c *ReplenishmentServiceClient) Receive(ctx context.Context, in *ReceiveReplenishmentRequest, opts ...grpc.CallOption) (*ReceiveResponse, error) {
	return invoke[ReceiveResponse](ctx, c.cc, ReplenishmentService_Receive_FullMethodName, in, opts)
}

func (c *ReplenishmentServiceClient) Delete(ctx context.Context, in *GetRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, ReplenishmentService_Delete_FullMethodName, in, opts)
}

func (c *ReplenishmentServiceClient) Get(ctx context.Context, in *GetRequest, opts ...grpc.CallOption) (*ReplenishmentRequest, error) {
	return invoke[ReplenishmentRequest](ctx, c.cc, ReplenishmentService_Get_FullMethodName, in, opts)
}

func (c *ReplenishmentServiceClient) List(ctx context.Context, in *ListReplenishmentsRequest, opts ...grpc.CallOption) (*ListReplenishmentsResponse, error) {
	return invoke[ListReplenishmentsResponse](ctx, c.cc, ReplenishmentService_List_FullMethodName, in, opts)
}
