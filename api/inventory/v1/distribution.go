package inventoryv1

import (
	"context"
	"time"

	"google.golang.org/grpc"
)

type DistributionRequest struct {
	ID                string     `json:"id"`
	RequesterID       string     `json:"requester_id"`
	RequesterKind     string     `json:"requester_kind"`
	ItemID            string     `json:"item_id"`
	RequestedQuantity int64      `json:"requested_quantity"`
	ApprovedQuantity  *int64     `json:"approved_quantity,omitempty"`
	Purpose           string     `json:"purpose"`
	Urgency           string     `json:"urgency"`
	Status            string     `json:"status"`
	Remarks           string     `json:"remarks,omitempty"`
	ProcessedBy       string     `json:"processed_by,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	ProcessedAt       *time.Time `json:"processed_at,omitempty"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type SubmitDistributionRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int64  `json:"quantity"`
	Purpose  string `json:"purpose"`
	Urgency  string `json:"urgency,omitempty"`
}

type ApproveDistributionRequest struct {
	ID               string  `json:"id"`
	ApprovedQuantity *int64  `json:"approved_quantity,omitempty"`
	Remarks          *string `json:"remarks,omitempty"`
}

type RejectDistributionRequest struct {
	ID      string `json:"id"`
	Remarks string `json:"remarks"`
}

type DistributeRequest struct {
	ID      string  `json:"id"`
	Remarks *string `json:"remarks,omitempty"`
}

type DistributeResponse struct {
	Request  *DistributionRequest `json:"request"`
	Movement *StockMovement       `json:"movement"`
}

type ListDistributionsRequest struct {
	Status      string `json:"status,omitempty"`
	ItemID      string `json:"item_id,omitempty"`
	RequesterID string `json:"requester_id,omitempty"`
	Page        int32  `json:"page,omitempty"`
	PageSize    int32  `json:"page_size,omitempty"`
}

type ListDistributionsResponse struct {
	Requests []*DistributionRequest `json:"requests"`
	Total    int32                  `json:"total"`
}

const DistributionServiceName = "inventory.v1.DistributionService"

const (
	DistributionService_Submit_FullMethodName     = "/" + DistributionServiceName + "/Submit"
	DistributionService_Approve_FullMethodName    = "/" + DistributionServiceName + "/Approve"
	DistributionService_Reject_FullMethodName     = "/" + DistributionServiceName + "/Reject"
	DistributionService_Distribute_FullMethodName = "/" + DistributionServiceName + "/Distribute"
	DistributionService_Cancel_FullMethodName     = "/" + DistributionServiceName + "/Cancel"
	DistributionService_Get_FullMethodName        = "/" + DistributionServiceName + "/Get"
	DistributionService_List_FullMethodName       = "/" + DistributionServiceName + "/List"
)

type DistributionServiceServer interface {
	Submit(context.Context, *SubmitDistributionRequest) (*DistributionRequest, error)
	Approve(context.Context, *ApproveDistributionRequest) (*DistributionRequest, error)
	Reject(context.Context, *RejectDistributionRequest) (*DistributionRequest, error)
	Distribute(context.Context, *DistributeRequest) (*DistributeResponse, error)
	Cancel(context.Context, *GetRequest) (*DistributionRequest, error)
	Get(context.Context, *GetRequest) (*DistributionRequest, error)
	List(context.Context, *ListDistributionsRequest) (*ListDistributionsResponse, error)
}

var DistributionService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: DistributionServiceName,
	HandlerType: (*DistributionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(DistributionServiceName, "Submit", DistributionServiceServer.Submit),
		unary(DistributionServiceName, "Approve", DistributionServiceServer.Approve),
		unary(DistributionServiceName, "Reject", DistributionServiceServer.Reject),
		unary(DistributionServiceName, "Distribute", DistributionServiceServer.Distribute),
		unary(DistributionServiceName, "Cancel", DistributionServiceServer.Cancel),
		unary(DistributionServiceName, "Get", DistributionServiceServer.Get),
		unary(DistributionServiceName, "List", DistributionServiceServer.List),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: metadataFile,
}

func RegisterDistributionServiceServer(s grpc.ServiceRegistrar, srv DistributionServiceServer) {
	s.RegisterService(&DistributionService_ServiceDesc, srv)
}

type DistributionServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewDistributionServiceClient(cc grpc.ClientConnInterface) *DistributionServiceClient {
	return &DistributionServiceClient{cc: cc}
}

func (c *DistributionServiceClient) Submit(ctx context.Context, in *SubmitDistributionRequest, opts ...grpc.CallOption) (*DistributionRequest, error) {
	return invoke[DistributionRequest](ctx, c.cc, DistributionService_Submit_FullMethodName, in, opts)
}

func (c *DistributionServiceClient) Approve(ctx context.Context, in *ApproveDistributionRequest, opts ...grpc.CallOption) (*DistributionRequest, error) {
	return invoke[DistributionRequest](ctx, c.cc, DistributionService_Approve_FullMethodName, in, opts)
}

func (c *DistributionServiceClient) Reject(ctx context.Context, in *RejectDistributionRequest, opts ...grpc.CallOption) (*DistributionRequest, error) {
	return invoke[DistributionRequest](ctx, c.cc, DistributionService_Reject_FullMethodName, in, opts)
}

func (c *DistributionServiceClient) Distribute(ctx context.Context, in *DistributeRequest, opts ...grpc.CallOption) (*DistributeResponse, error) {
	return invoke[DistributeResponse](ctx, c.cc, DistributionService_Distribute_FullMethodName, in, opts)
}

func (c *DistributionServiceClient) Cancel(ctx context.Context, in *GetRequest, opts ...grpc.CallOption) (*DistributionRequest, error) {
	return invoke[DistributionRequest](ctx, c.cc, DistributionService_Cancel_FullMethodName, in, opts)
}

func (c *DistributionServiceClient) Get(ctx context.Context, in *GetRequest, opts ...grpc.CallOption) (*DistributionRequest, error) {
	return invoke[DistributionRequest](ctx, c.cc, DistributionService_Get_FullMethodName, in, opts)
}

func (c *DistributionServiceClient) List(ctx context.Context, in *ListDistributionsRequest, opts ...grpc.CallOption) (*ListDistributionsResponse, error) {
	return invoke[ListDistributionsResponse](ctx, c.cc, DistributionService_List_FullMethodName, in, opts)
}
