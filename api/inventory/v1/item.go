package inventoryv1

import (
	"context"
	"time"

	"google.golang.org/grpc"
)

type Item struct {
	ID              string    `json:"id"`
	Code            string    `json:"code"`
	Name            string    `json:"name"`
	CategoryID      string    `json:"category_id,omitempty"`
	Location        string    `json:"location,omitempty"`
	Quantity        int64     `json:"quantity"`
	MinimumQuantity int64     `json:"minimum_quantity"`
	UnitPrice       string    `json:"unit_price"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type CreateItemRequest struct {
	Code            string `json:"code"`
	Name            string `json:"name"`
	CategoryID      string `json:"category_id,omitempty"`
	Location        string `json:"location,omitempty"`
	MinimumQuantity int64  `json:"minimum_quantity"`
	UnitPrice       string `json:"unit_price"`
	InitialQuantity int64  `json:"initial_quantity"`
}

type UpdateItemRequest struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	CategoryID      string `json:"category_id,omitempty"`
	Location        string `json:"location,omitempty"`
	MinimumQuantity int64  `json:"minimum_quantity"`
	UnitPrice       string `json:"unit_price"`
}

type SetItemStatusRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type ListItemsRequest struct {
	CategoryID string `json:"category_id,omitempty"`
	Status     string `json:"status,omitempty"`
	Search     string `json:"search,omitempty"`
	Page       int32  `json:"page,omitempty"`
	PageSize   int32  `json:"page_size,omitempty"`
}

type ListItemsResponse struct {
	Items []*Item `json:"items"`
	Total int32   `json:"total"`
}

type ListLowStockRequest struct {
	CategoryID string `json:"category_id,omitempty"`
	Limit      int32  `json:"limit,omitempty"`
}

type ListLowStockResponse struct {
	Items []*Item `json:"items"`
}

const ItemServiceName = "inventory.v1.ItemService"

const (
	ItemService_CreateItem_FullMethodName    = "/" + ItemServiceName + "/CreateItem"
	ItemService_GetItem_FullMethodName       = "/" + ItemServiceName + "/GetItem"
	ItemService_ListItems_FullMethodName     = "/" + ItemServiceName + "/ListItems"
	ItemService_UpdateItem_FullMethodName    = "/" + ItemServiceName + "/UpdateItem"
	ItemService_SetItemStatus_FullMethodName = "/" + ItemServiceName + "/SetItemStatus"
	ItemService_ListLowStock_FullMethodName  = "/" + ItemServiceName + "/ListLowStock"
)

type ItemServiceServer interface {
	CreateItem(context.Context, *CreateItemRequest) (*Item, error)
	GetItem(context.Context, *GetRequest) (*Item, error)
	ListItems(context.Context, *ListItemsRequest) (*ListItemsResponse, error)
	UpdateItem(context.Context, *UpdateItemRequest) (*Item, error)
	SetItemStatus(context.Context, *SetItemStatusRequest) (*Item, error)
	ListLowStock(context.Context, *ListLowStockRequest) (*ListLowStockResponse, error)
}

var ItemService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ItemServiceName,
	HandlerType: (*ItemServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(ItemServiceName, "CreateItem", ItemServiceServer.CreateItem),
		unary(ItemServiceName, "GetItem", ItemServiceServer.GetItem),
		unary(ItemServiceName, "ListItems", ItemServiceServer.ListItems),
		unary(ItemServiceName, "UpdateItem", ItemServiceServer.UpdateItem),
		unary(ItemServiceName, "SetItemStatus", ItemServiceServer.SetItemStatus),
		unary(ItemServiceName, "ListLowStock", ItemServiceServer.ListLowStock),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: metadataFile,
}

func RegisterItemServiceServer(s grpc.ServiceRegistrar, srv ItemServiceServer) {
	s.RegisterService(&ItemService_ServiceDesc, srv)
}

type ItemServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewItemServiceClient(cc grpc.ClientConnInterface) *ItemServiceClient {
	return &ItemServiceClient{cc: cc}
}

func (c *ItemServiceClient) CreateItem(ctx context.Context, in *CreateItemRequest, opts ...grpc.CallOption) (*Item, error) {
	return invoke[Item](ctx, c.cc, ItemService_CreateItem_FullMethodName, in, opts)
}

func (c *ItemServiceClient) GetItem(ctx context.Context, in *GetRequest, opts ...grpc.CallOption) (*Item, error) {
	return invoke[Item](ctx, c.cc, ItemService_GetItem_FullMethodName, in, opts)
}

func (c *ItemServiceClient) ListItems(ctx context.Context, in *ListItemsRequest, opts ...grpc.CallOption) (*ListItemsResponse, error) {
	return invoke[ListItemsResponse](ctx, c.cc, ItemService_ListItems_FullMethodName, in, opts)
}

func (c *ItemServiceClient) UpdateItem(ctx context.Context, in *UpdateItemRequest, opts ...grpc.CallOption) (*Item, error) {
	return invoke[Item](ctx, c.cc, ItemService_UpdateItem_FullMethodName, in, opts)
}

func (c *ItemServiceClient) SetItemStatus(ctx context.Context, in *SetItemStatusRequest, opts ...grpc.CallOption) (*Item, error) {
	return invoke[Item](ctx, c.cc, ItemService_SetItemStatus_FullMethodName, in, opts)
}

func (c *ItemServiceClient) ListLowStock(ctx context.Context, in *ListLowStockRequest, opts ...grpc.CallOption) (*ListLowStockResponse, error) {
	return invoke[ListLowStockResponse](ctx, c.cc, ItemService_ListLowStock_FullMethodName, in, opts)
}
