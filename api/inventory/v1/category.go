package inventoryv1

import (
	"context"
	"time"

	"google.golang.org/grpc"
)

type Category struct {
	ID          string      `json:"id"`
	ParentID    string      `json:"parent_id,omitempty"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	SortOrder   int32       `json:"sort_order"`
	IsActive    bool        `json:"is_active"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Children    []*Category `json:"children,omitempty"`
}

type CreateCategoryRequest struct {
	ParentID    string `json:"parent_id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	SortOrder   int32  `json:"sort_order,omitempty"`
}

type UpdateCategoryRequest struct {
	ID          string `json:"id"`
	ParentID    string `json:"parent_id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	SortOrder   int32  `json:"sort_order,omitempty"`
	IsActive    bool   `json:"is_active"`
}

type ListCategoriesRequest struct {
	ParentID string `json:"parent_id,omitempty"`
	// RootsOnly selects top-level categories when ParentID is empty.
	RootsOnly       bool   `json:"roots_only,omitempty"`
	ActiveOnly      bool   `json:"active_only,omitempty"`
	IncludeChildren bool   `json:"include_children,omitempty"`
	Page            int32  `json:"page,omitempty"`
	PageSize        int32  `json:"page_size,omitempty"`
}

type ListCategoriesResponse struct {
	Categories []*Category `json:"categories"`
	Total      int32       `json:"total"`
}

const CategoryServiceName = "inventory.v1.CategoryService"

const (
	CategoryService_CreateCategory_FullMethodName = "/" + CategoryServiceName + "/CreateCategory"
	CategoryService_GetCategory_FullMethodName    = "/" + CategoryServiceName + "/GetCategory"
	CategoryService_ListCategories_FullMethodName = "/" + CategoryServiceName + "/ListCategories"
	CategoryService_UpdateCategory_FullMethodName = "/" + CategoryServiceName + "/UpdateCategory"
	CategoryService_DeleteCategory_FullMethodName = "/" + CategoryServiceName + "/DeleteCategory"
)

type CategoryServiceServer interface {
	CreateCategory(context.Context, *CreateCategoryRequest) (*Category, error)
	GetCategory(context.Context, *GetRequest) (*Category, error)
	ListCategories(context.Context, *ListCategoriesRequest) (*ListCategoriesResponse, error)
	UpdateCategory(context.Context, *UpdateCategoryRequest) (*Category, error)
	DeleteCategory(context.Context, *GetRequest) (*Empty, error)
}

var CategoryService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: CategoryServiceName,
	HandlerType: (*CategoryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(CategoryServiceName, "CreateCategory", CategoryServiceServer.CreateCategory),
		unary(CategoryServiceName, "GetCategory", CategoryServiceServer.GetCategory),
		unary(CategoryServiceName, "ListCategories", CategoryServiceServer.ListCategories),
		unary(CategoryServiceName, "UpdateCategory", CategoryServiceServer.UpdateCategory),
		unary(CategoryServiceName, "DeleteCategory", CategoryServiceServer.DeleteCategory),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: metadataFile,
}

func RegisterCategoryServiceServer(s grpc.ServiceRegistrar, srv CategoryServiceServer) {
	s.RegisterService(&CategoryService_ServiceDesc, srv)
}

type CategoryServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCategoryServiceClient(cc grpc.ClientConnInterface) *CategoryServiceClient {
	return &CategoryServiceClient{cc: cc}
}

func (c *CategoryServiceClient) CreateCategory(ctx context.Context, in *CreateCategoryRequest, opts ...grpc.CallOption) (*Category, error) {
	return invoke[Category](ctx, c.cc, CategoryService_CreateCategory_FullMethodName, in, opts)
}

func (c *CategoryServiceClient) GetCategory(ctx context.Context, in *GetRequest, opts ...grpc.CallOption) (*Category, error) {
	return invoke[Category](ctx, c.cc, CategoryService_GetCategory_FullMethodName, in, opts)
}

func (c *CategoryServiceClient) ListCategories(ctx context.Context, in *ListCategoriesRequest, opts ...grpc.CallOption) (*ListCategoriesResponse, error) {
	return invoke[ListCategoriesResponse](ctx, c.cc, CategoryService_ListCategories_FullMethodName, in, opts)
}

func (c *CategoryServiceClient) UpdateCategory(ctx context.Context, in *UpdateCategoryRequest, opts ...grpc.CallOption) (*Category, error) {
	return invoke[Category](ctx, c.cc, CategoryService_UpdateCategory_FullMethodName, in, opts)
}

func (c *CategoryServiceClient) DeleteCategory(ctx context.Context, in *GetRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, CategoryService_DeleteCategory_FullMethodName, in, opts)
}
