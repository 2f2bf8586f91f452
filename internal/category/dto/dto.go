package dto

type CategoryFilters struct {
	ParentID        *string // nil ignores the parent, empty selects root categories
	IsActive        *bool
	IncludeChildren bool
	Page            int
	PageSize        int
}
