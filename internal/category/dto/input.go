package dto

type CreateCategoryInput struct {
	ParentID    string
	Name        string
	Description string
	SortOrder   int
}

// UpdateCategoryInput replaces every editable field. An empty ParentID moves the category to the root.
type UpdateCategoryInput struct {
	ID          string
	ParentID    string
	Name        string
	Description string
	SortOrder   int
	IsActive    bool
}
