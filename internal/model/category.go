package model

// Category groups catalog items, e.g. stationery or lab equipment. Categories form a tree through ParentID.
type Category struct {
	BaseModel
	ParentID    *string    `db:"parent_id" json:"parent_id"`
	Name        string     `db:"name" json:"name"`
	Description *string    `db:"description" json:"description"`
	SortOrder   int        `db:"sort_order" json:"sort_order"`
	IsActive    bool       `db:"is_active" json:"is_active"`
	Children    []Category `db:"-" json:"children,omitempty"`
}
