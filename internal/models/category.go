package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Valid reports whether t is a known category type.
func (t CategoryType) Valid() bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense
}

// RootParentID is the parent_id of a main (root) category.
const RootParentID int64 = 0

// Category represents a transaction category. ParentID is RootParentID for a
// root category; a subcategory's parent is always a root category.
type Category struct {
	Base
	UserID       string       `gorm:"type:uuid;not null;index" json:"user_id"`
	Name         string       `gorm:"size:100;not null" json:"name"`
	CategoryType CategoryType `gorm:"column:category_type;size:10;not null" json:"category_type"`
	ParentID     int64        `gorm:"not null;default:0;index" json:"parent_id"`
	Tag          *string      `gorm:"size:10" json:"tag,omitempty"`
	Active       bool         `gorm:"not null;default:true" json:"active"`
}

// IsRoot reports whether the category sits at the top of the hierarchy.
func (c *Category) IsRoot() bool {
	return c.ParentID == RootParentID
}
