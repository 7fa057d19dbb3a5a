// Package dto holds the commands accepted by and the read models returned from
// the service layer.
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/models"
)

// CurrencyDTO is an active currency.
type CurrencyDTO struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
}

// AccountDTO is an account joined with its currency and computed balance.
type AccountDTO struct {
	ID                  int64           `json:"id"`
	UserID              string          `json:"user_id"`
	Name                string          `json:"name"`
	CurrencyID          int64           `json:"currency_id"`
	CurrencyCode        string          `json:"currency_code"`
	CurrencyDescription string          `json:"currency_description"`
	Tag                 *string         `json:"tag"`
	Balance             decimal.Decimal `json:"balance"`
	Active              bool            `json:"active"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// CreateAccountCommand creates an account.
type CreateAccountCommand struct {
	Name       string  `json:"name" binding:"required,max=100"`
	CurrencyID int64   `json:"currency_id" binding:"required,gt=0"`
	Tag        *string `json:"tag" binding:"omitempty,max=10"`
}

// UpdateAccountCommand changes the provided fields only.
type UpdateAccountCommand struct {
	Name       *string `json:"name" binding:"omitempty,max=100"`
	CurrencyID *int64  `json:"currency_id" binding:"omitempty,gt=0"`
	Tag        *string `json:"tag" binding:"omitempty,max=10"`
}

// CategoryDTO is a category as exposed to callers.
type CategoryDTO struct {
	ID           int64               `json:"id"`
	UserID       string              `json:"user_id"`
	Name         string              `json:"name"`
	CategoryType models.CategoryType `json:"category_type"`
	ParentID     int64               `json:"parent_id"`
	Tag          *string             `json:"tag"`
	Active       bool                `json:"active"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// CreateCategoryCommand creates a category. ParentID 0 creates a root category.
type CreateCategoryCommand struct {
	Name         string              `json:"name" binding:"required,max=100"`
	CategoryType models.CategoryType `json:"category_type" binding:"required,category_type"`
	ParentID     int64               `json:"parent_id" binding:"gte=0"`
	Tag          *string             `json:"tag" binding:"omitempty,max=10"`
}

// UpdateCategoryCommand changes the provided fields only.
type UpdateCategoryCommand struct {
	Name         *string              `json:"name" binding:"omitempty,max=100"`
	CategoryType *models.CategoryType `json:"category_type" binding:"omitempty,category_type"`
	ParentID     *int64               `json:"parent_id" binding:"omitempty,gte=0"`
	Tag          *string              `json:"tag" binding:"omitempty,max=10"`
}

// CategoryQuery filters a category listing.
type CategoryQuery struct {
	IncludeInactive bool                 `form:"include_inactive"`
	CategoryType    *models.CategoryType `form:"category_type" binding:"omitempty,category_type"`
	ParentID        *int64               `form:"parent_id" binding:"omitempty,gte=0"`
}

// TransactionDTO is a transaction enriched with the names of what it references.
type TransactionDTO struct {
	ID              int64               `json:"id"`
	UserID          string              `json:"user_id"`
	TransactionDate time.Time           `json:"transaction_date"`
	AccountID       int64               `json:"account_id"`
	AccountName     string              `json:"account_name"`
	CategoryID      int64               `json:"category_id"`
	CategoryName    string              `json:"category_name"`
	CategoryType    models.CategoryType `json:"category_type"`
	Amount          decimal.Decimal     `json:"amount"`
	CurrencyID      int64               `json:"currency_id"`
	CurrencyCode    string              `json:"currency_code"`
	Comment         *string             `json:"comment"`
	Active          bool                `json:"active"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// CreateTransactionCommand creates a transaction. TransactionDate accepts
// YYYY-MM-DD or RFC3339.
type CreateTransactionCommand struct {
	TransactionDate string          `json:"transaction_date" binding:"required"`
	AccountID       int64           `json:"account_id" binding:"required"`
	CategoryID      int64           `json:"category_id" binding:"required"`
	Amount          decimal.Decimal `json:"amount"`
	CurrencyID      int64           `json:"currency_id" binding:"required"`
	Comment         *string         `json:"comment"`
}

// UpdateTransactionCommand changes the provided fields only.
type UpdateTransactionCommand struct {
	TransactionDate *string          `json:"transaction_date"`
	AccountID       *int64           `json:"account_id"`
	CategoryID      *int64           `json:"category_id"`
	Amount          *decimal.Decimal `json:"amount"`
	CurrencyID      *int64           `json:"currency_id"`
	Comment         *string          `json:"comment"`
}

// GetTransactionsQuery filters, sorts and pages a transaction listing.
type GetTransactionsQuery struct {
	DateFrom        string `form:"date_from"`
	DateTo          string `form:"date_to"`
	AccountID       *int64 `form:"account_id"`
	CategoryID      *int64 `form:"category_id"`
	Search          string `form:"search"`
	Sort            string `form:"sort"`
	Page            int    `form:"page"`
	Limit           int    `form:"limit"`
	IncludeInactive bool   `form:"include_inactive"`
}
