package services

import (
	"context"

	"fintrack/internal/dto"
	"fintrack/internal/pagination"
)

// CurrencyServicer defines the contract for currency lookups.
type CurrencyServicer interface {
	ListActiveCurrencies(ctx context.Context) ([]dto.CurrencyDTO, error)
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(ctx context.Context, userID string, cmd dto.CreateAccountCommand) (*dto.AccountDTO, error)
	GetAccountByID(ctx context.Context, userID string, accountID int64) (*dto.AccountDTO, error)
	GetUserAccounts(ctx context.Context, userID string, includeInactive bool) ([]dto.AccountDTO, error)
	UpdateAccount(ctx context.Context, userID string, accountID int64, cmd dto.UpdateAccountCommand) (*dto.AccountDTO, error)
	DeleteAccount(ctx context.Context, userID string, accountID int64) error
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(ctx context.Context, userID string, cmd dto.CreateCategoryCommand) (*dto.CategoryDTO, error)
	GetCategoryByID(ctx context.Context, userID string, categoryID int64) (*dto.CategoryDTO, error)
	GetUserCategories(ctx context.Context, userID string, query dto.CategoryQuery) ([]dto.CategoryDTO, error)
	UpdateCategory(ctx context.Context, userID string, categoryID int64, cmd dto.UpdateCategoryCommand) (*dto.CategoryDTO, error)
	DeleteCategory(ctx context.Context, userID string, categoryID int64) error
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(ctx context.Context, userID string, cmd dto.CreateTransactionCommand) (*dto.TransactionDTO, error)
	GetTransactionByID(ctx context.Context, userID string, transactionID int64) (*dto.TransactionDTO, error)
	GetUserTransactions(ctx context.Context, userID string, query dto.GetTransactionsQuery) (*pagination.PageResponse[dto.TransactionDTO], error)
	UpdateTransaction(ctx context.Context, userID string, transactionID int64, cmd dto.UpdateTransactionCommand) (*dto.TransactionDTO, error)
	DeleteTransaction(ctx context.Context, userID string, transactionID int64) error
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(ctx context.Context, userID, action, resourceType string, resourceID int64, ipAddress string, changes map[string]any)
}
