// Package errors provides the typed failures returned by the service layer.
// Services never return raw storage errors: every failure is an AppError whose
// Kind places it in the domain taxonomy and whose Code is stable for clients.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind groups error codes into the categories callers branch on.
type Kind string

const (
	KindValidation       Kind = "validation"
	KindNotFound         Kind = "not_found"
	KindReferenceInvalid Kind = "reference_invalid"
	KindConflict         Kind = "conflict"
	KindInUse            Kind = "in_use"
	KindStorage          Kind = "storage"
	KindUnauthorized     Kind = "unauthorized"
)

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Kind       Kind   `json:"-"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an AppError with the same code, so that copies
// made by Wrap and WithMessage still match their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		Kind:       sentinel.Kind,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		Kind:       sentinel.Kind,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// WithMessagef is WithMessage with fmt formatting.
func WithMessagef(sentinel *AppError, format string, args ...any) *AppError {
	return WithMessage(sentinel, fmt.Sprintf(format, args...))
}

// KindOf returns the Kind of the first AppError in err's chain, or KindStorage
// for anything else.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStorage
}

// Authentication errors.
var (
	ErrUnauthorized = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", Kind: KindUnauthorized, StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput     = &AppError{Code: "VALIDATION_ERROR", Message: "Invalid input", Kind: KindValidation, StatusCode: http.StatusBadRequest}
	ErrInvalidDateRange = &AppError{Code: "INVALID_DATE_RANGE", Message: "date_from must not be after date_to", Kind: KindValidation, StatusCode: http.StatusBadRequest}
	ErrNotFound         = &AppError{Code: "NOT_FOUND", Message: "Resource not found", Kind: KindNotFound, StatusCode: http.StatusNotFound}
	ErrStorage          = &AppError{Code: "STORAGE_ERROR", Message: "A storage error occurred", Kind: KindStorage, StatusCode: http.StatusInternalServerError}
	ErrInternalServer   = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", Kind: KindStorage, StatusCode: http.StatusInternalServerError}
)

// Currency errors.
var (
	ErrCurrencyNotFound = &AppError{Code: "CURRENCY_NOT_FOUND", Message: "Currency not found or inactive", Kind: KindReferenceInvalid, StatusCode: http.StatusBadRequest}
)

// Account errors.
var (
	ErrAccountNotFound          = &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found or access denied", Kind: KindNotFound, StatusCode: http.StatusNotFound}
	ErrAccountReferenceNotFound = &AppError{Code: "ACCOUNT_REFERENCE_NOT_FOUND", Message: "Account not found or access denied", Kind: KindReferenceInvalid, StatusCode: http.StatusBadRequest}
	ErrDuplicateAccount         = &AppError{Code: "DUPLICATE_ACCOUNT", Message: "An account with this name already exists", Kind: KindConflict, StatusCode: http.StatusConflict}
)

// Category errors.
var (
	ErrCategoryNotFound          = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found or access denied", Kind: KindNotFound, StatusCode: http.StatusNotFound}
	ErrCategoryReferenceNotFound = &AppError{Code: "CATEGORY_REFERENCE_NOT_FOUND", Message: "Category not found or access denied", Kind: KindReferenceInvalid, StatusCode: http.StatusBadRequest}
	ErrParentNotFound            = &AppError{Code: "PARENT_NOT_FOUND", Message: "Parent category not found or access denied", Kind: KindReferenceInvalid, StatusCode: http.StatusBadRequest}
	ErrInvalidParent             = &AppError{Code: "INVALID_PARENT", Message: "Parent category reference is invalid", Kind: KindReferenceInvalid, StatusCode: http.StatusBadRequest}
	ErrMaxDepthExceeded          = &AppError{Code: "MAX_DEPTH_EXCEEDED", Message: "Categories can only be nested one level deep", Kind: KindReferenceInvalid, StatusCode: http.StatusBadRequest}
	ErrCategoryTypeMismatch      = &AppError{Code: "CATEGORY_TYPE_MISMATCH", Message: "Subcategory type must match its parent category type", Kind: KindReferenceInvalid, StatusCode: http.StatusBadRequest}
	ErrSelfParentCategory        = &AppError{Code: "SELF_PARENT_CATEGORY", Message: "A category cannot be its own parent", Kind: KindReferenceInvalid, StatusCode: http.StatusBadRequest}
	ErrDuplicateCategoryName     = &AppError{Code: "DUPLICATE_NAME", Message: "A category with this name already exists at this level", Kind: KindConflict, StatusCode: http.StatusConflict}
	ErrCategoryInUse             = &AppError{Code: "CATEGORY_IN_USE", Message: "Category is used by existing transactions", Kind: KindInUse, StatusCode: http.StatusConflict}
	ErrCategoryHasChildren       = &AppError{Code: "CATEGORY_HAS_CHILDREN", Message: "Category has active subcategories", Kind: KindInUse, StatusCode: http.StatusConflict}
)

// Transaction errors.
var (
	ErrTransactionNotFound  = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found or access denied", Kind: KindNotFound, StatusCode: http.StatusNotFound}
	ErrStaleReference       = &AppError{Code: "STALE_REFERENCE", Message: "A referenced account, category or currency no longer exists", Kind: KindReferenceInvalid, StatusCode: http.StatusBadRequest}
	ErrDuplicateTransaction = &AppError{Code: "DUPLICATE_TRANSACTION", Message: "Duplicate transaction", Kind: KindConflict, StatusCode: http.StatusConflict}
)
