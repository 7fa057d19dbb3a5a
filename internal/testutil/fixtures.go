package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"fintrack/internal/models"
	"fintrack/internal/uuid"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// NewUserID returns a fresh owner id. Users live in the identity provider, so
// there is no row to create.
func NewUserID() string {
	return uuid.New()
}

// GetCurrency returns the seeded currency with the given code.
func GetCurrency(t *testing.T, db *gorm.DB, code string) *models.Currency {
	t.Helper()

	var currency models.Currency
	if err := db.Where("code = ?", code).First(&currency).Error; err != nil {
		t.Fatalf("failed to load currency %s: %v", code, err)
	}
	return &currency
}

// CreateInactiveCurrency creates a currency that is not offered to users.
func CreateInactiveCurrency(t *testing.T, db *gorm.DB) *models.Currency {
	t.Helper()

	currency := &models.Currency{
		Code:        fmt.Sprintf("X%02d", nextID()%100),
		Description: "Retired currency",
		Active:      true,
	}
	if err := db.Create(currency).Error; err != nil {
		t.Fatalf("failed to create test currency: %v", err)
	}
	if err := db.Model(currency).Update("active", false).Error; err != nil {
		t.Fatalf("failed to deactivate test currency: %v", err)
	}
	currency.Active = false
	return currency
}

// CreateTestAccount creates an active account with a unique name.
func CreateTestAccount(t *testing.T, db *gorm.DB, userID string, currencyID int64) *models.Account {
	t.Helper()
	return CreateTestAccountWithName(t, db, userID, currencyID, fmt.Sprintf("Test Account %d", nextID()))
}

// CreateTestAccountWithName creates an active account with the given name.
func CreateTestAccountWithName(t *testing.T, db *gorm.DB, userID string, currencyID int64, name string) *models.Account {
	t.Helper()

	account := &models.Account{
		UserID:     userID,
		Name:       name,
		CurrencyID: currencyID,
		Active:     true,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestCategory creates an active root category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string, categoryType models.CategoryType) *models.Category {
	t.Helper()
	return CreateTestSubcategory(t, db, userID, categoryType, models.RootParentID)
}

// CreateTestSubcategory creates an active category under parentID.
func CreateTestSubcategory(t *testing.T, db *gorm.DB, userID string, categoryType models.CategoryType, parentID int64) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID:       userID,
		Name:         fmt.Sprintf("Test Category %d", nextID()),
		CategoryType: categoryType,
		ParentID:     parentID,
		Active:       true,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction creates an active transaction dated now with the
// given amount in cents.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string, account *models.Account, categoryID, amount int64) *models.Transaction {
	t.Helper()
	return CreateTestTransactionOn(t, db, userID, account, categoryID, amount, time.Now().UTC())
}

// CreateTestTransactionOn creates an active transaction on the given date.
func CreateTestTransactionOn(t *testing.T, db *gorm.DB, userID string, account *models.Account, categoryID, amount int64, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:          userID,
		TransactionDate: date.UTC(),
		AccountID:       account.ID,
		CategoryID:      categoryID,
		Amount:          amount,
		CurrencyID:      account.CurrencyID,
		Active:          true,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// Deactivate soft-deletes any model with an active column.
func Deactivate(t *testing.T, db *gorm.DB, model any) {
	t.Helper()

	if err := db.Model(model).Update("active", false).Error; err != nil {
		t.Fatalf("failed to deactivate %T: %v", model, err)
	}
}
