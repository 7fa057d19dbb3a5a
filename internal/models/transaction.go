package models

import "time"

// Transaction represents a financial transaction in the system. Amount is
// stored in minor units (cents); names of the referenced account, category and
// currency are joined in on read and never stored here.
type Transaction struct {
	Base
	UserID          string    `gorm:"type:uuid;not null;index" json:"user_id"`
	TransactionDate time.Time `gorm:"not null;index" json:"transaction_date"`
	AccountID       int64     `gorm:"not null;index" json:"account_id"`
	CategoryID      int64     `gorm:"not null;index" json:"category_id"`
	Amount          int64     `gorm:"type:bigint;not null" json:"amount"`
	CurrencyID      int64     `gorm:"not null" json:"currency_id"`
	Comment         *string   `gorm:"size:1000" json:"comment,omitempty"`
	Active          bool      `gorm:"not null;default:true" json:"active"`
}
