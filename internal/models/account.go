package models

// Account represents a financial account in the system. Its balance is derived
// from transactions on read and has no column.
type Account struct {
	Base
	UserID     string  `gorm:"type:uuid;not null;index" json:"user_id"`
	Name       string  `gorm:"size:100;not null" json:"name"`
	CurrencyID int64   `gorm:"not null;index" json:"currency_id"`
	Tag        *string `gorm:"size:10" json:"tag,omitempty"`
	Active     bool    `gorm:"not null;default:true" json:"active"`
}
