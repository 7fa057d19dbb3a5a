package models

// Currency is static reference data shared by all users.
type Currency struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Code        string `gorm:"size:3;uniqueIndex;not null" json:"code"`
	Description string `gorm:"size:100;not null" json:"description"`
	Active      bool   `gorm:"not null;default:true" json:"active"`
}
