package models

import "time"

// Base contains common columns for user-owned tables. Rows are never removed;
// an Active flag on each entity marks soft deletion.
type Base struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
