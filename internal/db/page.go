package db

import "time"

// Page is a link filed under a category, ranked by how often it is followed.
type Page struct {
	ID         uint     `gorm:"primaryKey"`
	CategoryID uint     `gorm:"index;not null"`
	Category   Category `gorm:"constraint:OnDelete:CASCADE"`
	Title      string   `gorm:"size:128;not null"`
	URL        string   `gorm:"size:200;not null"`
	Views      int      `gorm:"not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
