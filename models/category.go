package models

import "time"

// Category represents a product category.
// Names are unique regardless of case.
type Category struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:100;not null"`
	Description string `gorm:"size:500;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (c *Category) TableName() string {
	return "categories"
}
