package models

import "time"

// ProductImage is an image attached to exactly one product.
type ProductImage struct {
	ID        uint   `gorm:"primaryKey"`
	URL       string `gorm:"column:url;size:500;not null"`
	AltText   string `gorm:"size:200;not null"`
	IsPrimary bool   `gorm:"not null"`
	ProductID uint   `gorm:"not null;index"`
	CreatedAt time.Time
}

func (i *ProductImage) TableName() string {
	return "product_images"
}
