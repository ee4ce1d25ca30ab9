package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog.
// It references its category by id only; Images is filled by the
// "with images" queries of ProductsRepository and is otherwise empty.
type Product struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"size:200;not null"`
	Description string          `gorm:"size:1000;not null"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock       int             `gorm:"not null"`
	Brand       string          `gorm:"size:100;not null"`
	Flavor      string          `gorm:"size:100;not null"`
	CategoryID  uint            `gorm:"not null;index"`
	Images      []ProductImage  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p *Product) TableName() string {
	return "products"
}

// PrimaryImage returns the image flagged as primary, if any.
func (p *Product) PrimaryImage() (ProductImage, bool) {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img, true
		}
	}
	return ProductImage{}, false
}
