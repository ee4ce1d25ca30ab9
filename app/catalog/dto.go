package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sportcore/catalog/models"
)

type ImageRequest struct {
	URL       string `json:"url" validate:"required,max=500"`
	AltText   string `json:"altText" validate:"max=200"`
	IsPrimary bool   `json:"isPrimary"`
}

// ProductRequest is the body of POST and PUT /products. Price, stock and
// categoryId are pointers so that a missing field differs from zero.
// On update a nil Images leaves the stored images untouched.
type ProductRequest struct {
	Name        string         `json:"name" validate:"required,max=200"`
	Description string         `json:"description" validate:"max=1000"`
	Price       *float64       `json:"price" validate:"required,gte=0,lte=99999999.99"`
	Stock       *int           `json:"stock" validate:"required,gte=0,lte=2147483647"`
	Brand       string         `json:"brand" validate:"max=100"`
	Flavor      string         `json:"flavor" validate:"max=100"`
	CategoryID  *uint          `json:"categoryId" validate:"required"`
	Images      []ImageRequest `json:"images" validate:"omitempty,dive"`
}

func (r *ProductRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	r.Brand = strings.TrimSpace(r.Brand)
	r.Flavor = strings.TrimSpace(r.Flavor)
	for i := range r.Images {
		r.Images[i].normalize()
	}
}

func (r *ImageRequest) normalize() {
	r.URL = strings.TrimSpace(r.URL)
	r.AltText = strings.TrimSpace(r.AltText)
}

func (r *ProductRequest) price() decimal.Decimal {
	return decimal.NewFromFloat(*r.Price).Round(2)
}

type ImageResponse struct {
	ID        uint   `json:"id"`
	URL       string `json:"url"`
	AltText   string `json:"altText"`
	IsPrimary bool   `json:"isPrimary"`
	ProductID uint   `json:"productId"`
}

type ProductResponse struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       float64         `json:"price"`
	Stock       int             `json:"stock"`
	Brand       string          `json:"brand"`
	Flavor      string          `json:"flavor"`
	CategoryID  uint            `json:"categoryId"`
	Images      []ImageResponse `json:"images,omitempty"`
}

func toImageResponse(img *models.ProductImage) ImageResponse {
	return ImageResponse{
		ID:        img.ID,
		URL:       img.URL,
		AltText:   img.AltText,
		IsPrimary: img.IsPrimary,
		ProductID: img.ProductID,
	}
}

func toProductResponse(p *models.Product) ProductResponse {
	resp := ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		Stock:       p.Stock,
		Brand:       p.Brand,
		Flavor:      p.Flavor,
		CategoryID:  p.CategoryID,
	}
	if len(p.Images) > 0 {
		resp.Images = make([]ImageResponse, len(p.Images))
		for i := range p.Images {
			resp.Images[i] = toImageResponse(&p.Images[i])
		}
	}
	return resp
}

func toProductResponses(products []models.Product) []ProductResponse {
	response := make([]ProductResponse, len(products))
	for i := range products {
		response[i] = toProductResponse(&products[i])
	}
	return response
}
