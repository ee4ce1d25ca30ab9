package models

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductsRepository struct {
	db *gorm.DB
}

// ProductSort orders a product page. Field is a column name already
// checked against SortableProductColumns.
type ProductSort struct {
	Field string
	Desc  bool
}

// SortableProductColumns maps the public sort keys to product columns.
var SortableProductColumns = map[string]string{
	"id":        "id",
	"name":      "name",
	"price":     "price",
	"stock":     "stock",
	"brand":     "brand",
	"createdAt": "created_at",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{
		db: db,
	}
}

func withImages(db *gorm.DB) *gorm.DB {
	return db.Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("product_images.id")
	})
}

func (r *ProductsRepository) GetAllWithImages(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := withImages(conn(ctx, r.db)).
		Order("products.id").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductsRepository) GetPage(ctx context.Context, offset, limit int, sort ProductSort) ([]Product, int64, error) {
	var products []Product
	var total int64

	// Count total before paging
	if err := conn(ctx, r.db).Model(&Product{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column := sort.Field
	if column == "" {
		column = "id"
	}
	query := conn(ctx, r.db).Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: sort.Desc})
	if column != "id" {
		query = query.Order("id")
	}

	if err := withImages(query).Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *ProductsRepository) GetRandom(ctx context.Context, limit int) ([]Product, error) {
	var products []Product
	if err := withImages(conn(ctx, r.db)).
		Order("RANDOM()").
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductsRepository) GetByCategory(ctx context.Context, categoryID uint) ([]Product, error) {
	var products []Product
	if err := withImages(conn(ctx, r.db)).
		Where("category_id = ?", categoryID).
		Order("id").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductsRepository) SearchByName(ctx context.Context, name string) ([]Product, error) {
	var products []Product
	if err := withImages(conn(ctx, r.db)).
		Where("name ILIKE ?", "%"+likeEscaper.Replace(name)+"%").
		Order("id").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductsRepository) GetByID(ctx context.Context, id uint) (*Product, error) {
	var product Product
	if err := withImages(conn(ctx, r.db)).
		Where("id = ?", id).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err // Other DB error
	}
	return &product, nil
}

func (r *ProductsRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsByName matches names case-insensitively. A non-zero excludeID
// leaves that product out, so a product never collides with itself.
func (r *ProductsRepository) ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error) {
	var count int64
	query := conn(ctx, r.db).Model(&Product{}).Where("LOWER(name) = LOWER(?)", name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ProductsRepository) CountByCategory(ctx context.Context, categoryID uint) (int64, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&Product{}).Where("category_id = ?", categoryID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts the product row only; images are written through
// ImagesRepository.
func (r *ProductsRepository) Create(ctx context.Context, product *Product) error {
	err := conn(ctx, r.db).Omit(clause.Associations).Create(product).Error
	return translateProductWriteError(err, product.Name)
}

// Update replaces every mutable column, zero values included.
func (r *ProductsRepository) Update(ctx context.Context, product *Product) error {
	res := conn(ctx, r.db).
		Model(&Product{ID: product.ID}).
		Select("name", "description", "price", "stock", "brand", "flavor", "category_id").
		Updates(product)
	if err := translateProductWriteError(res.Error, product.Name); err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// Delete removes the product; its images go with it via ON DELETE CASCADE.
func (r *ProductsRepository) Delete(ctx context.Context, id uint) error {
	res := conn(ctx, r.db).Delete(&Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func translateProductWriteError(err error, name string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("product with name '%s' %w", name, ErrDuplicate)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrCategoryNotFound
	default:
		return err
	}
}
