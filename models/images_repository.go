package models

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ImagesRepository reads and writes product_images rows. At most one
// image per product may be primary; callers clear the old primary first.
type ImagesRepository struct {
	db *gorm.DB
}

func NewImagesRepository(db *gorm.DB) *ImagesRepository {
	return &ImagesRepository{db: db}
}

func (r *ImagesRepository) GetByID(ctx context.Context, id uint) (*ProductImage, error) {
	var image ProductImage
	if err := conn(ctx, r.db).Where("id = ?", id).First(&image).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}
	return &image, nil
}

func (r *ImagesRepository) FindByProductID(ctx context.Context, productID uint) ([]ProductImage, error) {
	var images []ProductImage
	if err := conn(ctx, r.db).Where("product_id = ?", productID).Order("id").Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

// FindPrimary returns ErrImageNotFound when the product has no primary image.
func (r *ImagesRepository) FindPrimary(ctx context.Context, productID uint) (*ProductImage, error) {
	var image ProductImage
	if err := conn(ctx, r.db).
		Where("product_id = ? AND is_primary", productID).
		First(&image).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}
	return &image, nil
}

func (r *ImagesRepository) CountByProductID(ctx context.Context, productID uint) (int64, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&ProductImage{}).Where("product_id = ?", productID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ImagesRepository) Create(ctx context.Context, image *ProductImage) error {
	return translateImageWriteError(conn(ctx, r.db).Create(image).Error)
}

func (r *ImagesRepository) CreateBatch(ctx context.Context, images []ProductImage) error {
	if len(images) == 0 {
		return nil
	}
	return translateImageWriteError(conn(ctx, r.db).Create(&images).Error)
}

func (r *ImagesRepository) Delete(ctx context.Context, id uint) error {
	res := conn(ctx, r.db).Delete(&ProductImage{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrImageNotFound
	}
	return nil
}

func (r *ImagesRepository) DeleteByProductID(ctx context.Context, productID uint) error {
	return conn(ctx, r.db).Where("product_id = ?", productID).Delete(&ProductImage{}).Error
}

func (r *ImagesRepository) ClearPrimary(ctx context.Context, productID uint) error {
	return conn(ctx, r.db).
		Model(&ProductImage{}).
		Where("product_id = ? AND is_primary", productID).
		Update("is_primary", false).Error
}

func (r *ImagesRepository) SetPrimary(ctx context.Context, id uint) error {
	res := conn(ctx, r.db).Model(&ProductImage{}).Where("id = ?", id).Update("is_primary", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrImageNotFound
	}
	return nil
}

func translateImageWriteError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrProductNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("product already has a primary image: %w", ErrConflict)
	default:
		return err
	}
}
