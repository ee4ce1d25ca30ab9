package models

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type CategoriesRepository struct {
	db *gorm.DB
}

func NewCategoriesRepository(db *gorm.DB) *CategoriesRepository {
	return &CategoriesRepository{db: db}
}

func (r *CategoriesRepository) List(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := conn(ctx, r.db).Order("id").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoriesRepository) SearchByName(ctx context.Context, name string) ([]Category, error) {
	var categories []Category
	if err := conn(ctx, r.db).
		Where("name ILIKE ?", "%"+likeEscaper.Replace(name)+"%").
		Order("id").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoriesRepository) GetByID(ctx context.Context, id uint) (*Category, error) {
	var category Category
	if err := conn(ctx, r.db).Where("id = ?", id).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *CategoriesRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsByName matches names case-insensitively, ignoring excludeID when set.
func (r *CategoriesRepository) ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error) {
	var count int64
	query := conn(ctx, r.db).Model(&Category{}).Where("LOWER(name) = LOWER(?)", name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *CategoriesRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&Category{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *CategoriesRepository) Create(ctx context.Context, category *Category) error {
	err := conn(ctx, r.db).Create(category).Error
	return translateCategoryWriteError(err, category.Name)
}

// Update replaces name and description.
func (r *CategoriesRepository) Update(ctx context.Context, category *Category) error {
	res := conn(ctx, r.db).
		Model(&Category{ID: category.ID}).
		Select("name", "description").
		Updates(category)
	if err := translateCategoryWriteError(res.Error, category.Name); err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *CategoriesRepository) Delete(ctx context.Context, id uint) error {
	res := conn(ctx, r.db).Delete(&Category{}, id)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
			return ErrCategoryInUse
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func translateCategoryWriteError(err error, name string) error {
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("category with name '%s' %w", name, ErrDuplicate)
	}
	return err
}
