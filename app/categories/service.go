package categories

import (
	"context"
	"errors"
	"fmt"

	"github.com/sportcore/catalog/app/events"
	"github.com/sportcore/catalog/app/validation"
	"github.com/sportcore/catalog/models"
	"go.uber.org/zap"
)

type CategoryStore interface {
	List(ctx context.Context) ([]models.Category, error)
	SearchByName(ctx context.Context, name string) ([]models.Category, error)
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	Exists(ctx context.Context, id uint) (bool, error)
	ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uint) error
}

// ProductCounter reports how many products reference a category.
type ProductCounter interface {
	CountByCategory(ctx context.Context, categoryID uint) (int64, error)
}

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	categories CategoryStore
	products   ProductCounter
	tx         Transactor
	validator  *validation.Validator
	publisher  events.Publisher
	logger     *zap.Logger
}

func NewService(
	categories CategoryStore,
	products ProductCounter,
	tx Transactor,
	publisher events.Publisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		categories: categories,
		products:   products,
		tx:         tx,
		validator:  validation.New(),
		publisher:  publisher,
		logger:     logger,
	}
}

func (s *Service) List(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	return toResponses(categories), nil
}

func (s *Service) Search(ctx context.Context, name string) ([]CategoryResponse, error) {
	categories, err := s.categories.SearchByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return toResponses(categories), nil
}

func (s *Service) Get(ctx context.Context, id uint) (*CategoryResponse, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, id)
	}
	resp := toResponse(category)
	return &resp, nil
}

func (s *Service) Create(ctx context.Context, req CategoryRequest) (*CategoryResponse, error) {
	req.normalize()
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	category := &models.Category{
		Name:        req.Name,
		Description: req.Description,
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.ensureNameFree(ctx, req.Name, 0); err != nil {
			return err
		}
		return s.categories.Create(ctx, category)
	})
	if err != nil {
		return nil, err
	}

	resp := toResponse(category)
	s.publish(ctx, events.CategoryCreated, category.ID, resp)
	return &resp, nil
}

// Update replaces name and description of an existing category.
func (s *Service) Update(ctx context.Context, id uint, req CategoryRequest) (*CategoryResponse, error) {
	req.normalize()
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	var category *models.Category
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		category, err = s.categories.GetByID(ctx, id)
		if err != nil {
			return notFound(err, id)
		}
		if err := s.ensureNameFree(ctx, req.Name, id); err != nil {
			return err
		}

		category.Name = req.Name
		category.Description = req.Description
		return s.categories.Update(ctx, category)
	})
	if err != nil {
		return nil, err
	}

	resp := toResponse(category)
	s.publish(ctx, events.CategoryUpdated, id, resp)
	return &resp, nil
}

// Delete refuses to remove a category that products still reference.
func (s *Service) Delete(ctx context.Context, id uint) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.categories.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w with id: %d", models.ErrCategoryNotFound, id)
		}

		count, err := s.products.CountByCategory(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w (%d referencing category %d)", models.ErrCategoryInUse, count, id)
		}

		return s.categories.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.CategoryDeleted, id, nil)
	return nil
}

func (s *Service) ensureNameFree(ctx context.Context, name string, excludeID uint) error {
	taken, err := s.categories.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("category with name '%s' %w", name, models.ErrDuplicate)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, eventType string, id uint, data any) {
	if err := s.publisher.Publish(ctx, events.New(eventType, id, data)); err != nil {
		s.logger.Warn("failed to publish category event",
			zap.String("type", eventType),
			zap.Uint("category_id", id),
			zap.Error(err),
		)
	}
}

func notFound(err error, id uint) error {
	if errors.Is(err, models.ErrCategoryNotFound) {
		return fmt.Errorf("%w with id: %d", models.ErrCategoryNotFound, id)
	}
	return err
}
