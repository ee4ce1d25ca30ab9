package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sportcore/catalog/app/api"
	"github.com/sportcore/catalog/app/events"
	"github.com/sportcore/catalog/app/validation"
	"github.com/sportcore/catalog/models"
	"go.uber.org/zap"
)

type ProductStore interface {
	GetAllWithImages(ctx context.Context) ([]models.Product, error)
	GetPage(ctx context.Context, offset, limit int, sort models.ProductSort) ([]models.Product, int64, error)
	GetRandom(ctx context.Context, limit int) ([]models.Product, error)
	GetByCategory(ctx context.Context, categoryID uint) ([]models.Product, error)
	SearchByName(ctx context.Context, name string) ([]models.Product, error)
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	Exists(ctx context.Context, id uint) (bool, error)
	ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uint) error
}

type ImageStore interface {
	GetByID(ctx context.Context, id uint) (*models.ProductImage, error)
	FindByProductID(ctx context.Context, productID uint) ([]models.ProductImage, error)
	FindPrimary(ctx context.Context, productID uint) (*models.ProductImage, error)
	CountByProductID(ctx context.Context, productID uint) (int64, error)
	Create(ctx context.Context, image *models.ProductImage) error
	CreateBatch(ctx context.Context, images []models.ProductImage) error
	Delete(ctx context.Context, id uint) error
	DeleteByProductID(ctx context.Context, productID uint) error
	ClearPrimary(ctx context.Context, productID uint) error
	SetPrimary(ctx context.Context, id uint) error
}

type CategoryChecker interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type ProductService struct {
	products   ProductStore
	images     ImageStore
	categories CategoryChecker
	tx         Transactor
	validator  *validation.Validator
	publisher  events.Publisher
	logger     *zap.Logger
}

func NewProductService(
	products ProductStore,
	images ImageStore,
	categories CategoryChecker,
	tx Transactor,
	publisher events.Publisher,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		products:   products,
		images:     images,
		categories: categories,
		tx:         tx,
		validator:  validation.New(),
		publisher:  publisher,
		logger:     logger,
	}
}

// ParseSort reads a "field[,asc|desc]" sort parameter. An empty value sorts
// by id ascending.
func ParseSort(param string) (models.ProductSort, error) {
	param = strings.TrimSpace(param)
	if param == "" {
		return models.ProductSort{Field: "id"}, nil
	}

	field, dir, _ := strings.Cut(param, ",")
	column, ok := models.SortableProductColumns[strings.TrimSpace(field)]
	if !ok {
		return models.ProductSort{}, validation.Invalid("cannot sort by '%s'", field)
	}

	sort := models.ProductSort{Field: column}
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "", "asc":
	case "desc":
		sort.Desc = true
	default:
		return models.ProductSort{}, validation.Invalid("sort direction must be asc or desc")
	}
	return sort, nil
}

func (s *ProductService) Get(ctx context.Context, id uint) (*ProductResponse, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, productNotFound(err, id)
	}
	resp := toProductResponse(product)
	return &resp, nil
}

// List returns one zero-based page of products.
func (s *ProductService) List(ctx context.Context, page, size int, sortParam string) (*api.Page[ProductResponse], error) {
	sort, err := ParseSort(sortParam)
	if err != nil {
		return nil, err
	}

	products, total, err := s.products.GetPage(ctx, page*size, size, sort)
	if err != nil {
		return nil, err
	}

	resp := api.NewPage(toProductResponses(products), total, page, size)
	return &resp, nil
}

func (s *ProductService) ListAll(ctx context.Context) ([]ProductResponse, error) {
	products, err := s.products.GetAllWithImages(ctx)
	if err != nil {
		return nil, err
	}
	return toProductResponses(products), nil
}

func (s *ProductService) Random(ctx context.Context, limit int) ([]ProductResponse, error) {
	products, err := s.products.GetRandom(ctx, limit)
	if err != nil {
		return nil, err
	}
	return toProductResponses(products), nil
}

// ByCategory does not check that the category exists; an unknown id yields
// an empty list.
func (s *ProductService) ByCategory(ctx context.Context, categoryID uint) ([]ProductResponse, error) {
	products, err := s.products.GetByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return toProductResponses(products), nil
}

func (s *ProductService) Search(ctx context.Context, name string) ([]ProductResponse, error) {
	products, err := s.products.SearchByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	return toProductResponses(products), nil
}

func (s *ProductService) Create(ctx context.Context, req ProductRequest) (*ProductResponse, error) {
	if err := s.validate(&req); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.price(),
		Stock:       *req.Stock,
		Brand:       req.Brand,
		Flavor:      req.Flavor,
		CategoryID:  *req.CategoryID,
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.ensureCategory(ctx, product.CategoryID); err != nil {
			return err
		}
		if err := s.ensureNameFree(ctx, product.Name, 0); err != nil {
			return err
		}
		if err := s.products.Create(ctx, product); err != nil {
			return err
		}

		images := buildImages(product.ID, req.Images)
		if err := s.images.CreateBatch(ctx, images); err != nil {
			return err
		}
		product.Images = images
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := toProductResponse(product)
	publish(ctx, s.publisher, s.logger, events.ProductCreated, product.ID, resp)
	return &resp, nil
}

// Update replaces every product field. Images are replaced only when the
// request carries an images list.
func (s *ProductService) Update(ctx context.Context, id uint, req ProductRequest) (*ProductResponse, error) {
	if err := s.validate(&req); err != nil {
		return nil, err
	}

	var product *models.Product
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		product, err = s.products.GetByID(ctx, id)
		if err != nil {
			return productNotFound(err, id)
		}
		if err := s.ensureCategory(ctx, *req.CategoryID); err != nil {
			return err
		}
		if err := s.ensureNameFree(ctx, req.Name, id); err != nil {
			return err
		}

		product.Name = req.Name
		product.Description = req.Description
		product.Price = req.price()
		product.Stock = *req.Stock
		product.Brand = req.Brand
		product.Flavor = req.Flavor
		product.CategoryID = *req.CategoryID
		if err := s.products.Update(ctx, product); err != nil {
			return err
		}

		if req.Images == nil {
			return nil
		}
		if err := s.images.DeleteByProductID(ctx, id); err != nil {
			return err
		}
		images := buildImages(id, req.Images)
		if err := s.images.CreateBatch(ctx, images); err != nil {
			return err
		}
		product.Images = images
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := toProductResponse(product)
	publish(ctx, s.publisher, s.logger, events.ProductUpdated, id, resp)
	return &resp, nil
}

// Delete removes the product together with its images.
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.products.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w with id: %d", models.ErrProductNotFound, id)
		}
		return s.products.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	publish(ctx, s.publisher, s.logger, events.ProductDeleted, id, nil)
	return nil
}

func (s *ProductService) validate(req *ProductRequest) error {
	req.normalize()
	if err := s.validator.Struct(req); err != nil {
		return err
	}

	primaries := 0
	for _, img := range req.Images {
		if img.IsPrimary {
			primaries++
		}
	}
	if primaries > 1 {
		return validation.Invalid("only one image can be primary")
	}
	return nil
}

func (s *ProductService) ensureCategory(ctx context.Context, categoryID uint) error {
	exists, err := s.categories.Exists(ctx, categoryID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w with id: %d", models.ErrCategoryNotFound, categoryID)
	}
	return nil
}

func (s *ProductService) ensureNameFree(ctx context.Context, name string, excludeID uint) error {
	taken, err := s.products.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("product with name '%s' %w", name, models.ErrDuplicate)
	}
	return nil
}

// buildImages maps requested images to rows of productID. When none is
// flagged primary the first one becomes primary.
func buildImages(productID uint, reqs []ImageRequest) []models.ProductImage {
	if len(reqs) == 0 {
		return nil
	}

	images := make([]models.ProductImage, len(reqs))
	hasPrimary := false
	for i, r := range reqs {
		images[i] = models.ProductImage{
			URL:       r.URL,
			AltText:   r.AltText,
			IsPrimary: r.IsPrimary,
			ProductID: productID,
		}
		hasPrimary = hasPrimary || r.IsPrimary
	}
	if !hasPrimary {
		images[0].IsPrimary = true
	}
	return images
}

func publish(ctx context.Context, publisher events.Publisher, logger *zap.Logger, eventType string, id uint, data any) {
	if err := publisher.Publish(ctx, events.New(eventType, id, data)); err != nil {
		logger.Warn("failed to publish catalog event",
			zap.String("type", eventType),
			zap.Uint("id", id),
			zap.Error(err),
		)
	}
}

func productNotFound(err error, id uint) error {
	if errors.Is(err, models.ErrProductNotFound) {
		return fmt.Errorf("%w with id: %d", models.ErrProductNotFound, id)
	}
	return err
}
