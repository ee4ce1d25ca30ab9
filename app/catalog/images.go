package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/sportcore/catalog/app/events"
	"github.com/sportcore/catalog/app/validation"
	"github.com/sportcore/catalog/models"
	"go.uber.org/zap"
)

type ProductChecker interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

// ImageService manages the images of a single product and keeps exactly
// one of them primary while any remain.
type ImageService struct {
	images    ImageStore
	products  ProductChecker
	tx        Transactor
	validator *validation.Validator
	publisher events.Publisher
	logger    *zap.Logger
}

func NewImageService(
	images ImageStore,
	products ProductChecker,
	tx Transactor,
	publisher events.Publisher,
	logger *zap.Logger,
) *ImageService {
	return &ImageService{
		images:    images,
		products:  products,
		tx:        tx,
		validator: validation.New(),
		publisher: publisher,
		logger:    logger,
	}
}

// AddImage attaches an image to the product. The first image of a product is
// always primary; a later one flagged primary takes over from the old one.
func (s *ImageService) AddImage(ctx context.Context, productID uint, req ImageRequest) (*ImageResponse, error) {
	req.normalize()
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	image := &models.ProductImage{
		URL:       req.URL,
		AltText:   req.AltText,
		IsPrimary: req.IsPrimary,
		ProductID: productID,
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.products.Exists(ctx, productID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w with id: %d", models.ErrProductNotFound, productID)
		}

		count, err := s.images.CountByProductID(ctx, productID)
		if err != nil {
			return err
		}
		if count == 0 {
			image.IsPrimary = true
		} else if image.IsPrimary {
			if err := s.images.ClearPrimary(ctx, productID); err != nil {
				return err
			}
		}
		return s.images.Create(ctx, image)
	})
	if err != nil {
		return nil, err
	}

	resp := toImageResponse(image)
	publish(ctx, s.publisher, s.logger, events.ImageAdded, productID, resp)
	return &resp, nil
}

// SetPrimary makes imageID the primary image of productID.
func (s *ImageService) SetPrimary(ctx context.Context, productID, imageID uint) (*ImageResponse, error) {
	var (
		image   *models.ProductImage
		changed bool
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		image, err = s.imageOf(ctx, productID, imageID)
		if err != nil {
			return err
		}

		current, err := s.images.FindPrimary(ctx, productID)
		switch {
		case err == nil && current.ID == imageID:
			return nil
		case err != nil && !errors.Is(err, models.ErrImageNotFound):
			return err
		}

		if err := s.images.ClearPrimary(ctx, productID); err != nil {
			return err
		}
		if err := s.images.SetPrimary(ctx, imageID); err != nil {
			return err
		}
		image.IsPrimary = true
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := toImageResponse(image)
	if changed {
		publish(ctx, s.publisher, s.logger, events.ImagePrimary, productID, resp)
	}
	return &resp, nil
}

// DeleteImage removes one image. When it was the primary image the oldest
// remaining image is promoted.
func (s *ImageService) DeleteImage(ctx context.Context, productID, imageID uint) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		image, err := s.imageOf(ctx, productID, imageID)
		if err != nil {
			return err
		}
		if err := s.images.Delete(ctx, imageID); err != nil {
			return err
		}
		if !image.IsPrimary {
			return nil
		}

		remaining, err := s.images.FindByProductID(ctx, productID)
		if err != nil {
			return err
		}
		if len(remaining) == 0 {
			return nil
		}
		return s.images.SetPrimary(ctx, remaining[0].ID)
	})
	if err != nil {
		return err
	}

	publish(ctx, s.publisher, s.logger, events.ImageRemoved, productID, map[string]uint{"imageId": imageID})
	return nil
}

// imageOf loads imageID and checks that it belongs to productID.
func (s *ImageService) imageOf(ctx context.Context, productID, imageID uint) (*models.ProductImage, error) {
	image, err := s.images.GetByID(ctx, imageID)
	if err != nil && !errors.Is(err, models.ErrImageNotFound) {
		return nil, err
	}
	if err != nil || image.ProductID != productID {
		return nil, fmt.Errorf("%w with id: %d for product %d", models.ErrImageNotFound, imageID, productID)
	}
	return image, nil
}
