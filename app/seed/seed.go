package seed

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sportcore/catalog/models"
	"go.uber.org/zap"
)

type CategoryStore interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, category *models.Category) error
}

type ProductStore interface {
	Create(ctx context.Context, product *models.Product) error
}

type ImageStore interface {
	CreateBatch(ctx context.Context, images []models.ProductImage) error
}

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type category struct {
	name        string
	description string
}

type product struct {
	name        string
	description string
	price       string
	stock       int
	category    string
	flavor      string
	imageURL    string
	imageAlt    string
}

const brand = "SportCore"

var categories = []category{
	{"Proteins", "High-quality protein supplements for muscle building and recovery"},
	{"Creatine", "Creatine supplements for enhanced strength and power"},
	{"Pre-Workout", "Energy and performance boosting supplements"},
	{"Post-Workout", "Recovery and muscle building supplements"},
	{"Vitamins", "Essential vitamins and minerals for overall health"},
	{"Fat Burners", "Supplements to support fat loss and metabolism"},
}

var products = []product{
	{
		name:        "Whey Protein Isolate",
		description: "Premium whey protein isolate with 25g protein per serving. Perfect for post-workout recovery and muscle building.",
		price:       "49.99",
		stock:       50,
		category:    "Proteins",
		flavor:      "Vanilla",
		imageURL:    "https://via.placeholder.com/400x400/DC2626/FFFFFF?text=Whey+Protein",
		imageAlt:    "Whey Protein Isolate - Vanilla",
	},
	{
		name:        "Casein Protein",
		description: "Slow-release casein protein for overnight muscle recovery. 24g protein per serving.",
		price:       "54.99",
		stock:       30,
		category:    "Proteins",
		flavor:      "Chocolate",
		imageURL:    "https://via.placeholder.com/400x400/DC2626/FFFFFF?text=Casein+Protein",
		imageAlt:    "Casein Protein - Chocolate",
	},
	{
		name:        "Creatine Monohydrate",
		description: "Pure creatine monohydrate for increased strength and power output. 5g per serving.",
		price:       "24.99",
		stock:       100,
		category:    "Creatine",
		flavor:      "Unflavored",
		imageURL:    "https://via.placeholder.com/400x400/DC2626/FFFFFF?text=Creatine+Monohydrate",
		imageAlt:    "Creatine Monohydrate",
	},
}

// Seeder loads the starter catalog into an empty database.
type Seeder struct {
	categories CategoryStore
	products   ProductStore
	images     ImageStore
	tx         Transactor
	logger     *zap.Logger
}

func New(categories CategoryStore, products ProductStore, images ImageStore, tx Transactor, logger *zap.Logger) *Seeder {
	return &Seeder{
		categories: categories,
		products:   products,
		images:     images,
		tx:         tx,
		logger:     logger,
	}
}

// Run inserts the starter categories, products and their primary images in
// one transaction. It does nothing when any category already exists and
// reports whether data was written.
func (s *Seeder) Run(ctx context.Context) (bool, error) {
	seeded := false
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		count, err := s.categories.Count(ctx)
		if err != nil {
			return fmt.Errorf("counting categories: %w", err)
		}
		if count > 0 {
			return nil
		}

		ids := make(map[string]uint, len(categories))
		for _, c := range categories {
			row := &models.Category{Name: c.name, Description: c.description}
			if err := s.categories.Create(ctx, row); err != nil {
				return fmt.Errorf("seeding category %q: %w", c.name, err)
			}
			ids[c.name] = row.ID
		}

		for _, p := range products {
			row := &models.Product{
				Name:        p.name,
				Description: p.description,
				Price:       decimal.RequireFromString(p.price),
				Stock:       p.stock,
				Brand:       brand,
				Flavor:      p.flavor,
				CategoryID:  ids[p.category],
			}
			if err := s.products.Create(ctx, row); err != nil {
				return fmt.Errorf("seeding product %q: %w", p.name, err)
			}

			image := []models.ProductImage{{
				URL:       p.imageURL,
				AltText:   p.imageAlt,
				IsPrimary: true,
				ProductID: row.ID,
			}}
			if err := s.images.CreateBatch(ctx, image); err != nil {
				return fmt.Errorf("seeding image of %q: %w", p.name, err)
			}
		}

		seeded = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if seeded {
		s.logger.Info("seeded initial catalog",
			zap.Int("categories", len(categories)),
			zap.Int("products", len(products)),
		)
	} else {
		s.logger.Debug("catalog already populated, skipping seed")
	}
	return seeded, nil
}
