package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/sportcore/catalog/app/events"
	"github.com/sportcore/catalog/models"
)

// fakeDB keeps products and images in memory and mimics the constraints the
// real schema enforces: unique names and a single primary image per product.
type fakeDB struct {
	products      map[uint]*models.Product
	images        map[uint]*models.ProductImage
	categories    map[uint]bool
	nextProductID uint
	nextImageID   uint
	err           error
}

func newFakeDB(categoryIDs ...uint) *fakeDB {
	db := &fakeDB{
		products:      map[uint]*models.Product{},
		images:        map[uint]*models.ProductImage{},
		categories:    map[uint]bool{},
		nextProductID: 1,
		nextImageID:   1,
	}
	for _, id := range categoryIDs {
		db.categories[id] = true
	}
	return db
}

type fakeProducts struct{ db *fakeDB }

type fakeImages struct{ db *fakeDB }

type fakeCategories struct{ db *fakeDB }

func (c fakeCategories) Exists(ctx context.Context, id uint) (bool, error) {
	return c.db.categories[id], c.db.err
}

func (f fakeProducts) withImages(p *models.Product) models.Product {
	cp := *p
	cp.Images = nil
	for _, img := range f.db.sortedImages() {
		if img.ProductID == p.ID {
			cp.Images = append(cp.Images, img)
		}
	}
	return cp
}

func (f fakeProducts) all() []models.Product {
	ids := make([]int, 0, len(f.db.products))
	for id := range f.db.products {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		out = append(out, f.withImages(f.db.products[uint(id)]))
	}
	return out
}

func (f fakeProducts) GetAllWithImages(ctx context.Context) ([]models.Product, error) {
	if f.db.err != nil {
		return nil, f.db.err
	}
	return f.all(), nil
}

func (f fakeProducts) GetPage(ctx context.Context, offset, limit int, order models.ProductSort) ([]models.Product, int64, error) {
	if f.db.err != nil {
		return nil, 0, f.db.err
	}
	all := f.all()
	if order.Desc {
		for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
			all[i], all[j] = all[j], all[i]
		}
	}
	start := min(offset, len(all))
	end := min(offset+limit, len(all))
	return all[start:end], int64(len(all)), nil
}

func (f fakeProducts) GetRandom(ctx context.Context, limit int) ([]models.Product, error) {
	all := f.all()
	return all[:min(limit, len(all))], f.db.err
}

func (f fakeProducts) GetByCategory(ctx context.Context, categoryID uint) ([]models.Product, error) {
	var out []models.Product
	for _, p := range f.all() {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, f.db.err
}

func (f fakeProducts) SearchByName(ctx context.Context, name string) ([]models.Product, error) {
	var out []models.Product
	for _, p := range f.all() {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(name)) {
			out = append(out, p)
		}
	}
	return out, f.db.err
}

func (f fakeProducts) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	if f.db.err != nil {
		return nil, f.db.err
	}
	p, ok := f.db.products[id]
	if !ok {
		return nil, models.ErrProductNotFound
	}
	cp := f.withImages(p)
	return &cp, nil
}

func (f fakeProducts) Exists(ctx context.Context, id uint) (bool, error) {
	_, ok := f.db.products[id]
	return ok, f.db.err
}

func (f fakeProducts) ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error) {
	for id, p := range f.db.products {
		if id != excludeID && strings.EqualFold(p.Name, name) {
			return true, nil
		}
	}
	return false, f.db.err
}

func (f fakeProducts) Create(ctx context.Context, product *models.Product) error {
	if f.db.err != nil {
		return f.db.err
	}
	product.ID = f.db.nextProductID
	f.db.nextProductID++
	cp := *product
	cp.Images = nil
	f.db.products[cp.ID] = &cp
	return nil
}

func (f fakeProducts) Update(ctx context.Context, product *models.Product) error {
	if _, ok := f.db.products[product.ID]; !ok {
		return models.ErrProductNotFound
	}
	cp := *product
	cp.Images = nil
	f.db.products[cp.ID] = &cp
	return nil
}

func (f fakeProducts) Delete(ctx context.Context, id uint) error {
	if _, ok := f.db.products[id]; !ok {
		return models.ErrProductNotFound
	}
	delete(f.db.products, id)
	for imgID, img := range f.db.images {
		if img.ProductID == id {
			delete(f.db.images, imgID)
		}
	}
	return nil
}

func (d *fakeDB) sortedImages() []models.ProductImage {
	ids := make([]int, 0, len(d.images))
	for id := range d.images {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	out := make([]models.ProductImage, 0, len(ids))
	for _, id := range ids {
		out = append(out, *d.images[uint(id)])
	}
	return out
}

func (d *fakeDB) primaryCount(productID uint) int {
	n := 0
	for _, img := range d.images {
		if img.ProductID == productID && img.IsPrimary {
			n++
		}
	}
	return n
}

func (f fakeImages) GetByID(ctx context.Context, id uint) (*models.ProductImage, error) {
	img, ok := f.db.images[id]
	if !ok {
		return nil, models.ErrImageNotFound
	}
	cp := *img
	return &cp, nil
}

func (f fakeImages) FindByProductID(ctx context.Context, productID uint) ([]models.ProductImage, error) {
	var out []models.ProductImage
	for _, img := range f.db.sortedImages() {
		if img.ProductID == productID {
			out = append(out, img)
		}
	}
	return out, nil
}

func (f fakeImages) FindPrimary(ctx context.Context, productID uint) (*models.ProductImage, error) {
	for _, img := range f.db.sortedImages() {
		if img.ProductID == productID && img.IsPrimary {
			return &img, nil
		}
	}
	return nil, models.ErrImageNotFound
}

func (f fakeImages) CountByProductID(ctx context.Context, productID uint) (int64, error) {
	images, _ := f.FindByProductID(ctx, productID)
	return int64(len(images)), nil
}

func (f fakeImages) Create(ctx context.Context, image *models.ProductImage) error {
	if _, ok := f.db.products[image.ProductID]; !ok {
		return models.ErrProductNotFound
	}
	if image.IsPrimary && f.db.primaryCount(image.ProductID) > 0 {
		return models.ErrConflict
	}
	image.ID = f.db.nextImageID
	f.db.nextImageID++
	cp := *image
	f.db.images[cp.ID] = &cp
	return nil
}

func (f fakeImages) CreateBatch(ctx context.Context, images []models.ProductImage) error {
	for i := range images {
		if err := f.Create(ctx, &images[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f fakeImages) Delete(ctx context.Context, id uint) error {
	if _, ok := f.db.images[id]; !ok {
		return models.ErrImageNotFound
	}
	delete(f.db.images, id)
	return nil
}

func (f fakeImages) DeleteByProductID(ctx context.Context, productID uint) error {
	for id, img := range f.db.images {
		if img.ProductID == productID {
			delete(f.db.images, id)
		}
	}
	return nil
}

func (f fakeImages) ClearPrimary(ctx context.Context, productID uint) error {
	for _, img := range f.db.images {
		if img.ProductID == productID {
			img.IsPrimary = false
		}
	}
	return nil
}

func (f fakeImages) SetPrimary(ctx context.Context, id uint) error {
	img, ok := f.db.images[id]
	if !ok {
		return models.ErrImageNotFound
	}
	if !img.IsPrimary && f.db.primaryCount(img.ProductID) > 0 {
		return models.ErrConflict
	}
	img.IsPrimary = true
	return nil
}

type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
