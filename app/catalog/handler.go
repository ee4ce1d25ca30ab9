package catalog

import (
	"context"
	"math"
	"net/http"
	"strings"

	"github.com/sportcore/catalog/app/api"
	"go.uber.org/zap"
)

const (
	defaultPageSize    = 10
	maxPageSize        = 100
	defaultRandomLimit = 10
	maxRandomLimit     = 100
)

type ProductProvider interface {
	List(ctx context.Context, page, size int, sort string) (*api.Page[ProductResponse], error)
	ListAll(ctx context.Context) ([]ProductResponse, error)
	Get(ctx context.Context, id uint) (*ProductResponse, error)
	Random(ctx context.Context, limit int) ([]ProductResponse, error)
	ByCategory(ctx context.Context, categoryID uint) ([]ProductResponse, error)
	Search(ctx context.Context, name string) ([]ProductResponse, error)
	Create(ctx context.Context, req ProductRequest) (*ProductResponse, error)
	Update(ctx context.Context, id uint, req ProductRequest) (*ProductResponse, error)
	Delete(ctx context.Context, id uint) error
}

type ImageProvider interface {
	AddImage(ctx context.Context, productID uint, req ImageRequest) (*ImageResponse, error)
	SetPrimary(ctx context.Context, productID, imageID uint) (*ImageResponse, error)
	DeleteImage(ctx context.Context, productID, imageID uint) error
}

type CatalogHandler struct {
	products ProductProvider
	images   ImageProvider
	logger   *zap.Logger
}

func NewCatalogHandler(p ProductProvider, i ImageProvider, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		products: p,
		images:   i,
		logger:   logger,
	}
}

// HandleGet serves one page of products: ?page (zero based), ?size and
// ?sort=field,dir.
func (h *CatalogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	// Parse pagination query params
	page := api.IntQuery(r, "page", 0, 0, math.MaxInt32)
	size := api.IntQuery(r, "size", defaultPageSize, 1, maxPageSize)

	res, err := h.products.List(r.Context(), page, size, r.URL.Query().Get("sort"))
	if err != nil {
		api.WriteError(w, h.logger, err, "Failed to fetch products")
		return
	}

	api.OKResponse(w, res)
}

func (h *CatalogHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	res, err := h.products.ListAll(r.Context())
	if err != nil {
		api.WriteError(w, h.logger, err, "Failed to fetch products")
		return
	}

	api.OKResponse(w, res)
}

func (h *CatalogHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r, "id")
	if !ok {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := h.products.Get(r.Context(), id)
	if err != nil {
		api.WriteError(w, h.logger, err, "Failed to retrieve product")
		return
	}

	api.OKResponse(w, product)
}

func (h *CatalogHandler) HandleRandom(w http.ResponseWriter, r *http.Request) {
	limit := api.IntQuery(r, "limit", defaultRandomLimit, 1, maxRandomLimit)

	res, err := h.products.Random(r.Context(), limit)
	if err != nil {
		api.WriteError(w, h.logger, err, "Failed to fetch random products")
		return
	}

	api.OKResponse(w, res)
}

func (h *CatalogHandler) HandleByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := api.PathID(r, "categoryId")
	if !ok {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	res, err := h.products.ByCategory(r.Context(), categoryID)
	if err != nil {
		api.WriteError(w, h.logger, err, "Failed to fetch products")
		return
	}

	api.OKResponse(w, res)
}

func (h *CatalogHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		api.ErrorResponse(w, http.StatusBadRequest, "Query parameter 'name' is required")
		return
	}

	res, err := h.products.Search(r.Context(), name)
	if err != nil {
		api.WriteError(w, h.logger, err, "Failed to search products")
		return
	}

	api.OKResponse(w, res)
}

func (h *CatalogHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input ProductRequest
	if err := api.DecodeJSON(r, &input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	product, err := h.products.Create(r.Context(), input)
	if err != nil {
		api.WriteError(w, h.logger, err, "Failed to create product")
		return
	}

	api.CreatedResponse(w, product)
}

func (h *CatalogHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r, "id")
	if !ok {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var input ProductRequest
	if err := api.DecodeJSON(r, &input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	product, err := h.products.Update(r.Context(), id, input)
	if err != nil {
		api.WriteError(w, h.logger, err, "Failed to update product")
		return
	}

	api.OKResponse(w, product)
}

func (h *CatalogHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r, "id")
	if !ok {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		api.WriteError(w, h.logger, err, "Failed to delete product")
		return
	}

	api.NoContentResponse(w)
}

func (h *CatalogHandler) HandleAddImage(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r, "id")
	if !ok {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var input ImageRequest
	if err := api.DecodeJSON(r, &input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	image, err := h.images.AddImage(r.Context(), id, input)
	if err != nil {
		api.WriteError(w, h.logger, err, "Failed to add image")
		return
	}

	api.CreatedResponse(w, image)
}

func (h *CatalogHandler) HandleSetPrimaryImage(w http.ResponseWriter, r *http.Request) {
	id, imageID, ok := imagePath(r)
	if !ok {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid product or image ID")
		return
	}

	image, err := h.images.SetPrimary(r.Context(), id, imageID)
	if err != nil {
		api.WriteError(w, h.logger, err, "Failed to set primary image")
		return
	}

	api.OKResponse(w, image)
}

func (h *CatalogHandler) HandleDeleteImage(w http.ResponseWriter, r *http.Request) {
	id, imageID, ok := imagePath(r)
	if !ok {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid product or image ID")
		return
	}

	if err := h.images.DeleteImage(r.Context(), id, imageID); err != nil {
		api.WriteError(w, h.logger, err, "Failed to delete image")
		return
	}

	api.NoContentResponse(w)
}

func imagePath(r *http.Request) (productID, imageID uint, ok bool) {
	productID, ok = api.PathID(r, "id")
	if !ok {
		return 0, 0, false
	}
	imageID, ok = api.PathID(r, "imageId")
	return productID, imageID, ok
}
