package categories

import (
	"context"
	"net/http"
	"strings"

	"github.com/sportcore/catalog/app/api"
	"go.uber.org/zap"
)

type CategoryProvider interface {
	List(ctx context.Context) ([]CategoryResponse, error)
	Search(ctx context.Context, name string) ([]CategoryResponse, error)
	Get(ctx context.Context, id uint) (*CategoryResponse, error)
	Create(ctx context.Context, req CategoryRequest) (*CategoryResponse, error)
	Update(ctx context.Context, id uint, req CategoryRequest) (*CategoryResponse, error)
	Delete(ctx context.Context, id uint) error
}

type CategoryHandler struct {
	service CategoryProvider
	logger  *zap.Logger
}

func NewCategoryHandler(s CategoryProvider, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{service: s, logger: logger}
}

// HandleGetAll lists every category, or only those whose name contains the
// optional "name" query parameter.
func (h *CategoryHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	var (
		categories []CategoryResponse
		err        error
	)
	if name := strings.TrimSpace(r.URL.Query().Get("name")); name != "" {
		categories, err = h.service.Search(r.Context(), name)
	} else {
		categories, err = h.service.List(r.Context())
	}
	if err != nil {
		api.WriteError(w, h.logger, err, "failed to fetch categories")
		return
	}

	api.OKResponse(w, categories)
}

func (h *CategoryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r, "id")
	if !ok {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	category, err := h.service.Get(r.Context(), id)
	if err != nil {
		api.WriteError(w, h.logger, err, "Failed to retrieve category")
		return
	}

	api.OKResponse(w, category)
}

func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input CategoryRequest
	if err := api.DecodeJSON(r, &input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	category, err := h.service.Create(r.Context(), input)
	if err != nil {
		api.WriteError(w, h.logger, err, "Failed to create category")
		return
	}

	api.CreatedResponse(w, category)
}

func (h *CategoryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r, "id")
	if !ok {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	var input CategoryRequest
	if err := api.DecodeJSON(r, &input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	category, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		api.WriteError(w, h.logger, err, "Failed to update category")
		return
	}

	api.OKResponse(w, category)
}

func (h *CategoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r, "id")
	if !ok {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		api.WriteError(w, h.logger, err, "Failed to delete category")
		return
	}

	api.NoContentResponse(w)
}
