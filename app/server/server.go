package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/cors"
	"github.com/sportcore/catalog/app/api"
	"github.com/sportcore/catalog/app/catalog"
	"github.com/sportcore/catalog/app/categories"
	"github.com/sportcore/catalog/app/config"
	"github.com/sportcore/catalog/app/logging"
	"go.uber.org/zap"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handlers struct {
	Catalog    *catalog.CatalogHandler
	Categories *categories.CategoryHandler
	DB         Pinger
}

// NewRouter wires every route behind request logging and CORS.
func NewRouter(h Handlers, corsCfg config.CORS, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	// Products
	mux.HandleFunc("GET /products", h.Catalog.HandleGet)
	mux.HandleFunc("GET /products/all", h.Catalog.HandleGetAll)
	mux.HandleFunc("GET /products/random", h.Catalog.HandleRandom)
	mux.HandleFunc("GET /products/search", h.Catalog.HandleSearch)
	mux.HandleFunc("GET /products/category/{categoryId}", h.Catalog.HandleByCategory)
	mux.HandleFunc("GET /products/{id}", h.Catalog.HandleGetProduct)
	mux.HandleFunc("POST /products", h.Catalog.HandleCreate)
	mux.HandleFunc("PUT /products/{id}", h.Catalog.HandleUpdate)
	mux.HandleFunc("DELETE /products/{id}", h.Catalog.HandleDelete)

	// Product images
	mux.HandleFunc("POST /products/{id}/images", h.Catalog.HandleAddImage)
	mux.HandleFunc("PUT /products/{id}/images/{imageId}/primary", h.Catalog.HandleSetPrimaryImage)
	mux.HandleFunc("DELETE /products/{id}/images/{imageId}", h.Catalog.HandleDeleteImage)

	// Categories
	mux.HandleFunc("GET /categories", h.Categories.HandleGetAll)
	mux.HandleFunc("GET /categories/{id}", h.Categories.HandleGet)
	mux.HandleFunc("POST /categories", h.Categories.HandleCreate)
	mux.HandleFunc("PUT /categories/{id}", h.Categories.HandleUpdate)
	mux.HandleFunc("DELETE /categories/{id}", h.Categories.HandleDelete)

	mux.HandleFunc("GET /health", healthHandler(h.DB, logger))

	c := cors.New(cors.Options{
		AllowedOrigins:   corsCfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{logging.RequestIDHeader},
		AllowCredentials: true,
	})

	return logging.Middleware(logger)(c.Handler(mux))
}

func healthHandler(db Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			logger.Warn("health check failed", zap.Error(err))
			api.JSONResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		api.OKResponse(w, map[string]string{"status": "ok"})
	}
}

// New builds the HTTP server for handler using the configured timeouts.
func New(cfg config.HTTP, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}
}
