package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sportcore/catalog/app/catalog"
	"github.com/sportcore/catalog/app/categories"
	"github.com/sportcore/catalog/app/config"
	"github.com/sportcore/catalog/app/database"
	"github.com/sportcore/catalog/app/events"
	"github.com/sportcore/catalog/app/logging"
	"github.com/sportcore/catalog/app/seed"
	"github.com/sportcore/catalog/app/server"
	"github.com/sportcore/catalog/models"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}

	code := exitCode(logger, run(ctx, cfg, logger))
	stop()
	os.Exit(code)
}

// exitCode logs why run returned and flushes the logger, since os.Exit
// skips deferred calls.
func exitCode(logger *zap.Logger, err error) int {
	code := 0
	if err != nil {
		logger.Error("catalog service stopped", zap.Error(err))
		code = 1
	}
	_ = logger.Sync()
	return code
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if err := database.Migrate(cfg.Postgres, logger); err != nil {
		return err
	}

	db, err := database.Open(ctx, cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Warn("closing database", zap.Error(err))
		}
	}()

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	publisher, err := events.NewPublisher(cfg.Kafka, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("closing event publisher", zap.Error(err))
		}
	}()

	// Initialize repositories
	categoriesRepo := models.NewCategoriesRepository(db)
	productsRepo := models.NewProductsRepository(db)
	imagesRepo := models.NewImagesRepository(db)
	tx := models.NewTxManager(db)

	if cfg.Seed {
		seeder := seed.New(categoriesRepo, productsRepo, imagesRepo, tx, logger.Named("seed"))
		if _, err := seeder.Run(ctx); err != nil {
			return err
		}
	}

	// Initialize services and handlers
	productService := catalog.NewProductService(productsRepo, imagesRepo, categoriesRepo, tx, publisher, logger.Named("products"))
	imageService := catalog.NewImageService(imagesRepo, productsRepo, tx, publisher, logger.Named("images"))
	categoryService := categories.NewService(categoriesRepo, productsRepo, tx, publisher, logger.Named("categories"))

	router := server.NewRouter(server.Handlers{
		Catalog:    catalog.NewCatalogHandler(productService, imageService, logger),
		Categories: categories.NewCategoryHandler(categoryService, logger),
		DB:         sqlDB,
	}, cfg.CORS, logger.Named("http"))

	srv := server.New(cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
