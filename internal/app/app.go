package app

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/restock-forecast/internal/auth"
	"github.com/andresuchdata/restock-forecast/internal/cache"
	"github.com/andresuchdata/restock-forecast/internal/config"
	"github.com/andresuchdata/restock-forecast/internal/pipeline"
	"github.com/andresuchdata/restock-forecast/internal/predictor"
	"github.com/andresuchdata/restock-forecast/internal/repository/postgres"
	"github.com/andresuchdata/restock-forecast/internal/restock"
	"github.com/andresuchdata/restock-forecast/internal/service"
	"github.com/andresuchdata/restock-forecast/internal/storage"
	"github.com/rs/zerolog/log"
)

// App holds every constructed dependency of a process.
type App struct {
	DB      *postgres.DB
	Storage *storage.MinioClient

	Forecast  *service.ForecastService
	Restock   *service.RestockService
	Sales     *service.SalesService
	Inventory *service.InventoryService
	Tokens    *auth.TokenService
}

// Options tune Build for the calling process.
type Options struct {
	// RequireModel fails Build when no model artifact can be loaded.
	RequireModel bool
}

// Build connects to the stores named in cfg and wires the services.
func Build(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	a := &App{DB: db}

	if cfg.Storage.Enabled {
		client, err := NewStorage(cfg.Storage)
		if err != nil {
			db.Close()
			return nil, err
		}
		a.Storage = client
	}

	var model pipeline.Model
	m, err := a.LoadModel(ctx, cfg.Forecast)
	switch {
	case err == nil:
		model = m
	case opts.RequireModel:
		db.Close()
		return nil, err
	default:
		log.Error().Err(err).Msg("Forecast model unavailable; forecast runs will be rejected")
	}

	perturber, err := predictor.NewPerturberFromSeed(cfg.Forecast.NoiseSeed, cfg.Forecast.NoiseMin, cfg.Forecast.NoiseMax)
	if err != nil {
		db.Close()
		return nil, err
	}

	catalog := postgres.NewCatalogRepository(db)
	inventory := postgres.NewInventoryRepository(db)
	orders := postgres.NewOrderRepository(db)
	predictions := postgres.NewPredictionRepository(db)
	runs := pipeline.NewRepository(db.DB)

	orchestrator := pipeline.NewOrchestrator(
		orders, catalog, predictions, runs, model, perturber,
		pipeline.PipelineConfig{FeatureWorkers: cfg.Forecast.FeatureWorkers},
	)

	restockCache, err := cache.NewRestockCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable; restock cache disabled")
		restockCache = cache.NewNoopRestockCache()
	}

	a.Forecast = service.NewForecastService(orchestrator, predictions)
	a.Restock = service.NewRestockService(a.Forecast, restock.NewResolver(catalog, catalog, inventory), restockCache)
	a.Sales = service.NewSalesService(orders, postgres.NewSaleRepository(db), catalog, catalog)
	a.Inventory = service.NewInventoryService(inventory, catalog)
	orchestrator.OnPublish(a.Restock.HandlePublish)
	a.Sales.OnStockChange(a.Restock.HandleStockChange)
	a.Inventory.OnStockChange(a.Restock.HandleStockChange)

	if cfg.Auth.JWTSecret != "" {
		tokens, err := NewTokens(cfg.Auth)
		if err != nil {
			db.Close()
			return nil, err
		}
		a.Tokens = tokens
	} else {
		log.Warn().Msg("AUTH_JWT_SECRET not set; API routes are disabled")
	}

	return a, nil
}

// LoadModel loads the artifact once, preferring object storage.
func (a *App) LoadModel(ctx context.Context, cfg config.ForecastConfig) (*predictor.Model, error) {
	src := predictor.Source{Path: cfg.ModelPath}
	if a.Storage != nil && cfg.ModelObjectKey != "" {
		src.ObjectKey = cfg.ModelObjectKey
		src.Objects = a.Storage
	}
	return predictor.Load(ctx, src)
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

func NewStorage(cfg config.StorageConfig) (*storage.MinioClient, error) {
	return storage.NewMinioClient(storage.MinioConfig{
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		Bucket:    cfg.Bucket,
		Region:    cfg.Region,
		UseSSL:    cfg.UseSSL,
	})
}

func NewTokens(cfg config.AuthConfig) (*auth.TokenService, error) {
	return auth.NewTokenService(cfg.JWTSecret, cfg.Issuer, time.Duration(cfg.TokenTTL)*time.Minute)
}
