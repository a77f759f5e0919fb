// Package app wires configuration into stores, repositories and services.
package app

import (
	"context"
	"fmt"

	"github.com/timmy/contentfactory/internal/api"
	"github.com/timmy/contentfactory/internal/config"
	"github.com/timmy/contentfactory/internal/directus"
	"github.com/timmy/contentfactory/internal/logger"
	"github.com/timmy/contentfactory/internal/repository"
	"github.com/timmy/contentfactory/internal/service"
	"github.com/timmy/contentfactory/internal/spintax"
	"github.com/timmy/contentfactory/internal/storage"
	"github.com/timmy/contentfactory/internal/store"
	"github.com/timmy/contentfactory/internal/velocity"
)

// App holds the long-lived components of a process.
type App struct {
	Config    *config.Config
	Repos     *repository.Repositories
	Scheduler *service.ProductionScheduler
	Runner    *service.ProductionRunner
	Scanner   *service.QualityScanner
	Dripper   *service.SitemapDripper

	closers []func() error
}

// New builds an App from cfg.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	s, err := a.openStore()
	if err != nil {
		return nil, err
	}
	return a.wire(ctx, s)
}

// NewWithStore builds an App on an existing store. Object storage is still
// taken from cfg.
func NewWithStore(ctx context.Context, cfg *config.Config, s store.Store) (*App, error) {
	return (&App{Config: cfg}).wire(ctx, s)
}

func (a *App) wire(ctx context.Context, s store.Store) (*App, error) {
	cfg := a.Config
	a.Repos = repository.NewRepositories(s)

	publisher, err := a.openPublisher(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	assembler := service.NewArticleAssembler(a.Repos.Modules, spintax.New(nil))
	a.Scheduler = service.NewProductionScheduler(a.Repos, velocity.New(nil), assembler, cfg.Production, cfg.Velocity)
	a.Runner = service.NewProductionRunner(a.Repos, assembler, cfg.Production)
	a.Scanner = service.NewQualityScanner(a.Repos, cfg.Quality)
	a.Dripper = service.NewSitemapDripper(a.Repos, cfg.Sitemap, publisher, cfg.Storage.Prefix)
	return a, nil
}

func (a *App) openStore() (store.Store, error) {
	cfg := a.Config
	switch cfg.Store.Driver {
	case config.StoreDriverDirectus:
		logger.Info("Using Directus item store at %s", cfg.Directus.URL)
		return directus.New(directus.Config{
			BaseURL: cfg.Directus.URL,
			Token:   cfg.Directus.Token,
			Timeout: cfg.Directus.Timeout,
		}), nil
	case config.StoreDriverGorm, "":
		db, err := repository.InitDB(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB instance: %w", err)
		}
		a.closers = append(a.closers, sqlDB.Close)
		return repository.NewItemStore(db), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

// openPublisher returns nil when sitemap publishing has no bucket.
func (a *App) openPublisher(ctx context.Context) (storage.ObjectStorage, error) {
	cfg := a.Config
	if !cfg.Storage.Enabled {
		return nil, nil
	}
	s3, err := storage.NewStorage(&cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure storage bucket: %w", err)
	}
	logger.Info("Publishing sitemaps to bucket %s", cfg.Storage.Bucket)
	return s3, nil
}

// Services returns the operations served over HTTP.
func (a *App) Services() api.Services {
	return api.Services{
		Scheduler: a.Scheduler,
		Runner:    a.Runner,
		Scanner:   a.Scanner,
		Dripper:   a.Dripper,
	}
}

// Close releases the database connection.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
