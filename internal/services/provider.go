package services

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/KirkDiggler/avatar-forge/internal/config"
	"github.com/KirkDiggler/avatar-forge/internal/domain/cosmetic"
	apperr "github.com/KirkDiggler/avatar-forge/internal/errors"
	"github.com/KirkDiggler/avatar-forge/internal/events"
	"github.com/KirkDiggler/avatar-forge/internal/imagecache"
	"github.com/KirkDiggler/avatar-forge/internal/repositories/avatars"
	avatarService "github.com/KirkDiggler/avatar-forge/internal/services/avatar"
)

// assetRequestTimeout bounds a single asset download
const assetRequestTimeout = 10 * time.Second

// Provider holds all service instances
type Provider struct {
	Catalog       *cosmetic.Catalog
	Images        *imagecache.Cache
	Bus           *events.Bus
	AvatarService avatarService.Service
}

// ProviderConfig holds configuration for creating services
type ProviderConfig struct {
	Assets           *config.AssetsConfig // Required
	AvatarRepository avatars.Repository   // Optional, in-memory if nil
	Bus              *events.Bus          // Optional, created with an audit logger if nil
	Loader           imagecache.Loader    // Optional, built from Assets if nil
}

// NewProvider loads the catalog, preloads every asset it references and wires the
// avatar service. Assets that fail to load are logged and left out of renders.
func NewProvider(ctx context.Context, cfg *ProviderConfig) (*Provider, error) {
	if cfg == nil || cfg.Assets == nil {
		return nil, apperr.InvalidArgument("asset config is required")
	}

	catalog, err := cosmetic.LoadManifestFile(cfg.Assets.Manifest)
	if err != nil {
		return nil, err
	}

	loader := cfg.Loader
	if loader == nil {
		loader = NewAssetLoader(cfg.Assets)
	}
	images := imagecache.New(&imagecache.Config{
		Loader:      loader,
		Concurrency: cfg.Assets.PreloadConcurrency,
	})

	preloadCtx := ctx
	if cfg.Assets.PreloadTimeout > 0 {
		var cancel context.CancelFunc
		preloadCtx, cancel = context.WithTimeout(ctx, cfg.Assets.PreloadTimeout)
		defer cancel()
	}
	stats := images.Preload(preloadCtx, catalog.ResourceRefs())
	log.Printf("Preloaded %d of %d assets in %v (%d failed)", stats.Loaded, stats.Requested, stats.Duration, stats.Failed)

	repo := cfg.AvatarRepository
	if repo == nil {
		repo = avatars.NewInMemoryRepository(nil)
	}

	bus := cfg.Bus
	if bus == nil {
		bus = events.NewBus()
		events.NewAuditLogger(nil).Subscribe(bus)
	}

	svc := avatarService.NewService(&avatarService.ServiceConfig{
		Catalog:    catalog,
		Images:     images,
		Repository: repo,
		Bus:        bus,
	})

	return &Provider{
		Catalog:       catalog,
		Images:        images,
		Bus:           bus,
		AvatarService: svc,
	}, nil
}

// NewAssetLoader fetches from BaseURL when set, otherwise reads from Dir
func NewAssetLoader(cfg *config.AssetsConfig) imagecache.Loader {
	if cfg.BaseURL != "" {
		return imagecache.NewHTTPLoader(cfg.BaseURL, assetRequestTimeout)
	}
	return imagecache.NewFSLoader(os.DirFS(cfg.Dir))
}
