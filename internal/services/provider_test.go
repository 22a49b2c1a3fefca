package services_test

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/avatar-forge/internal/config"
	apperr "github.com/KirkDiggler/avatar-forge/internal/errors"
	"github.com/KirkDiggler/avatar-forge/internal/events"
	"github.com/KirkDiggler/avatar-forge/internal/imagecache"
	"github.com/KirkDiggler/avatar-forge/internal/services"
	"github.com/KirkDiggler/avatar-forge/internal/testutils"
)

const manifest = `
base: base.png
mask: mask.png
canvas: {width: 8, height: 8}
categories:
  - id: hats
    max_equipped: 1
    items:
      - id: hat1
        display_name: Top Hat
        preview_image: previews/hat1.png
        render_image: hats/hat1.png
`

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func assetDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.yaml"), []byte(manifest), 0o644))
	writePNG(t, filepath.Join(dir, "base.png"), testutils.SolidImage(testutils.CanvasSize, color.White))
	writePNG(t, filepath.Join(dir, "hats", "hat1.png"), testutils.PixelImage(testutils.CanvasSize, image.Pt(1, 1), color.Black))
	// mask.png and the preview are missing on purpose
	return dir
}

func TestNewProvider(t *testing.T) {
	dir := assetDir(t)
	ctx := context.Background()

	provider, err := services.NewProvider(ctx, &services.ProviderConfig{
		Assets: &config.AssetsConfig{
			Manifest:           filepath.Join(dir, "manifest.yaml"),
			Dir:                dir,
			PreloadConcurrency: 2,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, provider.Images.Len())
	assert.True(t, provider.Images.Has("base.png"))
	assert.False(t, provider.Images.Has("mask.png"))
	assert.False(t, provider.Images.Has("previews/hat1.png"))
	assert.Same(t, provider.Catalog, provider.AvatarService.Catalog())

	// Audit logger on every event type, after the service's own listeners
	require.NotNil(t, provider.Bus)
	assert.Equal(t, 1, provider.Bus.ListenerCount(events.EventTypeSessionStarted))
	assert.Equal(t, 1, provider.Bus.ListenerCount(events.EventTypeAvatarSaved))
	assert.Equal(t, 3, provider.Bus.ListenerCount(events.EventTypeSelectionChanged))

	// Renders without the mask, so the hat is the only non-white pixel
	_, err = provider.AvatarService.Toggle(ctx, "owner-1", "hats", "hat1")
	require.NoError(t, err)
	data, err := provider.AvatarService.Render(ctx, "owner-1")
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestNewProvider_UsesGivenBus(t *testing.T) {
	dir := assetDir(t)
	bus := events.NewBus()

	provider, err := services.NewProvider(context.Background(), &services.ProviderConfig{
		Assets: &config.AssetsConfig{
			Manifest: filepath.Join(dir, "manifest.yaml"),
			Dir:      dir,
		},
		Bus: bus,
	})
	require.NoError(t, err)

	assert.Same(t, bus, provider.Bus)
	assert.Zero(t, bus.ListenerCount(events.EventTypeSessionStarted))
	assert.Equal(t, 2, bus.ListenerCount(events.EventTypeSelectionChanged))
}

func TestNewProvider_Errors(t *testing.T) {
	_, err := services.NewProvider(context.Background(), &services.ProviderConfig{})
	assert.True(t, apperr.IsInvalidArgument(err))

	_, err = services.NewProvider(context.Background(), &services.ProviderConfig{
		Assets: &config.AssetsConfig{Manifest: filepath.Join(t.TempDir(), "missing.yaml")},
	})
	assert.Error(t, err)
}

func TestNewAssetLoader(t *testing.T) {
	assert.IsType(t, &imagecache.FSLoader{}, services.NewAssetLoader(&config.AssetsConfig{Dir: "assets"}))
	assert.IsType(t, &imagecache.HTTPLoader{}, services.NewAssetLoader(&config.AssetsConfig{
		Dir:     "assets",
		BaseURL: "https://cdn.example.com/",
	}))
}
