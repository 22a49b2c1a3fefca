package testutils

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/avatar-forge/internal/domain/cosmetic"
)

// Fixture refs used by CreateTestCatalog
const (
	BaseRef     = "base.png"
	MaskRef     = "mask.png"
	Hat1Ref     = "hats/hat1.png"
	Hat2Ref     = "hats/hat2.png"
	ShirtBack   = "shirts/striped_back.png"
	ShirtFront  = "shirts/striped_front.png"
	Badge1Ref   = "badges/b1.png"
	Badge2Ref   = "badges/b2.png"
	ArmLeftRef  = "arms/arm1_left.png"
	ArmRightRef = "arms/arm1_right.png"
)

// CanvasSize is the edge length of every fixture image
const CanvasSize = 8

// CreateTestCatalog builds the catalog most tests run against:
//
//	hats   max 1: hat1, hat2
//	shirts max 1: striped (two images)
//	badges max 2: b1, b2, b3 (b3 has no render image)
//	arms   max 1, variations: arm1 {left, right, both}
func CreateTestCatalog(t testing.TB) *cosmetic.Catalog {
	t.Helper()

	plain := func(id, name string, images ...string) cosmetic.Item {
		return cosmetic.Item{
			ID:           id,
			DisplayName:  name,
			PreviewImage: "previews/" + id + ".png",
			Render:       cosmetic.PlainRender{Images: images},
		}
	}

	catalog, err := cosmetic.NewCatalog(&cosmetic.CatalogConfig{
		BaseImage:  BaseRef,
		MaskImage:  MaskRef,
		Canvas:     image.Pt(CanvasSize, CanvasSize),
		LayerOrder: []string{cosmetic.LayerBase, cosmetic.LayerColor, "shirts", "arms", "badges", "hats"},
		Categories: []cosmetic.CategoryConfig{
			{
				Category: cosmetic.Category{ID: "hats", MaxEquipped: 1},
				Items: []cosmetic.Item{
					plain("hat1", "Top Hat", Hat1Ref),
					plain("hat2", "Cap", Hat2Ref),
				},
			},
			{
				Category: cosmetic.Category{ID: "shirts", MaxEquipped: 1},
				Items: []cosmetic.Item{
					plain("striped", "Striped Shirt", ShirtBack, ShirtFront),
				},
			},
			{
				Category: cosmetic.Category{ID: "badges", MaxEquipped: 2},
				Items: []cosmetic.Item{
					plain("b1", "Star", Badge1Ref),
					plain("b2", "Heart", Badge2Ref),
					plain("b3", "Moon"),
				},
			},
			{
				Category: cosmetic.Category{ID: "arms", MaxEquipped: 1, HasVariations: true},
				Items: []cosmetic.Item{
					{
						ID:           "arm1",
						DisplayName:  "Robot Arm",
						PreviewImage: "previews/arm1.png",
						Render: cosmetic.VariantRender{
							Keys: []string{"left", "right", "both"},
							Variations: map[string]cosmetic.Variation{
								"left":  {DisplayName: "Left", RenderImages: []string{ArmLeftRef}},
								"right": {DisplayName: "Right", RenderImages: []string{ArmRightRef}},
								"both":  {DisplayName: "Both", RenderImages: []string{ArmLeftRef, ArmRightRef}},
							},
						},
					},
				},
			},
		},
	})
	require.NoError(t, err)
	return catalog
}

// SolidImage returns a size x size image filled with c
func SolidImage(size int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// PixelImage returns a transparent size x size image with a single pixel set to c
func PixelImage(size int, at image.Point, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	img.Set(at.X, at.Y, c)
	return img
}

// StaticLoader serves images from a map and fails for anything else.
// It records how many times each ref was requested.
type StaticLoader struct {
	mu     sync.Mutex
	Images map[string]image.Image
	Calls  map[string]int
}

// NewStaticLoader creates a loader over images
func NewStaticLoader(images map[string]image.Image) *StaticLoader {
	return &StaticLoader{
		Images: images,
		Calls:  make(map[string]int),
	}
}

// Load implements imagecache.Loader
func (l *StaticLoader) Load(ctx context.Context, ref string) (image.Image, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.Calls[ref]++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, ok := l.Images[ref]
	if !ok {
		return nil, fmt.Errorf("no fixture for %s", ref)
	}
	return img, nil
}

// CallCount returns how many times ref was requested
func (l *StaticLoader) CallCount(ref string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Calls[ref]
}
