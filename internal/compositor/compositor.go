package compositor

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	"github.com/KirkDiggler/avatar-forge/internal/domain/avatar"
	"github.com/KirkDiggler/avatar-forge/internal/domain/cosmetic"
	apperr "github.com/KirkDiggler/avatar-forge/internal/errors"
)

// ImageSource resolves refs to decoded images. Missing refs are skipped when rendering.
type ImageSource interface {
	Get(ref string) (image.Image, bool)
}

var nameColor = color.RGBA{R: 0x1e, G: 0x1e, B: 0x24, A: 0xff}

// Render draws c onto surface. The surface is cleared first, so rendering the same
// character again produces the same pixels.
func Render(c avatar.Character, catalog *cosmetic.Catalog, images ImageSource, surface Surface) {
	surface.Clear()

	for _, layer := range catalog.LayerOrder() {
		switch layer {
		case cosmetic.LayerBase:
			drawRef(surface, images, catalog.BaseImage())
		case cosmetic.LayerColor:
			drawTint(surface, images, catalog, c.Color)
		default:
			drawCategory(surface, images, catalog, c, layer)
		}
	}

	if c.Name != "" {
		surface.DrawCenteredText(c.Name, nameBaseline(surface.Bounds()), nameColor)
	}
}

func drawRef(surface Surface, images ImageSource, ref string) {
	if img, ok := images.Get(ref); ok {
		surface.DrawImage(img, OpSourceOver)
	}
}

// drawTint multiplies the tint color onto the surface wherever the mask is opaque
func drawTint(surface Surface, images ImageSource, catalog *cosmetic.Catalog, col avatar.Color) {
	if _, ok := images.Get(catalog.BaseImage()); !ok {
		return
	}
	mask, ok := images.Get(catalog.MaskImage())
	if !ok {
		return
	}

	r, g, b := col.RGB()
	tint := surface.Offscreen()
	tint.FillRect(tint.Bounds(), color.RGBA{R: r, G: g, B: b, A: 0xff}, OpSourceOver)
	tint.DrawImage(mask, OpDestinationIn)

	surface.DrawImage(tint.Image(), OpMultiply)
}

func drawCategory(surface Surface, images ImageSource, catalog *cosmetic.Catalog, c avatar.Character, categoryID string) {
	for _, itemID := range c.EquippedIn(categoryID) {
		item, err := catalog.Item(categoryID, itemID)
		if err != nil {
			continue
		}
		for _, ref := range item.Images(c.ActiveVariation[itemID]) {
			drawRef(surface, images, ref)
		}
	}
}

// nameBaseline places the name a little above the bottom edge, leaving room for descenders
func nameBaseline(b image.Rectangle) int {
	return b.Max.Y - max(b.Dy()/16, 3)
}

// NewSurfaceFor returns a surface sized to the base sprite, or to the catalog
// canvas when the base sprite is not cached
func NewSurfaceFor(catalog *cosmetic.Catalog, images ImageSource) (*ImageSurface, error) {
	size := catalog.Canvas()
	if base, ok := images.Get(catalog.BaseImage()); ok {
		size = base.Bounds().Size()
	}
	if size.X <= 0 || size.Y <= 0 {
		return nil, apperr.New(apperr.CodeInternal, "cannot size render surface").
			WithMeta("base", catalog.BaseImage())
	}
	return NewImageSurface(size.X, size.Y), nil
}

// RenderPNG renders c onto a fresh surface and encodes it as PNG
func RenderPNG(c avatar.Character, catalog *cosmetic.Catalog, images ImageSource) ([]byte, error) {
	surface, err := NewSurfaceFor(catalog, images)
	if err != nil {
		return nil, err
	}

	Render(c, catalog, images, surface)

	var buf bytes.Buffer
	if err := png.Encode(&buf, surface.Image()); err != nil {
		return nil, apperr.Wrap(err, "failed to encode png")
	}
	return buf.Bytes(), nil
}
