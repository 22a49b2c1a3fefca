package compositor

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Op selects how a source is combined with what is already on a surface.
// An op applies only to the call it is passed to.
type Op int

const (
	// OpSourceOver paints the source on top of the destination
	OpSourceOver Op = iota
	// OpDestinationIn keeps the destination only where the source is opaque
	OpDestinationIn
	// OpMultiply multiplies source and destination colors
	OpMultiply
)

func (o Op) String() string {
	switch o {
	case OpSourceOver:
		return "source-over"
	case OpDestinationIn:
		return "destination-in"
	case OpMultiply:
		return "multiply"
	default:
		return "unknown"
	}
}

// Surface is a 2D RGBA render target
type Surface interface {
	Bounds() image.Rectangle
	Clear()
	// DrawImage composites img with its top-left corner at the surface origin
	DrawImage(img image.Image, op Op)
	FillRect(r image.Rectangle, c color.Color, op Op)
	// DrawCenteredText draws text horizontally centered with its baseline at y
	DrawCenteredText(text string, baselineY int, c color.Color)
	// Offscreen returns a new transparent surface with the same bounds
	Offscreen() Surface
	Image() image.Image
}

// ImageSurface is a Surface backed by an in-memory RGBA image
type ImageSurface struct {
	img  *image.RGBA
	face font.Face
}

// NewImageSurface creates a transparent surface of the given size
func NewImageSurface(width, height int) *ImageSurface {
	return &ImageSurface{
		img:  image.NewRGBA(image.Rect(0, 0, width, height)),
		face: basicfont.Face7x13,
	}
}

// Bounds implements Surface
func (s *ImageSurface) Bounds() image.Rectangle {
	return s.img.Bounds()
}

// Clear resets every pixel to transparent
func (s *ImageSurface) Clear() {
	draw.Draw(s.img, s.img.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

// DrawImage implements Surface
func (s *ImageSurface) DrawImage(img image.Image, op Op) {
	if img == nil {
		return
	}
	src := img.Bounds()
	dst := image.Rectangle{Max: src.Size()}.Add(s.img.Bounds().Min)
	s.composite(dst, img, src.Min, op)
}

// FillRect implements Surface
func (s *ImageSurface) FillRect(r image.Rectangle, c color.Color, op Op) {
	s.composite(r, image.NewUniform(c), image.Point{}, op)
}

// DrawCenteredText implements Surface
func (s *ImageSurface) DrawCenteredText(text string, baselineY int, c color.Color) {
	if text == "" {
		return
	}

	d := &font.Drawer{
		Dst:  s.img,
		Src:  image.NewUniform(c),
		Face: s.face,
	}
	b := s.img.Bounds()
	width := d.MeasureString(text)
	d.Dot = fixed.Point26_6{
		X: fixed.I(b.Min.X) + (fixed.I(b.Dx())-width)/2,
		Y: fixed.I(baselineY),
	}
	d.DrawString(text)
}

// Offscreen implements Surface
func (s *ImageSurface) Offscreen() Surface {
	b := s.img.Bounds()
	return &ImageSurface{
		img:  image.NewRGBA(b),
		face: s.face,
	}
}

// Image returns the backing image. It is not copied.
func (s *ImageSurface) Image() image.Image {
	return s.img
}

// composite combines src into the dst rectangle of the surface. sp is the source point aligned with dst.Min.
func (s *ImageSurface) composite(dst image.Rectangle, src image.Image, sp image.Point, op Op) {
	switch op {
	case OpSourceOver:
		draw.Draw(s.img, dst, src, sp, draw.Over)
	case OpDestinationIn:
		s.destinationIn(dst, src, sp)
	case OpMultiply:
		s.multiply(dst, src, sp)
	}
}

// destinationIn scales every destination pixel by the source alpha. Pixels the source
// does not cover are cleared, so the whole surface is visited.
func (s *ImageSurface) destinationIn(dst image.Rectangle, src image.Image, sp image.Point) {
	b := s.img.Bounds()
	clip := dst.Intersect(b)
	srcBounds := src.Bounds()

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			var sa uint32
			p := image.Pt(x, y)
			if p.In(clip) {
				q := p.Sub(dst.Min).Add(sp)
				if q.In(srcBounds) {
					_, _, _, a := src.At(q.X, q.Y).RGBA()
					sa = a >> 8
				}
			}

			i := s.img.PixOffset(x, y)
			px := s.img.Pix[i : i+4 : i+4]
			for k := range px {
				px[k] = uint8((uint32(px[k])*sa + 127) / 255)
			}
		}
	}
}

// multiply applies the separable multiply blend with source-over compositing, in premultiplied form:
//
//	co = cs*(1-ab) + cb*(1-as) + cs*cb
//	ao = as + ab - as*ab
func (s *ImageSurface) multiply(dst image.Rectangle, src image.Image, sp image.Point) {
	clip := dst.Intersect(s.img.Bounds())
	srcBounds := src.Bounds()

	for y := clip.Min.Y; y < clip.Max.Y; y++ {
		for x := clip.Min.X; x < clip.Max.X; x++ {
			q := image.Pt(x, y).Sub(dst.Min).Add(sp)
			if !q.In(srcBounds) {
				continue
			}
			r, g, b, a := src.At(q.X, q.Y).RGBA()
			sc := [4]uint32{r >> 8, g >> 8, b >> 8, a >> 8}
			if sc[3] == 0 {
				continue
			}

			i := s.img.PixOffset(x, y)
			px := s.img.Pix[i : i+4 : i+4]
			sa, da := sc[3], uint32(px[3])
			for k := 0; k < 3; k++ {
				dc := uint32(px[k])
				px[k] = uint8((sc[k]*(255-da) + dc*(255-sa) + sc[k]*dc + 127) / 255)
			}
			px[3] = uint8(sa + da - (sa*da+127)/255)
		}
	}
}
