package cosmetic

// Layer names that are not categories
const (
	LayerBase  = "base"
	LayerColor = "color"
)

// Category is a slot that items are equipped into. Its ID doubles as the layer name.
type Category struct {
	ID            string `json:"id"`
	MaxEquipped   int    `json:"max_equipped"`
	HasVariations bool   `json:"has_variations"`
}

// Item is a single cosmetic within a category
type Item struct {
	ID           string
	DisplayName  string
	PreviewImage string
	Render       Render
}

// Render describes what an item paints. It is either a PlainRender or a VariantRender.
type Render interface {
	isRender()
}

// PlainRender paints a fixed list of images. An empty list paints nothing.
type PlainRender struct {
	Images []string
}

func (PlainRender) isRender() {}

// VariantRender paints whichever variation is active. With none active it paints
// Fallback, which is usually empty.
type VariantRender struct {
	Keys       []string // declaration order
	Variations map[string]Variation
	Fallback   []string
}

func (VariantRender) isRender() {}

// Variation is an alternate render of an item, e.g. left, right or both arms
type Variation struct {
	DisplayName  string
	RenderImages []string
}

// Variation returns the variation for key if the item has one
func (i Item) Variation(key string) (Variation, bool) {
	vr, ok := i.Render.(VariantRender)
	if !ok {
		return Variation{}, false
	}
	v, ok := vr.Variations[key]
	return v, ok
}

// HasVariations reports whether the item renders through variations
func (i Item) HasVariations() bool {
	_, ok := i.Render.(VariantRender)
	return ok
}

// Images resolves the images to paint for the item given an optional active variation key.
// The result is in paint order.
func (i Item) Images(activeVariation string) []string {
	switch r := i.Render.(type) {
	case VariantRender:
		if v, ok := r.Variations[activeVariation]; ok {
			return v.RenderImages
		}
		return r.Fallback
	case PlainRender:
		return r.Images
	default:
		return nil
	}
}

// refs lists every image the item references
func (i Item) refs() []string {
	var out []string
	if i.PreviewImage != "" {
		out = append(out, i.PreviewImage)
	}
	switch r := i.Render.(type) {
	case PlainRender:
		out = append(out, r.Images...)
	case VariantRender:
		out = append(out, r.Fallback...)
		for _, key := range r.Keys {
			out = append(out, r.Variations[key].RenderImages...)
		}
	}
	return out
}
