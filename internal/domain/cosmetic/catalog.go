package cosmetic

import (
	"errors"
	"image"
	"slices"
	"sort"

	apperr "github.com/KirkDiggler/avatar-forge/internal/errors"
)

// Sentinels for lookups against the catalog. Returned errors wrap them with CodeNotFound.
var (
	ErrUnknownCategory  = errors.New("unknown category")
	ErrUnknownItem      = errors.New("unknown item")
	ErrUnknownVariation = errors.New("unknown variation")
)

// DefaultLayerOrder is the draw order used when a manifest does not declare one.
// Categories missing from the catalog are dropped; base and color always stay.
var DefaultLayerOrder = []string{
	LayerBase,
	LayerColor,
	"shoes",
	"pants",
	"shirts",
	"arms",
	"badges",
	"hats",
}

// CategoryConfig declares a category and its items in display order
type CategoryConfig struct {
	Category Category
	Items    []Item
}

// CatalogConfig is everything needed to build a Catalog
type CatalogConfig struct {
	BaseImage  string
	MaskImage  string
	Canvas     image.Point
	LayerOrder []string // optional
	Categories []CategoryConfig
}

// Catalog is the read-only description of every category, item and variation.
// It is safe for concurrent use since nothing mutates it after NewCatalog.
type Catalog struct {
	baseImage  string
	maskImage  string
	canvas     image.Point
	layerOrder []string
	categories []Category
	itemOrder  map[string][]string
	items      map[string]map[string]Item
}

// NewCatalog validates the config and builds a Catalog
func NewCatalog(cfg *CatalogConfig) (*Catalog, error) {
	if cfg == nil {
		return nil, apperr.InvalidArgument("catalog config is required")
	}

	c := &Catalog{
		baseImage: cfg.BaseImage,
		maskImage: cfg.MaskImage,
		canvas:    cfg.Canvas,
		itemOrder: make(map[string][]string, len(cfg.Categories)),
		items:     make(map[string]map[string]Item, len(cfg.Categories)),
	}

	for _, cc := range cfg.Categories {
		if err := c.addCategory(cc); err != nil {
			return nil, err
		}
	}

	order, err := c.resolveLayerOrder(cfg.LayerOrder)
	if err != nil {
		return nil, err
	}
	c.layerOrder = order

	return c, nil
}

func (c *Catalog) addCategory(cc CategoryConfig) error {
	cat := cc.Category
	if cat.ID == "" {
		return apperr.Validationf("category id is required")
	}
	if cat.ID == LayerBase || cat.ID == LayerColor {
		return apperr.Validationf("category id '%s' is reserved", cat.ID)
	}
	if _, exists := c.items[cat.ID]; exists {
		return apperr.Validationf("duplicate category '%s'", cat.ID)
	}
	if cat.MaxEquipped < 1 {
		return apperr.Validationf("category '%s' max_equipped must be at least 1, got %d", cat.ID, cat.MaxEquipped).
			WithMeta("category_id", cat.ID)
	}

	items := make(map[string]Item, len(cc.Items))
	order := make([]string, 0, len(cc.Items))
	for _, item := range cc.Items {
		if err := validateItem(cat, item); err != nil {
			return err
		}
		if _, exists := items[item.ID]; exists {
			return apperr.Validationf("duplicate item '%s' in category '%s'", item.ID, cat.ID).
				WithMeta("category_id", cat.ID).
				WithMeta("item_id", item.ID)
		}
		if cat.HasVariations {
			if other, _, err := c.FindVariationItem(item.ID); err == nil {
				return apperr.Validationf("item '%s' in category '%s' already has variations in category '%s'", item.ID, cat.ID, other.ID).
					WithMeta("category_id", cat.ID).
					WithMeta("item_id", item.ID)
			}
		}
		items[item.ID] = item
		order = append(order, item.ID)
	}

	c.categories = append(c.categories, cat)
	c.items[cat.ID] = items
	c.itemOrder[cat.ID] = order
	return nil
}

func validateItem(cat Category, item Item) error {
	if item.ID == "" {
		return apperr.Validationf("item in category '%s' is missing an id", cat.ID)
	}
	fail := func(format string, args ...any) error {
		return apperr.Validationf(format, args...).
			WithMeta("category_id", cat.ID).
			WithMeta("item_id", item.ID)
	}
	if item.DisplayName == "" {
		return fail("item '%s' is missing display_name", item.ID)
	}
	if item.PreviewImage == "" {
		return fail("item '%s' is missing preview_image", item.ID)
	}

	switch r := item.Render.(type) {
	case PlainRender:
		if cat.HasVariations {
			return fail("item '%s' in category '%s' must declare variations", item.ID, cat.ID)
		}
	case VariantRender:
		if !cat.HasVariations {
			return fail("item '%s' declares variations but category '%s' has none", item.ID, cat.ID)
		}
		if len(r.Keys) == 0 || len(r.Keys) != len(r.Variations) {
			return fail("item '%s' has an inconsistent variation table", item.ID)
		}
		for _, key := range r.Keys {
			v, ok := r.Variations[key]
			if !ok {
				return fail("item '%s' variation '%s' is not declared", item.ID, key)
			}
			if v.DisplayName == "" {
				return fail("item '%s' variation '%s' is missing display_name", item.ID, key)
			}
			if len(v.RenderImages) == 0 {
				return fail("item '%s' variation '%s' has no render images", item.ID, key)
			}
		}
	default:
		return fail("item '%s' has no render", item.ID)
	}
	return nil
}

func (c *Catalog) resolveLayerOrder(declared []string) ([]string, error) {
	if len(declared) == 0 {
		order := make([]string, 0, len(DefaultLayerOrder)+len(c.categories))
		for _, name := range DefaultLayerOrder {
			if name == LayerBase || name == LayerColor || c.hasCategory(name) {
				order = append(order, name)
			}
		}
		// Categories the default order does not know about paint on top in declaration order
		for _, cat := range c.categories {
			if !slices.Contains(order, cat.ID) {
				order = append(order, cat.ID)
			}
		}
		return order, nil
	}

	seen := make(map[string]bool, len(declared))
	for _, name := range declared {
		if seen[name] {
			return nil, apperr.Validationf("layer '%s' appears twice in layer_order", name)
		}
		seen[name] = true
		if name != LayerBase && name != LayerColor && !c.hasCategory(name) {
			return nil, apperr.Validationf("layer '%s' is not a category", name).WithMeta("layer", name)
		}
	}
	if !seen[LayerBase] || !seen[LayerColor] {
		return nil, apperr.Validationf("layer_order must contain '%s' and '%s'", LayerBase, LayerColor)
	}
	for _, cat := range c.categories {
		if !seen[cat.ID] {
			return nil, apperr.Validationf("category '%s' is missing from layer_order", cat.ID).
				WithMeta("category_id", cat.ID)
		}
	}
	return slices.Clone(declared), nil
}

func (c *Catalog) hasCategory(id string) bool {
	_, ok := c.items[id]
	return ok
}

// BaseImage is the ref of the base sprite
func (c *Catalog) BaseImage() string { return c.baseImage }

// MaskImage is the ref of the tint mask
func (c *Catalog) MaskImage() string { return c.maskImage }

// Canvas is the fallback surface size when the base sprite is unavailable
func (c *Catalog) Canvas() image.Point { return c.canvas }

// Categories returns the categories in declaration order
func (c *Catalog) Categories() []Category {
	return slices.Clone(c.categories)
}

// Category looks up a category by ID
func (c *Catalog) Category(id string) (Category, error) {
	for _, cat := range c.categories {
		if cat.ID == id {
			return cat, nil
		}
	}
	return Category{}, unknownCategory(id)
}

// ItemsOf returns the items of a category keyed by item ID
func (c *Catalog) ItemsOf(categoryID string) (map[string]Item, error) {
	items, ok := c.items[categoryID]
	if !ok {
		return nil, unknownCategory(categoryID)
	}
	out := make(map[string]Item, len(items))
	for id, item := range items {
		out[id] = item
	}
	return out, nil
}

// OrderedItemsOf returns the items of a category in declaration order
func (c *Catalog) OrderedItemsOf(categoryID string) ([]Item, error) {
	items, ok := c.items[categoryID]
	if !ok {
		return nil, unknownCategory(categoryID)
	}
	out := make([]Item, 0, len(items))
	for _, id := range c.itemOrder[categoryID] {
		out = append(out, items[id])
	}
	return out, nil
}

// Item looks up an item in a category
func (c *Catalog) Item(categoryID, itemID string) (Item, error) {
	items, ok := c.items[categoryID]
	if !ok {
		return Item{}, unknownCategory(categoryID)
	}
	item, ok := items[itemID]
	if !ok {
		return Item{}, UnknownItem(categoryID, itemID)
	}
	return item, nil
}

// FindItem locates an item by ID alone, searching categories in declaration order
func (c *Catalog) FindItem(itemID string) (Category, Item, error) {
	for _, cat := range c.categories {
		if item, ok := c.items[cat.ID][itemID]; ok {
			return cat, item, nil
		}
	}
	return Category{}, Item{}, UnknownItem("", itemID)
}

// FindVariationItem locates an item by ID among the categories that carry variations.
// The same ID may still name a plain item in another category.
func (c *Catalog) FindVariationItem(itemID string) (Category, Item, error) {
	for _, cat := range c.categories {
		if !cat.HasVariations {
			continue
		}
		if item, ok := c.items[cat.ID][itemID]; ok {
			return cat, item, nil
		}
	}
	return Category{}, Item{}, UnknownItem("", itemID)
}

// LayerOrder returns the fixed draw order, base first
func (c *Catalog) LayerOrder() []string {
	return slices.Clone(c.layerOrder)
}

// ResourceRefs returns every image the catalog references, sorted and de-duplicated
func (c *Catalog) ResourceRefs() []string {
	set := make(map[string]struct{})
	add := func(refs ...string) {
		for _, ref := range refs {
			if ref != "" {
				set[ref] = struct{}{}
			}
		}
	}
	add(c.baseImage, c.maskImage)
	for _, items := range c.items {
		for _, item := range items {
			add(item.refs()...)
		}
	}

	refs := make([]string, 0, len(set))
	for ref := range set {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}

func unknownCategory(id string) error {
	return apperr.WrapWithCode(ErrUnknownCategory, apperr.CodeNotFound, "category '"+id+"'").
		WithMeta("category_id", id)
}

// UnknownItem builds the not found error for an item. categoryID may be empty.
func UnknownItem(categoryID, itemID string) error {
	msg := "item '" + itemID + "'"
	if categoryID != "" {
		msg += " in category '" + categoryID + "'"
	}
	return apperr.WrapWithCode(ErrUnknownItem, apperr.CodeNotFound, msg).
		WithMeta("category_id", categoryID).
		WithMeta("item_id", itemID)
}

// UnknownVariation builds the not found error for a variation key
func UnknownVariation(itemID, key string) error {
	return apperr.WrapWithCode(ErrUnknownVariation, apperr.CodeNotFound, "variation '"+key+"' of item '"+itemID+"'").
		WithMeta("item_id", itemID).
		WithMeta("variation", key)
}
