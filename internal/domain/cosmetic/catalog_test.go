package cosmetic_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/avatar-forge/internal/domain/cosmetic"
	apperr "github.com/KirkDiggler/avatar-forge/internal/errors"
)

func loadTestManifest(t *testing.T) *cosmetic.Catalog {
	t.Helper()
	catalog, err := cosmetic.LoadManifestFile("testdata/manifest.yaml")
	require.NoError(t, err)
	return catalog
}

func TestLoadManifest_Categories(t *testing.T) {
	catalog := loadTestManifest(t)

	categories := catalog.Categories()
	require.Len(t, categories, 4)
	assert.Equal(t, "hats", categories[0].ID)
	assert.Equal(t, 1, categories[0].MaxEquipped)
	assert.Equal(t, "badges", categories[2].ID)
	assert.Equal(t, 2, categories[2].MaxEquipped)
	assert.True(t, categories[3].HasVariations)

	assert.Equal(t, "base.png", catalog.BaseImage())
	assert.Equal(t, "mask.png", catalog.MaskImage())
	assert.Equal(t, 64, catalog.Canvas().X)
}

func TestLoadManifest_RenderVariants(t *testing.T) {
	catalog := loadTestManifest(t)

	t.Run("single render image becomes a one element plain render", func(t *testing.T) {
		item, err := catalog.Item("hats", "hat1")
		require.NoError(t, err)
		assert.Equal(t, cosmetic.PlainRender{Images: []string{"hats/hat1.png"}}, item.Render)
		assert.False(t, item.HasVariations())
	})

	t.Run("render image list keeps order", func(t *testing.T) {
		item, err := catalog.Item("shirts", "striped")
		require.NoError(t, err)
		assert.Equal(t, []string{"shirts/striped_back.png", "shirts/striped_front.png"}, item.Images(""))
	})

	t.Run("absent render image draws nothing", func(t *testing.T) {
		item, err := catalog.Item("badges", "b3")
		require.NoError(t, err)
		assert.Empty(t, item.Images(""))
	})

	t.Run("variations keep declaration order", func(t *testing.T) {
		item, err := catalog.Item("arms", "arm1")
		require.NoError(t, err)
		vr, ok := item.Render.(cosmetic.VariantRender)
		require.True(t, ok)
		assert.Equal(t, []string{"left", "right", "both"}, vr.Keys)

		both, ok := item.Variation("both")
		require.True(t, ok)
		assert.Equal(t, "Both", both.DisplayName)
		assert.Equal(t, []string{"arms/arm1_left.png", "arms/arm1_right.png"}, item.Images("both"))
		assert.Empty(t, item.Images(""))
		assert.Empty(t, item.Images("sideways"))
	})
}

func TestCatalog_LayerOrder(t *testing.T) {
	catalog := loadTestManifest(t)
	assert.Equal(t, []string{"base", "color", "shirts", "arms", "badges", "hats"}, catalog.LayerOrder())

	// Callers cannot mutate the catalog through the returned slice
	order := catalog.LayerOrder()
	order[0] = "hats"
	assert.Equal(t, "base", catalog.LayerOrder()[0])
}

func TestCatalog_DefaultLayerOrder(t *testing.T) {
	catalog, err := cosmetic.NewCatalog(&cosmetic.CatalogConfig{
		BaseImage: "base.png",
		MaskImage: "mask.png",
		Categories: []cosmetic.CategoryConfig{
			{Category: cosmetic.Category{ID: "hats", MaxEquipped: 1}},
			{Category: cosmetic.Category{ID: "capes", MaxEquipped: 1}},
			{Category: cosmetic.Category{ID: "shirts", MaxEquipped: 1}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"base", "color", "shirts", "hats", "capes"}, catalog.LayerOrder())
}

func TestCatalog_Lookups(t *testing.T) {
	catalog := loadTestManifest(t)

	t.Run("unknown category", func(t *testing.T) {
		_, err := catalog.ItemsOf("wings")
		require.Error(t, err)
		assert.True(t, errors.Is(err, cosmetic.ErrUnknownCategory))
		assert.True(t, apperr.IsNotFound(err))

		_, err = catalog.Category("wings")
		assert.True(t, errors.Is(err, cosmetic.ErrUnknownCategory))
	})

	t.Run("unknown item", func(t *testing.T) {
		_, err := catalog.Item("hats", "crown")
		require.Error(t, err)
		assert.True(t, errors.Is(err, cosmetic.ErrUnknownItem))
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("items of returns a copy", func(t *testing.T) {
		items, err := catalog.ItemsOf("badges")
		require.NoError(t, err)
		assert.Len(t, items, 3)
		delete(items, "b1")

		again, err := catalog.ItemsOf("badges")
		require.NoError(t, err)
		assert.Contains(t, again, "b1")
	})

	t.Run("ordered items follow the manifest", func(t *testing.T) {
		items, err := catalog.OrderedItemsOf("badges")
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, "b1", items[0].ID)
		assert.Equal(t, "b3", items[2].ID)
	})

	t.Run("find item searches every category", func(t *testing.T) {
		cat, item, err := catalog.FindItem("arm1")
		require.NoError(t, err)
		assert.Equal(t, "arms", cat.ID)
		assert.Equal(t, "Robot Arm", item.DisplayName)

		_, _, err = catalog.FindItem("nope")
		assert.True(t, errors.Is(err, cosmetic.ErrUnknownItem))
	})

	t.Run("find variation item skips plain categories", func(t *testing.T) {
		cat, _, err := catalog.FindVariationItem("arm1")
		require.NoError(t, err)
		assert.Equal(t, "arms", cat.ID)

		_, _, err = catalog.FindVariationItem("hat1")
		assert.True(t, errors.Is(err, cosmetic.ErrUnknownItem))
	})
}

func TestLoadManifest_SharedItemID(t *testing.T) {
	doc := `base: b.png
mask: m.png
categories:
  - id: shirts
    max_equipped: 1
    items: [{id: robo, display_name: Robo Tee, preview_image: p.png, render_image: s.png}]
  - id: arms
    max_equipped: 1
    has_variations: true
    items:
      - id: robo
        display_name: Robo Arm
        preview_image: p.png
        variations: {left: {display_name: Left, render_images: [l.png]}}`

	catalog, err := cosmetic.LoadManifest(strings.NewReader(doc))
	require.NoError(t, err)

	cat, item, err := catalog.FindVariationItem("robo")
	require.NoError(t, err)
	assert.Equal(t, "arms", cat.ID)
	assert.Equal(t, "Robo Arm", item.DisplayName)

	cat, _, err = catalog.FindItem("robo")
	require.NoError(t, err)
	assert.Equal(t, "shirts", cat.ID)
}

func TestCatalog_ResourceRefs(t *testing.T) {
	catalog := loadTestManifest(t)

	refs := catalog.ResourceRefs()
	assert.Contains(t, refs, "base.png")
	assert.Contains(t, refs, "mask.png")
	assert.Contains(t, refs, "previews/b3.png")
	assert.Contains(t, refs, "arms/arm1_right.png")
	assert.IsIncreasing(t, refs)

	// arm1_left.png is used by two variations but listed once
	count := 0
	for _, ref := range refs {
		if ref == "arms/arm1_left.png" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestLoadManifest_FailsFast(t *testing.T) {
	testCases := []struct {
		name     string
		manifest string
		contains string
	}{
		{
			name:     "missing base",
			manifest: "mask: m.png\ncategories: [{id: hats, max_equipped: 1}]",
			contains: "missing base",
		},
		{
			name:     "missing mask",
			manifest: "base: b.png\ncategories: [{id: hats, max_equipped: 1}]",
			contains: "missing mask",
		},
		{
			name:     "zero capacity",
			manifest: "base: b.png\nmask: m.png\ncategories: [{id: hats}]",
			contains: "max_equipped",
		},
		{
			name: "missing display name",
			manifest: `base: b.png
mask: m.png
categories:
  - id: hats
    max_equipped: 1
    items: [{id: hat1, preview_image: p.png}]`,
			contains: "missing display_name",
		},
		{
			name: "missing preview image",
			manifest: `base: b.png
mask: m.png
categories:
  - id: hats
    max_equipped: 1
    items: [{id: hat1, display_name: Hat}]`,
			contains: "missing preview_image",
		},
		{
			name: "duplicate item",
			manifest: `base: b.png
mask: m.png
categories:
  - id: hats
    max_equipped: 1
    items:
      - {id: hat1, display_name: Hat, preview_image: p.png}
      - {id: hat1, display_name: Hat, preview_image: p.png}`,
			contains: "duplicate item",
		},
		{
			name: "variations on plain category",
			manifest: `base: b.png
mask: m.png
categories:
  - id: hats
    max_equipped: 1
    items:
      - id: hat1
        display_name: Hat
        preview_image: p.png
        variations: {tall: {display_name: Tall, render_images: [t.png]}}`,
			contains: "has none",
		},
		{
			name: "variation category item without variations",
			manifest: `base: b.png
mask: m.png
categories:
  - id: arms
    max_equipped: 1
    has_variations: true
    items: [{id: arm1, display_name: Arm, preview_image: p.png, render_image: a.png}]`,
			contains: "must declare variations",
		},
		{
			name: "empty variation",
			manifest: `base: b.png
mask: m.png
categories:
  - id: arms
    max_equipped: 1
    has_variations: true
    items:
      - id: arm1
        display_name: Arm
        preview_image: p.png
        variations: {left: {display_name: Left}}`,
			contains: "no render images",
		},
		{
			name: "variation missing display name",
			manifest: `base: b.png
mask: m.png
categories:
  - id: arms
    max_equipped: 1
    has_variations: true
    items:
      - id: arm1
        display_name: Arm
        preview_image: p.png
        variations: {left: {render_images: [l.png]}}`,
			contains: "variation 'left' is missing display_name",
		},
		{
			name: "unknown variation field",
			manifest: `base: b.png
mask: m.png
categories:
  - id: arms
    max_equipped: 1
    has_variations: true
    items:
      - id: arm1
        display_name: Arm
        preview_image: p.png
        variations: {left: {display_nam: Left, render_images: [l.png]}}`,
			contains: "display_nam not found",
		},
		{
			name: "item id in two variation categories",
			manifest: `base: b.png
mask: m.png
categories:
  - id: arms
    max_equipped: 1
    has_variations: true
    items:
      - {id: robo, display_name: Arm, preview_image: p.png, variations: {left: {display_name: Left, render_images: [l.png]}}}
  - id: legs
    max_equipped: 1
    has_variations: true
    items:
      - {id: robo, display_name: Leg, preview_image: p.png, variations: {left: {display_name: Left, render_images: [l.png]}}}`,
			contains: "already has variations in category 'arms'",
		},
		{
			name:     "layer order missing category",
			manifest: "base: b.png\nmask: m.png\nlayer_order: [base, color]\ncategories: [{id: hats, max_equipped: 1}]",
			contains: "missing from layer_order",
		},
		{
			name:     "layer order missing color",
			manifest: "base: b.png\nmask: m.png\nlayer_order: [base, hats]\ncategories: [{id: hats, max_equipped: 1}]",
			contains: "must contain",
		},
		{
			name:     "reserved category id",
			manifest: "base: b.png\nmask: m.png\ncategories: [{id: color, max_equipped: 1}]",
			contains: "reserved",
		},
		{
			name:     "unknown field",
			manifest: "base: b.png\nmask: m.png\nbackground: x.png\ncategories: [{id: hats, max_equipped: 1}]",
			contains: "failed to decode manifest",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := cosmetic.LoadManifest(strings.NewReader(tc.manifest))
			require.Error(t, err)
			assert.True(t, apperr.IsValidation(err), "expected validation error, got %v", err)
			assert.Contains(t, err.Error(), tc.contains)
		})
	}
}

func TestLoadManifest_AcceptsJSON(t *testing.T) {
	doc := `{"base": "b.png", "mask": "m.png",
		"categories": [{"id": "hats", "max_equipped": 1,
			"items": [{"id": "hat1", "display_name": "Hat", "preview_image": "p.png", "render_image": "h.png"}]}]}`

	catalog, err := cosmetic.LoadManifest(strings.NewReader(doc))
	require.NoError(t, err)

	item, err := catalog.Item("hats", "hat1")
	require.NoError(t, err)
	assert.Equal(t, []string{"h.png"}, item.Images(""))
}
