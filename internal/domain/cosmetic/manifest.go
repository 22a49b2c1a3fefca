package cosmetic

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	apperr "github.com/KirkDiggler/avatar-forge/internal/errors"
)

// Manifest is the on-disk asset table. JSON documents parse too since the decoder is YAML.
type Manifest struct {
	Base       string             `yaml:"base"`
	Mask       string             `yaml:"mask"`
	Canvas     ManifestCanvas     `yaml:"canvas"`
	LayerOrder []string           `yaml:"layer_order"`
	Categories []ManifestCategory `yaml:"categories"`
}

// ManifestCanvas is the fallback surface size
type ManifestCanvas struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// ManifestCategory is one category entry
type ManifestCategory struct {
	ID            string         `yaml:"id"`
	MaxEquipped   int            `yaml:"max_equipped"`
	HasVariations bool           `yaml:"has_variations"`
	Items         []ManifestItem `yaml:"items"`
}

// ManifestItem is one item entry
type ManifestItem struct {
	ID           string             `yaml:"id"`
	DisplayName  string             `yaml:"display_name"`
	PreviewImage string             `yaml:"preview_image"`
	RenderImage  RefList            `yaml:"render_image"`
	Variations   ManifestVariations `yaml:"variations"`
}

// ManifestVariation is one entry of an item's variations map
type ManifestVariation struct {
	Key          string  `yaml:"-"`
	DisplayName  string  `yaml:"display_name"`
	RenderImages RefList `yaml:"render_images"`
}

// RefList accepts either a single ref or a list of refs
type RefList []string

// UnmarshalYAML implements yaml.Unmarshaler
func (r *RefList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var ref string
		if err := node.Decode(&ref); err != nil {
			return err
		}
		if ref != "" {
			*r = RefList{ref}
		}
		return nil
	case yaml.SequenceNode:
		var refs []string
		if err := node.Decode(&refs); err != nil {
			return err
		}
		*r = refs
		return nil
	default:
		return fmt.Errorf("line %d: expected an image ref or a list of refs", node.Line)
	}
}

// ManifestVariations keeps the declaration order of a variations mapping
type ManifestVariations []ManifestVariation

// UnmarshalYAML implements yaml.Unmarshaler
func (v *ManifestVariations) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: variations must be a mapping", node.Line)
	}
	out := make(ManifestVariations, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		if err := checkVariationFields(node.Content[i+1]); err != nil {
			return err
		}
		var entry ManifestVariation
		if err := node.Content[i+1].Decode(&entry); err != nil {
			return err
		}
		entry.Key = node.Content[i].Value
		out = append(out, entry)
	}
	*v = out
	return nil
}

// node.Decode does not inherit KnownFields, so variation entries are checked here
func checkVariationFields(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: a variation must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		switch key := node.Content[i]; key.Value {
		case "display_name", "render_images":
		default:
			return fmt.Errorf("line %d: field %s not found in variation", key.Line, key.Value)
		}
	}
	return nil
}

// LoadManifestFile reads and validates a manifest from disk
func LoadManifestFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Wrapf(err, "failed to read manifest '%s'", path)
	}
	return LoadManifest(bytes.NewReader(data))
}

// LoadManifest decodes a manifest and builds the catalog. Missing required fields fail here,
// never at render time.
func LoadManifest(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, apperr.WrapWithCode(err, apperr.CodeValidation, "failed to decode manifest")
	}

	cfg, err := m.catalogConfig()
	if err != nil {
		return nil, err
	}
	return NewCatalog(cfg)
}

func (m *Manifest) catalogConfig() (*CatalogConfig, error) {
	if m.Base == "" {
		return nil, apperr.Validationf("manifest is missing base")
	}
	if m.Mask == "" {
		return nil, apperr.Validationf("manifest is missing mask")
	}
	if len(m.Categories) == 0 {
		return nil, apperr.Validationf("manifest declares no categories")
	}

	cfg := &CatalogConfig{
		BaseImage:  m.Base,
		MaskImage:  m.Mask,
		Canvas:     image.Pt(m.Canvas.Width, m.Canvas.Height),
		LayerOrder: m.LayerOrder,
		Categories: make([]CategoryConfig, 0, len(m.Categories)),
	}

	for _, mc := range m.Categories {
		cc := CategoryConfig{
			Category: Category{
				ID:            mc.ID,
				MaxEquipped:   mc.MaxEquipped,
				HasVariations: mc.HasVariations,
			},
			Items: make([]Item, 0, len(mc.Items)),
		}
		for _, mi := range mc.Items {
			cc.Items = append(cc.Items, mi.item())
		}
		cfg.Categories = append(cfg.Categories, cc)
	}
	return cfg, nil
}

func (mi ManifestItem) item() Item {
	item := Item{
		ID:           mi.ID,
		DisplayName:  mi.DisplayName,
		PreviewImage: mi.PreviewImage,
	}
	if len(mi.Variations) == 0 {
		item.Render = PlainRender{Images: []string(mi.RenderImage)}
		return item
	}

	vr := VariantRender{
		Keys:       make([]string, 0, len(mi.Variations)),
		Variations: make(map[string]Variation, len(mi.Variations)),
		Fallback:   []string(mi.RenderImage),
	}
	for _, mv := range mi.Variations {
		vr.Keys = append(vr.Keys, mv.Key)
		vr.Variations[mv.Key] = Variation{
			DisplayName:  mv.DisplayName,
			RenderImages: []string(mv.RenderImages),
		}
	}
	item.Render = vr
	return item
}
