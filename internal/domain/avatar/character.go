package avatar

import (
	"maps"
	"slices"
)

// Color channels are a low resolution tint selector, not raw RGB
const (
	ColorMin     = 0
	ColorMax     = 9
	ColorDefault = 5
)

// Channel names a color component
type Channel string

const (
	ChannelRed   Channel = "r"
	ChannelGreen Channel = "g"
	ChannelBlue  Channel = "b"
)

// Color is the tint selector, each channel in [ColorMin, ColorMax]
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// RGB converts the selector to 8-bit channels with round(255/9 * c)
func (c Color) RGB() (r, g, b uint8) {
	return scale(c.R), scale(c.G), scale(c.B)
}

func scale(v int) uint8 {
	v = clamp(v)
	// round(255*v/9) without floats
	return uint8((255*v + ColorMax/2) / ColorMax)
}

func clamp(v int) int {
	return min(max(v, ColorMin), ColorMax)
}

// Character is an immutable snapshot of the selection: what gets rendered and persisted
type Character struct {
	Name            string              `json:"name"`
	Color           Color               `json:"color"`
	Equipped        map[string][]string `json:"equipped"`
	ActiveVariation map[string]string   `json:"active_variation"`
}

// NewCharacter returns the state every editing session starts from
func NewCharacter() Character {
	return Character{
		Color:           Color{R: ColorDefault, G: ColorDefault, B: ColorDefault},
		Equipped:        make(map[string][]string),
		ActiveVariation: make(map[string]string),
	}
}

// Clone deep copies the character. Nil maps come back empty.
func (c Character) Clone() Character {
	out := Character{
		Name:            c.Name,
		Color:           c.Color,
		Equipped:        make(map[string][]string, len(c.Equipped)),
		ActiveVariation: make(map[string]string, len(c.ActiveVariation)),
	}
	for cat, items := range c.Equipped {
		if len(items) == 0 {
			continue
		}
		out.Equipped[cat] = slices.Clone(items)
	}
	maps.Copy(out.ActiveVariation, c.ActiveVariation)
	return out
}

// EquippedIn returns the items equipped in a category in equip order
func (c Character) EquippedIn(categoryID string) []string {
	return slices.Clone(c.Equipped[categoryID])
}

// IsEquipped reports whether itemID is equipped in categoryID
func (c Character) IsEquipped(categoryID, itemID string) bool {
	return slices.Contains(c.Equipped[categoryID], itemID)
}
