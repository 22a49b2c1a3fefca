package avatar

import (
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/KirkDiggler/avatar-forge/internal/domain/cosmetic"
	apperr "github.com/KirkDiggler/avatar-forge/internal/errors"
)

// ChangeListener is told about every successful mutation with the resulting snapshot
type ChangeListener func(Character)

// State is the mutable selection model for one editing session.
// It is not safe for concurrent use; hosts serialize access per session.
type State struct {
	catalog  *cosmetic.Catalog
	char     Character
	onChange ChangeListener
}

// StateConfig holds the collaborators of a State
type StateConfig struct {
	Catalog  *cosmetic.Catalog // Required
	OnChange ChangeListener    // Optional
}

// NewState creates a selection with the default character
func NewState(cfg *StateConfig) *State {
	if cfg == nil || cfg.Catalog == nil {
		panic("catalog is required")
	}

	return &State{
		catalog:  cfg.Catalog,
		char:     NewCharacter(),
		onChange: cfg.OnChange,
	}
}

// OnChange replaces the change listener
func (s *State) OnChange(listener ChangeListener) {
	s.onChange = listener
}

// SetName stores the name verbatim
func (s *State) SetName(name string) {
	s.char.Name = name
	s.notify()
}

// SetColorComponent parses value for one channel. Input that is not an integer stores 0;
// any integer, including one too large for int, is clamped into range. Only an unknown
// channel is an error.
func (s *State) SetColorComponent(channel Channel, value string) error {
	// Atoi saturates on ErrRange, which clamp then pulls into range
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		v = 0
	}
	v = clamp(v)

	switch channel {
	case ChannelRed:
		s.char.Color.R = v
	case ChannelGreen:
		s.char.Color.G = v
	case ChannelBlue:
		s.char.Color.B = v
	default:
		return apperr.InvalidArgumentf("unknown color channel '%s'", channel).
			WithMeta("channel", string(channel))
	}

	s.notify()
	return nil
}

// Toggle equips an unequipped item or unequips an equipped one. Equipping into a full
// category evicts the item that has been equipped longest.
func (s *State) Toggle(categoryID, itemID string) error {
	cat, err := s.catalog.Category(categoryID)
	if err != nil {
		return err
	}
	if _, err := s.catalog.Item(categoryID, itemID); err != nil {
		return err
	}

	if s.char.IsEquipped(categoryID, itemID) {
		s.unequip(cat, itemID)
	} else {
		s.equip(cat, itemID)
	}

	s.notify()
	return nil
}

// ChooseVariation sets the active variation of an item, equipping it first when needed
func (s *State) ChooseVariation(itemID, key string) error {
	cat, item, err := s.catalog.FindVariationItem(itemID)
	if err != nil {
		return err
	}
	if !item.HasVariations() {
		return cosmetic.UnknownItem(cat.ID, itemID)
	}
	if _, ok := item.Variation(key); !ok {
		return cosmetic.UnknownVariation(itemID, key)
	}

	if !s.char.IsEquipped(cat.ID, itemID) {
		s.equip(cat, itemID)
	}
	s.char.ActiveVariation[itemID] = key

	s.notify()
	return nil
}

// Snapshot returns a copy of the current character
func (s *State) Snapshot() Character {
	return s.char.Clone()
}

// Restore replaces the current character with a previously saved one after checking it
// against the catalog
func (s *State) Restore(c Character) error {
	if err := Validate(s.catalog, c); err != nil {
		return err
	}
	s.char = c.Clone()
	s.notify()
	return nil
}

func (s *State) equip(cat cosmetic.Category, itemID string) {
	equipped := s.char.Equipped[cat.ID]
	if len(equipped) >= cat.MaxEquipped {
		evicted := equipped[0]
		equipped = slices.Delete(equipped, 0, 1)
		if cat.HasVariations {
			delete(s.char.ActiveVariation, evicted)
		}
	}
	s.char.Equipped[cat.ID] = append(equipped, itemID)
}

// Variations are keyed by item ID, so only a variation category may clear one
func (s *State) unequip(cat cosmetic.Category, itemID string) {
	equipped := slices.DeleteFunc(s.char.Equipped[cat.ID], func(id string) bool {
		return id == itemID
	})
	if len(equipped) == 0 {
		delete(s.char.Equipped, cat.ID)
	} else {
		s.char.Equipped[cat.ID] = equipped
	}
	if cat.HasVariations {
		delete(s.char.ActiveVariation, itemID)
	}
}

func (s *State) notify() {
	if s.onChange != nil {
		s.onChange(s.char.Clone())
	}
}

// Validate checks a character against the catalog and the selection invariants
func Validate(catalog *cosmetic.Catalog, c Character) error {
	if c.Color.R != clamp(c.Color.R) || c.Color.G != clamp(c.Color.G) || c.Color.B != clamp(c.Color.B) {
		return apperr.Validationf("color %d,%d,%d is out of range", c.Color.R, c.Color.G, c.Color.B)
	}

	varied := make(map[string]string)
	for categoryID, items := range c.Equipped {
		cat, err := catalog.Category(categoryID)
		if err != nil {
			return err
		}
		if len(items) > cat.MaxEquipped {
			return apperr.Validationf("category '%s' has %d items equipped, max is %d", categoryID, len(items), cat.MaxEquipped).
				WithMeta("category_id", categoryID)
		}
		for i, itemID := range items {
			if _, err := catalog.Item(categoryID, itemID); err != nil {
				return err
			}
			if slices.Index(items, itemID) != i {
				return apperr.Validationf("item '%s' is equipped twice", itemID).WithMeta("item_id", itemID)
			}
			if cat.HasVariations {
				varied[itemID] = categoryID
			}
		}
	}

	for itemID, key := range c.ActiveVariation {
		categoryID, ok := varied[itemID]
		if !ok {
			return apperr.Validationf("item '%s' has a variation but is not equipped in a variation category", itemID).
				WithMeta("item_id", itemID)
		}
		item, err := catalog.Item(categoryID, itemID)
		if err != nil {
			return err
		}
		if _, ok := item.Variation(key); !ok {
			return cosmetic.UnknownVariation(itemID, key)
		}
	}
	return nil
}
