package discord

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	apperr "github.com/KirkDiggler/avatar-forge/internal/errors"
)

// selectPrefix marks custom IDs of the avatar item pickers
const selectPrefix = "avatar:select:"

// Picker actions
const (
	ActionToggle    = "toggle"
	ActionVariation = "variation"
)

// SelectState rides along in a picker's custom ID so the component handler knows
// what a chosen value means
type SelectState struct {
	Action   string `json:"a"`
	Category string `json:"c"`
}

// Encode encodes the state to a base64 string
func (s *SelectState) Encode() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", apperr.Wrap(err, "failed to marshal select state")
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// CustomID returns the full component custom ID for the state
func (s *SelectState) CustomID() (string, error) {
	encoded, err := s.Encode()
	if err != nil {
		return "", err
	}
	return selectPrefix + encoded, nil
}

// DecodeSelectState decodes a base64 string to state
func DecodeSelectState(encoded string) (*SelectState, error) {
	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, apperr.WrapWithCode(err, apperr.CodeInvalidArgument, "failed to decode select state")
	}

	var state SelectState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, apperr.WrapWithCode(err, apperr.CodeInvalidArgument, "failed to unmarshal select state")
	}

	switch state.Action {
	case ActionToggle, ActionVariation:
	default:
		return nil, apperr.InvalidArgumentf("unknown picker action '%s'", state.Action)
	}
	if state.Category == "" {
		return nil, apperr.InvalidArgument("picker category is required")
	}

	return &state, nil
}

// ParseSelectCustomID extracts the state from an avatar picker custom ID.
// ok is false for custom IDs that belong to something else.
func ParseSelectCustomID(customID string) (state *SelectState, ok bool, err error) {
	encoded, found := strings.CutPrefix(customID, selectPrefix)
	if !found {
		return nil, false, nil
	}
	state, err = DecodeSelectState(encoded)
	return state, true, err
}
