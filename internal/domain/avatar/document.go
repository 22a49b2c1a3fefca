package avatar

import (
	"encoding/json"

	apperr "github.com/KirkDiggler/avatar-forge/internal/errors"
)

// MarshalDocument serializes a character into its flat snapshot document.
// Maps are always written (never null) and map keys are sorted, so the output for
// equivalent characters is byte identical.
func MarshalDocument(c Character) ([]byte, error) {
	data, err := json.Marshal(c.Clone())
	if err != nil {
		return nil, apperr.Wrap(err, "failed to marshal character document")
	}
	return data, nil
}

// UnmarshalDocument parses a snapshot document. It does not check the catalog; use
// Validate or State.Restore for that.
func UnmarshalDocument(data []byte) (Character, error) {
	var c Character
	if err := json.Unmarshal(data, &c); err != nil {
		return Character{}, apperr.WrapWithCode(err, apperr.CodeInvalidArgument, "failed to unmarshal character document")
	}
	return c.Clone(), nil
}
