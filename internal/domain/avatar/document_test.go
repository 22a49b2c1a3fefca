package avatar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/avatar-forge/internal/domain/avatar"
	apperr "github.com/KirkDiggler/avatar-forge/internal/errors"
	"github.com/KirkDiggler/avatar-forge/internal/testutils"
)

func TestDocument_RoundTripIsByteIdentical(t *testing.T) {
	catalog := testutils.CreateTestCatalog(t)
	state := avatar.NewState(&avatar.StateConfig{Catalog: catalog})
	state.SetName("Pip")
	require.NoError(t, state.SetColorComponent(avatar.ChannelRed, "8"))
	require.NoError(t, state.Toggle("badges", "b2"))
	require.NoError(t, state.Toggle("badges", "b1"))
	require.NoError(t, state.Toggle("hats", "hat1"))
	require.NoError(t, state.ChooseVariation("arm1", "both"))

	first, err := avatar.MarshalDocument(state.Snapshot())
	require.NoError(t, err)

	decoded, err := avatar.UnmarshalDocument(first)
	require.NoError(t, err)

	second, err := avatar.MarshalDocument(decoded)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Equal(t, state.Snapshot(), decoded)
	// Equip order is preserved, not sorted
	assert.Equal(t, []string{"b2", "b1"}, decoded.Equipped["badges"])
}

func TestDocument_Format(t *testing.T) {
	c := avatar.NewCharacter()
	c.Name = "Pip"
	c.Equipped["hats"] = []string{"hat1"}

	data, err := avatar.MarshalDocument(c)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"name": "Pip",
		"color": {"r": 5, "g": 5, "b": 5},
		"equipped": {"hats": ["hat1"]},
		"active_variation": {}
	}`, string(data))
}

func TestDocument_EmptyMapsNeverNull(t *testing.T) {
	data, err := avatar.MarshalDocument(avatar.Character{})
	require.NoError(t, err)
	assert.Equal(t, `{"name":"","color":{"r":0,"g":0,"b":0},"equipped":{},"active_variation":{}}`, string(data))

	decoded, err := avatar.UnmarshalDocument([]byte(`{"name":"x","equipped":null}`))
	require.NoError(t, err)
	assert.NotNil(t, decoded.Equipped)
	assert.NotNil(t, decoded.ActiveVariation)
}

func TestDocument_Malformed(t *testing.T) {
	_, err := avatar.UnmarshalDocument([]byte(`{"name": 5`))
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidArgument(err))
}

func TestColor_RGB(t *testing.T) {
	testCases := []struct {
		in   int
		want uint8
	}{
		{0, 0}, {1, 28}, {2, 57}, {4, 113}, {5, 142}, {7, 198}, {8, 227}, {9, 255},
	}
	for _, tc := range testCases {
		r, g, b := avatar.Color{R: tc.in, G: tc.in, B: tc.in}.RGB()
		assert.Equal(t, tc.want, r, "channel %d", tc.in)
		assert.Equal(t, r, g)
		assert.Equal(t, r, b)
	}
}
