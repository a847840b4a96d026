package seat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStateStoredEncoding(t *testing.T) {
	require.Equal(t, int64(7), Active(7).Stored())
	require.Equal(t, int64(-(42*1000 + 7)), Released(7, 42).Stored())

	// Two declined rows that once held the same seat must not collide.
	require.NotEqual(t, Released(7, 42).Stored(), Released(7, 43).Stored())
}

func TestDecodeRoundTrip(t *testing.T) {
	for _, st := range []State{Active(1), Active(120), Released(1, 1), Released(120, 999999)} {
		got := Decode(st.Stored())
		require.Equal(t, st.Number(), got.Number())
		require.Equal(t, st.Released(), got.Released())
	}
}

func TestDecodeLegacyBareNegative(t *testing.T) {
	// Values written before the encoding carried the owner ID were the
	// bare negated seat; their magnitude is always below the encode base.
	st := Decode(-37)
	require.True(t, st.Released())
	require.Equal(t, 37, st.Number())
}

func TestDecodeActive(t *testing.T) {
	st := Decode(55)
	require.False(t, st.Released())
	require.Equal(t, 55, st.Number())
	require.Equal(t, int64(55), st.Stored())
}
