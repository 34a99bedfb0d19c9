package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode_AcceptsAliasesCaseInsensitive(t *testing.T) {
	cases := map[string]Mode{
		"fifo":        ModeFIFO,
		" FIFO ":      ModeFIFO,
		"rr":          ModeRoundRobin,
		"Round_Robin": ModeRoundRobin,
		"priority":    ModePriority,
	}
	for in, want := range cases {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseMode_RejectsUnknown(t *testing.T) {
	for _, in := range []string{"", "BOGUS", "round robin", "LIFO"} {
		_, err := ParseMode(in)
		assert.ErrorIs(t, err, ErrInvalidMode, in)
	}
}

func TestMode_StringUsesWireNames(t *testing.T) {
	assert.Equal(t, "FIFO", ModeFIFO.String())
	assert.Equal(t, "RR", ModeRoundRobin.String())
	assert.Equal(t, "PRIORITY", ModePriority.String())
	assert.False(t, Mode(7).Valid())
}

func TestMode_TextRoundTrip(t *testing.T) {
	var m Mode
	require.NoError(t, m.UnmarshalText([]byte("round_robin")))
	b, err := m.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "RR", string(b))

	_, err = Mode(-1).MarshalText()
	assert.ErrorIs(t, err, ErrInvalidMode)
}
