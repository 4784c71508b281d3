package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOppIsInvolutive(t *testing.T) {
	for _, c := range []Color{White, Black} {
		assert.NotEqual(t, c, c.Opp())
		assert.Equal(t, c, c.Opp().Opp())
	}
}

func TestParse(t *testing.T) {
	cases := map[string]Color{"white": White, "w": White, "black": Black, "b": Black}
	for in, want := range cases {
		got, err := Parse(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := Parse("red")
	assert.Error(t, err)
}

func TestValid(t *testing.T) {
	assert.True(t, White.Valid())
	assert.True(t, Black.Valid())
	assert.False(t, None.Valid())
	assert.Equal(t, "none", None.String())
}
