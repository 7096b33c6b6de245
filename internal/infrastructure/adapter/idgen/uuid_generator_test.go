package idgen

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDGenerator(t *testing.T) {
	g := NewUUIDGenerator()

	t.Run("ids are valid and distinct", func(t *testing.T) {
		a, b := g.NewID(), g.NewID()
		_, err := uuid.Parse(a)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("access codes use the readable alphabet", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			code, err := g.NewAccessCode()
			require.NoError(t, err)
			assert.Len(t, code, AccessCodeLength)
			for _, r := range code {
				assert.True(t, strings.ContainsRune(accessCodeAlphabet, r), "unexpected rune %q", r)
			}
		}
	})
}
