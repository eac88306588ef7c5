package idgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutfitIDsAreUnique(t *testing.T) {
	require.NoError(t, SetNodeID(7))

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := OutfitID()
		assert.True(t, strings.HasPrefix(id, "outfit_"), id)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestNextIsIncreasing(t *testing.T) {
	first := Next()
	second := Next()
	assert.Greater(t, second, first)
}
