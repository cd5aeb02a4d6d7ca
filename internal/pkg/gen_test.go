package pkg

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateGameID(t *testing.T) {
	seen := make(map[string]bool)

	for range 100 {
		id, err := GenerateGameID()
		require.NoError(t, err)

		assert.Len(t, id, gameIDLength)
		assert.Equal(t, strings.ToUpper(id), id)
		for _, r := range id {
			assert.Contains(t, gameIDAlphabet, string(r))
		}

		seen[id] = true
	}

	// 36^7 codes, collisions within 100 draws would point at a broken source
	assert.Len(t, seen, 100)
}

func TestGenerateNewSessionID(t *testing.T) {
	first := GenerateNewSessionID()
	second := GenerateNewSessionID()

	_, err := uuid.Parse(first)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
