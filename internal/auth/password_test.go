package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordIsSaltedAndVerifiable(t *testing.T) {
	first, err := HashPassword("pass123", bcrypt.MinCost)
	require.NoError(t, err)
	second, err := HashPassword("pass123", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, "pass123", first)
	assert.NotEqual(t, first, second)
	assert.NoError(t, ComparePassword(first, "pass123"))
	assert.NoError(t, ComparePassword(second, "pass123"))
	assert.Error(t, ComparePassword(first, "pass124"))
}

func TestHashPasswordUsesConfiguredCost(t *testing.T) {
	hash, err := HashPassword("abc123", bcrypt.MinCost+1)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost+1, cost)
}
