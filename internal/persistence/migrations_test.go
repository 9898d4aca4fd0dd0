package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsAreEmbeddedInOrder(t *testing.T) {
	names, err := MigrationNames()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "0001_init.sql", names[0])

	content, err := migrationFiles.ReadFile("migrations/" + names[0])
	require.NoError(t, err)
	assert.Contains(t, string(content), "users_username_key")
	assert.Contains(t, string(content), "IF NOT EXISTS")
}
