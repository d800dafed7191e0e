package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNames(t *testing.T) {
	names, err := Names()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "001_kv_blobs.sql", names[0])
}

func TestVersion(t *testing.T) {
	v, err := Version("001_kv_blobs.sql")
	require.NoError(t, err)
	assert.Equal(t, "001", v)

	_, err = Version("kvblobs.sql")
	assert.Error(t, err)
}
