package util

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashUUID(t *testing.T) {
	a := HashUUID(map[string]any{"center": 40, "width": 400})
	b := HashUUID(map[string]any{"width": 400, "center": 40})
	assert.Equal(t, a, b)

	id, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(3), id.Version())

	assert.NotEqual(t, a, HashUUID(map[string]any{"center": 41, "width": 400}))
	assert.Empty(t, HashUUID(func() {}))
}
