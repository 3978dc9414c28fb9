package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectStore(t *testing.T) {
	store := NewObjectStore()

	_, ok := store.Get("n1:output")
	assert.False(t, ok)

	value := map[string]any{"k": 1}
	store.Set("n1:output", value)

	got, ok := store.Get("n1:output")
	require.True(t, ok)
	assert.Equal(t, 1, store.Len())

	// The store hands back the same reference it was given.
	got.(map[string]any)["k"] = 2
	assert.Equal(t, 2, value["k"])

	store.Reset()
	assert.Zero(t, store.Len())
}

func TestObjectStoreSnapshotSharesReferences(t *testing.T) {
	store := NewObjectStore()

	value := []any{"a"}
	store.Set("n1:output", value)

	snapshot := store.Snapshot()
	require.Len(t, snapshot, 1)

	snapshot["n1:output"].([]any)[0] = "b"
	assert.Equal(t, "b", value[0])

	// But the map itself is a copy: adding to it does not touch the store.
	snapshot["n2:output"] = 1
	assert.Equal(t, 1, store.Len())
}
