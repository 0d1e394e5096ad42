package erase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timowlmtn/living-harmonix/internal/namespace"
	"github.com/timowlmtn/living-harmonix/internal/storage/memory"
	"github.com/timowlmtn/living-harmonix/pkg/errors"
)

func TestEraseSubtreeEmptyPrefixIsNoOp(t *testing.T) {
	e := New(memory.New(), "", nil)
	result, err := e.EraseSubtree(context.Background(), "geovision/u1/nothing/")
	require.NoError(t, err)
	assert.Empty(t, result.Deleted)
	assert.Empty(t, result.Failures)
}

func TestEraseSubtreeChunksAtProviderCeiling(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	for i := 0; i < 2500; i++ {
		require.NoError(t, store.PutObject(ctx,
			fmt.Sprintf("geovision/u1/p1/2025-01-01/1.0000_1.0000/%05d.png", i), []byte("x"), ""))
	}

	e := New(store, "", nil)
	result, err := e.EraseSubtree(ctx, "geovision/u1/p1/")
	require.NoError(t, err)

	assert.Len(t, result.Deleted, 2500)
	assert.Empty(t, result.Failures)
	assert.Equal(t, 3, store.DeleteCalls, "2500 keys must take exactly 1000+1000+500")
	assert.Zero(t, store.Len())
}

func TestEraseSubtreeAccumulatesFailures(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	for _, k := range []string{"p/a", "p/b", "p/c"} {
		require.NoError(t, store.PutObject(ctx, k, []byte("x"), ""))
	}
	store.FailKeys = map[string]errors.ErrorCode{"p/b": errors.ErrCodeAccessDenied}

	result, err := New(store, "", nil).EraseSubtree(ctx, "p/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p/a", "p/c"}, result.Deleted)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "p/b", result.Failures[0].Key)
}

func TestEraseProjectLeavesEmptyTree(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	for _, k := range []string{
		"geovision/u1/p1/",
		"geovision/u1/p1/project.json",
		"geovision/u1/p1/2025-01-01/1.0000_1.0000/2025-01-01T100000.000Z.png",
		"geovision/u1/p2/project.json",
	} {
		require.NoError(t, store.PutObject(ctx, k, []byte("x"), ""))
	}

	result, err := New(store, "", nil).EraseProject(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.Len(t, result.Deleted, 3)

	tree, err := namespace.NewLister(store, "", nil).ListProject(ctx, "u1", "p1", "")
	require.NoError(t, err)
	assert.Empty(t, tree)

	// The neighboring project is untouched.
	_, err = store.GetObject(ctx, "geovision/u1/p2/project.json")
	assert.NoError(t, err)
}

func TestEraseDate(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	keep := "geovision/u1/p1/2025-01-02/1.0000_1.0000/2025-01-02T100000.000Z.png"
	gone := "geovision/u1/p1/2025-01-01/1.0000_1.0000/2025-01-01T100000.000Z.png"
	require.NoError(t, store.PutObject(ctx, keep, []byte("x"), ""))
	require.NoError(t, store.PutObject(ctx, gone, []byte("x"), ""))

	result, err := New(store, "", nil).EraseDate(ctx, "u1", "p1", "2025-01-01")
	require.NoError(t, err)
	assert.Equal(t, []string{gone}, result.Deleted)

	_, err = store.GetObject(ctx, keep)
	assert.NoError(t, err)
}
