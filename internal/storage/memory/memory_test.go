package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timowlmtn/living-harmonix/pkg/errors"
)

func TestPutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.PutObject(ctx, "a/b.txt", []byte("hello"), "text/plain"))

	got, err := s.GetObject(ctx, "a/b.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
}

func TestGetMissingIsNotFound(t *testing.T) {
	s := New()
	_, err := s.GetObject(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestListWithDelimiter(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, k := range []string{
		"geovision/u1/p1/project.json",
		"geovision/u1/p1/2025-01-01/10.0000_1.0000/a.png",
		"geovision/u1/p1/2025-01-01/10.0000_1.0000/b.png",
		"geovision/u1/p1/2025-01-02/11.0000_1.0000/c.png",
	} {
		require.NoError(t, s.PutObject(ctx, k, []byte("x"), ""))
	}

	page, err := s.List(ctx, "geovision/u1/p1/", "/", "")
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, "geovision/u1/p1/project.json", page.Entries[0].Key)
	assert.Equal(t, []string{
		"geovision/u1/p1/2025-01-01/",
		"geovision/u1/p1/2025-01-02/",
	}, page.CommonPrefixes)
}

func TestListPagination(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.PageSize = 3
	for i := 0; i < 8; i++ {
		require.NoError(t, s.PutObject(ctx, fmt.Sprintf("p/%02d", i), []byte("x"), ""))
	}

	var keys []string
	token := ""
	pages := 0
	for {
		page, err := s.List(ctx, "p/", "", token)
		require.NoError(t, err)
		pages++
		for _, e := range page.Entries {
			keys = append(keys, e.Key)
		}
		if page.NextToken == "" {
			break
		}
		token = page.NextToken
	}
	assert.Equal(t, 3, pages)
	assert.Len(t, keys, 8)
	assert.IsIncreasing(t, keys)
}

func TestListAllPagesThrough(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.PageSize = 2
	for i := 0; i < 5; i++ {
		require.NoError(t, s.PutObject(ctx, fmt.Sprintf("p/%d", i), []byte("x"), ""))
	}

	all, err := s.ListAll(ctx, "p/")
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestDeleteObjectsPartialFailure(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.PutObject(ctx, "a", []byte("x"), ""))
	require.NoError(t, s.PutObject(ctx, "b", []byte("x"), ""))
	s.FailKeys = map[string]errors.ErrorCode{"b": errors.ErrCodeAccessDenied}

	deleted, failures, err := s.DeleteObjects(ctx, []string{"a", "b", "absent"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "absent"}, deleted)
	require.Len(t, failures, 1)
	assert.Equal(t, "b", failures[0].Key)
	assert.Equal(t, 1, s.DeleteCalls)
}

func TestPresignGet(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.PutObject(ctx, "a/b.png", []byte("x"), "image/png"))

	url, err := s.PresignGet(ctx, "a/b.png", 15*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "memory://a/b.png")

	_, err = s.PresignGet(ctx, "nope", time.Minute)
	assert.True(t, errors.IsNotFound(err))
}

func TestContextCancellation(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, s.PutObject(ctx, "a", nil, ""))
	_, err := s.GetObject(ctx, "a")
	assert.Error(t, err)
}
