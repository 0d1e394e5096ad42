// Package memory implements an in-memory types.Gateway with S3-compatible
// listing semantics (lexicographic keys, delimiter grouping, continuation
// tokens). It backs unit tests and the local development mode of the CLI.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/timowlmtn/living-harmonix/pkg/errors"
	"github.com/timowlmtn/living-harmonix/pkg/types"
)

// DefaultPageSize mirrors the provider's listing page ceiling.
const DefaultPageSize = 1000

// Store is an in-memory object store. The zero value is not usable; call New.
type Store struct {
	mu      sync.RWMutex
	objects map[string]object

	// PageSize bounds entries per List page. Tests shrink it to exercise
	// pagination without thousands of keys.
	PageSize int

	// FailKeys makes operations on the given keys fail with the mapped code.
	FailKeys map[string]errors.ErrorCode

	// DeleteCalls counts DeleteObjects invocations so tests can assert
	// chunking behavior.
	DeleteCalls int

	clock func() time.Time
}

type object struct {
	body        []byte
	contentType string
	modified    time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		objects:  make(map[string]object),
		PageSize: DefaultPageSize,
		clock:    time.Now,
	}
}

// SetClock overrides the modification-time source. Tests use it to make
// LastModified ordering deterministic.
func (s *Store) SetClock(clock func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
}

// Len returns the number of stored objects, folder markers included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// Keys returns every stored key in lexicographic order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Store) injectedFailure(key string) error {
	if code, ok := s.FailKeys[key]; ok {
		return errors.New(code, "injected failure").WithKey(key)
	}
	return nil
}

// PutObject implements types.Gateway.
func (s *Store) PutObject(ctx context.Context, key string, body []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injectedFailure(key); err != nil {
		return err
	}
	buf := make([]byte, len(body))
	copy(buf, body)
	s.objects[key] = object{body: buf, contentType: contentType, modified: s.clock()}
	return nil
}

// GetObject implements types.Gateway.
func (s *Store) GetObject(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.injectedFailure(key); err != nil {
		return nil, err
	}
	obj, ok := s.objects[key]
	if !ok {
		return nil, errors.New(errors.ErrCodeObjectNotFound, "object does not exist").WithKey(key)
	}
	buf := make([]byte, len(obj.body))
	copy(buf, obj.body)
	return buf, nil
}

// List implements types.Gateway. Keys sort lexicographically; with a "/"
// delimiter, keys past the first delimiter after the prefix collapse into
// CommonPrefixes, matching ListObjectsV2.
func (s *Store) List(ctx context.Context, prefix, delimiter, continuationToken string) (types.ListPage, error) {
	if err := ctx.Err(); err != nil {
		return types.ListPage{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) && k > continuationToken {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var page types.ListPage
	seenPrefixes := make(map[string]bool)
	count := 0
	lastConsumed := ""
	for _, k := range keys {
		if count >= s.PageSize {
			page.NextToken = lastConsumed
			break
		}
		lastConsumed = k
		if delimiter != "" {
			rest := k[len(prefix):]
			if i := strings.Index(rest, delimiter); i >= 0 {
				cp := prefix + rest[:i+len(delimiter)]
				if !seenPrefixes[cp] {
					seenPrefixes[cp] = true
					page.CommonPrefixes = append(page.CommonPrefixes, cp)
					count++
				}
				continue
			}
		}
		obj := s.objects[k]
		page.Entries = append(page.Entries, types.Entry{
			Key:          k,
			Size:         int64(len(obj.body)),
			LastModified: obj.modified,
		})
		count++
	}
	return page, nil
}

// ListAll implements types.Gateway.
func (s *Store) ListAll(ctx context.Context, prefix string) ([]types.Entry, error) {
	var all []types.Entry
	token := ""
	for {
		page, err := s.List(ctx, prefix, "", token)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Entries...)
		if page.NextToken == "" {
			return all, nil
		}
		token = page.NextToken
	}
}

// DeleteObjects implements types.Gateway. Absent keys count as deleted, as
// with the provider's idempotent delete.
func (s *Store) DeleteObjects(ctx context.Context, keys []string) ([]string, []types.KeyError, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DeleteCalls++

	var deleted []string
	var failures []types.KeyError
	for _, k := range keys {
		if err := s.injectedFailure(k); err != nil {
			failures = append(failures, types.KeyError{Key: k, Err: err})
			continue
		}
		delete(s.objects, k)
		deleted = append(deleted, k)
	}
	return deleted, failures, nil
}

// PresignGet implements types.Gateway with a synthetic URL; the store has no
// real HTTP surface.
func (s *Store) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.objects[key]; !ok {
		return "", errors.New(errors.ErrCodeObjectNotFound, "object does not exist").WithKey(key)
	}
	expires := s.clock().Add(ttl).UTC().Format(time.RFC3339)
	return "memory://" + key + "?expires=" + expires, nil
}
