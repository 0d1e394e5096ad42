package types

import (
	"context"
	"time"
)

// Gateway is the storage contract every namespace component routes through.
// Implementations exist for S3 and for an in-memory store used in tests.
//
// All methods are safe for concurrent use and honor context cancellation.
// GetObject returns OBJECT_NOT_FOUND when the key is absent; in the
// annotation poll loop that is the expected "not yet ready" signal, not a
// failure to surface.
type Gateway interface {
	// PutObject writes a single object. The provider's single-key write is
	// the only atomicity guarantee this layer relies on.
	PutObject(ctx context.Context, key string, body []byte, contentType string) error

	// GetObject returns the full object body.
	GetObject(ctx context.Context, key string) ([]byte, error)

	// List returns one page of keys under prefix. An empty delimiter lists
	// recursively; "/" groups immediate children into CommonPrefixes.
	List(ctx context.Context, prefix, delimiter, continuationToken string) (ListPage, error)

	// ListAll pages through every key under prefix so callers never see
	// continuation tokens.
	ListAll(ctx context.Context, prefix string) ([]Entry, error)

	// DeleteObjects removes the given keys, chunking to the provider's
	// per-call ceiling internally. A failed chunk never aborts the rest;
	// per-key failures are aggregated into the second return value.
	DeleteObjects(ctx context.Context, keys []string) (deleted []string, failures []KeyError, err error)

	// PresignGet returns a read-only, time-boxed URL for the object.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// MetricsRecorder receives storage-operation telemetry. A nil recorder is
// valid and disables collection.
type MetricsRecorder interface {
	RecordOperation(operation string, duration time.Duration, err error)
	RecordPollAttempt(found bool)
	RecordDeleted(count int)
}
