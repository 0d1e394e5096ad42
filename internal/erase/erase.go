// Package erase removes whole namespace subtrees: a project, one day of
// captures, or any caller-supplied prefix.
package erase

import (
	"context"
	"log/slog"

	"github.com/timowlmtn/living-harmonix/internal/keypath"
	"github.com/timowlmtn/living-harmonix/pkg/types"
)

// maxDeleteBatch is the provider's per-call ceiling for batch deletion.
const maxDeleteBatch = 1000

// Result reports what a bulk erase accomplished. Failures list exactly which
// keys could not be deleted; everything else is gone.
type Result struct {
	Deleted  []string         `json:"deleted"`
	Failures []types.KeyError `json:"failures,omitempty"`
}

// Eraser deletes subtrees through a gateway.
type Eraser struct {
	gw     types.Gateway
	scheme keypath.Scheme
	logger *slog.Logger
}

// New returns an Eraser for the given namespace.
func New(gw types.Gateway, namespace string, logger *slog.Logger) *Eraser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Eraser{gw: gw, scheme: keypath.NewScheme(namespace), logger: logger}
}

// EraseSubtree deletes every object under prefix, folder markers included.
// An empty prefix listing is a no-op success. Per-key failures accumulate in
// the result; they never abort the remaining deletions.
func (e *Eraser) EraseSubtree(ctx context.Context, prefix string) (*Result, error) {
	entries, err := e.gw.ListAll(ctx, prefix)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return &Result{}, nil
	}

	keys := make([]string, len(entries))
	for i, entry := range entries {
		keys[i] = entry.Key
	}

	// Chunk to the provider ceiling here so each gateway call is one
	// provider call. A failed chunk never aborts the rest.
	result := &Result{}
	for len(keys) > 0 {
		n := len(keys)
		if n > maxDeleteBatch {
			n = maxDeleteBatch
		}
		deleted, failures, err := e.gw.DeleteObjects(ctx, keys[:n])
		keys = keys[n:]
		if err != nil {
			return nil, err
		}
		result.Deleted = append(result.Deleted, deleted...)
		result.Failures = append(result.Failures, failures...)
	}

	e.logger.Info("subtree erased",
		"prefix", prefix, "deleted", len(result.Deleted), "failed", len(result.Failures))
	return result, nil
}

// EraseProject removes a project and everything under it, its document and
// folder markers included.
func (e *Eraser) EraseProject(ctx context.Context, userID, projectID string) (*Result, error) {
	return e.EraseSubtree(ctx, e.scheme.ProjectRoot(userID, projectID))
}

// EraseDate removes one day's captures from a project.
func (e *Eraser) EraseDate(ctx context.Context, userID, projectID, dateISO string) (*Result, error) {
	return e.EraseSubtree(ctx, e.scheme.ProjectRoot(userID, projectID)+dateISO+"/")
}
