package project

import (
	"context"
	"encoding/json"
	"time"

	"github.com/timowlmtn/living-harmonix/internal/cache"
	"github.com/timowlmtn/living-harmonix/internal/keypath"
	"github.com/timowlmtn/living-harmonix/pkg/errors"
	"github.com/timowlmtn/living-harmonix/pkg/types"
)

// TemplateLoader fetches the template document for an agent type. A nil
// document with a nil error means the agent has no template; creation then
// proceeds from defaults alone.
type TemplateLoader interface {
	Load(ctx context.Context, agentType string) (*types.ProjectDocument, error)
}

// StoreTemplateLoader reads templates from the well-known per-agent key in
// the object store.
type StoreTemplateLoader struct {
	gw     types.Gateway
	scheme keypath.Scheme
}

// NewStoreTemplateLoader returns a loader bound to the gateway and namespace.
func NewStoreTemplateLoader(gw types.Gateway, scheme keypath.Scheme) *StoreTemplateLoader {
	return &StoreTemplateLoader{gw: gw, scheme: scheme}
}

// Load implements TemplateLoader. A missing template object is not an error:
// recognized agents may ship without one.
func (l *StoreTemplateLoader) Load(ctx context.Context, agentType string) (*types.ProjectDocument, error) {
	if err := ValidateAgentType(agentType); err != nil {
		return nil, err
	}

	body, err := l.gw.GetObject(ctx, l.scheme.TemplateKey(agentType))
	if errors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var doc types.ProjectDocument
	if uerr := json.Unmarshal(body, &doc); uerr != nil {
		return nil, errors.New(errors.ErrCodeInvalidPayload, "template document is not valid JSON").
			WithKey(l.scheme.TemplateKey(agentType)).WithCause(uerr)
	}
	return &doc, nil
}

// CachingTemplateLoader wraps another loader with a TTL-bounded cache.
// Templates change rarely; provisioning bursts should not refetch them per
// call. Absence is cached too so a template-less agent costs one lookup per
// TTL window.
type CachingTemplateLoader struct {
	inner TemplateLoader
	cache *cache.LRU
}

// NewCachingTemplateLoader wraps inner with the given TTL.
func NewCachingTemplateLoader(inner TemplateLoader, ttl time.Duration) *CachingTemplateLoader {
	return &CachingTemplateLoader{
		inner: inner,
		cache: cache.NewLRU(len(agentIcons), ttl),
	}
}

// Load implements TemplateLoader.
func (l *CachingTemplateLoader) Load(ctx context.Context, agentType string) (*types.ProjectDocument, error) {
	if v, ok := l.cache.Get(agentType); ok {
		if v == nil {
			return nil, nil
		}
		// Copy so callers can overlay without mutating the cached document.
		doc := *(v.(*types.ProjectDocument))
		return &doc, nil
	}

	doc, err := l.inner.Load(ctx, agentType)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		l.cache.Put(agentType, nil)
		return nil, nil
	}
	l.cache.Put(agentType, doc)
	copied := *doc
	return &copied, nil
}
