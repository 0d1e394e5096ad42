package project

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timowlmtn/living-harmonix/internal/keypath"
	"github.com/timowlmtn/living-harmonix/internal/storage/memory"
	"github.com/timowlmtn/living-harmonix/pkg/errors"
	"github.com/timowlmtn/living-harmonix/pkg/types"
)

func TestStoreTemplateLoader(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seedTemplate(t, store, AgentZenGuide, `{"sheet_url": "https://sheets.example/zen", "zen_level": 3}`)

	loader := NewStoreTemplateLoader(store, keypath.NewScheme(""))

	doc, err := loader.Load(ctx, AgentZenGuide)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "https://sheets.example/zen", doc.SheetURL)
	assert.Contains(t, doc.Extra, "zen_level")

	// Recognized agent without a template: nil, nil.
	doc, err = loader.Load(ctx, AgentLittleLibrary)
	require.NoError(t, err)
	assert.Nil(t, doc)

	// Unknown agent fails fast.
	_, err = loader.Load(ctx, "gnome")
	assert.Equal(t, errors.ErrCodeInvalidAgentType, errors.CodeOf(err))
}

func TestStoreTemplateLoaderRejectsBadJSON(t *testing.T) {
	store := memory.New()
	seedTemplate(t, store, AgentZenGuide, `{not json`)

	loader := NewStoreTemplateLoader(store, keypath.NewScheme(""))
	_, err := loader.Load(context.Background(), AgentZenGuide)
	assert.Equal(t, errors.ErrCodeInvalidPayload, errors.CodeOf(err))
}

type countingLoader struct {
	calls int
	doc   *types.ProjectDocument
}

func (c *countingLoader) Load(context.Context, string) (*types.ProjectDocument, error) {
	c.calls++
	return c.doc, nil
}

func TestCachingTemplateLoader(t *testing.T) {
	ctx := context.Background()
	inner := &countingLoader{doc: &types.ProjectDocument{SheetURL: "https://sheets.example"}}
	loader := NewCachingTemplateLoader(inner, time.Minute)

	for i := 0; i < 3; i++ {
		doc, err := loader.Load(ctx, AgentZenGuide)
		require.NoError(t, err)
		require.NotNil(t, doc)
	}
	assert.Equal(t, 1, inner.calls)

	// Returned documents are copies; mutating one never poisons the cache.
	doc, _ := loader.Load(ctx, AgentZenGuide)
	doc.SheetURL = "mutated"
	again, _ := loader.Load(ctx, AgentZenGuide)
	assert.Equal(t, "https://sheets.example", again.SheetURL)
}

func TestCachingTemplateLoaderCachesAbsence(t *testing.T) {
	inner := &countingLoader{doc: nil}
	loader := NewCachingTemplateLoader(inner, time.Minute)

	for i := 0; i < 3; i++ {
		doc, err := loader.Load(context.Background(), AgentLittleLibrary)
		require.NoError(t, err)
		assert.Nil(t, doc)
	}
	assert.Equal(t, 1, inner.calls)
}
