package project

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timowlmtn/living-harmonix/internal/geo"
	"github.com/timowlmtn/living-harmonix/internal/storage/memory"
	"github.com/timowlmtn/living-harmonix/pkg/errors"
)

// Reference point for the ranking tests.
var ref = geo.Coordinate{Lat: 42.3601, Lon: -71.0589}

func seedRankingProjects(t *testing.T, store *memory.Store) {
	t.Helper()
	ctx := context.Background()
	// ~5 km north, ~50 km north, and one project with an unparsable location.
	for _, k := range []string{
		"geovision/u1/zen_guide_near/2025-01-01/42.4051_-71.0589/2025-01-01T100000.000Z.png",
		"geovision/u1/zen_guide_far/2025-01-01/42.8100_-71.0589/2025-01-01T100000.000Z.png",
		"geovision/u1/zen_guide_lost/2025-01-01/somewhere/2025-01-01T100000.000Z.png",
		"geovision/u1/pinboard_zine_wall/2025-01-01/42.3700_-71.0589/2025-01-01T100000.000Z.png",
	} {
		require.NoError(t, store.PutObject(ctx, k, []byte("x"), ""))
	}
}

func TestRankByProximity(t *testing.T) {
	store := memory.New()
	seedRankingProjects(t, store)
	r := NewResolver(store, "")

	ranked, err := r.RankByProximity(context.Background(), "u1", AgentZenGuide, ref)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"zen_guide_near",
		"zen_guide_far",
		"zen_guide_lost",
		CreateNewProjectID,
	}, ranked)
}

func TestRankByProximityEmptyUserStillHasSentinel(t *testing.T) {
	r := NewResolver(memory.New(), "")
	ranked, err := r.RankByProximity(context.Background(), "nobody", AgentZenGuide, ref)
	require.NoError(t, err)
	assert.Equal(t, []string{CreateNewProjectID}, ranked)
}

func TestRankByProximityIncludesDocumentOnlyProjects(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seedRankingProjects(t, store)
	require.NoError(t, store.PutObject(ctx,
		"geovision/u1/zen_guide_fresh/project.json", []byte("{}"), ""))

	r := NewResolver(store, "")
	ranked, err := r.RankByProximity(ctx, "u1", AgentZenGuide, ref)
	require.NoError(t, err)

	// No locations yet, so it ranks with the unparsable project, before the
	// sentinel.
	require.Len(t, ranked, 5)
	assert.Equal(t, CreateNewProjectID, ranked[4])
	assert.Contains(t, ranked[2:4], "zen_guide_fresh")
	assert.Contains(t, ranked[2:4], "zen_guide_lost")
}

func TestListByAgentType(t *testing.T) {
	store := memory.New()
	seedRankingProjects(t, store)
	r := NewResolver(store, "")

	projects, err := r.ListByAgentType(context.Background(), "u1", AgentPinboardZine)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Contains(t, projects, "pinboard_zine_wall")
}

func TestResolverRejectsUnknownAgentType(t *testing.T) {
	r := NewResolver(memory.New(), "")
	_, err := r.RankByProximity(context.Background(), "u1", "gnome", ref)
	assert.Equal(t, errors.ErrCodeInvalidAgentType, errors.CodeOf(err))
	_, err = r.ListByAgentType(context.Background(), "u1", "gnome")
	assert.Equal(t, errors.ErrCodeInvalidAgentType, errors.CodeOf(err))
}
