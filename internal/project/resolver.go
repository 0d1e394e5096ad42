package project

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/timowlmtn/living-harmonix/internal/geo"
	"github.com/timowlmtn/living-harmonix/internal/keypath"
	"github.com/timowlmtn/living-harmonix/internal/namespace"
	"github.com/timowlmtn/living-harmonix/pkg/types"
)

// CreateNewProjectID is the synthetic sentinel appended to every proximity
// ranking. UIs render it as the "start a new project" choice.
const CreateNewProjectID = "create_new_project"

// Resolver answers "which project is this capture for" queries.
type Resolver struct {
	gw     types.Gateway
	scheme keypath.Scheme
	lister *namespace.Lister
}

// NewResolver returns a Resolver for the given namespace.
func NewResolver(gw types.Gateway, ns string) *Resolver {
	return &Resolver{
		gw:     gw,
		scheme: keypath.NewScheme(ns),
		lister: namespace.NewLister(gw, ns, nil),
	}
}

// ListByAgentType returns the user's projects whose id carries the agent-type
// prefix.
func (r *Resolver) ListByAgentType(ctx context.Context, userID, agentType string) (map[string]namespace.ProjectListing, error) {
	if err := ValidateAgentType(agentType); err != nil {
		return nil, err
	}
	all, err := r.lister.ListUserProjects(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]namespace.ProjectListing)
	for id, listing := range all {
		if strings.HasPrefix(id, agentType) {
			out[id] = listing
		}
	}
	return out, nil
}

// RankByProximity orders the user's agent-type projects by the minimum
// great-circle distance from ref to any location recorded under each project.
//
// A project with no parsable location ranks at +Inf — always last, never
// dropped. The CreateNewProjectID sentinel is appended unconditionally.
func (r *Resolver) RankByProximity(ctx context.Context, userID, agentType string, ref geo.Coordinate) ([]string, error) {
	if err := ValidateAgentType(agentType); err != nil {
		return nil, err
	}

	root := r.scheme.UserRoot(userID)
	entries, err := r.gw.ListAll(ctx, root)
	if err != nil {
		return nil, err
	}

	// One pass: project id → distinct location keys.
	locations := make(map[string]map[string]bool)
	for _, e := range entries {
		segs, ok := keypath.ParseRelative(e.Key, root, 4)
		if !ok || !strings.HasPrefix(segs[0], agentType) {
			continue
		}
		if locations[segs[0]] == nil {
			locations[segs[0]] = make(map[string]bool)
		}
		locations[segs[0]][segs[2]] = true
	}

	// Document-only projects still participate; they simply have no
	// locations and rank at +Inf.
	all, err := r.lister.ListUserProjects(ctx, userID)
	if err != nil {
		return nil, err
	}
	for id := range all {
		if strings.HasPrefix(id, agentType) && locations[id] == nil {
			locations[id] = nil
		}
	}

	type ranked struct {
		id   string
		dist float64
	}
	rankings := make([]ranked, 0, len(locations))
	for id, locs := range locations {
		minDist := math.Inf(1)
		for loc := range locs {
			lat, lon := keypath.ParseLatLon(loc)
			c := geo.Coordinate{Lat: lat, Lon: lon}
			if !c.Valid() {
				continue
			}
			if d := geo.Haversine(ref, c); d < minDist {
				minDist = d
			}
		}
		rankings = append(rankings, ranked{id: id, dist: minDist})
	}

	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].dist != rankings[j].dist {
			return rankings[i].dist < rankings[j].dist
		}
		return rankings[i].id < rankings[j].id
	})

	out := make([]string, 0, len(rankings)+1)
	for _, rk := range rankings {
		out = append(out, rk.id)
	}
	return append(out, CreateNewProjectID), nil
}
