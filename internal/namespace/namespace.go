// Package namespace derives directory-style views from the flat object key
// space: per-project capture trees, map-plottable points, per-user project
// inventories, and the recent-image gallery.
//
// Malformed keys are always skipped, never fatal. A single stray object must
// not wedge an entire listing.
package namespace

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/timowlmtn/living-harmonix/internal/keypath"
	"github.com/timowlmtn/living-harmonix/pkg/types"
)

// File is one capture object inside a location bucket.
type File struct {
	Key          string    `json:"key"`
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// Tree maps dateISO → locationKey → files in listing order. Listing order is
// lexicographic by key, which for timestamp-stem filenames is also capture
// order.
type Tree map[string]map[string][]File

// Point is one map-plottable location derived from a tree. Unparsable
// location keys produce NaN coordinates; renderers treat those as
// non-plottable rather than failing.
type Point struct {
	Lat     float64  `json:"lat"`
	Lon     float64  `json:"lon"`
	Project string   `json:"project"`
	Date    string   `json:"date"`
	Files   []string `json:"files"`
}

// ProjectListing summarizes one project found under a user root.
type ProjectListing struct {
	Dates  []string `json:"dates"`
	DocKey string   `json:"doc_key,omitempty"`
}

// Lister executes namespace queries against a gateway.
type Lister struct {
	gw     types.Gateway
	scheme keypath.Scheme
	logger *slog.Logger
	now    func() time.Time
}

// NewLister returns a Lister for the given namespace.
func NewLister(gw types.Gateway, namespace string, logger *slog.Logger) *Lister {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lister{
		gw:     gw,
		scheme: keypath.NewScheme(namespace),
		logger: logger,
		now:    time.Now,
	}
}

// Scheme exposes the key scheme the lister was built with.
func (l *Lister) Scheme() keypath.Scheme {
	return l.scheme
}

// ListProject builds the capture tree for one project. A non-empty dateFilter
// narrows the listing to that day's prefix; keys then parse at two segments
// instead of three. Unparseable keys and folder markers are skipped.
func (l *Lister) ListProject(ctx context.Context, userID, projectID, dateFilter string) (Tree, error) {
	prefix := l.scheme.ProjectRoot(userID, projectID)
	wantSegments := 3
	if dateFilter != "" {
		prefix += dateFilter + "/"
		wantSegments = 2
	}

	entries, err := l.gw.ListAll(ctx, prefix)
	if err != nil {
		return nil, err
	}

	tree := make(Tree)
	skipped := 0
	for _, e := range entries {
		segs, ok := keypath.ParseRelative(e.Key, prefix, wantSegments)
		if !ok {
			skipped++
			continue
		}
		date, loc, name := dateFilter, "", ""
		if wantSegments == 3 {
			date, loc, name = segs[0], segs[1], segs[2]
		} else {
			loc, name = segs[0], segs[1]
		}
		if tree[date] == nil {
			tree[date] = make(map[string][]File)
		}
		tree[date][loc] = append(tree[date][loc], File{
			Key:          e.Key,
			Name:         name,
			Size:         e.Size,
			LastModified: e.LastModified,
		})
	}
	if skipped > 0 {
		l.logger.Debug("skipped unparseable keys in project listing",
			"project", projectID, "skipped", skipped)
	}
	return tree, nil
}

// Flatten converts a tree into map points, one per (date, location) bucket.
// Output is ordered by date then location key so results are deterministic.
func Flatten(projectID string, tree Tree) []Point {
	var points []Point
	for _, date := range sortedKeys(tree) {
		locs := tree[date]
		locKeys := make([]string, 0, len(locs))
		for k := range locs {
			locKeys = append(locKeys, k)
		}
		sort.Strings(locKeys)
		for _, loc := range locKeys {
			lat, lon := keypath.ParseLatLon(loc)
			files := make([]string, 0, len(locs[loc]))
			for _, f := range locs[loc] {
				files = append(files, f.Name)
			}
			points = append(points, Point{
				Lat:     lat,
				Lon:     lon,
				Project: projectID,
				Date:    date,
				Files:   files,
			})
		}
	}
	return points
}

// ListUserProjects enumerates every project under the user root in one
// paginated listing and a single fold over the keys. Keys shallower than
// project/date/location are structural anomalies and are silently dropped,
// except the two-segment project.json document pointer.
func (l *Lister) ListUserProjects(ctx context.Context, userID string) (map[string]ProjectListing, error) {
	root := l.scheme.UserRoot(userID)
	entries, err := l.gw.ListAll(ctx, root)
	if err != nil {
		return nil, err
	}

	dates := make(map[string]map[string]bool)
	docs := make(map[string]string)
	for _, e := range entries {
		if e.IsFolderMarker() {
			continue
		}
		if segs, ok := keypath.ParseRelative(e.Key, root, 2); ok {
			if segs[1] == "project.json" {
				docs[segs[0]] = e.Key
			}
			continue
		}
		segs, ok := keypath.ParseRelative(e.Key, root, 4)
		if !ok {
			continue
		}
		project, date := segs[0], segs[1]
		if dates[project] == nil {
			dates[project] = make(map[string]bool)
		}
		dates[project][date] = true
	}

	out := make(map[string]ProjectListing, len(dates)+len(docs))
	for project, ds := range dates {
		listing := ProjectListing{DocKey: docs[project]}
		for d := range ds {
			listing.Dates = append(listing.Dates, d)
		}
		sort.Strings(listing.Dates)
		out[project] = listing
	}
	for project, doc := range docs {
		if _, seen := out[project]; !seen {
			out[project] = ProjectListing{DocKey: doc}
		}
	}
	return out, nil
}

func sortedKeys(tree Tree) []string {
	keys := make([]string, 0, len(tree))
	for k := range tree {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
