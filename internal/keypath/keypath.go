// Package keypath builds and parses the hierarchical key convention used to
// emulate a directory tree inside the flat object store:
//
//	<namespace>/<userId>/<projectId>/<date>/<lat_lon>/<timestamp>[_<heading>].<ext>
//
// All functions are pure; nothing here touches storage.
package keypath

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultNamespace is the root prefix shared by every tenant.
const DefaultNamespace = "geovision"

// safeInstantLayout is an ISO-8601 UTC instant with the colons stripped so it
// can live inside an object key, e.g. "2025-06-14T174318.422Z".
const safeInstantLayout = "2006-01-02T150405.000Z"

// DateLayout is the YYYY-MM-DD date segment.
const DateLayout = "2006-01-02"

var (
	instantPrefixRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}T\d{6}\.\d{3}Z)`)
	invalidNameRe   = regexp.MustCompile(`[^a-z0-9\- ]`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
)

// Scheme carries the namespace root; everything else about the layout is fixed.
type Scheme struct {
	Namespace string
}

// NewScheme returns a Scheme, defaulting the namespace when empty.
func NewScheme(namespace string) Scheme {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return Scheme{Namespace: namespace}
}

// UserRoot returns "<namespace>/<userId>/".
func (s Scheme) UserRoot(userID string) string {
	return s.Namespace + "/" + userID + "/"
}

// ProjectRoot returns "<namespace>/<userId>/<projectId>/".
func (s Scheme) ProjectRoot(userID, projectID string) string {
	return s.UserRoot(userID) + projectID + "/"
}

// ProjectDocKey returns the key of the project's JSON document.
func (s Scheme) ProjectDocKey(userID, projectID string) string {
	return s.ProjectRoot(userID, projectID) + "project.json"
}

// CaptureFolder returns the per-day, per-location capture prefix.
func (s Scheme) CaptureFolder(userID, projectID, dateISO, latLonKey string) string {
	return s.ProjectRoot(userID, projectID) + dateISO + "/" + latLonKey + "/"
}

// TemplateKey returns the well-known key of an agent type's project template.
func (s Scheme) TemplateKey(agentType string) string {
	return s.Namespace + "/agent/" + agentType + "/project_template.json"
}

// LatLonKey encodes coordinates as a namespace segment, rounded to 4 decimals
// (~11 m). Two captures inside the same cell deliberately collide into one
// namespace node.
func LatLonKey(lat, lon float64) string {
	return fmt.Sprintf("%.4f_%.4f", lat, lon)
}

// ParseLatLon is the inverse of LatLonKey. A malformed key yields NaN
// coordinates; downstream map rendering treats those as non-plottable.
func ParseLatLon(key string) (lat, lon float64) {
	parts := strings.SplitN(key, "_", 2)
	if len(parts) != 2 {
		return math.NaN(), math.NaN()
	}
	lat, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		lat = math.NaN()
	}
	lon, err = strconv.ParseFloat(parts[1], 64)
	if err != nil {
		lon = math.NaN()
	}
	return lat, lon
}

// DateISO formats the YYYY-MM-DD segment for the given instant.
func DateISO(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// TimestampKey returns a filesystem-safe instant for use as a filename stem,
// with an optional compass-heading suffix.
func TimestampKey(t time.Time, heading string) string {
	stem := t.UTC().Format(safeInstantLayout)
	if heading != "" {
		stem += "_" + heading
	}
	return stem
}

// ParseTimestampFromFilename recovers the capture instant from a filename
// produced by TimestampKey. The second return is false when the name does not
// begin with a recognizable instant.
func ParseTimestampFromFilename(name string) (time.Time, bool) {
	m := instantPrefixRe.FindString(name)
	if m == "" {
		return time.Time{}, false
	}
	// Reinsert the stripped colons: 2025-06-14T174318.422Z → 17:43:18.422Z.
	iso := m[:13] + ":" + m[13:15] + ":" + m[15:]
	t, err := time.Parse("2006-01-02T15:04:05.000Z", iso)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseRelative strips basePrefix from fullKey and splits the remainder into
// path segments. It returns ok=false when the key is not under the prefix,
// is a pure folder marker, or does not have exactly wantSegments segments —
// callers skip such keys rather than failing the whole listing.
func ParseRelative(fullKey, basePrefix string, wantSegments int) ([]string, bool) {
	rel, found := strings.CutPrefix(fullKey, basePrefix)
	if !found || rel == "" || strings.HasSuffix(rel, "/") {
		return nil, false
	}
	parts := strings.Split(rel, "/")
	if len(parts) != wantSegments {
		return nil, false
	}
	return parts, true
}

// SanitizeProjectID derives the deterministic project identifier from an
// agent type and a user-facing display name: lowercase, characters outside
// [a-z0-9- ] stripped, whitespace collapsed to underscores, agent type prefix.
func SanitizeProjectID(agentType, displayName string) string {
	name := strings.ToLower(strings.TrimSpace(displayName))
	name = invalidNameRe.ReplaceAllString(name, "")
	name = whitespaceRe.ReplaceAllString(name, "_")
	return agentType + "_" + name
}

// AnnotationKey derives the side-car annotation key for an image key: same
// stem, ".txt" extension.
func AnnotationKey(imageKey string) string {
	if i := strings.LastIndex(imageKey, "."); i > strings.LastIndex(imageKey, "/") {
		return imageKey[:i] + ".txt"
	}
	return imageKey + ".txt"
}
