package namespace

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/timowlmtn/living-harmonix/internal/keypath"
	"github.com/timowlmtn/living-harmonix/pkg/errors"
)

// GalleryImage is one presigned capture with its side-car annotation, when
// the annotation has already been produced.
type GalleryImage struct {
	Key        string    `json:"key"`
	URL        string    `json:"url"`
	Annotation string    `json:"annotation,omitempty"`
	CapturedAt time.Time `json:"captured_at"`
}

// DateGroup holds one day's images, newest first.
type DateGroup struct {
	Date   string         `json:"date"`
	Images []GalleryImage `json:"images"`
}

// ListRecentImages walks user → project → date folders with delimiter
// listings, skips days older than maxAge, and returns presigned images
// grouped by date, newest day first. Only projects whose id carries the
// agentType prefix participate; pass an empty agentType to include all.
//
// Annotation fetches tolerate OBJECT_NOT_FOUND: an image whose side-car has
// not been produced yet still appears in the gallery, without text.
func (l *Lister) ListRecentImages(ctx context.Context, userID, agentType string, maxAge, presignTTL time.Duration) ([]DateGroup, error) {
	cutoff := l.now().UTC().Add(-maxAge)

	projects, err := l.listChildPrefixes(ctx, l.scheme.UserRoot(userID))
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]GalleryImage)
	for _, projectPrefix := range projects {
		projectID := lastSegment(projectPrefix)
		if agentType != "" && !strings.HasPrefix(projectID, agentType) {
			continue
		}

		datePrefixes, err := l.listChildPrefixes(ctx, projectPrefix)
		if err != nil {
			return nil, err
		}
		for _, datePrefix := range datePrefixes {
			date := lastSegment(datePrefix)
			day, derr := time.Parse(keypath.DateLayout, date)
			if derr != nil || day.AddDate(0, 0, 1).Before(cutoff) {
				continue
			}

			imgs, err := l.collectDayImages(ctx, datePrefix, presignTTL)
			if err != nil {
				return nil, err
			}
			groups[date] = append(groups[date], imgs...)
		}
	}

	out := make([]DateGroup, 0, len(groups))
	for date, imgs := range groups {
		sort.Slice(imgs, func(i, j int) bool { return imgs[i].CapturedAt.After(imgs[j].CapturedAt) })
		out = append(out, DateGroup{Date: date, Images: imgs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (l *Lister) collectDayImages(ctx context.Context, datePrefix string, presignTTL time.Duration) ([]GalleryImage, error) {
	entries, err := l.gw.ListAll(ctx, datePrefix)
	if err != nil {
		return nil, err
	}

	annotations := make(map[string]bool)
	for _, e := range entries {
		if strings.HasSuffix(e.Key, ".txt") {
			annotations[e.Key] = true
		}
	}

	var imgs []GalleryImage
	for _, e := range entries {
		if e.IsFolderMarker() || strings.HasSuffix(e.Key, ".txt") {
			continue
		}
		name := lastSegment(e.Key)
		capturedAt, ok := keypath.ParseTimestampFromFilename(name)
		if !ok {
			continue
		}

		url, err := l.gw.PresignGet(ctx, e.Key, presignTTL)
		if err != nil {
			return nil, err
		}

		img := GalleryImage{Key: e.Key, URL: url, CapturedAt: capturedAt}
		if annKey := keypath.AnnotationKey(e.Key); annotations[annKey] {
			body, err := l.gw.GetObject(ctx, annKey)
			if err != nil && !errors.IsNotFound(err) {
				return nil, err
			}
			img.Annotation = string(body)
		}
		imgs = append(imgs, img)
	}
	return imgs, nil
}

// listChildPrefixes returns the immediate child prefixes under prefix,
// following continuation tokens.
func (l *Lister) listChildPrefixes(ctx context.Context, prefix string) ([]string, error) {
	var children []string
	token := ""
	for {
		page, err := l.gw.List(ctx, prefix, "/", token)
		if err != nil {
			return nil, err
		}
		children = append(children, page.CommonPrefixes...)
		if page.NextToken == "" {
			return children, nil
		}
		token = page.NextToken
	}
}

func lastSegment(key string) string {
	key = strings.TrimSuffix(key, "/")
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return key[i+1:]
	}
	return key
}
