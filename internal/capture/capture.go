// Package capture persists device captures (images, text notes) into the
// namespace and implements the write-then-poll annotation protocol: an
// external process derives a text annotation from each uploaded image on an
// unspecified delay, and callers want a best-effort synchronous result.
package capture

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/timowlmtn/living-harmonix/internal/geo"
	"github.com/timowlmtn/living-harmonix/internal/keypath"
	"github.com/timowlmtn/living-harmonix/pkg/errors"
	"github.com/timowlmtn/living-harmonix/pkg/types"
)

// Direction is a compass direction used when a capture set sweeps a site.
type Direction string

// Compass directions and their headings in degrees.
const (
	North     Direction = "N"
	NorthEast Direction = "NE"
	East      Direction = "E"
	SouthEast Direction = "SE"
	South     Direction = "S"
	SouthWest Direction = "SW"
	West      Direction = "W"
	NorthWest Direction = "NW"
)

var headingDegrees = map[Direction]int{
	North: 0, NorthEast: 45, East: 90, SouthEast: 135,
	South: 180, SouthWest: 225, West: 270, NorthWest: 315,
}

// directionOrder fixes iteration order for heading sets.
var directionOrder = []Direction{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}

// extensions maps sniffed image content types onto filename extensions.
var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// Syncer writes captures for one namespace. It holds no mutable state beyond
// the injected collaborators, so concurrent capture actions are safe.
type Syncer struct {
	gw      types.Gateway
	scheme  keypath.Scheme
	locator geo.Locator
	logger  *slog.Logger
	metrics types.MetricsRecorder
	now     func() time.Time
}

// NewSyncer returns a Syncer.
func NewSyncer(gw types.Gateway, namespace string, locator geo.Locator, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		gw:      gw,
		scheme:  keypath.NewScheme(namespace),
		locator: locator,
		logger:  logger,
		now:     time.Now,
	}
}

// SetMetrics attaches a poll-attempt recorder. Nil disables collection.
func (s *Syncer) SetMetrics(m types.MetricsRecorder) {
	s.metrics = m
}

func (s *Syncer) recordPoll(found bool) {
	if s.metrics != nil {
		s.metrics.RecordPollAttempt(found)
	}
}

// SaveImage stores one image capture and returns its key.
//
// The device position resolves first; a locator failure surfaces as
// GEOLOCATION_UNAVAILABLE with no fallback coordinate. The payload must sniff
// as image/* or the call fails with INVALID_PAYLOAD. Exactly one object write
// carries the image; the folder marker write is a separate UI affordance.
func (s *Syncer) SaveImage(ctx context.Context, userID, projectID string, image []byte, heading string) (string, error) {
	contentType, ext, err := sniffImage(image)
	if err != nil {
		return "", err
	}

	folder, err := s.resolveFolder(ctx, userID, projectID)
	if err != nil {
		return "", err
	}

	key := folder + keypath.TimestampKey(s.now(), heading) + ext
	if err := s.gw.PutObject(ctx, key, image, contentType); err != nil {
		return "", err
	}
	s.logger.Debug("image capture saved", "key", key, "size", len(image))
	return key, nil
}

// SaveText stores a plain-text note with the same folder resolution as an
// image capture. No annotation is ever expected for text.
func (s *Syncer) SaveText(ctx context.Context, userID, projectID, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.New(errors.ErrCodeInvalidPayload, "text capture is empty")
	}

	folder, err := s.resolveFolder(ctx, userID, projectID)
	if err != nil {
		return "", err
	}

	key := folder + keypath.TimestampKey(s.now(), "") + ".txt"
	if err := s.gw.PutObject(ctx, key, []byte(text), "text/plain"); err != nil {
		return "", err
	}
	return key, nil
}

// SaveImageAndAwaitAnnotation uploads the image, then polls for the side-car
// annotation the external annotator will eventually write.
//
// OBJECT_NOT_FOUND on the annotation key is the only retryable outcome; any
// other failure propagates immediately rather than masquerading as "not yet
// ready". When timeout elapses the call fails with ANNOTATION_TIMEOUT naming
// the polled key — the image itself is already persisted and stays persisted.
// Cancelling ctx stops the wait promptly; the poll never busy-loops.
func (s *Syncer) SaveImageAndAwaitAnnotation(ctx context.Context, userID, projectID string, image []byte, heading string, timeout, pollInterval time.Duration) (string, error) {
	imageKey, err := s.SaveImage(ctx, userID, projectID, image, heading)
	if err != nil {
		return "", err
	}
	annKey := keypath.AnnotationKey(imageKey)
	deadline := s.now().Add(timeout)

	for {
		body, err := s.gw.GetObject(ctx, annKey)
		switch {
		case err == nil:
			s.recordPoll(true)
			return string(body), nil
		case !errors.IsNotFound(err):
			return "", err
		}
		s.recordPoll(false)

		if !s.now().Before(deadline) {
			return "", errors.Newf(errors.ErrCodeAnnotationTimeout,
				"no annotation after %s", timeout).WithKey(annKey)
		}

		timer := time.NewTimer(pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", fmt.Errorf("annotation wait canceled: %w", ctx.Err())
		case <-timer.C:
		}
	}
}

// SaveHeadingSet stores one image per provided compass direction, deriving
// each filename's heading suffix from the direction's degrees. Directions
// are processed in compass order; the first failure aborts the rest.
func (s *Syncer) SaveHeadingSet(ctx context.Context, userID, projectID string, images map[Direction][]byte) ([]string, error) {
	var keys []string
	for _, dir := range directionOrder {
		image, ok := images[dir]
		if !ok {
			continue
		}
		key, err := s.SaveImage(ctx, userID, projectID, image, fmt.Sprintf("%d", headingDegrees[dir]))
		if err != nil {
			return keys, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// resolveFolder geolocates the device and ensures today's capture folder
// marker exists.
func (s *Syncer) resolveFolder(ctx context.Context, userID, projectID string) (string, error) {
	coord, err := s.locator.Current(ctx)
	if err != nil {
		if errors.CodeOf(err) == errors.ErrCodeGeolocationUnavailable {
			return "", err
		}
		return "", errors.New(errors.ErrCodeGeolocationUnavailable, "device position unavailable").WithCause(err)
	}

	folder := s.scheme.CaptureFolder(userID, projectID,
		keypath.DateISO(s.now()), keypath.LatLonKey(coord.Lat, coord.Lon))
	if err := s.gw.PutObject(ctx, folder, nil, ""); err != nil {
		return "", err
	}
	return folder, nil
}

// sniffImage validates the payload is an image and picks its extension.
func sniffImage(image []byte) (contentType, ext string, err error) {
	if len(image) == 0 {
		return "", "", errors.New(errors.ErrCodeInvalidPayload, "image payload is empty")
	}
	contentType = http.DetectContentType(image)
	if !strings.HasPrefix(contentType, "image/") {
		return "", "", errors.Newf(errors.ErrCodeInvalidPayload,
			"payload sniffed as %s, not an image", contentType)
	}
	ext, ok := extensions[contentType]
	if !ok {
		ext = "." + strings.TrimPrefix(contentType, "image/")
	}
	return contentType, ext, nil
}
