package s3

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/timowlmtn/living-harmonix/internal/circuit"
	"github.com/timowlmtn/living-harmonix/pkg/retry"
	"github.com/timowlmtn/living-harmonix/pkg/types"
)

// maxDeleteBatch is the provider's per-call ceiling for batch deletion.
const maxDeleteBatch = 1000

// Gateway implements types.Gateway against an S3 bucket.
type Gateway struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	logger    *slog.Logger
	metrics   types.MetricsRecorder
	retryer   *retry.Retryer
	breaker   *circuit.Breaker
}

// New constructs a Gateway. The metrics recorder may be nil.
func New(ctx context.Context, cfg *Config, creds types.Credentials, logger *slog.Logger, metrics types.MetricsRecorder) (*Gateway, error) {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := newClient(ctx, cfg, creds, logger)
	if err != nil {
		return nil, err
	}

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = cfg.MaxRetries
	retryCfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		logger.Warn("retrying store operation", "attempt", attempt, "delay", delay, "error", err)
	}

	breakerCfg := circuit.DefaultConfig()
	breakerCfg.OnStateChange = func(from, to circuit.State) {
		logger.Warn("store circuit state changed", "from", from.String(), "to", to.String())
	}

	return &Gateway{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		logger:    logger,
		metrics:   metrics,
		retryer:   retry.New(retryCfg),
		breaker:   circuit.New(breakerCfg),
	}, nil
}

// call routes one store operation through the circuit breaker and the
// retryer. The breaker sits outside so an exhausted retry run counts once.
func (g *Gateway) call(ctx context.Context, fn func(context.Context) error) error {
	return g.breaker.Do(func() error {
		return g.retryer.Do(ctx, fn)
	})
}

func (g *Gateway) record(op string, start time.Time, err error) {
	if g.metrics != nil {
		g.metrics.RecordOperation(op, time.Since(start), err)
	}
}

// PutObject implements types.Gateway.
func (g *Gateway) PutObject(ctx context.Context, key string, body []byte, contentType string) error {
	start := time.Now()
	reqID := uuid.New().String()
	g.logger.Debug("put object", "request_id", reqID, "key", key, "size", len(body))

	err := g.call(ctx, func(ctx context.Context) error {
		input := &s3.PutObjectInput{
			Bucket: aws.String(g.bucket),
			Key:    aws.String(key),
			Body:   bytes.NewReader(body),
		}
		if contentType != "" {
			input.ContentType = aws.String(contentType)
		}
		_, err := g.client.PutObject(ctx, input)
		return translateError(key, err)
	})
	g.record("put_object", start, err)
	if err != nil {
		g.logger.Error("put object failed", "request_id", reqID, "key", key, "error", err)
	}
	return err
}

// GetObject implements types.Gateway.
func (g *Gateway) GetObject(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()

	var body []byte
	err := g.call(ctx, func(ctx context.Context) error {
		out, err := g.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(g.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return translateError(key, err)
		}
		defer out.Body.Close()
		body, err = io.ReadAll(out.Body)
		if err != nil {
			return translateError(key, err)
		}
		return nil
	})
	g.record("get_object", start, err)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// List implements types.Gateway.
func (g *Gateway) List(ctx context.Context, prefix, delimiter, continuationToken string) (types.ListPage, error) {
	start := time.Now()

	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(g.bucket),
		Prefix: aws.String(prefix),
	}
	if delimiter != "" {
		input.Delimiter = aws.String(delimiter)
	}
	if continuationToken != "" {
		input.ContinuationToken = aws.String(continuationToken)
	}

	var page types.ListPage
	err := g.call(ctx, func(ctx context.Context) error {
		out, err := g.client.ListObjectsV2(ctx, input)
		if err != nil {
			return translateError(prefix, err)
		}
		page = listPageFromOutput(out)
		return nil
	})
	g.record("list", start, err)
	if err != nil {
		return types.ListPage{}, err
	}
	return page, nil
}

// ListAll implements types.Gateway, paging through every key under prefix.
func (g *Gateway) ListAll(ctx context.Context, prefix string) ([]types.Entry, error) {
	start := time.Now()

	paginator := s3.NewListObjectsV2Paginator(g.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(g.bucket),
		Prefix: aws.String(prefix),
	})

	var all []types.Entry
	for paginator.HasMorePages() {
		err := g.breaker.Do(func() error {
			out, perr := paginator.NextPage(ctx)
			if perr != nil {
				return translateError(prefix, perr)
			}
			all = append(all, entriesFromContents(out.Contents)...)
			return nil
		})
		if err != nil {
			g.record("list_all", start, err)
			return nil, err
		}
	}
	g.record("list_all", start, nil)
	return all, nil
}

// DeleteObjects implements types.Gateway. Keys are chunked to the provider
// ceiling; a failed chunk is recorded per key and never aborts later chunks.
func (g *Gateway) DeleteObjects(ctx context.Context, keys []string) ([]string, []types.KeyError, error) {
	start := time.Now()
	reqID := uuid.New().String()

	var deleted []string
	var failures []types.KeyError
	for len(keys) > 0 {
		n := len(keys)
		if n > maxDeleteBatch {
			n = maxDeleteBatch
		}
		chunk := keys[:n]
		keys = keys[n:]

		ids := make([]s3types.ObjectIdentifier, len(chunk))
		for i, k := range chunk {
			ids[i] = s3types.ObjectIdentifier{Key: aws.String(k)}
		}

		var out *s3.DeleteObjectsOutput
		err := g.breaker.Do(func() error {
			var derr error
			out, derr = g.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
				Bucket: aws.String(g.bucket),
				Delete: &s3types.Delete{Objects: ids, Quiet: aws.Bool(true)},
			})
			return translateError("", derr)
		})
		if err != nil {
			g.logger.Warn("delete chunk failed",
				"request_id", reqID, "chunk_size", len(chunk), "error", err)
			for _, k := range chunk {
				failures = append(failures, types.KeyError{Key: k, Err: err})
			}
			continue
		}

		failed := make(map[string]bool, len(out.Errors))
		for _, e := range out.Errors {
			k := aws.ToString(e.Key)
			failed[k] = true
			failures = append(failures, types.KeyError{Key: k, Err: deleteEntryError(e)})
		}
		for _, k := range chunk {
			if !failed[k] {
				deleted = append(deleted, k)
			}
		}
	}

	g.record("delete_objects", start, nil)
	if g.metrics != nil {
		g.metrics.RecordDeleted(len(deleted))
	}
	g.logger.Info("batch delete finished",
		"request_id", reqID, "deleted", len(deleted), "failed", len(failures))
	return deleted, failures, nil
}

// PresignGet implements types.Gateway.
func (g *Gateway) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	start := time.Now()

	req, err := g.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	terr := translateError(key, err)
	g.record("presign_get", start, terr)
	if terr != nil {
		return "", terr
	}
	return req.URL, nil
}

func listPageFromOutput(out *s3.ListObjectsV2Output) types.ListPage {
	page := types.ListPage{
		Entries:   entriesFromContents(out.Contents),
		NextToken: aws.ToString(out.NextContinuationToken),
	}
	for _, cp := range out.CommonPrefixes {
		page.CommonPrefixes = append(page.CommonPrefixes, aws.ToString(cp.Prefix))
	}
	return page
}

func entriesFromContents(contents []s3types.Object) []types.Entry {
	entries := make([]types.Entry, 0, len(contents))
	for _, obj := range contents {
		entries = append(entries, types.Entry{
			Key:          aws.ToString(obj.Key),
			Size:         aws.ToInt64(obj.Size),
			LastModified: aws.ToTime(obj.LastModified),
			ETag:         aws.ToString(obj.ETag),
		})
	}
	return entries
}
