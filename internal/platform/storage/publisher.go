package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gcs "cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const (
	// immutableCacheControl applies to run folders, which never change.
	immutableCacheControl = "public, max-age=31536000, immutable"
	defaultCacheControl   = "public, max-age=300"
)

// ObjectAttrs are the write-time attributes of an uploaded object.
type ObjectAttrs struct {
	ContentType  string
	CacheControl string
	Metadata     map[string]string
}

// Uploader writes one object.
type Uploader interface {
	Upload(ctx context.Context, bucket, object string, body []byte, attrs ObjectAttrs) error
}

// NewClient opens a Cloud Storage client. An empty credentialsFile uses
// application default credentials.
func NewClient(ctx context.Context, credentialsFile string, opts ...option.ClientOption) (*gcs.Client, error) {
	if strings.TrimSpace(credentialsFile) != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: new client: %w", err)
	}
	return client, nil
}

// GCSUploader uploads through a Cloud Storage client.
type GCSUploader struct {
	client *gcs.Client
}

// NewGCSUploader wraps client.
func NewGCSUploader(client *gcs.Client) (*GCSUploader, error) {
	if client == nil {
		return nil, errors.New("storage uploader: client is required")
	}
	return &GCSUploader{client: client}, nil
}

// Upload writes body to bucket/object in a single request.
func (u *GCSUploader) Upload(ctx context.Context, bucket, object string, body []byte, attrs ObjectAttrs) error {
	w := u.client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = attrs.ContentType
	w.CacheControl = attrs.CacheControl
	w.Metadata = attrs.Metadata
	// One chunk: the artifact and preview are small.
	w.ChunkSize = 0
	if _, err := w.Write(body); err != nil {
		_ = w.Close()
		return fmt.Errorf("storage: write %s/%s: %w", bucket, object, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("storage: close %s/%s: %w", bucket, object, err)
	}
	return nil
}

// File is one asset of a generator run.
type File struct {
	Purpose     Purpose
	ContentType string
	Body        []byte
}

// Published is the location of one uploaded object.
type Published struct {
	Purpose Purpose
	Object  string
	URL     string
}

// Publisher uploads generator output under a run folder and refreshes the
// latest alias.
type Publisher struct {
	uploader     Uploader
	bucket       string
	prefix       string
	cacheControl string
	logger       *zap.Logger
}

// PublisherOption customises a Publisher.
type PublisherOption func(*Publisher)

// WithCacheControl sets Cache-Control on the latest alias.
func WithCacheControl(value string) PublisherOption {
	return func(p *Publisher) {
		if strings.TrimSpace(value) != "" {
			p.cacheControl = value
		}
	}
}

// WithLogger sets the logger for upload diagnostics.
func WithLogger(logger *zap.Logger) PublisherOption {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPublisher builds a Publisher for gs://bucket/prefix.
func NewPublisher(uploader Uploader, bucket, prefix string, opts ...PublisherOption) (*Publisher, error) {
	if uploader == nil {
		return nil, errors.New("storage publisher: uploader is required")
	}
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("storage publisher: bucket is required")
	}
	prefix, err := validatePrefix(prefix)
	if err != nil {
		return nil, err
	}
	p := &Publisher{
		uploader:     uploader,
		bucket:       bucket,
		prefix:       prefix,
		cacheControl: defaultCacheControl,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Publish uploads every file to the run folder, then to the latest alias.
// The alias is only touched once all run objects exist, so a failed
// publish never leaves latest pointing at a half-written run.
func (p *Publisher) Publish(ctx context.Context, runID string, files ...File) ([]Published, error) {
	if len(files) == 0 {
		return nil, errors.New("storage publisher: nothing to publish")
	}
	var out []Published
	for _, latest := range []bool{false, true} {
		cache := immutableCacheControl
		if latest {
			cache = p.cacheControl
		}
		for _, f := range files {
			object, err := BuildObjectPath(f.Purpose, PathParams{Prefix: p.prefix, RunID: runID, Latest: latest})
			if err != nil {
				return out, err
			}
			attrs := ObjectAttrs{
				ContentType:  f.ContentType,
				CacheControl: cache,
				Metadata:     map[string]string{"run-id": runID},
			}
			if err := p.uploader.Upload(ctx, p.bucket, object, f.Body, attrs); err != nil {
				return out, err
			}
			p.logger.Info("object published",
				zap.String("bucket", p.bucket),
				zap.String("object", object),
				zap.Int("bytes", len(f.Body)),
			)
			out = append(out, Published{Purpose: f.Purpose, Object: object, URL: "gs://" + p.bucket + "/" + object})
		}
	}
	return out, nil
}
