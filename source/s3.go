package source

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pithecene-io/facet/iox"
	"github.com/pithecene-io/facet/manifest"
)

// S3Config holds configuration for the S3 manifest source.
type S3Config struct {
	// Bucket is the S3 bucket name (required).
	Bucket string
	// Prefix is the key prefix within the bucket (optional).
	Prefix string
	// Region is the AWS region (optional, uses default chain if empty).
	Region string
	// Endpoint is a custom S3 endpoint URL for S3-compatible providers
	// (e.g. Cloudflare R2, MinIO). Empty uses the default AWS endpoint.
	Endpoint string
	// UsePathStyle forces path-style addressing (bucket in path, not subdomain).
	// Required by most S3-compatible providers (R2, MinIO, etc.).
	UsePathStyle bool
	// Timeout is the per-fetch timeout (default 10s).
	Timeout time.Duration
}

// Validate checks that required S3 configuration is present.
func (c *S3Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("S3 bucket is required")
	}
	return nil
}

// ParseS3Path parses a path in format "s3://bucket/prefix", "bucket/prefix",
// or "bucket". The scheme is optional.
func ParseS3Path(p string) (bucket, prefix string) {
	p = strings.TrimPrefix(p, "s3://")
	parts := strings.SplitN(p, "/", 2)
	bucket = parts[0]
	if len(parts) > 1 {
		prefix = parts[1]
	}
	return bucket, prefix
}

// s3API is the subset of the S3 client the source uses.
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source fetches the manifest from an S3 bucket, for deployments where
// the client build is uploaded alongside the assets it describes.
type S3Source struct {
	client  s3API
	bucket  string
	key     string
	timeout time.Duration
}

// NewS3Source creates an S3 manifest source for cfg.Bucket/cfg.Prefix/filename.
// Uses the AWS SDK default credential chain (env vars, shared config, IAM role).
func NewS3Source(ctx context.Context, filename string, cfg S3Config) (*S3Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if filename == "" {
		return nil, errors.New("S3 source requires a manifest filename")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, manifest.NewError(manifest.ErrUnavailable, "init", cfg.Bucket, err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = &endpoint
		})
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return newS3Source(s3.NewFromConfig(awsConfig, s3Opts...), filename, cfg), nil
}

// newS3Source wires an explicit client; tests use it to stub the S3 API.
func newS3Source(client s3API, filename string, cfg S3Config) *S3Source {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &S3Source{
		client:  client,
		bucket:  cfg.Bucket,
		key:     path.Join(cfg.Prefix, filename),
		timeout: timeout,
	}
}

// Fetch performs a single GetObject and returns the body.
func (s *S3Source) Fetch(ctx context.Context) ([]byte, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.client.GetObject(fetchCtx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		kind := manifest.ErrUnavailable
		if isNoSuchKey(err) {
			kind = manifest.ErrNotFound
		}
		return nil, manifest.NewError(kind, "fetch", s.Name(), err)
	}

	defer iox.DiscardClose(out.Body)
	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, manifest.NewError(manifest.ErrUnavailable, "fetch", s.Name(), err)
	}
	return body, nil
}

// Name returns the s3:// location.
func (s *S3Source) Name() string { return "s3://" + s.bucket + "/" + s.key }

// Close releases source resources.
func (s *S3Source) Close() error { return nil }

// isNoSuchKey reports whether the S3 error indicates a missing object.
func isNoSuchKey(err error) bool {
	var apiErr interface{ ErrorCode() string }
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchKey" || code == "NotFound"
	}
	return false
}

// Verify S3Source implements Source.
var _ Source = (*S3Source)(nil)
