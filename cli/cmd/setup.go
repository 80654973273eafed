package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/facet/cache"
	"github.com/pithecene-io/facet/cli/config"
	"github.com/pithecene-io/facet/loader"
	"github.com/pithecene-io/facet/manifest"
	"github.com/pithecene-io/facet/notify"
	notifyredis "github.com/pithecene-io/facet/notify/redis"
	notifywebhook "github.com/pithecene-io/facet/notify/webhook"
	"github.com/pithecene-io/facet/source"
)

// Exit codes shared across commands.
const (
	exitSuccess     = 0
	exitResolveFail = 1
	exitManifestBad = 2
)

// DefaultFilename is the manifest filename when neither config nor flags
// name one.
const DefaultFilename = "manifest.json"

// setup is the merged config+flag state a command resolves manifests with.
type setup struct {
	cfg      *config.Config
	filename string
	mode     string
}

// loadSetup reads the config file (if present) and merges CLI flags over
// it. Flags always win.
func loadSetup(c *cli.Context) (*setup, error) {
	cfg, err := config.LoadOptional(c.String("config"))
	if err != nil {
		return nil, err
	}

	if v := c.String("manifest"); v != "" {
		cfg.Filename = v
	}
	if v := c.String("resolve-from"); v != "" {
		cfg.ResolveFrom = v
	}
	if v := c.String("dev-server"); v != "" {
		cfg.DevServer.URL = v
	}
	if c.Bool("inject-bundle") {
		cfg.DevServer.InjectBundle = true
	}
	if v := c.String("s3"); v != "" {
		bucket, prefix := source.ParseS3Path(v)
		cfg.S3.Bucket = bucket
		cfg.S3.Prefix = prefix
	}
	if v := c.String("cache-url"); v != "" {
		cfg.Cache.URL = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &setup{cfg: cfg, filename: cfg.Filename}
	if s.filename == "" {
		s.filename = DefaultFilename
	}

	switch {
	case cfg.DevServer.URL != "":
		s.mode = "dev"
	case cfg.S3.Bucket != "":
		s.mode = "s3"
	default:
		s.mode = "file"
	}
	return s, nil
}

// newLoader builds the loader for the selected mode. S3 sources are
// wrapped with the shared Redis cache when cache.url is configured.
func (s *setup) newLoader(ctx context.Context) (*loader.Loader, error) {
	lc := loader.Config{
		DevServerURL:      s.cfg.DevServer.URL,
		InjectDevBundle:   s.cfg.DevServer.InjectBundle,
		ResolveFrom:       s.cfg.ResolveFrom,
		Timeout:           s.cfg.DevServer.Timeout.Duration,
		InitialBackoff:    s.cfg.Poll.InitialBackoff.Duration,
		BackoffMultiplier: s.cfg.Poll.Multiplier,
		MaxInvalid:        s.cfg.Poll.MaxInvalid,
	}

	if s.mode == "s3" {
		src, err := s.newS3Source(ctx)
		if err != nil {
			return nil, err
		}
		lc.Source = src
	}

	return loader.New(ctx, s.filename, lc)
}

func (s *setup) newS3Source(ctx context.Context) (source.Source, error) {
	src, err := source.NewS3Source(ctx, s.filename, source.S3Config{
		Bucket:       s.cfg.S3.Bucket,
		Prefix:       s.cfg.S3.Prefix,
		Region:       s.cfg.S3.Region,
		Endpoint:     s.cfg.S3.Endpoint,
		UsePathStyle: s.cfg.S3.PathStyle,
	})
	if err != nil {
		return nil, err
	}

	if s.cfg.Cache.URL == "" {
		return src, nil
	}
	rc, err := cache.NewRedisCache(cache.RedisConfig{
		URL: s.cfg.Cache.URL,
		TTL: s.cfg.Cache.TTL.Duration,
	})
	if err != nil {
		return nil, err
	}
	return cache.WrapSource(src, rc, s.filename, nil), nil
}

// newNotifier builds the configured readiness notifier, or nil when none
// is configured.
func (s *setup) newNotifier() (notify.Notifier, error) {
	nc := s.cfg.Notify
	retries := -1
	if nc.Retries != nil {
		retries = *nc.Retries
	}

	switch nc.Type {
	case "":
		return nil, nil
	case "webhook":
		wc := notifywebhook.Config{
			URL:     nc.URL,
			Headers: nc.Headers,
			Timeout: nc.Timeout.Duration,
			Retries: notifywebhook.DefaultRetries,
		}
		if retries >= 0 {
			wc.Retries = retries
		}
		return notifywebhook.New(wc)
	case "redis":
		rc := notifyredis.Config{
			URL:     nc.URL,
			Channel: nc.Channel,
			Timeout: nc.Timeout.Duration,
			Retries: notifyredis.DefaultRetries,
		}
		if retries >= 0 {
			rc.Retries = retries
		}
		return notifyredis.New(rc)
	default:
		return nil, fmt.Errorf("unknown notifier type %q", nc.Type)
	}
}

// manifestExit converts a loader/manifest error into the documented exit
// code: 2 when the manifest itself is unavailable or invalid, 1 otherwise.
func manifestExit(err error) error {
	if err == nil {
		return nil
	}
	code := exitResolveFail
	if errors.Is(err, manifest.ErrMalformed) ||
		errors.Is(err, manifest.ErrNotReady) ||
		errors.Is(err, manifest.ErrNotFound) ||
		errors.Is(err, manifest.ErrUnavailable) {
		code = exitManifestBad
	}
	return cli.Exit(err.Error(), code)
}
