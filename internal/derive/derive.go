// Package derive materializes derived artifacts (page extractions and
// highlighted snippets) from stored documents and caches each one under a
// deterministic key. The blob store is the cache: an existing object at the
// key is served as-is.
package derive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/JaimeStill/folio/pkg/render"
	"github.com/JaimeStill/folio/pkg/storage"
	"github.com/JaimeStill/folio/pkg/workers"
)

// Artifact points at a stored object.
type Artifact struct {
	Key    string
	URL    string
	Cached bool
}

// System derives artifacts and removes them.
type System interface {
	// Derive returns a signed pointer to the artifact described by req,
	// generating and storing it first when absent.
	Derive(ctx context.Context, req Request) (*Artifact, error)
	// Purge deletes the source document and every artifact derived from it.
	// A missing source is not an error.
	Purge(ctx context.Context, src Source) error
}

type system struct {
	store    storage.System
	backend  render.Backend
	pool     workers.System
	dpi      int
	ttl      time.Duration
	coalesce bool
	group    singleflight.Group
	logger   *slog.Logger
}

// New creates a derivation system. dpi applies to raster formats.
func New(
	cfg *Config,
	store storage.System,
	backend render.Backend,
	pool workers.System,
	dpi int,
	logger *slog.Logger,
) System {
	return &system{
		store:    store,
		backend:  backend,
		pool:     pool,
		dpi:      dpi,
		ttl:      cfg.URLTTLDuration(),
		coalesce: !cfg.DisableCoalescing,
		logger:   logger.With("system", "derive"),
	}
}

func (s *system) Derive(ctx context.Context, req Request) (*Artifact, error) {
	key, err := Key(req)
	if err != nil {
		return nil, err
	}

	var cached bool
	if req.Kind == KindDocument {
		cached, err = s.probeSource(ctx, req.Source)
	} else {
		cached, err = s.materialize(ctx, req, key)
	}
	if err != nil {
		return nil, err
	}

	url, err := s.store.SignedURL(ctx, req.Source.Bucket, key, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("%w: sign %s: %w", ErrStore, key, err)
	}

	return &Artifact{Key: key, URL: url, Cached: cached}, nil
}

func (s *system) probeSource(ctx context.Context, src Source) (bool, error) {
	key := SourceKey(src.ID)

	exists, err := s.store.Exists(ctx, src.Bucket, key)
	if err != nil {
		return false, fmt.Errorf("%w: probe %s: %w", ErrStore, key, err)
	}
	if !exists {
		return false, fmt.Errorf("%w: %s", ErrSourceNotFound, key)
	}
	return true, nil
}

// materialize runs the check-then-generate protocol, sharing one in-flight
// execution per bucket/key when coalescing is enabled. The shared execution
// is detached from the leader's cancellation so followers are not failed
// by it.
func (s *system) materialize(ctx context.Context, req Request, key string) (bool, error) {
	if !s.coalesce {
		return s.generate(ctx, req, key)
	}

	v, err, shared := s.group.Do(req.Source.Bucket+"/"+key, func() (any, error) {
		return s.generate(context.WithoutCancel(ctx), req, key)
	})
	if err != nil {
		return false, err
	}

	cached := v.(bool)
	if shared {
		s.logger.Debug("coalesced derivation", "key", key)
	}
	return cached, nil
}

func (s *system) generate(ctx context.Context, req Request, key string) (bool, error) {
	bucket := req.Source.Bucket

	exists, err := s.store.Exists(ctx, bucket, key)
	if err != nil {
		return false, fmt.Errorf("%w: probe %s: %w", ErrStore, key, err)
	}
	if exists {
		s.logger.Debug("artifact cache hit", "bucket", bucket, "key", key)
		return true, nil
	}
	s.logger.Debug("artifact cache miss", "bucket", bucket, "key", key)

	srcKey := SourceKey(req.Source.ID)
	src, err := s.store.Get(ctx, bucket, srcKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, fmt.Errorf("%w: %s", ErrSourceNotFound, srcKey)
		}
		return false, fmt.Errorf("%w: get %s: %w", ErrStore, srcKey, err)
	}

	var (
		data         []byte
		transformErr error
	)
	start := time.Now()
	err = s.pool.Do(ctx, func() error {
		data, transformErr = s.transform(src, req)
		return transformErr
	})
	switch {
	case transformErr != nil:
		return false, fmt.Errorf("%w: %s: %w", ErrGeneration, key, transformErr)
	case errors.Is(err, workers.ErrPanic):
		return false, fmt.Errorf("%w: %s: %w", ErrGeneration, key, err)
	case err != nil:
		return false, fmt.Errorf("schedule transform %s: %w", key, err)
	}

	if err := s.store.Put(ctx, bucket, key, data, req.Format.ContentType()); err != nil {
		return false, fmt.Errorf("%w: put %s: %w", ErrStore, key, err)
	}

	s.logger.Info(
		"artifact generated",
		"bucket", bucket,
		"key", key,
		"kind", req.Kind.String(),
		"bytes", len(data),
		"duration", time.Since(start),
	)
	return false, nil
}

func (s *system) transform(src []byte, req Request) ([]byte, error) {
	doc, err := s.backend.Parse(src)
	if err != nil {
		return nil, err
	}

	page, err := s.backend.ExtractRange(doc, req.Page, req.Page)
	if err != nil {
		return nil, err
	}

	switch req.Kind {
	case KindPage:
	case KindSnippet:
		if err := s.backend.DrawFilledRect(page, 0, req.Bounds, render.Gold, 0.5); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: no transform for %s", ErrInvalidRequest, req.Kind)
	}

	return s.backend.Serialize(page, req.Format, s.dpi)
}

func (s *system) Purge(ctx context.Context, src Source) error {
	if src.ID == "" || src.Bucket == "" {
		return fmt.Errorf("%w: source id and bucket required", ErrInvalidRequest)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		key := SourceKey(src.ID)
		err := s.store.Delete(gctx, src.Bucket, key)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: delete %s: %w", ErrStore, key, err)
		}
		return nil
	})

	for _, prefix := range []string{PagePrefix(src.ID), SnippetPrefix(src.ID)} {
		g.Go(func() error {
			n, err := s.store.DeletePrefix(gctx, src.Bucket, prefix)
			if err != nil {
				return fmt.Errorf("%w: delete %s*: %w", ErrStore, prefix, err)
			}
			if n > 0 {
				s.logger.Info("purged artifacts", "bucket", src.Bucket, "prefix", prefix, "count", n)
			}
			return nil
		})
	}

	return g.Wait()
}
