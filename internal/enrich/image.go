package enrich

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/palemoky/philosophy-catalog-api/internal/logger"
	"github.com/palemoky/philosophy-catalog-api/internal/storage"
)

// ImageResolver turns a display name into an image URL. Implementations
// always return a non-empty URL.
type ImageResolver interface {
	Resolve(ctx context.Context, name string) string
}

// ImageSource looks up a real image for one name variant.
type ImageSource interface {
	FindImage(ctx context.Context, title string) (string, error)
}

// DirectResolver queries the source under every name variant and falls back
// to a generated placeholder.
type DirectResolver struct {
	source   ImageSource
	aliases  *AliasTable
	fallback func(name string) string
}

var _ ImageResolver = (*DirectResolver)(nil)

// NewDirectResolver returns a resolver over source. fallback must return a
// non-empty URL for any name.
func NewDirectResolver(source ImageSource, aliases *AliasTable, fallback func(name string) string) *DirectResolver {
	return &DirectResolver{source: source, aliases: aliases, fallback: fallback}
}

// Resolve returns the first image found for any variant, else the fallback URL.
func (r *DirectResolver) Resolve(ctx context.Context, name string) string {
	if r.source != nil {
		for _, variant := range r.aliases.Variants(name) {
			img, err := r.source.FindImage(ctx, variant)
			if err == nil && img != "" {
				return img
			}
			if err != nil && !errors.Is(err, ErrNoImage) {
				logger.Warn("Image lookup failed",
					zap.String("person", name),
					zap.String("variant", variant),
					zap.String("step", "image"),
					zap.Error(err),
				)
			}
			if ctx.Err() != nil {
				break
			}
		}
	}
	return r.fallback(name)
}

// MirrorResolver copies resolved images into object storage under a key
// derived from the name, and reuses the stored object when the key exists.
type MirrorResolver struct {
	inner   ImageResolver
	store   storage.ObjectStore
	fetcher *Fetcher
	key     func(name string) string
}

var _ ImageResolver = (*MirrorResolver)(nil)

// NewMirrorResolver wraps inner. key maps a name to its object key, e.g.
// storage.PortraitKey.
func NewMirrorResolver(inner ImageResolver, store storage.ObjectStore, fetcher *Fetcher, key func(name string) string) *MirrorResolver {
	return &MirrorResolver{inner: inner, store: store, fetcher: fetcher, key: key}
}

// Resolve returns the stored object's URL, mirroring first when needed. If
// mirroring fails the directly resolved URL is returned.
func (r *MirrorResolver) Resolve(ctx context.Context, name string) string {
	key := r.key(name)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		logger.Warn("Object lookup failed", zap.String("person", name), zap.String("key", key), zap.Error(err))
	} else if exists {
		return r.store.URL(key)
	}

	direct := r.inner.Resolve(ctx, name)

	body, contentType, err := r.fetcher.Get(ctx, direct)
	if err != nil {
		logger.Warn("Image download failed",
			zap.String("person", name),
			zap.String("step", "mirror"),
			zap.Error(err),
		)
		return direct
	}
	if err := r.store.Put(ctx, key, body, contentType); err != nil {
		logger.Warn("Image upload failed",
			zap.String("person", name),
			zap.String("step", "mirror"),
			zap.String("key", key),
			zap.Error(err),
		)
		return direct
	}

	logger.Debug("Image mirrored", zap.String("person", name), zap.String("key", key))
	return r.store.URL(key)
}
