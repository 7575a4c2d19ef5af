package metadata

import (
	"context"
	"time"

	"github.com/zjrosen/runmanager/internal/cachemanager"
	"github.com/zjrosen/runmanager/internal/domain/dataset"
)

type infoKey string

// Compile-time check that CachedLoader implements dataset.InfoLoader.
var _ dataset.InfoLoader = (*CachedLoader)(nil)

// CachedLoader keeps loaded info in an in-process cache keyed by dataset path.
// A reload request skips the cached copy and replaces it.
type CachedLoader struct {
	rtc *cachemanager.ReadThroughCache[infoKey, dataset.Info, dataset.LoadRequest]
	ttl time.Duration
}

// NewCachedLoader wraps next with a read-through cache.
func NewCachedLoader(next dataset.InfoLoader, ttl time.Duration) *CachedLoader {
	if ttl <= 0 {
		ttl = cachemanager.DefaultExpiration
	}
	cache := cachemanager.NewInMemoryCacheManager[infoKey, dataset.Info]("dataset-info", ttl, cachemanager.DefaultCleanupInterval)
	return &CachedLoader{
		rtc: cachemanager.NewReadThroughCache[infoKey, dataset.Info, dataset.LoadRequest](cache, next.LoadInfo, false),
		ttl: ttl,
	}
}

// LoadInfo returns cached info for req, loading it through next on a miss.
func (l *CachedLoader) LoadInfo(ctx context.Context, req dataset.LoadRequest) (dataset.Info, error) {
	key := cacheKey(req)
	if req.Reload {
		return l.rtc.Refresh(ctx, key, req, l.ttl)
	}
	return l.rtc.Get(ctx, key, req, l.ttl)
}

// Invalidate drops the cached info for the dataset at path.
func (l *CachedLoader) Invalidate(ctx context.Context, path string) {
	l.rtc.Invalidate(ctx, infoKey(path))
}

func cacheKey(req dataset.LoadRequest) infoKey {
	if req.Path != "" {
		return infoKey(req.Path)
	}
	return infoKey(req.Name)
}
