// Package cachemanager provides TTL caches keyed by string-like keys.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager stores values of type V under keys of type K with a TTL.
type CacheManager[K ~string, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K)
	Flush(ctx context.Context)
	Len() int
}
