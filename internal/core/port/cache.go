package port

import (
	"context"
	"net/url"
	"pixproxy/internal/core/domain"
)

type SourceCache interface {
	// Get returns the cached source for u, refreshing it through the fetcher when it is missing or stale. The status
	// reflects the state of the cache before any refresh.
	Get(ctx context.Context, u *url.URL) (domain.CacheResponse, error)
	// Insert stores data under key, replacing any previous entry.
	Insert(key string, data []byte)
}
