package port

import (
	"context"
	"net/url"
)

type Fetcher interface {
	// Fetch downloads the resource at u and returns its bytes, rejecting sources larger than limit bytes. A zero limit
	// defers to the fetcher's configured maximum.
	Fetch(ctx context.Context, u *url.URL, limit uint64) ([]byte, error)
}
