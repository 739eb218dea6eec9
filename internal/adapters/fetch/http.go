package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"pixproxy/internal/core/domain"
	"pixproxy/internal/core/port"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const maxRedirects = 10

type Options struct {
	// MaxSize is the largest source accepted when the caller passes no limit.
	MaxSize uint64
	Timeout time.Duration
	// RateLimit caps outgoing requests per second. Zero disables throttling.
	RateLimit float64
	Burst     int
}

// HTTPFetcher downloads sources from hosts accepted by a HostPolicy.
type HTTPFetcher struct {
	policy  port.HostPolicy
	maxSize uint64
	client  *http.Client
	limiter *rate.Limiter
}

func NewHTTPFetcher(policy port.HostPolicy, opts Options) *HTTPFetcher {
	f := &HTTPFetcher{
		policy:  policy,
		maxSize: opts.MaxSize,
	}

	// Transparent decompression hides the declared length of the body.
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DisableCompression = true

	f.client = &http.Client{
		Transport:     transport,
		Timeout:       opts.Timeout,
		CheckRedirect: f.checkRedirect,
	}

	if opts.RateLimit > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), max(opts.Burst, 1))
	}

	return f
}

func (f *HTTPFetcher) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}

	if !f.policy.IsAllowed(req.URL.Hostname()) {
		return &domain.IllegalHostError{Host: req.URL.Hostname()}
	}

	return nil
}

func (f *HTTPFetcher) Fetch(ctx context.Context, u *url.URL, limit uint64) ([]byte, error) {
	if limit == 0 {
		limit = f.maxSize
	}

	host := u.Hostname()
	if !f.policy.IsAllowed(host) {
		return nil, &domain.IllegalHostError{Host: host}
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, &domain.FetchError{URL: u.Redacted(), Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &domain.FetchError{URL: u.Redacted(), Err: fmt.Errorf("error creating request: %w", err)}
	}

	log.Debug().Str("url", u.Redacted()).Msg("fetching source")

	res, err := f.client.Do(req)
	if err != nil {
		var hostErr *domain.IllegalHostError
		if errors.As(err, &hostErr) {
			log.Warn().Str("url", u.Redacted()).Str("host", hostErr.Host).Msg("redirect to illegal host")
			return nil, hostErr
		}

		return nil, &domain.FetchError{URL: u.Redacted(), Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &domain.FetchError{URL: u.Redacted(), Err: &domain.UpstreamStatusError{StatusCode: res.StatusCode}}
	}

	if res.ContentLength < 0 {
		log.Debug().Str("url", u.Redacted()).Msg("source has no declared length")
		return nil, domain.ErrInvalidInput
	}

	if declared := uint64(res.ContentLength); declared > limit {
		return nil, &domain.MaxSizeExceededError{Limit: limit, Size: declared}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, int64(min(limit, math.MaxInt64-1))+1))
	if err != nil {
		return nil, &domain.FetchError{URL: u.Redacted(), Err: fmt.Errorf("error reading response: %w", err)}
	}

	if received := uint64(len(buf)); received > limit {
		return nil, &domain.MaxSizeExceededError{Limit: limit, Size: received}
	}

	log.Debug().Str("url", u.Redacted()).Int("bytes", len(buf)).Msg("fetched source")

	return buf, nil
}
