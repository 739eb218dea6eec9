package service

import (
	"context"
	"fmt"
	"net/url"
	"pixproxy/internal/core/domain"
	"pixproxy/internal/core/port"
	"time"

	"github.com/rs/zerolog/log"
)

// Pipeline sequences a source lookup and the transformation of the returned bytes.
type Pipeline struct {
	cache       port.SourceCache
	transformer port.Transformer
	timeout     time.Duration
}

func NewPipeline(cache port.SourceCache, transformer port.Transformer, timeout time.Duration) *Pipeline {
	return &Pipeline{cache: cache, transformer: transformer, timeout: timeout}
}

func (p *Pipeline) Process(ctx context.Context, req domain.Request) (domain.Result, error) {
	encoding, err := domain.NewEncoding(req.Format, req.Quality)
	if err != nil {
		return domain.Result{}, err
	}

	source, err := ParseSource(req.Source)
	if err != nil {
		return domain.Result{}, err
	}

	l := log.Ctx(ctx).With().Str("source", source.Redacted()).Stringer("encoding", encoding).Logger()

	cached, err := p.cache.Get(ctx, source)
	if err != nil {
		return domain.Result{}, fmt.Errorf("failed to load source: %w", err)
	}

	l.Debug().Stringer("cache", cached.Status).Int("bytes", len(cached.Bytes)).Msg("source loaded")

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()

	output, err := p.transformer.Transform(ctx, cached.Bytes, encoding, req.Dimensions)
	if err != nil {
		return domain.Result{}, fmt.Errorf("failed to transform source: %w", err)
	}

	l.Debug().Dur("took", time.Since(start)).Int("bytes", len(output)).Msg("source transformed")

	return domain.Result{
		Bytes:       output,
		MIMEType:    encoding.MIMEType(),
		CacheStatus: cached.Status,
	}, nil
}

// ParseSource parses an absolute source URL.
func ParseSource(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, &domain.MalformedSourceError{Reason: "unable to parse source url", Err: err}
	}

	if !u.IsAbs() {
		return nil, &domain.MalformedSourceError{Reason: fmt.Sprintf("source url %q is not absolute", raw)}
	}

	return u, nil
}
