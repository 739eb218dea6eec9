package service

import (
	"context"
	"errors"
	"net/url"
	"pixproxy/internal/core/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSourceCache struct{ mock.Mock }

func (m *MockSourceCache) Get(ctx context.Context, u *url.URL) (domain.CacheResponse, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(domain.CacheResponse), args.Error(1)
}

func (m *MockSourceCache) Insert(key string, data []byte) {
	m.Called(key, data)
}

type MockTransformer struct{ mock.Mock }

func (m *MockTransformer) Transform(ctx context.Context, source []byte, target domain.Encoding,
	requested domain.DimensionRequest) ([]byte, error) {
	args := m.Called(ctx, source, target, requested)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func quality(q int) *int {
	return &q
}

func TestPipeline_Process(t *testing.T) {
	width := uint32(50)
	source := "https://example.com/a.png"

	tests := []struct {
		name       string
		req        domain.Request
		setup      func(c *MockSourceCache, tr *MockTransformer)
		want       domain.Result
		wantErr    error
		checkErrAs func(t *testing.T, err error)
	}{
		{
			name: "transforms cached source",
			req: domain.Request{
				Source:     source,
				Format:     domain.FormatWebP,
				Quality:    quality(70),
				Dimensions: domain.DimensionRequest{Width: &width},
			},
			setup: func(c *MockSourceCache, tr *MockTransformer) {
				c.On("Get", mock.Anything, mock.MatchedBy(func(u *url.URL) bool {
					return u.String() == source
				})).Return(domain.CacheResponse{Bytes: []byte("src"), Status: domain.Hit}, nil)
				tr.On("Transform", mock.Anything, []byte("src"),
					domain.Encoding{Format: domain.FormatWebP, Quality: 70},
					domain.DimensionRequest{Width: &width}).Return([]byte("out"), nil)
			},
			want: domain.Result{Bytes: []byte("out"), MIMEType: "image/webp", CacheStatus: domain.Hit},
		},
		{
			name: "invalid quality is rejected before the cache is consulted",
			req:  domain.Request{Source: source, Format: domain.FormatJPEG, Quality: quality(101)},
			setup: func(_ *MockSourceCache, _ *MockTransformer) {
				// No call
			},
			checkErrAs: func(t *testing.T, err error) {
				var qErr *domain.InvalidQualityError
				require.ErrorAs(t, err, &qErr)
				assert.Equal(t, &domain.InvalidQualityError{Min: 0, Max: 100, Got: 101}, qErr)
			},
		},
		{
			name: "relative source is malformed",
			req:  domain.Request{Source: "/a.png", Format: domain.FormatJPEG},
			setup: func(_ *MockSourceCache, _ *MockTransformer) {
				// No call
			},
			checkErrAs: func(t *testing.T, err error) {
				var srcErr *domain.MalformedSourceError
				require.ErrorAs(t, err, &srcErr)
			},
		},
		{
			name: "cache error is propagated",
			req:  domain.Request{Source: source, Format: domain.FormatPNG},
			setup: func(c *MockSourceCache, _ *MockTransformer) {
				c.On("Get", mock.Anything, mock.Anything).
					Return(domain.CacheResponse{}, domain.ErrInvalidInput)
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "transform error is propagated",
			req:  domain.Request{Source: source, Format: domain.FormatPNG},
			setup: func(c *MockSourceCache, tr *MockTransformer) {
				c.On("Get", mock.Anything, mock.Anything).
					Return(domain.CacheResponse{Bytes: []byte("src"), Status: domain.Miss}, nil)
				tr.On("Transform", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(nil, &domain.UnsupportedEncodingError{Stage: domain.StageDecode})
			},
			checkErrAs: func(t *testing.T, err error) {
				var encErr *domain.UnsupportedEncodingError
				require.ErrorAs(t, err, &encErr)
				assert.Equal(t, domain.StageDecode, encErr.Stage)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := new(MockSourceCache)
			tr := new(MockTransformer)
			tt.setup(c, tr)

			p := NewPipeline(c, tr, time.Second)
			got, err := p.Process(t.Context(), tt.req)

			switch {
			case tt.checkErrAs != nil:
				tt.checkErrAs(t, err)
			case tt.wantErr != nil:
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			c.AssertExpectations(t)
			tr.AssertExpectations(t)
		})
	}
}

func TestPipelineAppliesTransformTimeout(t *testing.T) {
	c := new(MockSourceCache)
	tr := new(MockTransformer)

	c.On("Get", mock.Anything, mock.Anything).
		Return(domain.CacheResponse{Bytes: []byte("src"), Status: domain.Miss}, nil)
	tr.On("Transform", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), mock.Anything, mock.Anything, mock.Anything).Return([]byte("out"), nil)

	p := NewPipeline(c, tr, time.Minute)
	_, err := p.Process(context.Background(), domain.Request{Source: "https://example.com/a.gif",
		Format: domain.FormatGIF})
	require.NoError(t, err)
	tr.AssertExpectations(t)
}

func TestParseSource(t *testing.T) {
	u, err := ParseSource("https://example.com/a.png?x=1")
	require.NoError(t, err)
	assert.Equal(t, "example.com", u.Host)

	_, err = ParseSource("://nope")
	var srcErr *domain.MalformedSourceError
	require.ErrorAs(t, err, &srcErr)
}
