package port

import (
	"context"
	"pixproxy/internal/core/domain"
)

type Transformer interface {
	// Transform decodes the source bytes, resizes them to the requested dimensions bounded by the ceiling for the
	// target format and returns the re-encoded image.
	Transform(ctx context.Context, source []byte, target domain.Encoding, requested domain.DimensionRequest) (
		[]byte, error)
}
