package port

import (
	"context"
	"pixproxy/internal/core/domain"
)

type ImageProcessor interface {
	// Process loads the requested source and returns it transformed into the requested encoding.
	Process(ctx context.Context, req domain.Request) (domain.Result, error)
}
