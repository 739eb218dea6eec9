package codec

import (
	"context"
	"pixproxy/internal/core/domain"

	"github.com/rs/zerolog/log"
)

// Dispatcher routes a source image to the animated or the raster path depending on the
// detected source format and the target encoding.
type Dispatcher struct {
	limits domain.DimensionLimits
}

func NewDispatcher(limits domain.DimensionLimits) *Dispatcher {
	return &Dispatcher{limits: limits}
}

func (d *Dispatcher) Transform(ctx context.Context, source []byte, target domain.Encoding,
	requested domain.DimensionRequest) ([]byte, error) {
	format, err := Detect(source)
	if err != nil {
		return nil, err
	}

	ceiling := d.limits.For(target.Format)

	log.Debug().
		Stringer("source", format).
		Stringer("target", target).
		Uint32("maxWidth", ceiling.Width).
		Uint32("maxHeight", ceiling.Height).
		Msg("dispatching transform")

	if format == domain.FormatGIF && target.Format == domain.FormatGIF {
		return transformAnimated(ctx, source, requested, ceiling)
	}

	return transformRaster(ctx, source, format, target, requested, ceiling)
}
