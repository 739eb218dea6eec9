package codec

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"pixproxy/internal/core/domain"

	"github.com/nfnt/resize"
	"github.com/rs/zerolog/log"
)

// framePalette reserves index 0 for transparency.
var framePalette = append(color.Palette{color.Transparent}, palette.Plan9[:255]...)

func transformAnimated(ctx context.Context, source []byte, requested domain.DimensionRequest,
	ceiling domain.Size) ([]byte, error) {
	// DecodeAll rejects frames that do not fit the logical screen, so every frame lies
	// within canvas.
	g, err := gif.DecodeAll(bytes.NewReader(source))
	if err != nil {
		return nil, &domain.ImageError{Stage: domain.StageDecode, Err: err}
	}

	canvas := image.Rect(0, 0, g.Config.Width, g.Config.Height)

	size := domain.Dimensions(
		domain.Size{Width: uint32(canvas.Dx()), Height: uint32(canvas.Dy())},
		requested, ceiling, false,
	)
	width, height := uint(max(size.Width, 1)), uint(max(size.Height, 1))

	log.Debug().
		Int("frames", len(g.Image)).
		Int("width", canvas.Dx()).
		Int("height", canvas.Dy()).
		Uint("targetWidth", width).
		Uint("targetHeight", height).
		Msg("resizing animation")

	out := &gif.GIF{
		Image:     make([]*image.Paletted, 0, len(g.Image)),
		Delay:     make([]int, 0, len(g.Image)),
		Disposal:  make([]byte, 0, len(g.Image)),
		LoopCount: 0,
		Config: image.Config{
			ColorModel: framePalette,
			Width:      int(width),
			Height:     int(height),
		},
	}

	target := image.Rect(0, 0, int(width), int(height))
	composite := image.NewRGBA(canvas)

	for i, frame := range g.Image {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var disposal byte
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}

		var previous *image.RGBA
		if disposal == gif.DisposalPrevious {
			previous = image.NewRGBA(canvas)
			copy(previous.Pix, composite.Pix)
		}

		draw.Draw(composite, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)

		resized := resize.Resize(width, height, composite, resize.Bilinear)
		quantized := image.NewPaletted(target, framePalette)
		draw.FloydSteinberg.Draw(quantized, target, resized, resized.Bounds().Min)

		out.Image = append(out.Image, quantized)
		out.Delay = append(out.Delay, g.Delay[i])
		out.Disposal = append(out.Disposal, gif.DisposalBackground)

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(composite, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			composite = previous
		}
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, out); err != nil {
		return nil, &domain.ImageError{Stage: domain.StageEncode, Err: err}
	}

	return buf.Bytes(), nil
}
