package codec

import (
	"bytes"
	"context"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"pixproxy/internal/core/domain"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/webp"
)

// Layout is the pixel layout an image was decoded into.
type Layout int

const (
	LayoutOther Layout = iota
	LayoutRGB8
	LayoutRGBA8
)

func (l Layout) String() string {
	switch l {
	case LayoutRGB8:
		return "rgb8"
	case LayoutRGBA8:
		return "rgba8"
	default:
		return "other"
	}
}

// raster is a decoded image together with the layout it was decoded into. Resizing
// normalizes pixels to NRGBA, so the layout has to be captured before.
type raster struct {
	img    image.Image
	layout Layout
}

func layoutOf(img image.Image) Layout {
	switch img.(type) {
	case *image.YCbCr:
		return LayoutRGB8
	case *image.RGBA, *image.NRGBA, *image.NYCbCrA, *image.Paletted:
		return LayoutRGBA8
	default:
		return LayoutOther
	}
}

func decode(data []byte, format domain.Format) (raster, error) {
	r := bytes.NewReader(data)

	var (
		img image.Image
		err error
	)

	switch format {
	case domain.FormatJPEG:
		img, err = jpeg.Decode(r)
	case domain.FormatPNG:
		img, err = png.Decode(r)
	case domain.FormatGIF:
		img, err = gif.Decode(r)
	case domain.FormatWebP:
		img, err = webp.Decode(r)
	default:
		return raster{}, &domain.UnsupportedEncodingError{Stage: domain.StageDecode, Detail: format.String()}
	}

	if err != nil {
		return raster{}, &domain.ImageError{Stage: domain.StageDecode, Err: err}
	}

	return raster{img: img, layout: layoutOf(img)}, nil
}

func transformRaster(ctx context.Context, source []byte, format domain.Format, target domain.Encoding,
	requested domain.DimensionRequest, ceiling domain.Size) ([]byte, error) {
	src, err := decode(source, format)
	if err != nil {
		return nil, err
	}

	bounds := src.img.Bounds()
	original := domain.Size{Width: uint32(bounds.Dx()), Height: uint32(bounds.Dy())}
	size := domain.Dimensions(original, requested, ceiling, false)

	log.Debug().
		Stringer("layout", src.layout).
		Uint32("width", original.Width).
		Uint32("height", original.Height).
		Uint32("targetWidth", size.Width).
		Uint32("targetHeight", size.Height).
		Msg("resizing image")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resized := imaging.Resize(src.img, int(max(size.Width, 1)), int(max(size.Height, 1)), imaging.Lanczos)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return encode(resized, src.layout, target)
}
