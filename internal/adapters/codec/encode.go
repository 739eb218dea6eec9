package codec

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"pixproxy/internal/core/domain"

	"github.com/chai2010/webp"
)

// encode writes img in the target encoding. layout is the pixel layout of the source before
// resizing and decides whether WebP can be produced.
func encode(img image.Image, layout Layout, target domain.Encoding) ([]byte, error) {
	var (
		buf bytes.Buffer
		err error
	)

	switch target.Format {
	case domain.FormatJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: target.Quality})
	case domain.FormatPNG:
		err = png.Encode(&buf, img)
	case domain.FormatGIF:
		err = gif.Encode(&buf, img, nil)
	case domain.FormatWebP:
		return encodeWebP(img, layout, target.Quality)
	default:
		return nil, &domain.UnsupportedEncodingError{Stage: domain.StageEncode, Detail: target.Format.String()}
	}

	if err != nil {
		return nil, &domain.ImageError{Stage: domain.StageEncode, Err: err}
	}

	return buf.Bytes(), nil
}

func encodeWebP(img image.Image, layout Layout, quality int) ([]byte, error) {
	if layout != LayoutRGB8 && layout != LayoutRGBA8 {
		return nil, &domain.UnsupportedEncodingError{
			Stage:  domain.StageEncode,
			Detail: fmt.Sprintf("webp requires an 8-bit rgb or rgba source, got %s", layout),
		}
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, &domain.ImageError{Stage: domain.StageEncode, Err: err}
	}

	return buf.Bytes(), nil
}
