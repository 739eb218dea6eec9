package domain

import "math"

type Size struct {
	Width  uint32
	Height uint32
}

// DimensionRequest holds the optional explicit output dimensions of a request.
type DimensionRequest struct {
	Width  *uint32
	Height *uint32
}

// DimensionLimits holds the output ceilings per target format. Formats without
// an explicit ceiling fall back to Default.
type DimensionLimits struct {
	JPEG    *Size
	WebP    *Size
	PNG     *Size
	GIF     *Size
	Default Size
}

func (l DimensionLimits) For(format Format) Size {
	var limit *Size

	switch format {
	case FormatJPEG:
		limit = l.JPEG
	case FormatWebP:
		limit = l.WebP
	case FormatPNG:
		limit = l.PNG
	case FormatGIF:
		limit = l.GIF
	}

	if limit == nil {
		return l.Default
	}

	return *limit
}

// Dimensions calculates the size a media should be resized to while preserving the aspect
// ratio of original. With fill set the result covers the requested box and may overflow it
// on one axis; otherwise it is fully contained in the box. Absent requested axes default to
// the ceiling when the other axis was requested and to the original size otherwise.
//
// All products are computed in 64 bits. A dependent axis that does not fit in 32 bits is
// saturated and the driving axis is scaled down by the same factor.
func Dimensions(original Size, requested DimensionRequest, ceiling Size, fill bool) Size {
	width := uint64(max(original.Width, 1))
	height := uint64(max(original.Height, 1))

	var nwidth, nheight uint32

	switch {
	case requested.Width != nil:
		nwidth = *requested.Width
	case requested.Height != nil:
		nwidth = ceiling.Width
	default:
		nwidth = original.Width
	}

	switch {
	case requested.Height != nil:
		nheight = *requested.Height
	case requested.Width != nil:
		nheight = ceiling.Height
	default:
		nheight = original.Height
	}

	nw := uint64(clamp(nwidth, ceiling.Width))
	nh := uint64(clamp(nheight, ceiling.Height))

	ratio := width * nh
	nratio := nw * height

	var useWidth bool
	if fill {
		useWidth = nratio > ratio
	} else {
		useWidth = nratio <= ratio
	}

	const maxDimension = uint64(math.MaxUint32)

	if useWidth {
		intermediate := height * nw / width
		if intermediate <= maxDimension {
			return Size{Width: uint32(nw), Height: uint32(intermediate)}
		}
		return Size{Width: uint32(nw * maxDimension / intermediate), Height: math.MaxUint32}
	}

	intermediate := width * nh / height
	if intermediate <= maxDimension {
		return Size{Width: uint32(intermediate), Height: uint32(nh)}
	}
	return Size{Width: math.MaxUint32, Height: uint32(nh * maxDimension / intermediate)}
}

// clamp bounds v to [1, limit]. A zero limit yields 1.
func clamp(v, limit uint32) uint32 {
	return max(min(v, limit), 1)
}
