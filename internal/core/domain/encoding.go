package domain

import (
	"fmt"
	"strings"
)

type Format int

const (
	FormatJPEG Format = iota + 1
	FormatWebP
	FormatPNG
	FormatGIF
)

func (f Format) String() string {
	switch f {
	case FormatJPEG:
		return "jpeg"
	case FormatWebP:
		return "webp"
	case FormatPNG:
		return "png"
	case FormatGIF:
		return "gif"
	default:
		return "unknown"
	}
}

func (f Format) MIMEType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatWebP:
		return "image/webp"
	case FormatPNG:
		return "image/png"
	case FormatGIF:
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}

// HasQuality reports whether the quality parameter affects the encoder.
func (f Format) HasQuality() bool {
	return f == FormatJPEG || f == FormatWebP
}

// ParseFormat maps a file extension to a Format. "jpg" is accepted as an alias of "jpeg".
func ParseFormat(ext string) (Format, error) {
	switch strings.ToLower(ext) {
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "webp":
		return FormatWebP, nil
	case "png":
		return FormatPNG, nil
	case "gif":
		return FormatGIF, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
}

// Encoding is the output format together with its encoder parameters.
// Quality is only meaningful for JPEG and WebP and is zero otherwise.
type Encoding struct {
	Format  Format
	Quality int
}

var DefaultEncoding = Encoding{Format: FormatJPEG, Quality: DefaultQuality}

// NewEncoding validates the requested quality for the given format. A nil quality selects
// DefaultQuality. The range check applies to every format, even those that ignore quality.
func NewEncoding(format Format, quality *int) (Encoding, error) {
	q := DefaultQuality
	if quality != nil {
		q = *quality
	}

	if q < MinQuality || q > MaxQuality {
		return Encoding{}, &InvalidQualityError{Min: MinQuality, Max: MaxQuality, Got: q}
	}

	if !format.HasQuality() {
		q = 0
	}

	return Encoding{Format: format, Quality: q}, nil
}

func (e Encoding) MIMEType() string {
	return e.Format.MIMEType()
}

func (e Encoding) String() string {
	if e.Format.HasQuality() {
		return fmt.Sprintf("%s(%d)", e.Format, e.Quality)
	}
	return e.Format.String()
}
