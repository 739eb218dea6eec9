package codec

import (
	"bytes"
	"pixproxy/internal/core/domain"
)

var (
	magicJPEG  = []byte{0xFF, 0xD8, 0xFF}
	magicPNG   = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}
	magicGIF87 = []byte("GIF87a")
	magicGIF89 = []byte("GIF89a")
	magicRIFF  = []byte("RIFF")
	magicWebP  = []byte("WEBP")
)

// Detect identifies the format of an encoded image from its leading bytes.
func Detect(data []byte) (domain.Format, error) {
	switch {
	case bytes.HasPrefix(data, magicJPEG):
		return domain.FormatJPEG, nil
	case bytes.HasPrefix(data, magicPNG):
		return domain.FormatPNG, nil
	case bytes.HasPrefix(data, magicGIF87), bytes.HasPrefix(data, magicGIF89):
		return domain.FormatGIF, nil
	case len(data) >= 12 && bytes.Equal(data[:4], magicRIFF) && bytes.Equal(data[8:12], magicWebP):
		return domain.FormatWebP, nil
	}

	return 0, &domain.UnsupportedEncodingError{Stage: domain.StageDecode, Detail: "unable to detect source format"}
}
