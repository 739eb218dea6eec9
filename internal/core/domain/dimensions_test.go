package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func u32(v uint32) *uint32 {
	return &v
}

func TestDimensions(t *testing.T) {
	big := Size{Width: 4096, Height: 4096}

	tests := []struct {
		name      string
		original  Size
		requested DimensionRequest
		ceiling   Size
		fill      bool
		want      Size
	}{
		{
			name:     "no request keeps intrinsic size within ceiling",
			original: Size{Width: 1000, Height: 500},
			ceiling:  big,
			want:     Size{Width: 1000, Height: 500},
		},
		{
			name:     "no request scales oversized original down to ceiling",
			original: Size{Width: 8000, Height: 4000},
			ceiling:  big,
			want:     Size{Width: 4096, Height: 2048},
		},
		{
			name:      "width only scales height proportionally",
			original:  Size{Width: 200, Height: 100},
			requested: DimensionRequest{Width: u32(50)},
			ceiling:   big,
			want:      Size{Width: 50, Height: 25},
		},
		{
			name:      "height only scales width proportionally",
			original:  Size{Width: 200, Height: 100},
			requested: DimensionRequest{Height: u32(50)},
			ceiling:   big,
			want:      Size{Width: 100, Height: 50},
		},
		{
			name:      "width only upscales to requested axis",
			original:  Size{Width: 10, Height: 20},
			requested: DimensionRequest{Width: u32(100)},
			ceiling:   big,
			want:      Size{Width: 100, Height: 200},
		},
		{
			name:      "contain fits inside box",
			original:  Size{Width: 400, Height: 200},
			requested: DimensionRequest{Width: u32(100), Height: u32(100)},
			ceiling:   big,
			want:      Size{Width: 100, Height: 50},
		},
		{
			name:      "fill covers box",
			original:  Size{Width: 400, Height: 200},
			requested: DimensionRequest{Width: u32(100), Height: u32(100)},
			ceiling:   big,
			fill:      true,
			want:      Size{Width: 200, Height: 100},
		},
		{
			name:      "exact ratio is width driven in contain mode",
			original:  Size{Width: 300, Height: 200},
			requested: DimensionRequest{Width: u32(150), Height: u32(100)},
			ceiling:   big,
			want:      Size{Width: 150, Height: 100},
		},
		{
			name:      "exact ratio is height driven in fill mode",
			original:  Size{Width: 300, Height: 200},
			requested: DimensionRequest{Width: u32(150), Height: u32(100)},
			ceiling:   big,
			fill:      true,
			want:      Size{Width: 150, Height: 100},
		},
		{
			name:      "requested dimensions are clamped to ceiling",
			original:  Size{Width: 1000, Height: 1000},
			requested: DimensionRequest{Width: u32(5000), Height: u32(5000)},
			ceiling:   Size{Width: 1024, Height: 512},
			want:      Size{Width: 512, Height: 512},
		},
		{
			name:      "zero request is clamped to one",
			original:  Size{Width: 100, Height: 100},
			requested: DimensionRequest{Width: u32(0)},
			ceiling:   big,
			want:      Size{Width: 1, Height: 1},
		},
		{
			name:     "zero original does not divide by zero",
			original: Size{Width: 0, Height: 0},
			ceiling:  big,
			want:     Size{Width: 1, Height: 1},
		},
		{
			name:      "dependent axis saturates instead of wrapping",
			original:  Size{Width: 1, Height: 2},
			requested: DimensionRequest{Width: u32(math.MaxUint32)},
			ceiling:   Size{Width: math.MaxUint32, Height: math.MaxUint32},
			fill:      true,
			want:      Size{Width: math.MaxUint32 / 2, Height: math.MaxUint32},
		},
		{
			name:      "height driven dependent axis saturates",
			original:  Size{Width: 2, Height: 1},
			requested: DimensionRequest{Height: u32(math.MaxUint32)},
			ceiling:   Size{Width: math.MaxUint32, Height: math.MaxUint32},
			fill:      true,
			want:      Size{Width: math.MaxUint32, Height: math.MaxUint32 / 2},
		},
		{
			name:      "square original at maximum does not overflow",
			original:  Size{Width: 1, Height: 1},
			requested: DimensionRequest{Width: u32(math.MaxUint32)},
			ceiling:   Size{Width: math.MaxUint32, Height: math.MaxUint32},
			want:      Size{Width: math.MaxUint32, Height: math.MaxUint32},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Dimensions(tt.original, tt.requested, tt.ceiling, tt.fill)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDimensionsIsDeterministic(t *testing.T) {
	original := Size{Width: 1234, Height: 777}
	requested := DimensionRequest{Width: u32(333), Height: u32(999)}
	ceiling := Size{Width: 4096, Height: 4096}

	first := Dimensions(original, requested, ceiling, false)
	for range 10 {
		assert.Equal(t, first, Dimensions(original, requested, ceiling, false))
	}
}

func TestDimensionLimitsFor(t *testing.T) {
	gif := Size{Width: 1024, Height: 1024}
	limits := DimensionLimits{
		GIF:     &gif,
		Default: Size{Width: 4096, Height: 4096},
	}

	assert.Equal(t, gif, limits.For(FormatGIF))
	assert.Equal(t, limits.Default, limits.For(FormatJPEG))
	assert.Equal(t, limits.Default, limits.For(FormatWebP))
	assert.Equal(t, limits.Default, limits.For(FormatPNG))
}
