package domain

import "errors"

var (
	ErrInvalidInput  = errors.New("unable to fetch source")
	ErrUnknownFormat = errors.New("unknown format")
)

const (
	MinQuality     = 0
	MaxQuality     = 100
	DefaultQuality = 85
)
