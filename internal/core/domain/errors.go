package domain

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Stage names the codec step an error originates from.
type Stage string

const (
	StageDecode Stage = "decode"
	StageEncode Stage = "encode"
)

type IllegalHostError struct {
	Host string
}

func (e *IllegalHostError) Error() string {
	return fmt.Sprintf("illegal host `%s`", e.Host)
}

// MaxSizeExceededError reports a source larger than the configured limit. Size is either
// the declared Content-Length or the number of bytes actually received.
type MaxSizeExceededError struct {
	Limit uint64
	Size  uint64
}

func (e *MaxSizeExceededError) Error() string {
	return fmt.Sprintf("the input size limit of %s was exceeded (received %s)",
		humanize.IBytes(e.Limit), humanize.IBytes(e.Size))
}

// FetchError wraps a transport failure or an unexpected upstream response.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("an upstream fetch error occurred (%v)", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type UpstreamStatusError struct {
	StatusCode int
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("upstream status: %d", e.StatusCode)
}

type UnsupportedEncodingError struct {
	Stage  Stage
	Detail string
}

func (e *UnsupportedEncodingError) Error() string {
	if e.Detail == "" {
		return "unsupported encoding"
	}
	return "unsupported encoding: " + e.Detail
}

// ImageError wraps a failure of an underlying image codec.
type ImageError struct {
	Stage Stage
	Err   error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("the image codec failed to %s (%v)", e.Stage, e.Err)
}

func (e *ImageError) Unwrap() error {
	return e.Err
}

type InvalidQualityError struct {
	Min int
	Max int
	Got int
}

func (e *InvalidQualityError) Error() string {
	return fmt.Sprintf("invalid quality number (range: %d-%d, got: %d)", e.Min, e.Max, e.Got)
}

// MalformedSourceError is returned when the encoded source command cannot be turned into a URL.
type MalformedSourceError struct {
	Reason string
	Err    error
}

func (e *MalformedSourceError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *MalformedSourceError) Unwrap() error {
	return e.Err
}
