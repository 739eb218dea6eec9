package domain

import "time"

// Request is a single transformation request as decoded from the outer surface.
type Request struct {
	Source     string
	Format     Format
	Quality    *int
	Dimensions DimensionRequest
}

type Result struct {
	Bytes       []byte
	MIMEType    string
	CacheStatus CacheStatus
}

type CacheStatus int

const (
	Miss CacheStatus = iota
	Hit
	Expired
)

func (s CacheStatus) String() string {
	switch s {
	case Hit:
		return "HIT"
	case Expired:
		return "EXPIRED"
	default:
		return "MISS"
	}
}

type CacheResponse struct {
	Bytes  []byte
	Status CacheStatus
}

// EntryMeta tracks freshness and hit count of a cached source.
type EntryMeta struct {
	UpdatedAt time.Time
	Frequency uint64
}

func (m EntryMeta) Age(now time.Time) time.Duration {
	return now.Sub(m.UpdatedAt)
}
