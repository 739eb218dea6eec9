package service

import (
	"bytes"
	"context"
	"hash/maphash"
	"net/url"
	"pixproxy/internal/core/domain"
	"pixproxy/internal/core/port"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	minShardCapacity = 16
	maxShards        = 64
)

// CacheOptions configures a SourceCache. The options are copied on construction.
type CacheOptions struct {
	// MaxAge is the freshness window of an entry. An entry is stale once its age reaches MaxAge.
	MaxAge time.Duration
	// MaxEntrySize bounds the size of a fetched source. Zero defers to the fetcher's limit.
	MaxEntrySize uint64
	// TableSize is a capacity hint used to size the shards.
	TableSize int
	// MaxEntries bounds the number of entries. The bound is split evenly across shards and
	// enforced per shard. Zero disables eviction.
	MaxEntries int
}

type entry struct {
	data      []byte
	updatedAt time.Time
	hits      atomic.Uint64
}

type shard struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// SourceCache is a read-through cache of raw source bytes keyed by NormalizeKey.
// Concurrent refreshes of the same key share a single fetch.
type SourceCache struct {
	opts     CacheOptions
	fetcher  port.Fetcher
	shards   []*shard
	seed     maphash.Seed
	perShard int
	group    singleflight.Group
	now      func() time.Time
}

func NewSourceCache(fetcher port.Fetcher, opts CacheOptions) *SourceCache {
	count := min(max(opts.TableSize/minShardCapacity, 1), maxShards)

	c := &SourceCache{
		opts:    opts,
		fetcher: fetcher,
		shards:  make([]*shard, count),
		seed:    maphash.MakeSeed(),
		now:     time.Now,
	}

	for i := range c.shards {
		c.shards[i] = &shard{entries: make(map[string]*entry, opts.TableSize/count)}
	}

	if opts.MaxEntries > 0 {
		c.perShard = (opts.MaxEntries + count - 1) / count
	}

	return c
}

func (c *SourceCache) shardFor(key string) *shard {
	return c.shards[maphash.String(c.seed, key)%uint64(len(c.shards))]
}

func (c *SourceCache) Get(ctx context.Context, u *url.URL) (domain.CacheResponse, error) {
	key := NormalizeKey(u)
	status := domain.Miss

	s := c.shardFor(key)
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if ok {
		if c.now().Sub(e.updatedAt) < c.opts.MaxAge {
			e.hits.Add(1)
			log.Debug().Str("key", key).Msg("source cache hit")

			return domain.CacheResponse{Bytes: bytes.Clone(e.data), Status: domain.Hit}, nil
		}

		status = domain.Expired
	}

	log.Debug().Str("key", key).Stringer("status", status).Msg("refreshing source")

	data, err := c.refresh(ctx, key, u)
	if err != nil {
		return domain.CacheResponse{}, err
	}

	return domain.CacheResponse{Bytes: data, Status: status}, nil
}

// refresh fetches the source and stores it. Callers racing on the same key wait for the
// fetch already in flight. The fetch is detached from the cancellation of any single
// caller; each caller stops waiting when its own context ends.
func (c *SourceCache) refresh(ctx context.Context, key string, u *url.URL) ([]byte, error) {
	ch := c.group.DoChan(key, func() (any, error) {
		data, err := c.fetcher.Fetch(context.WithoutCancel(ctx), u, c.opts.MaxEntrySize)
		if err != nil {
			return nil, err
		}

		c.Insert(key, data)

		return data, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}

		if res.Shared {
			log.Debug().Str("key", key).Msg("joined in-flight fetch")
		}

		return bytes.Clone(res.Val.([]byte)), nil
	}
}

// Insert stores a copy of data under key, replacing any previous entry and its metadata.
func (c *SourceCache) Insert(key string, data []byte) {
	e := &entry{data: bytes.Clone(data), updatedAt: c.now()}

	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = e

	if c.perShard > 0 && len(s.entries) > c.perShard {
		s.evict(key)
	}
}

// evict drops the least frequently hit entry of the shard, the oldest one on ties.
// The entry stored under keep is never chosen. Callers must hold the write lock.
func (s *shard) evict(keep string) {
	var (
		victim    string
		victimE   *entry
		victimHit uint64
	)

	for k, e := range s.entries {
		if k == keep {
			continue
		}

		hits := e.hits.Load()
		if victimE == nil || hits < victimHit || (hits == victimHit && e.updatedAt.Before(victimE.updatedAt)) {
			victim, victimE, victimHit = k, e, hits
		}
	}

	if victimE != nil {
		delete(s.entries, victim)
		log.Debug().Str("key", victim).Uint64("hits", victimHit).Msg("evicted source")
	}
}

// Meta returns the metadata of the entry stored under key.
func (c *SourceCache) Meta(key string) (domain.EntryMeta, bool) {
	s := c.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return domain.EntryMeta{}, false
	}

	return domain.EntryMeta{UpdatedAt: e.updatedAt, Frequency: e.hits.Load()}, true
}

func (c *SourceCache) Len() int {
	n := 0
	for _, s := range c.shards {
		s.mu.RLock()
		n += len(s.entries)
		s.mu.RUnlock()
	}

	return n
}

// Purge removes every entry whose age reached MaxAge and returns how many were removed.
func (c *SourceCache) Purge() int {
	now := c.now()
	removed := 0

	for _, s := range c.shards {
		s.mu.Lock()
		for k, e := range s.entries {
			if now.Sub(e.updatedAt) >= c.opts.MaxAge {
				delete(s.entries, k)
				removed++
			}
		}
		s.mu.Unlock()
	}

	return removed
}
