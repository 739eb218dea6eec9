package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

type Purger interface {
	Purge() int
}

// Sweep periodically drops expired entries from the cache until ctx is done.
func Sweep(ctx context.Context, cache Purger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Debug().Dur("interval", interval).Msg("running cache sweeper")

	for {
		select {
		case <-ticker.C:
			if n := cache.Purge(); n > 0 {
				log.Debug().Int("removed", n).Msg("purged expired sources")
			}
		case <-ctx.Done():
			log.Debug().Msg("stopping cache sweeper")
			return
		}
	}
}
