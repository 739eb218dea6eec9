package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"pixproxy/internal/adapters/codec"
	"pixproxy/internal/adapters/fetch"
	"pixproxy/internal/adapters/handler"
	"pixproxy/internal/config"
	"pixproxy/internal/core/service"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Info().Msg("starting pixproxy...")

	log.Info().Msg("reading config...")
	settings, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("could not load config")
	}

	zerolog.SetGlobalLevel(settings.Log.Level)
	if settings.Log.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	zerolog.DefaultContextLogger = &log.Logger

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	allowlist, err := service.NewHostAllowlist(settings.Fetch.AllowedHosts)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid host allow-list in config")
	}

	fetcher := fetch.NewHTTPFetcher(allowlist, fetch.Options{
		MaxSize:   settings.Fetch.MaxSize,
		Timeout:   settings.Fetch.Timeout,
		RateLimit: settings.Fetch.RateLimit,
		Burst:     settings.Fetch.Burst,
	})

	cache := service.NewSourceCache(fetcher, service.CacheOptions{
		MaxAge:       settings.Cache.MaxAge,
		MaxEntrySize: settings.Cache.MaxEntrySize,
		TableSize:    settings.Cache.TableSize,
		MaxEntries:   settings.Cache.MaxEntries,
	})

	if settings.Cache.SweepInterval > 0 {
		go service.Sweep(ctx, cache, settings.Cache.SweepInterval)
	}

	pipeline := service.NewPipeline(cache, codec.NewDispatcher(settings.Transform.Limits), settings.Transform.Timeout)

	srv := &http.Server{
		Addr:    settings.Server.Address,
		Handler: handler.NewImage(pipeline).Router(),
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()

		log.Info().Msg("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), settings.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	log.Info().
		Str("address", settings.Server.Address).
		Str("allowedHosts", allowlist.String()).
		Str("maxSize", humanize.IBytes(settings.Fetch.MaxSize)).
		Dur("maxAge", settings.Cache.MaxAge).
		Msg("proxy listening")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server failed")
	}

	<-stopped
	log.Info().Msg("pixproxy stopped")
}
