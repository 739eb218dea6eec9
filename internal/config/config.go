package config

import (
	"errors"
	"fmt"
	"pixproxy/internal/core/domain"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const envPrefix = "PIXPROXY"

type Settings struct {
	Server    Server
	Log       Log
	Fetch     Fetch
	Cache     Cache
	Transform Transform
}

type Server struct {
	Address         string
	ShutdownTimeout time.Duration
}

type Log struct {
	Level  zerolog.Level
	Pretty bool
}

type Fetch struct {
	AllowedHosts string
	MaxSize      uint64
	Timeout      time.Duration
	RateLimit    float64
	Burst        int
}

type Cache struct {
	MaxAge        time.Duration
	MaxEntrySize  uint64
	TableSize     int
	MaxEntries    int
	SweepInterval time.Duration
}

type Transform struct {
	Timeout time.Duration
	Limits  domain.DimensionLimits
}

// SetDefaults registers the default value of every setting.
func SetDefaults() {
	viper.SetDefault("server.address", "0.0.0.0:8080")
	viper.SetDefault("server.shutdown_timeout", "10s")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.pretty", false)
	viper.SetDefault("fetch.allowed_hosts", ".*")
	viper.SetDefault("fetch.max_size", "10MiB")
	viper.SetDefault("fetch.timeout", "15s")
	viper.SetDefault("fetch.rate_limit", 0)
	viper.SetDefault("fetch.burst", 1)
	viper.SetDefault("cache.max_age", "1h")
	viper.SetDefault("cache.max_entry_size", "0")
	viper.SetDefault("cache.table_size", 256)
	viper.SetDefault("cache.max_entries", 0)
	viper.SetDefault("cache.sweep_interval", "0s")
	viper.SetDefault("transform.timeout", "30s")
	viper.SetDefault("transform.limits.default.width", 4096)
	viper.SetDefault("transform.limits.default.height", 4096)
	viper.SetDefault("transform.limits.gif.width", 1024)
	viper.SetDefault("transform.limits.gif.height", 1024)
}

// Load reads config.toml from the working directory and applies PIXPROXY_ environment
// overrides, e.g. PIXPROXY_FETCH__MAX_SIZE. A missing config file is not an error.
func Load() (*Settings, error) {
	SetDefaults()

	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("toml")
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("could not read config file: %w", err)
		}
	}

	return Parse()
}

// Parse builds Settings from the values currently held by viper.
func Parse() (*Settings, error) {
	var (
		s   Settings
		err error
	)

	s.Server.Address = viper.GetString("server.address")
	if s.Server.ShutdownTimeout, err = duration("server.shutdown_timeout"); err != nil {
		return nil, err
	}

	s.Log.Level = parseLevel(viper.GetString("log.level"))
	s.Log.Pretty = viper.GetBool("log.pretty")

	s.Fetch.AllowedHosts = viper.GetString("fetch.allowed_hosts")
	if s.Fetch.MaxSize, err = byteSize("fetch.max_size"); err != nil {
		return nil, err
	}
	if s.Fetch.MaxSize == 0 {
		return nil, errors.New("fetch.max_size must be positive")
	}
	if s.Fetch.Timeout, err = duration("fetch.timeout"); err != nil {
		return nil, err
	}
	s.Fetch.RateLimit = viper.GetFloat64("fetch.rate_limit")
	s.Fetch.Burst = viper.GetInt("fetch.burst")

	if s.Cache.MaxAge, err = duration("cache.max_age"); err != nil {
		return nil, err
	}
	if s.Cache.MaxEntrySize, err = byteSize("cache.max_entry_size"); err != nil {
		return nil, err
	}
	s.Cache.TableSize = viper.GetInt("cache.table_size")
	s.Cache.MaxEntries = viper.GetInt("cache.max_entries")
	if s.Cache.TableSize < 0 || s.Cache.MaxEntries < 0 {
		return nil, errors.New("cache.table_size and cache.max_entries must not be negative")
	}
	if s.Cache.SweepInterval, err = duration("cache.sweep_interval"); err != nil {
		return nil, err
	}

	if s.Transform.Timeout, err = duration("transform.timeout"); err != nil {
		return nil, err
	}
	fallback := size("transform.limits.default")
	if fallback == nil {
		return nil, errors.New("transform.limits.default is not configured")
	}
	s.Transform.Limits = domain.DimensionLimits{
		JPEG:    size("transform.limits.jpeg"),
		WebP:    size("transform.limits.webp"),
		PNG:     size("transform.limits.png"),
		GIF:     size("transform.limits.gif"),
		Default: *fallback,
	}

	return &s, nil
}

func duration(key string) (time.Duration, error) {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s in config: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration for %s in config", key)
	}

	return d, nil
}

// byteSize accepts plain byte counts as well as humanized sizes like "10MiB".
func byteSize(key string) (uint64, error) {
	n, err := humanize.ParseBytes(viper.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid size for %s in config: %w", key, err)
	}

	return n, nil
}

// size returns nil when neither axis is configured. A missing axis falls back to the
// default ceiling.
func size(prefix string) *domain.Size {
	if !viper.IsSet(prefix+".width") && !viper.IsSet(prefix+".height") {
		return nil
	}

	return &domain.Size{
		Width:  axis(prefix+".width", "transform.limits.default.width"),
		Height: axis(prefix+".height", "transform.limits.default.height"),
	}
}

func axis(key, fallback string) uint32 {
	if viper.IsSet(key) {
		return viper.GetUint32(key)
	}
	return viper.GetUint32(fallback)
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
