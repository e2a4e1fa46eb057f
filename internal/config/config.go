// Package config loads runtime settings from .env files and the environment.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/criblink/featured/internal/api"
	"github.com/criblink/featured/internal/feed"
	"github.com/criblink/featured/internal/geo"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config holds settings that flags may override later.
type Config struct {
	APIURL          string
	MinCount        int
	MaxCategories   int
	DefaultRegion   string
	GeoTimeout      time.Duration
	RedisURL        string
	DefinitionsPath string
}

// Load reads the given .env files (".env" when none are named) and then the
// process environment. A missing .env file is not an error; variables
// already set in the environment win over file values.
func Load(log *zap.Logger, files ...string) *Config {
	if log == nil {
		log = zap.NewNop()
	}
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				log.Debug("no env file, using process environment", zap.String("file", f))
				continue
			}
			log.Warn("ignoring unreadable env file", zap.String("file", f), zap.Error(err))
		}
	}

	return &Config{
		APIURL:          getEnv("CRIBLINK_API_URL", api.DefaultBaseURL),
		MinCount:        getEnvInt("CRIBLINK_MIN_COUNT", feed.DefaultMinCount),
		MaxCategories:   getEnvInt("CRIBLINK_MAX_CATEGORIES", feed.DefaultMaxCategories),
		DefaultRegion:   getEnv("CRIBLINK_DEFAULT_REGION", feed.DefaultRegion),
		GeoTimeout:      time.Duration(getEnvInt("CRIBLINK_GEO_TIMEOUT", int(geo.DefaultTimeout/time.Millisecond))) * time.Millisecond,
		RedisURL:        getEnv("CRIBLINK_REDIS_URL", ""),
		DefinitionsPath: getEnv("CRIBLINK_DEFINITIONS", ""),
	}
}

// FeedOptions converts the numeric settings into feed options.
func (c *Config) FeedOptions() feed.Options {
	return feed.Options{
		MinCount:      c.MinCount,
		MaxCategories: c.MaxCategories,
		DefaultRegion: c.DefaultRegion,
	}
}

func getEnv(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

// getEnvInt falls back on unparsable or non-positive values.
func getEnvInt(key string, fallback int) int {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
