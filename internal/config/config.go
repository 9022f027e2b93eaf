package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

const DefaultServerURL = "https://api.treadline.app"

type Config struct {
	ServerURL string `env:"STRIDE_SERVER_URL" envDefault:"https://api.treadline.app"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// CacheBackend selects the shared cache store: memory, redis, or sqlite.
	CacheBackend string `env:"CACHE_BACKEND" envDefault:"memory"`
	RedisURL     string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	// CachePath overrides the sqlite cache location; empty means the
	// default under the config directory.
	CachePath string        `env:"CACHE_PATH"`
	CacheTTL  time.Duration `env:"CACHE_TTL" envDefault:"5m"`

	// PrefetchRate and PrefetchBurst bound how fast background prefetch
	// tasks may issue remote requests.
	PrefetchRate  float64 `env:"PREFETCH_RATE" envDefault:"10"`
	PrefetchBurst int     `env:"PREFETCH_BURST" envDefault:"3"`
}

func Read() (Config, error) {
	return env.ParseAs[Config]()
}
