package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime configuration for the reader service.
type Config struct {
	// Server
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Document store
	DocsDir       string `env:"DOCS_DIR" envDefault:"docs"`
	AudioDir      string `env:"AUDIO_DIR" envDefault:"temp/audio"`
	MaxUploadSize int64  `env:"MAX_UPLOAD_SIZE" envDefault:"52428800"` // 50 MiB

	// External analysis scripts
	PythonBin      string        `env:"PYTHON_BIN" envDefault:"python"`
	ScriptsDir     string        `env:"SCRIPTS_DIR" envDefault:"scripts"`
	IngestTimeout  time.Duration `env:"INGEST_TIMEOUT" envDefault:"2m"`
	ScriptTimeout  time.Duration `env:"SCRIPT_TIMEOUT" envDefault:"60s"`
	PodcastTimeout time.Duration `env:"PODCAST_TIMEOUT" envDefault:"5m"`
	PodcastVoice   string        `env:"PODCAST_VOICE" envDefault:"F"`

	// Reader behaviour
	MaxSources    int           `env:"MAX_SOURCES" envDefault:"5"`
	SettleDelay   time.Duration `env:"SETTLE_DELAY" envDefault:"2s"`
	ProgressTick  time.Duration `env:"PROGRESS_TICK" envDefault:"200ms"`
	ViewerTimeout time.Duration `env:"VIEWER_TIMEOUT" envDefault:"10s"`

	// Queue
	QueueProvider string `env:"QUEUE_PROVIDER" envDefault:"memory"` // "memory" (in-process) or "nats"
	QueueURL      string `env:"QUEUE_URL"`

	// Cache
	CacheProvider string `env:"CACHE_PROVIDER" envDefault:"noop"` // "noop" or "redis"
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	CacheTTL      int    `env:"CACHE_TTL_SECONDS" envDefault:"300"`
}

// CacheTTLDuration returns the cache TTL as a duration.
func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}
