package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"pdf-reader/internal/cache"
	"pdf-reader/internal/config"
	"pdf-reader/internal/docstore"
	"pdf-reader/internal/logger"
	"pdf-reader/internal/queue"
	"pdf-reader/internal/reader"
	"pdf-reader/internal/scripts"
	"pdf-reader/internal/viewer"
)

// Deps bundles the runtime dependencies of the reader service.
type Deps struct {
	Config config.Config
	Log    *slog.Logger
	Store  docstore.Store
	Queue  queue.Queue
	Cache  cache.Cache
	Bridge *viewer.Bridge
	Reader *reader.Controller
}

// Build loads env, config, and shared components.
func Build() (Deps, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Deps{}, fmt.Errorf("failed to load environment variables: %w", err)
	}
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	store := docstore.NewFS(cfg.DocsDir, cfg.AudioDir)

	q, err := buildQueue(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	ch, err := buildCache(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize cache: %w", err)
	}

	runner := scripts.NewRunner(log, cfg.PythonBin, cfg.ScriptsDir, scripts.Timeouts{
		Ingest:  cfg.IngestTimeout,
		Script:  cfg.ScriptTimeout,
		Podcast: cfg.PodcastTimeout,
	})
	bridge := viewer.NewBridge(log, cfg.ViewerTimeout)

	ctrl := reader.New(log, reader.Capabilities{
		Store:     store,
		Queue:     q,
		Cache:     ch,
		Viewer:    bridge,
		Audio:     bridge,
		Ingester:  runner,
		Querier:   runner,
		Insighter: runner,
		Podcaster: runner,
	}, reader.Options{
		MaxUploadSize: cfg.MaxUploadSize,
		MaxSources:    cfg.MaxSources,
		SettleDelay:   cfg.SettleDelay,
		ProgressTick:  cfg.ProgressTick,
		PodcastVoice:  cfg.PodcastVoice,
		CacheTTL:      cfg.CacheTTLDuration(),
	})

	return Deps{
		Config: cfg,
		Log:    log,
		Store:  store,
		Queue:  q,
		Cache:  ch,
		Bridge: bridge,
		Reader: ctrl,
	}, nil
}

func buildQueue(cfg config.Config, log *slog.Logger) (queue.Queue, error) {
	switch cfg.QueueProvider {
	case "memory":
		log.Info("using in-process queue")
		return queue.NewMemory(log, 64), nil
	case "nats":
		if cfg.QueueURL == "" {
			return nil, fmt.Errorf("QUEUE_URL is required when QUEUE_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.QueueURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS queue")
		return queue.NewNATS(log, nc), nil
	default:
		return nil, fmt.Errorf("invalid QUEUE_PROVIDER: %s (valid options: memory, nats)", cfg.QueueProvider)
	}
}

func buildCache(cfg config.Config, log *slog.Logger) (cache.Cache, error) {
	switch cfg.CacheProvider {
	case "noop":
		return cache.NewNoOpCache(), nil
	case "redis":
		c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Warn("redis unavailable, falling back to no-op cache", "err", err)
			return cache.NewNoOpCache(), nil
		}
		log.Info("using Redis cache")
		return c, nil
	default:
		return nil, fmt.Errorf("invalid CACHE_PROVIDER: %s (valid options: noop, redis)", cfg.CacheProvider)
	}
}
