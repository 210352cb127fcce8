package cli

import (
	"log/slog"

	"github.com/ppiankov/casefeed/internal/cache"
	"github.com/ppiankov/casefeed/internal/model"
	"github.com/ppiankov/casefeed/internal/pipeline"
	"github.com/ppiankov/casefeed/internal/util"
	"github.com/ppiankov/casefeed/internal/worker"
)

// newCache builds the page cache, or nil when caching is disabled
func newCache(cfg *model.Config) cache.Cache {
	if !cfg.Cache.Enabled {
		return nil
	}
	return cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
}

// newPipeline wires the pipeline with its politeness collaborators
func newPipeline(cfg *model.Config, logger *slog.Logger) *pipeline.Pipeline {
	deps := pipeline.Deps{
		Limiter: worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize),
		Logger:  logger,
	}
	if c := newCache(cfg); c != nil {
		deps.Cache = c
	}
	if cfg.HTTP.RespectRobots {
		deps.Robots = util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout)
	}
	return pipeline.NewPipeline(cfg, deps)
}
