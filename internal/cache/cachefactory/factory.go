package cachefactory

import (
	"time"

	"github.com/ptec-dev/audit-management/internal"
	"github.com/ptec-dev/audit-management/internal/cache"
	"github.com/ptec-dev/audit-management/internal/cache/memory"
	"github.com/ptec-dev/audit-management/internal/cache/redis"
)

// Open builds the keyed store named by the config driver. Memory is the
// default so tests and single-node deployments need no extra infrastructure.
func Open(cfg internal.CacheConfig) (cache.Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return memory.New(10 * time.Minute), nil
	case "redis":
		return redis.New(cfg.Addr, cfg.Password, cfg.DB), nil
	default:
		return nil, cache.ErrUnknownDriver
	}
}
