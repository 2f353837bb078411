package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/snote/internal/httpserver/mw"
	"github.com/MrSnakeDoc/snote/internal/logger"
	"github.com/MrSnakeDoc/snote/internal/service"
	"github.com/MrSnakeDoc/snote/internal/store"
)

// WarmStatus reports the cache warmer's progress for /infra.
type WarmStatus interface {
	LastRun() time.Time
}

type Deps struct {
	Logger        logger.Logger
	StartTime     time.Time
	Version       string
	Commit        string
	BuildDate     string
	GoVersion     string
	TimeNow       func() time.Time      // for testing, defaults to time.Now
	AllowedHosts  []string              // Host headers allowed to reach the API
	AllowedCIDRS  []string              // IPs allowed to reach readyz/infra/reload
	TrustProxy    bool                  // true if running behind a trusted reverse proxy
	StoreDriver   string                // "postgres" or "memory", reported by /infra
	Entries       *service.EntryService // Entry use cases
	Store         store.Repository      // Underlying repository, pinged by readyz/infra
	RedisClient   *redis.Client         // nil when the read cache is disabled
	Warmer        WarmStatus            // nil when the read cache is disabled
	ReloadTrigger chan struct{}         // Manual cache rebuild trigger (nil when cache disabled)
	WriteLimit    mw.RateLimitConfig    // Applied to mutating endpoints
	MaxBodyBytes  int64                 // Request body limit for JSON payloads
}
