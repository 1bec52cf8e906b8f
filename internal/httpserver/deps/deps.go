package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/appshelf/internal/domain"
	"github.com/MrSnakeDoc/appshelf/internal/index"
	"github.com/MrSnakeDoc/appshelf/internal/localstate"
	"github.com/MrSnakeDoc/appshelf/internal/logger"
	"github.com/MrSnakeDoc/appshelf/internal/stats"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	AllowedHosts []string // Host headers allowed to reach operator endpoints
	AllowedCIDRS []string // IPs allowed to reach operator endpoints
	TrustProxy   bool     // true if running behind a trusted reverse proxy (e.g., cloudflared)
	CORSOrigins  []string // browser origins allowed to call /api

	PublicBaseURL   string          // base of generated share links
	DefaultPageSize domain.PageSize // used when the visitor has no preference
	CookieName      string          // visitor id cookie
	CookieSecure    bool

	RateLimitBurst  int           // stats ping bucket size
	RateLimitRefill time.Duration // one ping token per interval

	MemoryIndex   *index.MemoryIndex  // catalog snapshot
	Visitors      localstate.Provider // per-visitor persisted state
	Stats         *stats.Service      // visit counter
	RedisClient   *redis.Client       // nil when running without redis (tests)
	ReloadTrigger chan struct{}       // Channel to trigger manual catalog reload
}
