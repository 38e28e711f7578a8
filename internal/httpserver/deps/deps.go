package deps

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/MrSnakeDoc/mapmarks/internal/bookmarks"
	"github.com/MrSnakeDoc/mapmarks/internal/engine"
	"github.com/MrSnakeDoc/mapmarks/internal/logger"
)

// Pinger is a storage backend that can report its health.
type Pinger interface {
	Name() string
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger          logger.Logger
	StartTime       time.Time
	Version         string
	Commit          string
	BuildDate       string
	GoVersion       string
	TimeNow         func() time.Time                // for testing, defaults to time.Now
	AllowedHosts    []string                        // Host headers allowed to access the server
	AllowedCIDRS    []string                        // IPs allowed to access healthz/readyz/infra/reload
	TrustProxy      bool                            // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RateLimitBurst  int                             // mutations allowed in a burst per client IP
	RateLimitRefill time.Duration                   // one mutation token regained every RateLimitRefill
	Manager         *bookmarks.Manager              // bookmark facade
	Engine          *engine.Memory                  // engine behind Manager, for status and snapshots
	Mu              *sync.Mutex                     // serializes facade calls across requests and jobs
	Validate        *validator.Validate             // request body validation
	Storage         []Pinger                        // configured persistence backends
	ImportFile      string                          // import file path, empty when imports are disabled
	ReloadTrigger   chan struct{}                   // Channel to trigger a manual import reload (nil if imports disabled)
	FlushTrigger    chan struct{}                   // Channel to trigger an immediate flush
	MutationLimit   func(http.Handler) http.Handler // shared rate limiter for write routes, set by the server
}

// Now returns d.TimeNow() or time.Now().
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
