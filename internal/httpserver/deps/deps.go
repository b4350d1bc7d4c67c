package deps

import (
	"time"

	"github.com/MrSnakeDoc/coursemark/internal/domain"
	"github.com/MrSnakeDoc/coursemark/internal/index"
	"github.com/MrSnakeDoc/coursemark/internal/logger"
)

type Deps struct {
	Logger             logger.Logger
	StartTime          time.Time
	Version            string
	Commit             string
	BuildDate          string
	GoVersion          string
	TimeNow            func() time.Time        // for testing, defaults to time.Now
	AllowedHosts       []string                // Host headers allowed to access the server
	AllowedCIDRS       []string                // IPs allowed to access healthz/readyz/infra/reload
	TrustProxy         bool                    // true if running behind a trusted reverse proxy (e.g., cloudflared)
	UserHeader         string                  // header carrying the authenticated user id
	RateLimitBurst     int                     // write bucket capacity per client IP
	RateLimitPerMinute int                     // write bucket refill per client IP
	StoreDriver        string                  // backend name reported by /infra
	Store              domain.Store            // bookmark persistence
	Bookmarks          *domain.BookmarkService // create/get/list
	Tree               *index.MemoryTree       // content tree loaded from outlines
	ReloadTrigger      chan struct{}           // Channel to trigger manual outline reload
}
