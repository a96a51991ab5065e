package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shifttrack-backend-go/internal/access"
)

// ZoneGuard enforces the access decision engine on route groups. Each guarded
// group is mapped to one zone; the verdict for the caller's session decides
// whether the request proceeds, is redirected, or is told to retry.
type ZoneGuard struct {
	caches *access.CacheSet
	logger *zap.Logger
}

// NewZoneGuard creates a guard backed by the shared profile cache set.
func NewZoneGuard(caches *access.CacheSet, logger *zap.Logger) *ZoneGuard {
	if caches == nil {
		panic("profile cache set is not initialized for ZoneGuard")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZoneGuard{caches: caches, logger: logger}
}

// Require returns a middleware that evaluates the decision engine for the
// given zone. It must run after AuthMiddleware.Identify, which resolves the
// session and primes the profile cache. The guard itself never fetches.
func (g *ZoneGuard) Require(zone access.Zone) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := SessionFromContext(c)

		var profile access.ProfileState
		if session.Identity != nil {
			profile = g.caches.Snapshot(session.Identity.ID)
		}

		verdict := access.Decide(session, profile, zone)
		switch verdict.Kind {
		case access.VerdictAllow:
			c.Next()

		case access.VerdictRedirect:
			g.logger.Debug("Guard redirecting request",
				zap.String("zone", string(zone)),
				zap.String("target", string(verdict.Target)),
			)
			c.Redirect(http.StatusSeeOther, verdict.Target.Path())
			c.Abort()

		case access.VerdictDefer:
			// The session is still resolving. Tell the client to retry
			// shortly instead of leaking a redirect based on incomplete
			// state.
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorResponse{
				Error: "Session is still initializing, retry shortly",
			})
		}
	}
}
