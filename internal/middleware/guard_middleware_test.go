package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shifttrack-backend-go/internal/access"
)

type staticBackend struct {
	profiles map[string]*access.Profile
}

func (b staticBackend) FetchProfile(ctx context.Context, identityID string) (*access.Profile, error) {
	p, ok := b.profiles[identityID]
	if !ok {
		return nil, access.ErrProfileNotFound
	}
	copied := *p
	return &copied, nil
}

// withSession injects a resolved session the way Identify would, without
// needing a Firebase client.
func withSession(session access.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(sessionContextKey, session)
		c.Next()
	}
}

func guardedRouter(t *testing.T, caches *access.CacheSet, session access.Session, zone access.Zone) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	guard := NewZoneGuard(caches, nil)
	router.GET("/probe", withSession(session), guard.Require(zone), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func TestZoneGuardAllows(t *testing.T) {
	backend := staticBackend{profiles: map[string]*access.Profile{
		"U1": {SubscriptionStatus: access.StatusActive},
	}}
	caches := access.NewCacheSet(backend)
	require.NoError(t, caches.EnsureFetched(context.Background(), "U1"))

	session := access.Session{
		Phase:    access.PhaseReady,
		Identity: &access.Identity{ID: "U1", EmailVerified: true},
	}
	router := guardedRouter(t, caches, session, access.ZoneShifts)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestZoneGuardRedirectsAnonymousToLogin(t *testing.T) {
	caches := access.NewCacheSet(staticBackend{})
	session := access.Session{Phase: access.PhaseReady}
	router := guardedRouter(t, caches, session, access.ZoneShifts)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, access.ZoneLogin.Path(), w.Header().Get("Location"))
}

func TestZoneGuardRedirectsUnsubscribedToPaywall(t *testing.T) {
	backend := staticBackend{profiles: map[string]*access.Profile{
		"U1": {SubscriptionStatus: access.StatusNone},
	}}
	caches := access.NewCacheSet(backend)
	require.NoError(t, caches.EnsureFetched(context.Background(), "U1"))

	session := access.Session{
		Phase:    access.PhaseReady,
		Identity: &access.Identity{ID: "U1", EmailVerified: true},
	}
	router := guardedRouter(t, caches, session, access.ZoneDashboard)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, access.ZoneSubscriptionRequired.Path(), w.Header().Get("Location"))
}

func TestZoneGuardDefersWhileSessionResolving(t *testing.T) {
	caches := access.NewCacheSet(staticBackend{})
	session := access.Session{Phase: access.PhaseInitializing}
	router := guardedRouter(t, caches, session, access.ZoneDashboard)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestSessionFromContextDefaultsToUninitialized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	session := SessionFromContext(c)
	assert.Equal(t, access.PhaseUninitialized, session.Phase)
	assert.Nil(t, session.Identity)
}
