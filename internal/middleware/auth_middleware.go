package middleware

import (
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shifttrack-backend-go/internal/access"
)

// ErrorResponse is a local definition for sending standardized error messages.
// It mirrors the one in internal/api/dto_models.go to avoid import cycles.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// sessionContextKey is the Gin context key under which Identify stores the
// resolved access.Session for the current request.
const sessionContextKey = "accessSession"

// AuthMiddleware provides Gin middleware for Firebase token authentication.
type AuthMiddleware struct {
	firebaseAuthClient *auth.Client
	caches             *access.CacheSet
	logger             *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
// It panics if the firebaseAuthClient is nil, as this is a critical setup dependency.
func NewAuthMiddleware(fbAuthClient *auth.Client, caches *access.CacheSet, logger *zap.Logger) *AuthMiddleware {
	if fbAuthClient == nil {
		panic("Firebase Auth client is not initialized for AuthMiddleware")
	}
	if caches == nil {
		panic("profile cache set is not initialized for AuthMiddleware")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{firebaseAuthClient: fbAuthClient, caches: caches, logger: logger}
}

// Identify resolves the caller into an access.Session without ever rejecting
// the request. A missing or invalid Authorization header produces a signed-out
// session; a valid Firebase ID token produces a signed-in one and triggers the
// first profile fetch for that identity. Route guards and handlers downstream
// read the session from the context and decide what the caller may do.
func (m *AuthMiddleware) Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		store := access.NewSessionStore(nil, nil, m.logger)
		store.BeginInit()

		token := m.verifiedToken(c)
		if token == nil {
			store.OnAuthEvent(access.AuthEvent{Kind: access.EventSignedOut})
		} else {
			identity := identityFromToken(token)
			store.OnAuthEvent(access.AuthEvent{Kind: access.EventSignedIn, Identity: &identity})

			// The identity just became known for this request, so make sure
			// its profile has been fetched at least once. A fetch failure is
			// not fatal here: the cached state carries the error flag and the
			// guard decides what that means for the requested zone.
			if err := m.caches.EnsureFetched(c.Request.Context(), identity.ID); err != nil {
				m.logger.Warn("Profile fetch failed during identification",
					zap.String("userID", identity.ID),
					zap.Error(err),
				)
			}

			// Plain context keys kept for handlers that only need the
			// caller's identity and not the full session.
			c.Set("userID", identity.ID)
			c.Set("userEmail", identity.Email)
			c.Set("emailVerified", identity.EmailVerified)
			if name, ok := token.Claims["name"].(string); ok {
				c.Set("userDisplayName", name)
			}
		}

		c.Set(sessionContextKey, store.Snapshot())
		c.Next()
	}
}

// VerifyToken is a Gin middleware handler function that verifies a Firebase ID
// token from the Authorization header and aborts with 401 when it is missing
// or invalid. It protects endpoints that are meaningless without a caller,
// such as the sign-out and Stripe billing endpoints.
func (m *AuthMiddleware) VerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header is required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header format must be 'Bearer {token}'"})
			return
		}

		token, err := m.firebaseAuthClient.VerifyIDToken(c.Request.Context(), parts[1])
		if err != nil {
			m.logger.Warn("Rejected invalid Firebase ID token", zap.Error(err))
			// Generic message to the client; the verification error stays in
			// the server log.
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired authentication token"})
			return
		}

		identity := identityFromToken(token)
		c.Set("userID", identity.ID)
		c.Set("userEmail", identity.Email)
		c.Set("emailVerified", identity.EmailVerified)
		if name, ok := token.Claims["name"].(string); ok {
			c.Set("userDisplayName", name)
		}

		c.Next()
	}
}

// verifiedToken extracts and verifies the bearer token, returning nil when the
// request carries no usable credentials. Unlike VerifyToken it never writes a
// response.
func (m *AuthMiddleware) verifiedToken(c *gin.Context) *auth.Token {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil
	}
	token, err := m.firebaseAuthClient.VerifyIDToken(c.Request.Context(), parts[1])
	if err != nil {
		m.logger.Debug("Treating request as anonymous after token verification failure", zap.Error(err))
		return nil
	}
	return token
}

// identityFromToken maps a verified Firebase token onto the access-core
// identity. The email_verified claim defaults to false when absent, which
// keeps unverified accounts on the restrictive path.
func identityFromToken(token *auth.Token) access.Identity {
	identity := access.Identity{ID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		identity.Email = email
	}
	if verified, ok := token.Claims["email_verified"].(bool); ok {
		identity.EmailVerified = verified
	}
	return identity
}

// SessionFromContext returns the session resolved by Identify. Requests that
// never passed through Identify get an uninitialized session, which the
// decision core treats as "still loading".
func SessionFromContext(c *gin.Context) access.Session {
	if v, ok := c.Get(sessionContextKey); ok {
		if sess, ok := v.(access.Session); ok {
			return sess
		}
	}
	return access.Session{Phase: access.PhaseUninitialized}
}
