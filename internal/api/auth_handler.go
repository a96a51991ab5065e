package api

import (
	"context"
	"net/http"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shifttrack-backend-go/internal/access"
	"shifttrack-backend-go/internal/core"
)

// AuthHandler handles authentication related API endpoints.
type AuthHandler struct {
	userService core.UserService
	authClient  *firebaseauth.Client
	caches      *access.CacheSet
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(us core.UserService, authClient *firebaseauth.Client, caches *access.CacheSet, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{userService: us, authClient: authClient, caches: caches, logger: logger}
}

// InitializeUserProfile handles the POST /api/v1/users/initialize endpoint.
// Clients call it after a Firebase authentication event (login/signup) to
// ensure a corresponding user profile exists in Firestore. The auth middleware
// has already validated the ID token and put the claims into the context.
func (h *AuthHandler) InitializeUserProfile(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: User ID not found in context"})
		return
	}
	email := c.GetString("userEmail")
	displayName := c.GetString("userDisplayName")
	emailVerified := c.GetBool("emailVerified")

	user, created, err := h.userService.GetOrCreate(c.Request.Context(), userID, email, displayName, emailVerified)
	if err != nil {
		h.logger.Error("Failed to initialize user profile", zap.String("userID", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to initialize user profile", Details: err.Error()})
		return
	}

	// The profile definitely exists now; refresh the access cache so the
	// next guarded request does not run on a stale "profile missing" view.
	if err := h.caches.Refresh(c.Request.Context(), userID); err != nil {
		h.logger.Warn("Profile cache refresh failed after initialization", zap.String("userID", userID), zap.Error(err))
	}

	if created {
		c.JSON(http.StatusCreated, user)
		return
	}
	c.JSON(http.StatusOK, user)
}

// tokenRevoker adapts the Firebase Admin client to the access-core
// AuthProvider for one user: signing out means revoking the refresh tokens
// so every device has to re-authenticate.
type tokenRevoker struct {
	client *firebaseauth.Client
	uid    string
}

func (r tokenRevoker) SignOut(ctx context.Context) error {
	return r.client.RevokeRefreshTokens(ctx, r.uid)
}

// redirectCapture records where the session store wants the caller to land
// so the handler can put it in the response.
type redirectCapture struct {
	target  access.Zone
	replace bool
	called  bool
}

func (r *redirectCapture) NavigateTo(zone access.Zone, replaceHistory bool) {
	r.target = zone
	r.replace = replaceHistory
	r.called = true
}

// SignOut handles the POST /api/v1/auth/signout endpoint.
// On success the user's refresh tokens are revoked, the cached profile is
// dropped, and the response tells the client to land on the welcome zone with
// history replaced. If revocation fails nothing changes: the caller keeps a
// usable session and can retry.
func (h *AuthHandler) SignOut(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: User ID not found in context"})
		return
	}

	nav := &redirectCapture{}
	store := access.NewSessionStore(tokenRevoker{client: h.authClient, uid: userID}, nav, h.logger)
	store.BeginInit()
	store.OnAuthEvent(access.AuthEvent{Kind: access.EventSignedIn, Identity: &access.Identity{ID: userID}})

	if err := store.SignOut(c.Request.Context()); err != nil {
		h.logger.Error("Sign-out failed", zap.String("userID", userID), zap.Error(err))
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Sign-out failed, session unchanged", Details: err.Error()})
		return
	}

	h.caches.Drop(userID)

	resp := SignOutResponse{Message: "Signed out"}
	if nav.called {
		resp.RedirectTo = string(nav.target)
		resp.ReplaceHistory = nav.replace
	}
	c.JSON(http.StatusOK, resp)
}
