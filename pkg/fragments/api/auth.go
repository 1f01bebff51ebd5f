package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth"
)

// OwnerHeader carries the caller identity when authentication is disabled
const OwnerHeader = "X-Owner-Id"

type ownerKey struct{}

// WithOwner returns a copy of ctx carrying the owner id
func WithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerKey{}, ownerID)
}

// OwnerFromContext returns the owner id set by one of the auth middlewares
func OwnerFromContext(ctx context.Context) (string, bool) {
	ownerID, ok := ctx.Value(ownerKey{}).(string)
	return ownerID, ok && ownerID != ""
}

// HashOwner derives the stored owner id from an identity such as an email.
// The identity never leaves the request; only its hex SHA-256 is persisted.
func HashOwner(identity string) string {
	sum := sha256.Sum256([]byte(identity))
	return hex.EncodeToString(sum[:])
}

func withIdentity(next http.Handler, r *http.Request, w http.ResponseWriter, identity string) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		writeErrorMessage(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), HashOwner(identity))))
}

// HeaderAuth trusts the X-Owner-Id header. Only suitable for local development.
func HeaderAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			withIdentity(next, r, w, r.Header.Get(OwnerHeader))
		})
	}
}

// BasicAuth checks HTTP basic credentials against users and uses the
// username as the identity.
func BasicAuth(realm string, users map[string]string) func(http.Handler) http.Handler {
	check := middleware.BasicAuth(realm, users)
	return func(next http.Handler) http.Handler {
		return check(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, _, _ := r.BasicAuth()
			withIdentity(next, r, w, user)
		}))
	}
}

// JWTAuth verifies HS256 bearer tokens signed with secret. The identity is
// the "email" claim, or "sub" when no email is present.
func JWTAuth(secret string) func(http.Handler) http.Handler {
	tokenAuth := jwtauth.New("HS256", []byte(secret), nil)
	verify := jwtauth.Verifier(tokenAuth)
	return func(next http.Handler) http.Handler {
		identify := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				writeErrorMessage(w, r, http.StatusUnauthorized, "unauthorized")
				return
			}
			identity, _ := claims["email"].(string)
			if identity == "" {
				identity = token.Subject()
			}
			withIdentity(next, r, w, identity)
		})
		return verify(jwtauth.Authenticator(identify))
	}
}

// NewAuthenticator returns the middleware for mode: "none", "basic" or "jwt".
func NewAuthenticator(mode string, basicUsers map[string]string, jwtSecret string) func(http.Handler) http.Handler {
	switch mode {
	case "basic":
		return BasicAuth("fragments", basicUsers)
	case "jwt":
		return JWTAuth(jwtSecret)
	default:
		if mode != "none" && mode != "" {
			slog.Warn("Unknown auth mode, falling back to owner header", "mode", mode)
		}
		return HeaderAuth()
	}
}
