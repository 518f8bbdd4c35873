package middleware

import (
	"net/http"
	"strings"

	"proposalforge/internal/auth"
	"proposalforge/internal/httputil"
)

// Auth validates the bearer token on every request and stores the caller's
// user ID in the request context. Health and metrics endpoints are exempt so
// probes and scrapers don't need tokens.
//
// A nil verifier disables verification entirely (local development without an
// identity provider); requests then carry the user ID from the X-User-ID
// header, or "anonymous".
func Auth(verifier auth.JWTVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			if verifier == nil {
				userID := r.Header.Get("X-User-ID")
				if userID == "" {
					userID = "anonymous"
				}
				next.ServeHTTP(w, httputil.WithUserID(r, userID))
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, httputil.WithUserID(r, claims.Subject))
		})
	}
}
