package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ptec-dev/audit-management/internal"
	"github.com/ptec-dev/audit-management/internal/portal"
)

// publicRoute is one (path, method) pair that requires no token.
type publicRoute struct {
	Path   string
	Method string
}

// publicRoutes is the static allow-list. Everything not on it is protected.
var publicRoutes = []publicRoute{
	{Path: "/api/login", Method: http.MethodPost},
	{Path: "/api/verify-otp", Method: http.MethodPost},
	{Path: "/api/resend-otp", Method: http.MethodPost},
	{Path: "/api/send-otp", Method: http.MethodPost},
	{Path: "/api/reset-password", Method: http.MethodPost},
	{Path: "/api/validate-reset-token", Method: http.MethodPost},
	{Path: "/api/health", Method: http.MethodGet},
	{Path: "/api/ping", Method: http.MethodGet},
}

func isPublic(path, method string) bool {
	for _, route := range publicRoutes {
		if route.Path == path && route.Method == method {
			return true
		}
	}
	return false
}

// AuthGate is the per-request authorization interceptor. Public routes pass
// untouched; protected routes must present a bearer token the portal
// confirms. Rejections carry a precise flag so the client can distinguish
// a missing token, a malformed one, and an expired one; portal outages are
// 503, never 401 — infrastructure failure is not an auth failure.
func AuthGate(validator portal.API, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r.URL.Path, r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			token := extractBearer(r)
			if token == "" {
				writeGateReject(w, http.StatusUnauthorized, internal.ErrTokenMissing.Message, "noToken")
				return
			}

			resp, err := validator.Validate(r.Context(), token)
			if err != nil {
				if errors.Is(err, internal.ErrPortalRejected) {
					writeGateReject(w, http.StatusUnauthorized, internal.ErrTokenExpired.Message, "tokenExpired")
					return
				}
				logger.Error("portal validation error", "error", err, "path", r.URL.Path)
				writeServiceUnavailable(w)
				return
			}

			if resp == nil || !resp.Valid {
				writeGateReject(w, http.StatusUnauthorized, internal.ErrTokenInvalid.Message, "tokenInvalid")
				return
			}

			identity := internal.Identity{AccessToken: token}
			if resp.User != nil {
				identity.UserCode = resp.User.UserCode
				identity.RoleID = int64(resp.User.Role)
			}
			ctx := internal.ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearer(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(authHeader) <= len(prefix) || authHeader[:len(prefix)] != prefix {
		return ""
	}
	return authHeader[len(prefix):]
}

// writeGateReject emits the 401 contract: statusCode, error, message, the
// reason flag, and a timestamp.
func writeGateReject(w http.ResponseWriter, status int, message, flag string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]interface{}{
		"statusCode": status,
		"error":      "Unauthorized",
		"message":    message,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}
	body[flag] = true
	_ = json.NewEncoder(w).Encode(body)
}

func writeServiceUnavailable(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusServiceUnavailable)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": "Auth service unavailable",
		"error":   "SERVICE_UNAVAILABLE",
	})
}
