package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"voicebot/internal/domain"
	"voicebot/internal/netutil"
	obsmw "voicebot/internal/observability/middleware"
	"voicebot/internal/service"
)

type deviceCtxKey struct{}

// DeviceFromContext returns the authenticated device placed by RequireDevice.
func DeviceFromContext(ctx context.Context) (*domain.Device, bool) {
	dev, ok := ctx.Value(deviceCtxKey{}).(*domain.Device)
	return dev, ok
}

// RequireDevice parses the bearer access token and resolves it to a device
// through the session layer, which enforces the stored-token equality check
// on top of the JWT checks.
func RequireDevice(sessions service.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := obsmw.RequestIDFromContext(r.Context())

			ua := netutil.TruncateUserAgent(r.UserAgent())

			raw := r.Header.Get("Authorization")
			if !strings.HasPrefix(strings.ToLower(raw), "bearer ") {
				slog.Warn("missing bearer token", "path", r.URL.Path, "ip", clientIP(r), "ua", ua, "request_id", reqID)
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "missing bearer token"})
				return
			}
			tokStr := strings.TrimSpace(raw[len("Bearer "):])

			dev, err := sessions.Resolve(r.Context(), tokStr)
			if err != nil {
				slog.Warn("bearer token rejected", "path", r.URL.Path, "ip", clientIP(r), "ua", ua, "error", err, "request_id", reqID)
				writeError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), deviceCtxKey{}, dev)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// mustDevice fetches the device from context; only reachable behind
// RequireDevice.
func mustDevice(w http.ResponseWriter, r *http.Request) (*domain.Device, bool) {
	dev, ok := DeviceFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "not authenticated"})
		return nil, false
	}
	return dev, true
}
