package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"voicebot/internal/domain"
	"voicebot/internal/netutil"
	"voicebot/internal/service/impl"
)

func clientIP(r *http.Request) string {
	// If the service sits behind a proxy, these headers matter.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// XFF can be a list: client, proxy1, proxy2...
		ip := strings.TrimSpace(strings.Split(xff, ",")[0])
		if normalized, ok := netutil.NormalizeIP(ip); ok {
			return normalized
		}
	}
	if xr := r.Header.Get("X-Real-IP"); xr != "" {
		if normalized, ok := netutil.NormalizeIP(xr); ok {
			return normalized
		}
	}
	if normalized, ok := netutil.NormalizeIP(r.RemoteAddr); ok {
		return normalized
	}
	return r.RemoteAddr
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps service sentinels onto HTTP statuses. Anything unmapped is
// a 500 with a generic message so internals don't leak.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid credentials"})
	case errors.Is(err, domain.ErrTokenExpired):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "token expired"})
	case errors.Is(err, domain.ErrInvalidToken):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid token"})
	case errors.Is(err, domain.ErrDeviceNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "device not found"})
	case errors.Is(err, domain.ErrUnknownPipelineType),
		errors.Is(err, domain.ErrUnknownLLMService),
		errors.Is(err, impl.ErrDeviceNameLength),
		errors.Is(err, impl.ErrPasswordLength),
		errors.Is(err, impl.ErrPasswordMismatch),
		errors.Is(err, impl.ErrEmptyCredential),
		errors.Is(err, impl.ErrMissingRefresh),
		errors.Is(err, impl.ErrNothingToUpdate):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, domain.ErrIDAllocationConflict):
		writeJSON(w, http.StatusConflict, errorBody{Error: "registration conflict, retry"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}
