package health

import (
	"encoding/json"
	"net/http"
	"strings"
)

// LivenessHandler always answers OK.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		write(w, r, http.StatusOK, &Response{Status: StatusHealthy})
	}
}

// ReadinessHandler answers 503 when any check fails.
func ReadinessHandler(checks Checks, opts ...Option) http.HandlerFunc {
	cfg := newConfig(opts...)

	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := runChecks(r.Context(), checks, cfg)
		status := http.StatusOK
		if err != nil {
			status = http.StatusServiceUnavailable
		}
		write(w, r, status, resp)
	}
}

// NewMux routes the live and ready probes.
func NewMux(checks Checks, opts ...Option) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /health/live", LivenessHandler())
	mux.Handle("GET /health/ready", ReadinessHandler(checks, opts...))
	return mux
}

func write(w http.ResponseWriter, r *http.Request, status int, resp *Response) {
	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	w.WriteHeader(status)
	if status == http.StatusOK {
		_, _ = w.Write([]byte("OK"))
		return
	}
	_, _ = w.Write([]byte("Service Unavailable"))
}

func wantsJSON(r *http.Request) bool {
	if r.URL.Query().Get("format") == "json" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
