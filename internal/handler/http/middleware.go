package http

import (
	"net/http"
	"strings"
)

const jsonContentType = "application/json"

// ContentTypeJSON rejects write requests whose body is not JSON. GETs and
// other bodyless methods pass through untouched.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if expectsBody(r) && !strings.HasPrefix(r.Header.Get("Content-Type"), jsonContentType) {
			w.Header().Set("Content-Type", jsonContentType)
			w.WriteHeader(http.StatusUnsupportedMediaType)
			_, _ = w.Write([]byte(`{"error":{"code":"UNSUPPORTED_MEDIA_TYPE","message":"Content-Type must be application/json"}}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func expectsBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return r.ContentLength > 0
}

// CORSConfig lists the origins browsers may call the API from.
type CORSConfig struct {
	AllowedOrigins []string
	Environment    string
}

// CORS sets cross-origin headers and answers preflight requests. In
// development every origin is allowed; elsewhere the request Origin must
// match the configured allow-list or no allow-origin header is sent.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	wildcard := cfg.Environment == "development"
	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			wildcard = true
		}
		allowed[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch origin := r.Header.Get("Origin"); {
			case wildcard:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case origin != "":
				if _, ok := allowed[origin]; ok {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Vary", "Origin")
				}
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Correlation-ID")
			w.Header().Set("Access-Control-Max-Age", "3600")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
