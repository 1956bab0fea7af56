package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const htmxContextKey contextKey = "htmx.info"

// HTMX returns middleware that records whether the request came from htmx.
func HTMX() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			isHTMX := strings.EqualFold(r.Header.Get("HX-Request"), "true")
			ctx := context.WithValue(r.Context(), htmxContextKey, isHTMX)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IsHTMXRequest returns true when the current request was initiated by htmx.
func IsHTMXRequest(ctx context.Context) bool {
	val, _ := ctx.Value(htmxContextKey).(bool)
	return val
}

// RequireHTMX answers 404 to anything but htmx so map fragments are not
// reachable by direct navigation. Fragments depend on the request header,
// so responses vary on it and are never cached.
func RequireHTMX() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsHTMXRequest(r.Context()) {
				http.NotFound(w, r)
				return
			}
			w.Header().Add("Vary", "HX-Request")
			w.Header().Set("Cache-Control", "no-store")
			next.ServeHTTP(w, r)
		})
	}
}

// ReplaceURL tells htmx to update the address bar without a history entry.
func ReplaceURL(w http.ResponseWriter, url string) {
	w.Header().Set("HX-Replace-Url", url)
}
