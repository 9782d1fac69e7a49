package session

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"time"
)

type ctxKey struct{}

const cookieMaxAge = 365 * 24 * 60 * 60 // one year

// NewID builds an anonymous session identifier: a timestamp plus a short
// random base36 suffix. It is a pseudo-identity, not authentication.
func NewID() string {
	suffix := strconv.FormatInt(rand.Int63(), 36)
	if len(suffix) > 7 {
		suffix = suffix[:7]
	}
	return fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), suffix)
}

// Middleware ensures every request carries a session id: an existing cookie
// is reused, otherwise a fresh id is generated and set. The id is available
// through FromContext.
func Middleware(cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
				id = c.Value
			} else {
				id = NewID()
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    id,
					Path:     "/",
					MaxAge:   cookieMaxAge,
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext returns the session id set by Middleware, or "" when absent.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return ""
}
