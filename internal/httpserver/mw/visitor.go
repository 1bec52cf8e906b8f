package mw

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type visitorKey struct{}

// visitorCookieMaxAge is the longest lifetime browsers honour for cookies.
const visitorCookieMaxAge = 400 * 24 * time.Hour

// Visitor identifies the browser by a random UUID kept in a cookie, issuing
// a new one when the cookie is missing or malformed. The ID is available to
// handlers through VisitorID.
func Visitor(cookieName string, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(cookieName); err == nil {
				if u, err := uuid.Parse(c.Value); err == nil {
					id = u.String()
				}
			}

			if id == "" {
				id = uuid.NewString()
			}
			// Refresh on every request so active visitors never expire
			http.SetCookie(w, &http.Cookie{
				Name:     cookieName,
				Value:    id,
				Path:     "/",
				MaxAge:   int(visitorCookieMaxAge.Seconds()),
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})

			next.ServeHTTP(w, r.WithContext(WithVisitorID(r.Context(), id)))
		})
	}
}

// WithVisitorID stores a visitor ID in ctx.
func WithVisitorID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, visitorKey{}, id)
}

// VisitorID returns the visitor of the request, or "" outside Visitor.
func VisitorID(ctx context.Context) string {
	id, _ := ctx.Value(visitorKey{}).(string)
	return id
}
