package middleware

import (
	"context"
	"net/http"
	"strings"

	"notes-api/models"
)

// SessionCookie is the cookie the login handler stores the token in.
const SessionCookie = "session"

type key int

const actorKey key = 0

// Resolver maps a session token to the actor it belongs to.
type Resolver interface {
	Resolve(token string) models.Actor
}

// TokenFromRequest returns the session token carried by r, from the session
// cookie or else a Bearer Authorization header.
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenStr == authHeader {
		return ""
	}
	return strings.TrimSpace(tokenStr)
}

// Session resolves the caller of every request and stores it in the request
// context. It never rejects a request: anonymous callers continue with
// models.Anonymous and the handlers decide what they may do.
func Session(resolver Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := resolver.Resolve(TokenFromRequest(r))
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func ActorFromContext(ctx context.Context) models.Actor {
	actor, ok := ctx.Value(actorKey).(models.Actor)
	if !ok {
		return models.Anonymous
	}
	return actor
}
