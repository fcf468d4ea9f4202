package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

type contextKey string

const identityKey contextKey = "identity"

const unauthorizedBody = `{"error":"unauthorized","message":"valid authentication required"}`

// RequireAuth rejects requests without a valid bearer token with 401 and
// otherwise stores the caller's Identity in the request context.
//
//	Authorization: Bearer <jwt>
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := extractIdentity(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("WWW-Authenticate", `Bearer realm="todo-app"`)
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(unauthorizedBody + "\n"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the authenticated caller, or (nil, false) on a
// request that did not pass through RequireAuth.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok && id != nil
}

func extractIdentity(r *http.Request, tokens *TokenService) (*Identity, error) {
	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		return nil, errMissingBearer
	}
	return tokens.Validate(token)
}

var errMissingBearer = errors.New("auth: missing bearer token")

// bearerToken pulls the token out of an Authorization header value. The
// scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
