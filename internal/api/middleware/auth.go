package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/mcoot/arenactl/internal/api/apierr"
	"github.com/mcoot/arenactl/internal/policy"
	"github.com/mcoot/arenactl/internal/services/auth"
)

type contextKey string

const accountContextKey contextKey = "account"

// Auth creates middleware that requires an account password as a bearer
// token. The account's IP restriction and role are checked the same way
// as the login command.
func Auth(authService *auth.Service, requirement policy.Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			account, ok := authService.Match(remoteHost(r), token)
			if !ok {
				apierr.WriteError(w, auth.ErrLoginFailed)
				return
			}
			if !policy.Satisfies(account.Role, requirement) {
				apierr.WriteError(w, apierr.NewForbiddenError())
				return
			}

			ctx := context.WithValue(r.Context(), accountContextKey, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken reads the bearer token from the Authorization header
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// GetAccount returns the authenticated account from the request context
func GetAccount(ctx context.Context) (auth.Account, bool) {
	account, ok := ctx.Value(accountContextKey).(auth.Account)
	return account, ok
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
