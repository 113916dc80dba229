package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/platinummonkey/collie/pkg/auth"
	"github.com/platinummonkey/collie/pkg/httputil"
)

// TokenVerifier validates a session token. It is the subset of
// auth.TokenService the middleware needs.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) error
}

// SessionVerification guards protected routes. The token is the last
// whitespace-separated field of the Authorization header, so "Bearer <token>"
// and a bare "<token>" are both accepted. An invalid or expired token
// terminates the request with 401; a storage failure during verification
// surfaces as 500.
func SessionVerification(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fields := strings.Fields(r.Header.Get("Authorization"))
			if len(fields) == 0 {
				httputil.WriteUnauthorized(w, "missing authorization header")
				return
			}
			token := fields[len(fields)-1]

			err := tokens.Verify(r.Context(), token)
			if errors.Is(err, auth.ErrInternal) {
				httputil.WriteInternalError(w, err)
				return
			}
			if err != nil {
				httputil.WriteUnauthorized(w, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
