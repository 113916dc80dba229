package middleware

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/platinummonkey/collie/pkg/auth"
	"github.com/platinummonkey/collie/pkg/contextkeys"
	"github.com/platinummonkey/collie/pkg/httputil"
)

// CredentialExchange extracts the base64-encoded "access:secret" pair from
// the Authorization header and stores it in the request context. The encoded
// pair is the last whitespace-separated field of the header, so both
// "Basic <encoded>" and a bare "<encoded>" are accepted. Any malformed
// header terminates the request with 401.
func CredentialExchange(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		login, ok := decodeLogin(r.Header.Get("Authorization"))
		if !ok {
			httputil.WriteUnauthorized(w, "invalid credentials")
			return
		}
		ctx := contextkeys.WithLogin(r.Context(), login)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func decodeLogin(header string) (*auth.Login, bool) {
	fields := strings.Fields(header)
	if len(fields) == 0 {
		return nil, false
	}
	encoded := fields[len(fields)-1]

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, false
	}
	access, secret, found := strings.Cut(string(decoded), ":")
	if !found {
		return nil, false
	}
	return &auth.Login{Access: access, Secret: secret}, true
}
