package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/platinummonkey/collie/pkg/auth"
	"github.com/platinummonkey/collie/pkg/contextkeys"
	"github.com/platinummonkey/collie/pkg/httputil"
	"github.com/platinummonkey/collie/pkg/observability"
)

// TokenIssuer exchanges a credential pair for a session token. It is the
// subset of auth.TokenService the gateway needs.
type TokenIssuer interface {
	Issue(ctx context.Context, access, secret string) (string, error)
}

// AuthHandlers serves the token issuance endpoint.
type AuthHandlers struct {
	tokens  TokenIssuer
	metrics *observability.Metrics
}

// NewAuthHandlers creates the issuance handlers.
func NewAuthHandlers(tokens TokenIssuer, metrics *observability.Metrics) *AuthHandlers {
	return &AuthHandlers{tokens: tokens, metrics: metrics}
}

// Authorize exchanges the credential pair placed in the request context by
// the credential middleware for a session token. Unknown, expired, or
// mismatched credentials get 401; a storage or signing failure gets 500.
// The secret never appears in any response or log line.
func (h *AuthHandlers) Authorize(w http.ResponseWriter, r *http.Request) {
	login, ok := contextkeys.GetLogin(r.Context())
	if !ok {
		h.metrics.TokensIssuedTotal.WithLabelValues("unauthorized").Inc()
		httputil.WriteUnauthorized(w, "missing credentials")
		return
	}

	token, err := h.tokens.Issue(r.Context(), login.Access, login.Secret)
	switch {
	case errors.Is(err, auth.ErrInternal):
		h.metrics.TokensIssuedTotal.WithLabelValues("error").Inc()
		httputil.WriteInternalError(w, err)
	case err != nil:
		h.metrics.TokensIssuedTotal.WithLabelValues("unauthorized").Inc()
		httputil.WriteUnauthorized(w, "invalid credentials")
	default:
		h.metrics.TokensIssuedTotal.WithLabelValues("ok").Inc()
		httputil.WriteSuccess(w, map[string]string{"token": token})
	}
}
