package api

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/collie/pkg/auth"
	"github.com/platinummonkey/collie/pkg/feeds"
	"github.com/platinummonkey/collie/pkg/httputil"
	"github.com/platinummonkey/collie/pkg/items"
	"github.com/platinummonkey/collie/pkg/middleware"
	"github.com/platinummonkey/collie/pkg/observability"
)

// maxRequestBody caps the size of any request body. Feed and item payloads
// are small; anything larger is garbage.
const maxRequestBody = 1 << 20

// Server is the API server. It owns the router and the handler wiring; the
// listener and its lifecycle belong to the caller.
type Server struct {
	router *mux.Router

	authHandlers *AuthHandlers
	feedHandlers *feeds.Handlers
	itemHandlers *items.Handlers
}

// NewServer creates the API server over the shared database handle, the
// token service, and the metrics registry. Every route except /auth sits
// behind session verification; /auth sits behind credential exchange.
func NewServer(db *sql.DB, tokens *auth.TokenService, metrics *observability.Metrics) *Server {
	s := &Server{
		router:       mux.NewRouter(),
		authHandlers: NewAuthHandlers(tokens, metrics),
		feedHandlers: feeds.NewHandlers(feeds.NewStore(db).WithMetrics(metrics)),
		itemHandlers: items.NewHandlers(items.NewStore(db).WithMetrics(metrics)),
	}
	s.setupRoutes(tokens, metrics)
	return s
}

// setupRoutes configures the gateway and protected subrouters.
func (s *Server) setupRoutes(tokens *auth.TokenService, metrics *observability.Metrics) {
	s.router.Use(httputil.MaxBytesMiddleware(maxRequestBody))

	gateway := s.router.PathPrefix("/auth").Subrouter()
	gateway.Use(middleware.CredentialExchange)
	gateway.HandleFunc("", s.authHandlers.Authorize).Methods("GET")

	protected := s.router.PathPrefix("/").Subrouter()
	protected.Use(middleware.SessionVerification(&countingVerifier{tokens: tokens, metrics: metrics}))
	protected.HandleFunc("/", s.echo).Methods("GET")
	s.feedHandlers.RegisterRoutes(protected)
	s.itemHandlers.RegisterRoutes(protected)
}

// countingVerifier counts every token verification by outcome.
type countingVerifier struct {
	tokens  middleware.TokenVerifier
	metrics *observability.Metrics
}

func (v *countingVerifier) Verify(ctx context.Context, token string) error {
	err := v.tokens.Verify(ctx, token)
	v.metrics.TokenVerificationsTotal.WithLabelValues(authStatus(err)).Inc()
	return err
}

func authStatus(err error) string {
	if err != nil {
		return "invalid"
	}
	return "ok"
}

// echo is a connectivity check for authenticated clients.
func (s *Server) echo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("hello-world"))
}

// Use installs router-wide middleware ahead of the route-level gates.
func (s *Server) Use(mw ...mux.MiddlewareFunc) {
	s.router.Use(mw...)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
