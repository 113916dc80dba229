// Package observability provides logging, metrics, health checks, and
// graceful shutdown.
//
// # Logging
//
// Structured JSON logging over log/slog:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("feed", id).Info("fetched")
//	logger.WithError(err).Error("fetch failed")
//
// Credentials and session tokens never appear in log output.
//
// # Metrics
//
// Prometheus metrics under the collie_ prefix: HTTP request totals and
// durations, storage operation counters, token issuance and verification
// counters, fetch counters, and connection pool gauges.
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	handler := observability.HTTPMetricsMiddleware(metrics)(next)
//
// # Health
//
// Liveness always answers 200 while the process runs. Readiness pings the
// database and runs a live query through the serialized connection.
//
//	checker := observability.NewHealthChecker(db)
//	observability.RegisterHealthRoutes(healthMux, checker)
//
// The health mux listens on its own port, never on the API listener.
//
// # Shutdown
//
//	sm := observability.NewShutdownManager(logger, 30*time.Second, apiServer, healthServer)
//	sm.RegisterShutdownFunc(func(ctx context.Context) error { return db.Close() })
//	sm.WaitForShutdown()
package observability
