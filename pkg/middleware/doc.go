// Package middleware provides production-grade middleware for Verso
// applications.
//
// This package includes:
//   - OpenTelemetry distributed tracing middleware
//   - Prometheus metrics middleware
//
// # OpenTelemetry Middleware
//
// The OpenTelemetry middleware traces every dispatched request:
//
//	r := router.New()
//	r.Use(middleware.OpenTelemetry())
//
// Configure with options:
//
//	middleware.OpenTelemetry(
//	    middleware.WithTracerName("my-app"),
//	    middleware.WithRequestFilter(func(c *router.Context) bool {
//	        return c.URL.Path != "/healthz"
//	    }),
//	)
//
// # Prometheus Metrics
//
// The Prometheus middleware collects request metrics:
//   - verso_requests_total: Requests by method and status
//   - verso_request_duration_seconds: Dispatch duration histogram
//   - verso_request_errors_total: Handler errors by method
//
//	r.Use(middleware.Prometheus())
//
// Then expose metrics on a separate port:
//
//	http.Handle("/metrics", promhttp.Handler())
//	go http.ListenAndServe(":9090", nil)
//
// # Context Propagation
//
// The tracing middleware injects the span context into the request
// context, so database drivers, HTTP clients, and server actions inherit
// the trace:
//
//	func myAction(ctx context.Context, inv *action.Invocation) (any, error) {
//	    row := db.QueryRowContext(ctx, "SELECT ...")
//	    ...
//	}
package middleware
