// Package middleware provides observability for the navigation machine.
//
// This package includes:
//   - Prometheus metrics observer
//   - OpenTelemetry tracing observer
//
// Both implement navigation.Observer and are attached when the machine is
// created:
//
//	machine := navigation.New(store, registry,
//	    navigation.WithObserver(middleware.NewMetrics()),
//	    navigation.WithObserver(middleware.NewTracing(
//	        middleware.WithTracerName("my-app"),
//	    )),
//	)
//
// # Prometheus Metrics
//
// The metrics observer counts operations by kind, outcome and status, times
// them, counts failures by error code and tracks the stack size. Expose them
// with promhttp:
//
//	http.Handle("/metrics", promhttp.Handler())
//
// # OpenTelemetry
//
// The tracing observer records one span per operation named after the
// operation ("stacknav.navigate", "stacknav.close", ...). Failed operations
// record the error and set the span status.
package middleware
