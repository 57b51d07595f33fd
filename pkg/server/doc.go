// Package server runs the HTTP endpoint watch mode exposes for scraping and
// probes.
//
// The server does not know what it serves; callers build the handler. In
// tessera that is a mux with the Prometheus handler and the health
// endpoints:
//
//	mux := http.NewServeMux()
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//	health.Register(mux, checker, version, commit, buildDate)
//
//	srv := server.New(&server.Config{ListenAddress: ":9090"}, mux)
//	if err := srv.Start(ctx); err != nil {
//		return err
//	}
//
// Start blocks until ctx is cancelled or Shutdown is called, then drains
// open connections for up to ShutdownTimeout.
package server
