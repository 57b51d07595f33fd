/*
Package security groups the access controls of Tessera's HTTP surface.

The only surface is the watch endpoint (see package server). Subpackage auth
restricts its metrics path to callers presenting a configured API key:

	validator := auth.NewKeyValidator(auth.KeysFromConfig(cfg.Telemetry.Metrics.APIKeys))
	mw := auth.NewMiddleware(validator, auth.DefaultSources())

	mux.Handle("/metrics", mw.Handle(collector.Handler()))
*/
package security
