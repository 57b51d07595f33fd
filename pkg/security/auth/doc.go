/*
Package auth provides API key authentication for the watch endpoint.

Keys come from telemetry.metrics.api_keys. When any are configured, the
metrics path only answers requests carrying one of them:

	Authorization: Bearer <key>
	X-API-Key: <key>

Health, readiness and version stay open so orchestrators can probe without
credentials. Key values are never logged; keys are referred to by name.
*/
package auth
