// Package config provides configuration management for tessera.
//
// Configuration is read from a YAML file (conventionally tessera.yaml),
// layered over defaults and environment variable overrides, and validated
// before use.
//
//	cfg, err := config.LoadConfigWithEnvOverrides("tessera.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention TESSERA_SECTION_FIELD:
//
//   - TESSERA_VALIDATION_AUTO_NORMALIZE overrides validation.auto_normalize
//   - TESSERA_HISTORY_BACKEND overrides history.backend
//   - TESSERA_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
//  1. Default values (defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton Pattern
//
//	if err := config.Initialize("tessera.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//	cfg := config.GetConfig()
//
// Libraries take explicit values instead of reading the singleton; only the
// command layer calls GetConfig.
//
// # Validation
//
// Validation errors carry the dotted field path:
//
//	configuration validation failed with 2 errors:
//	  - validation.priority_max: must be >= priority_min (5 < 7)
//	  - history.backend: invalid backend "postgres": must be 'sqlite' or 'memory'
//
// # Example Configuration
//
//	validation:
//	  priority_max: 5
//	  auto_normalize: true
//
//	history:
//	  backend: "sqlite"
//	  sqlite:
//	    path: "data/history.db"
//	  retention_days: 30
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "text"
//	  metrics:
//	    listen_address: ":9090"
//	    api_keys: ["scrape-key"]
//
// List overrides such as TESSERA_TELEMETRY_METRICS_API_KEYS are
// comma-separated.
package config
