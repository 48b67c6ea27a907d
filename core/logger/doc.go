// Package logger provides a structured logging facility based on Zap.
//
// Commands build one logger from the log section of the configuration. Logs go
// to stderr so that the human-readable progress lines of a reconciliation run
// own stdout.
//
// # Configuration
//
//   - Level: debug, info, warn, error (debug switches to the development config)
//   - Format: console (coloured levels, no stack traces) or json
//
// The HTTP API attaches the request ray id to log entries with WithRayID.
//
// # Usage
//
//	log, _ := logger.New(&cfg.Log)
//	log.Info("Starting reconciliation", zap.Int("machines", n))
package logger
