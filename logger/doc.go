// Package logger provides structured logging for apikit using zerolog.
//
// Clients, handlers and endpoint runners log through named component
// loggers so a single process can tune or silence each layer.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("client")
//	log.Debug("send", logger.Fields("method", "GET", "url", u))
package logger
