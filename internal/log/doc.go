// Package log provides secure logging functionality with automatic
// sanitization of API credentials, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic masking of credential attribute values (api_key, token, ...)
//   - Masking of the "key" query parameter inside logged request URLs
//   - Configurable log levels with verbose mode support
//
// The PageSpeed Insights API key travels as a query parameter, so a logged
// request URL is itself a credential leak. Even in verbose mode, the
// SecureHandler masks the key before the record reaches the underlying
// handler.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//	logger.Debug("request sent",
//	    "url", "https://.../runPagespeed?key=secret",  // key= will be masked
//	    "strategy", "mobile",
//	)
//	slog.SetDefault(logger)
package log
