// Package logging builds structured slog loggers from configuration.
//
// Store components log through slog and default to
// slog.Default().With("component", ...); embedding applications call
// SetDefault once at startup to route everything through a configured
// handler.
package logging
