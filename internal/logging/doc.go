// Package logging centralizes slog construction and attribute helpers so
// every component logs with the same fields and formats.
package logging
