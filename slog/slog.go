// Package slog provides logging decorators for tweetexport services.
// Each decorator delegates to the wrapped implementation and logs the
// operation with its counts, duration and error.
package slog
