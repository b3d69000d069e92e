// Package slog provides log/slog decorators for the siteindex services.
// Successful operations are logged at debug level and failures at warn
// level, each with its duration.
package slog

import "log/slog"

// levelFor returns the level an operation ending in err is logged at.
func levelFor(err error) slog.Level {
	if err != nil {
		return slog.LevelWarn
	}
	return slog.LevelDebug
}
