// Package log provides a small structured logging interface based on
// [log/slog].
//
// The zero [Logger] discards everything, so components can hold one
// unconditionally and callers opt in to output:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText))
//	logger.Debug("cell updated", slog.Int("id", 3))
//
// In addition to the slog levels, the package defines [LevelTrace] for
// per-evaluation detail that is too noisy for debugging sessions.
package log
