package audit

import (
	"context"
	"log/slog"
)

// LogSink writes audit entries as structured log lines
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a LogSink
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger.With(slog.String("component", "audit"))}
}

// Record logs the entry. Shutdown requests are logged at warn level.
func (s *LogSink) Record(ctx context.Context, entry Entry) error {
	level := slog.LevelInfo
	if entry.Action == ActionShutdown || entry.Action == ActionAddBots {
		level = slog.LevelWarn
	}
	s.logger.LogAttrs(ctx, level, "audit "+string(entry.Action),
		slog.Uint64("session_id", entry.SessionID),
		slog.String("address", entry.Address),
		slog.String("identity", entry.Identity),
		slog.String("role", entry.Role),
		slog.String("detail", entry.Detail),
	)
	return nil
}

// Flush is a no-op; log lines are written synchronously
func (s *LogSink) Flush(ctx context.Context) error {
	return nil
}
