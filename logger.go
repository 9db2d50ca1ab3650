package georoute

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/hupe1980/georoute/model"
)

// Logger wraps slog.Logger with georoute-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithQuery tags all records with a query id.
func (l *Logger) WithQuery(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("query", id),
	}
}

// WithDatabase adds the database id and path fields.
func (l *Logger) WithDatabase(id model.DatabaseID, path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("database", uint32(id), "path", path),
	}
}

// LogOpen logs the outcome of opening all databases.
func (l *Logger) LogOpen(ctx context.Context, databases int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed",
			"databases", databases,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "databases opened",
			"databases", databases,
		)
	}
}

// LogClosestNode logs a closest routable node lookup.
func (l *Logger) LogClosestNode(ctx context.Context, coord model.GeoCoord, pos model.RoutePosition, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "closest node lookup failed",
			"coord", coord.String(),
			"error", err,
		)
	case !pos.Valid():
		l.DebugContext(ctx, "no routable node in radius",
			"coord", coord.String(),
		)
	default:
		l.DebugContext(ctx, "closest node found",
			"coord", coord.String(),
			"position", pos.String(),
		)
	}
}

// LogRoute logs a route calculation.
func (l *Logger) LogRoute(ctx context.Context, crossDatabase bool, res model.RoutingResult) {
	switch {
	case res.Err != nil:
		l.ErrorContext(ctx, "route calculation failed",
			"cross_database", crossDatabase,
			"error", res.Err,
		)
	case !res.Success():
		l.InfoContext(ctx, "no route found",
			"cross_database", crossDatabase,
		)
	default:
		l.DebugContext(ctx, "route calculated",
			"cross_database", crossDatabase,
			"entries", res.Route.Len(),
			"cost", res.Cost,
		)
	}
}

// LogMatch logs a cross-database match run.
func (l *Logger) LogMatch(ctx context.Context, first, second string, crossings int, err error) {
	if err != nil {
		l.WarnContext(ctx, "database match failed",
			"first", first,
			"second", second,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "databases matched",
			"first", first,
			"second", second,
			"crossings", crossings,
		)
	}
}
