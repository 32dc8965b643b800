package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/event"
)

const slowMongoCommand = 200 * time.Millisecond

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init installs a JSON slog handler as the process default.
func Init(level string) *slog.Logger {
	return InitWithWriter(os.Stdout, level)
}

func InitWithWriter(w io.Writer, level string) *slog.Logger {
	l := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
	slog.SetDefault(l)
	return l
}

// NewMongoMonitor logs failed and slow commands only; everything else goes to debug.
func NewMongoMonitor() *event.CommandMonitor {
	return &event.CommandMonitor{
		Succeeded: func(ctx context.Context, evt *event.CommandSucceededEvent) {
			fields := []any{
				slog.String("command", evt.CommandName),
				slog.Duration("latency", evt.Duration),
				slog.String("request_id", fmt.Sprintf("%d", evt.RequestID)),
			}
			if evt.Duration > slowMongoCommand {
				slog.WarnContext(ctx, "mongo slow command", fields...)
				return
			}
			slog.DebugContext(ctx, "mongo command", fields...)
		},
		Failed: func(ctx context.Context, evt *event.CommandFailedEvent) {
			slog.ErrorContext(ctx, "mongo command failed",
				slog.String("command", evt.CommandName),
				slog.Duration("latency", evt.Duration),
				slog.String("request_id", fmt.Sprintf("%d", evt.RequestID)),
				slog.Any("err", evt.Failure),
			)
		},
	}
}
