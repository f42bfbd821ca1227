package session

import (
	"context"
	"log/slog"
)

// Notifier is told when an authenticated session ends because it could not be
// refreshed. User interfaces typically show a "session expired" message.
type Notifier interface {
	SessionExpired(ctx context.Context)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context)

func (f NotifierFunc) SessionExpired(ctx context.Context) {
	f(ctx)
}

// LogNotifier returns a Notifier that logs expired sessions.
func LogNotifier(logger *slog.Logger) Notifier {
	return NotifierFunc(func(ctx context.Context) {
		logger.WarnContext(ctx, "session expired, please log in again")
	})
}
