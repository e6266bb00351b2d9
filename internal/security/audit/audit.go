package audit

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/aryan0dhankhar/ordertrack/internal/observability/requestid"
)

type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger.With(slog.String("component", "audit"))}
}

// LogAction writes one audit record. userID 0 means anonymous.
func (al *Logger) LogAction(ctx context.Context, userID int64, action, resource, resourceID, status, details string) {
	al.logger.InfoContext(ctx, "audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.Int64("user_id", userID),
		slog.String("status", status),
		slog.String("details", details),
		slog.String("request_id", requestid.FromContext(ctx)),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *Logger) LogLogin(ctx context.Context, userID int64, email, status string) {
	al.LogAction(ctx, userID, "login", "session", "", status, email)
}

func (al *Logger) LogRegistration(ctx context.Context, userID int64, email string) {
	al.LogAction(ctx, userID, "register", "user", strconv.FormatInt(userID, 10), "pending", email)
}

func (al *Logger) LogStatusChange(ctx context.Context, actorID, targetID int64, from, to string) {
	al.LogAction(ctx, actorID, "set_status", "user", strconv.FormatInt(targetID, 10), to, "from "+from)
}

func (al *Logger) LogDenied(ctx context.Context, userID int64, reason string) {
	al.LogAction(ctx, userID, "access_denied", "api", "", "denied", reason)
}
