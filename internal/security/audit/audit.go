package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/brewedawakening/commerce/internal/security/middleware"
)

// Logger records security-relevant actions as structured log events
type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

func (al *Logger) LogAction(ctx context.Context, userID, action, resource, resourceID, status, details string) {
	al.logger.Info("audit",
		slog.String("request_id", middleware.GetRequestID(ctx)),
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("user_id", userID),
		slog.String("status", status),
		slog.String("details", details),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *Logger) LogLogin(ctx context.Context, userID string) {
	al.LogAction(ctx, userID, "login", "user", userID, "success", "")
}

func (al *Logger) LogUserDeletion(ctx context.Context, subjectID, userID string) {
	al.LogAction(ctx, subjectID, "delete", "user", userID, "success", "")
}

func (al *Logger) LogOrderCreation(ctx context.Context, userID, orderNumber string) {
	al.LogAction(ctx, userID, "create", "order", orderNumber, "success", "")
}

func (al *Logger) LogDenied(ctx context.Context, userID, reason string) {
	al.LogAction(ctx, userID, "access_denied", "api", "", "denied", reason)
}
