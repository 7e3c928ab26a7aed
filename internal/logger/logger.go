package logger

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	actorKey        contextKey = "actor_id"
	organizationKey contextKey = "organization_id"
	requestIDKey    contextKey = "request_id"
)

// Logger wraps logrus for structured logging with context support
type Logger struct {
	*logrus.Entry
}

// New creates a new logger
func New() *Logger {
	return &Logger{
		Entry: logrus.NewEntry(logrus.StandardLogger()),
	}
}

// ContextWithActor stores the acting user id for later log lines.
func ContextWithActor(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, actorKey, userID)
}

// ContextWithOrganization stores the organization a request is scoped to.
func ContextWithOrganization(ctx context.Context, organizationID uuid.UUID) context.Context {
	return context.WithValue(ctx, organizationKey, organizationID)
}

// ContextWithRequestID stores the request correlation id.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithContext creates a logger carrying the actor, organization and request id found in ctx
func WithContext(ctx context.Context) *Logger {
	logger := New()
	if ctx == nil {
		return logger
	}

	if actor, ok := ctx.Value(actorKey).(uuid.UUID); ok {
		logger.Entry = logger.Entry.WithField("actor", actor.String())
	} else {
		logger.Entry = logger.Entry.WithField("actor", "unknown")
	}
	if org, ok := ctx.Value(organizationKey).(uuid.UUID); ok {
		logger.Entry = logger.Entry.WithField("organization", org.String())
	}
	if requestID, ok := ctx.Value(requestIDKey).(string); ok && requestID != "" {
		logger.Entry = logger.Entry.WithField("request_id", requestID)
	}

	return logger
}

// WithField adds a field to the logger
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{
		Entry: l.Entry.WithField(key, value),
	}
}

// WithFields adds multiple fields to the logger
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{
		Entry: l.Entry.WithFields(fields),
	}
}
