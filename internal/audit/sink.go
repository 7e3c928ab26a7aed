package audit

import (
	"context"
	"errors"
	"fmt"

	"orghub-backend/internal/database/models"
	"orghub-backend/internal/repository"

	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=sink.go -destination=../mocks/audit_mocks.go -package=mocks

// Sink persists or forwards audit records
type Sink interface {
	Write(ctx context.Context, entry *models.AuditLog) error
}

// RepositorySink stores records in the audit_logs table
type RepositorySink struct {
	repo repository.AuditLogRepositoryInterface
}

// NewRepositorySink creates a sink backed by repo
func NewRepositorySink(repo repository.AuditLogRepositoryInterface) *RepositorySink {
	return &RepositorySink{repo: repo}
}

// Write stores entry
func (s *RepositorySink) Write(_ context.Context, entry *models.AuditLog) error {
	if err := s.repo.Create(entry); err != nil {
		return fmt.Errorf("store audit record: %w", err)
	}
	return nil
}

// LogSink writes records as structured log lines
type LogSink struct {
	logger *logrus.Logger
}

// NewLogSink creates a sink logging through l; nil means the standard logger
func NewLogSink(l *logrus.Logger) *LogSink {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &LogSink{logger: l}
}

// Write logs entry at info level
func (s *LogSink) Write(_ context.Context, entry *models.AuditLog) error {
	fields := logrus.Fields{
		"audit":      true,
		"event_type": entry.EventType,
		"status":     entry.Status,
		"actor_id":   entry.ActorID.String(),
		"operation":  entry.Operation,
		"timestamp":  entry.Timestamp,
		"details":    string(entry.Details),
	}
	if entry.OrganizationID != nil {
		fields["organization_id"] = entry.OrganizationID.String()
	}
	if entry.TargetUserID != nil {
		fields["target_user_id"] = entry.TargetUserID.String()
	}
	s.logger.WithFields(fields).Info("audit event")
	return nil
}

// MultiSink fans a record out to every sink, continuing past failures
type MultiSink []Sink

// Write writes entry to every sink and joins their errors
func (m MultiSink) Write(ctx context.Context, entry *models.AuditLog) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Write(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
