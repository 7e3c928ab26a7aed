// Package audit records authorization decisions and role changes.
// Recording never fails the caller: sink errors are logged and dropped.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"orghub-backend/internal/database/models"
	"orghub-backend/internal/logger"
	"orghub-backend/internal/rbac"

	"github.com/google/uuid"
)

const (
	EventPermissionCheck = "authz.permission_check"
	EventRoleChange      = "authz.role_change"

	StatusGranted = "granted"
	StatusDenied  = "denied"
	StatusBypass  = "bypass"

	// TimestampLayout is millisecond precision, always UTC.
	TimestampLayout = "2006-01-02T15:04:05.000Z"
)

// Emitter turns rbac decisions into audit records and hands them to a Sink.
type Emitter struct {
	sink Sink
	now  func() time.Time
}

var _ rbac.Auditor = (*Emitter)(nil)

// NewEmitter creates an Emitter writing to sink
func NewEmitter(sink Sink) *Emitter {
	return &Emitter{sink: sink, now: time.Now}
}

type permissionCheckDetails struct {
	Decision   string `json:"decision"`
	Operation  string `json:"operation"`
	Permission string `json:"permission,omitempty"`
	ActorRole  string `json:"actor_role,omitempty"`
	GlobalRole string `json:"global_role,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

type roleChangeDetails struct {
	OldRole string `json:"old_role"`
	NewRole string `json:"new_role"`
}

// RecordPermissionCheck records one authorization decision
func (e *Emitter) RecordPermissionCheck(ctx context.Context, check rbac.CheckContext, success bool, errorDetail string) {
	status := StatusDenied
	if success {
		status = StatusGranted
		if check.Bypass {
			status = StatusBypass
		}
	}

	details := permissionCheckDetails{
		Decision:   status,
		Operation:  string(check.Operation.Kind),
		Permission: string(check.Operation.Permission),
		ActorRole:  string(check.ActorRole),
		GlobalRole: string(check.Actor.GlobalRole),
		Reason:     errorDetail,
	}

	entry := &models.AuditLog{
		EventType:      EventPermissionCheck,
		Status:         status,
		ActorID:        check.Actor.UserID,
		OrganizationID: optionalID(check.OrganizationID),
		TargetUserID:   optionalID(check.Operation.TargetUserID),
		Operation:      check.Operation.String(),
	}
	e.emit(ctx, entry, details)
}

// RecordRoleChange records a committed role change
func (e *Emitter) RecordRoleChange(ctx context.Context, targetUserID, organizationID, performedBy uuid.UUID, oldRole, newRole rbac.Role) {
	entry := &models.AuditLog{
		EventType:      EventRoleChange,
		Status:         StatusGranted,
		ActorID:        performedBy,
		OrganizationID: optionalID(organizationID),
		TargetUserID:   optionalID(targetUserID),
		Operation:      rbac.ChangeRole(targetUserID, newRole).String(),
	}
	e.emit(ctx, entry, roleChangeDetails{OldRole: string(oldRole), NewRole: string(newRole)})
}

func (e *Emitter) emit(ctx context.Context, entry *models.AuditLog, details interface{}) {
	log := logger.WithContext(ctx).WithField("event_type", entry.EventType)

	raw, err := json.Marshal(details)
	if err != nil {
		log.WithField("error", err.Error()).Error("failed to encode audit details")
		raw = json.RawMessage(`{}`)
	}
	entry.Details = raw
	entry.Timestamp = FormatTimestamp(e.now())

	if e.sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("audit sink panicked")
		}
	}()
	if err := e.sink.Write(ctx, entry); err != nil {
		log.WithField("error", err.Error()).Error("failed to write audit record")
	}
}

// FormatTimestamp renders t in the audit timestamp layout
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func optionalID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
