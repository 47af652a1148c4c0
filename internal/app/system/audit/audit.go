// Package audit records the super-admin audit trail and security events.
//
// Writes are best-effort: a failed audit insert is logged server-side and
// never fails the request that triggered it.
package audit

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Severity levels for audit entries and security events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Entry is one audit log record.
type Entry struct {
	ID         string         `bson:"_id" json:"id"`
	ActorUID   string         `bson:"actorUid" json:"actorUid"`
	ActorEmail string         `bson:"actorEmail" json:"actorEmail"`
	Action     string         `bson:"action" json:"action"`
	TargetType string         `bson:"targetType" json:"targetType"`
	TargetID   string         `bson:"targetId" json:"targetId"`
	Detail     map[string]any `bson:"detail,omitempty" json:"detail,omitempty"`
	Severity   string         `bson:"severity" json:"severity"`
	CreatedAt  time.Time      `bson:"createdAt" json:"createdAt"`
}

// SecurityEvent is one security-relevant occurrence (failed logins,
// emergency suspensions, privilege changes).
type SecurityEvent struct {
	ID        string         `bson:"_id" json:"id"`
	Type      string         `bson:"type" json:"type"`
	UID       string         `bson:"uid,omitempty" json:"uid,omitempty"`
	Email     string         `bson:"email,omitempty" json:"email,omitempty"`
	Detail    map[string]any `bson:"detail,omitempty" json:"detail,omitempty"`
	Severity  string         `bson:"severity" json:"severity"`
	CreatedAt time.Time      `bson:"createdAt" json:"createdAt"`
}

// ListFilter narrows audit log queries.
type ListFilter struct {
	ActorUID   string
	Action     string
	TargetType string
	Severity   string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// Store persists audit entries and security events.
type Store interface {
	InsertEntry(ctx context.Context, e Entry) error
	InsertSecurityEvent(ctx context.Context, e SecurityEvent) error
	ListEntries(ctx context.Context, f ListFilter) ([]Entry, int64, error)
	ListSecurityEvents(ctx context.Context, limit, offset int) ([]SecurityEvent, int64, error)
}

// Logger is the write-side façade handlers use.
type Logger struct {
	store Store
	log   *zap.Logger
}

// NewLogger creates a Logger.
func NewLogger(store Store, log *zap.Logger) *Logger {
	return &Logger{store: store, log: log}
}

// Action records an audited action.
func (l *Logger) Action(ctx context.Context, actorUID, actorEmail, action, targetType, targetID string, detail map[string]any, severity string) {
	if severity == "" {
		severity = SeverityInfo
	}
	e := Entry{
		ID:         newID(),
		ActorUID:   actorUID,
		ActorEmail: actorEmail,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Detail:     detail,
		Severity:   severity,
		CreatedAt:  time.Now().UTC(),
	}
	if err := l.store.InsertEntry(ctx, e); err != nil {
		l.log.Error("audit write failed",
			zap.String("action", action),
			zap.String("actorUid", actorUID),
			zap.Error(err),
		)
	}
}

// Security records a security event.
func (l *Logger) Security(ctx context.Context, eventType, uid, email string, detail map[string]any, severity string) {
	if severity == "" {
		severity = SeverityWarning
	}
	e := SecurityEvent{
		ID:        newID(),
		Type:      eventType,
		UID:       uid,
		Email:     email,
		Detail:    detail,
		Severity:  severity,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.store.InsertSecurityEvent(ctx, e); err != nil {
		l.log.Error("security event write failed",
			zap.String("type", eventType),
			zap.Error(err),
		)
	}
}
