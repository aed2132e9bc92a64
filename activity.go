package membership

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventLoginCreated      ActivityEventType = "login.created"
	ActivityEventLoginSoftDeleted  ActivityEventType = "login.soft_deleted"
	ActivityEventLoginPurged       ActivityEventType = "login.purged"
	ActivityEventLockoutCleared    ActivityEventType = "login.lockout.cleared"
	ActivityEventValidationSuccess ActivityEventType = "auth.validation.success"
	ActivityEventValidationFailure ActivityEventType = "auth.validation.failure"
	ActivityEventRoleGranted       ActivityEventType = "role.granted"
	ActivityEventRoleRevoked       ActivityEventType = "role.revoked"
)

// ActivityEvent captures audit-friendly information about an action.
type ActivityEvent struct {
	EventType  ActivityEventType
	Username   string
	LoginID    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}
