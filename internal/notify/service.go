package notify

import (
	"context"
	"errors"
)

var (
	// ErrPermissionDenied is returned by Enable when the service refuses
	// to deliver notifications.
	ErrPermissionDenied = errors.New("notification permission denied")
	// ErrSuperseded is returned by a Service for calls carrying a token
	// older than the newest CancelAll it has seen.
	ErrSuperseded = errors.New("rebuild superseded by a newer one")
	// ErrTooManyAlerts is returned when the pending ceiling is reached.
	ErrTooManyAlerts = errors.New("too many pending alerts")
)

// MaxPendingAlerts is the ceiling on alerts a service holds at once.
const MaxPendingAlerts = 64

// Token identifies one rebuild. Tokens increase monotonically; a service
// discards work from any token older than the last CancelAll.
type Token uint64

// Service is a device notification facility.
type Service interface {
	// CancelAll drops every pending alert and makes tok the current rebuild.
	CancelAll(ctx context.Context, tok Token) error
	// ScheduleAt queues a for delivery at a.At on behalf of rebuild tok.
	ScheduleAt(ctx context.Context, tok Token, a Alert) error
	// RequestPermission reports whether alerts may be delivered.
	RequestPermission(ctx context.Context) (bool, error)
}
