package notify

import (
	"context"
	"sync"
)

// Recorder is a Service that only records what it is asked to do. It
// backs dry runs such as `namaz notify preview`.
type Recorder struct {
	// Granted is the answer to RequestPermission.
	Granted bool
	// Fail, when set, is consulted for every ScheduleAt; a non-nil result
	// is returned instead of recording the alert.
	Fail func(Alert) error

	mu      sync.Mutex
	alerts  []Alert
	cancels int
	latest  Token
}

// CancelAll implements Service.
func (r *Recorder) CancelAll(_ context.Context, tok Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tok < r.latest {
		return ErrSuperseded
	}
	r.latest = tok
	r.cancels++
	r.alerts = nil
	return nil
}

// ScheduleAt implements Service.
func (r *Recorder) ScheduleAt(_ context.Context, tok Token, a Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tok < r.latest {
		return ErrSuperseded
	}
	if r.Fail != nil {
		if err := r.Fail(a); err != nil {
			return err
		}
	}
	r.alerts = append(r.alerts, a)
	return nil
}

// RequestPermission implements Service.
func (r *Recorder) RequestPermission(context.Context) (bool, error) {
	return r.Granted, nil
}

// Alerts returns the alerts recorded since the last CancelAll.
func (r *Recorder) Alerts() []Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Alert, len(r.alerts))
	copy(out, r.alerts)
	return out
}

// Cancels returns how many times CancelAll succeeded.
func (r *Recorder) Cancels() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancels
}
