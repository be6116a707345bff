package notify

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Sender delivers a due alert.
type Sender interface {
	Send(ctx context.Context, a Alert) error
	// Ready reports whether the sender can deliver (credentials present,
	// broker connected).
	Ready() bool
	Name() string
}

// Dispatcher is the local notification service: it keeps pending alerts
// in memory ordered by instant and fires them through a Sender.
type Dispatcher struct {
	sender Sender
	now    func() time.Time

	mu      sync.Mutex
	pending []Alert
	latest  Token

	updateChan chan struct{}
}

// NewDispatcher creates a dispatcher delivering through sender.
func NewDispatcher(sender Sender) *Dispatcher {
	return &Dispatcher{
		sender:     sender,
		now:        time.Now,
		updateChan: make(chan struct{}, 1),
	}
}

// refresh wakes Run so it re-evaluates the next fire time.
func (d *Dispatcher) refresh() {
	select {
	case d.updateChan <- struct{}{}:
	default:
	}
}

// CancelAll implements Service.
func (d *Dispatcher) CancelAll(_ context.Context, tok Token) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if tok < d.latest {
		return ErrSuperseded
	}
	d.latest = tok
	d.pending = nil
	d.refresh()
	return nil
}

// ScheduleAt implements Service.
func (d *Dispatcher) ScheduleAt(_ context.Context, tok Token, a Alert) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if tok < d.latest {
		return ErrSuperseded
	}
	d.latest = tok
	if len(d.pending) >= MaxPendingAlerts {
		return fmt.Errorf("%w: limit is %d", ErrTooManyAlerts, MaxPendingAlerts)
	}

	i := sort.Search(len(d.pending), func(i int) bool {
		return d.pending[i].At.After(a.At)
	})
	d.pending = append(d.pending, Alert{})
	copy(d.pending[i+1:], d.pending[i:])
	d.pending[i] = a
	d.refresh()
	return nil
}

// RequestPermission implements Service. Permission is granted when the
// sender is ready to deliver.
func (d *Dispatcher) RequestPermission(context.Context) (bool, error) {
	return d.sender.Ready(), nil
}

// Pending returns a copy of the queued alerts in fire order.
func (d *Dispatcher) Pending() []Alert {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Alert, len(d.pending))
	copy(out, d.pending)
	return out
}

// SendTest delivers a test alert immediately.
func (d *Dispatcher) SendTest(ctx context.Context) error {
	if !d.sender.Ready() {
		return fmt.Errorf("%w: %s sender is not configured", ErrPermissionDenied, d.sender.Name())
	}
	if err := d.sender.Send(ctx, TestAlert(d.now())); err != nil {
		return fmt.Errorf("failed to send test notification: %w", err)
	}
	return nil
}

// Run fires due alerts until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	log.Info().Str("sender", d.sender.Name()).Msg("dispatcher started")

	timer := time.NewTimer(time.Hour)
	stopTimer := func() {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
	}
	stopTimer()

	for {
		next := d.fireDue(ctx)

		stopTimer()
		if next.IsZero() {
			log.Debug().Msg("no pending alerts, dispatcher idle")
		} else {
			wait := next.Sub(d.now())
			if wait < 0 {
				wait = 0
			}
			timer.Reset(wait)
			log.Debug().Dur("in", wait).Time("at", next).Msg("next alert scheduled")
		}

		select {
		case <-ctx.Done():
			stopTimer()
			log.Info().Msg("dispatcher stopped")
			return
		case <-d.updateChan:
		case <-timer.C:
		}
	}
}

// fireDue sends every alert whose instant has arrived and returns the
// instant of the next pending alert, or the zero time.
func (d *Dispatcher) fireDue(ctx context.Context) time.Time {
	now := d.now()

	d.mu.Lock()
	n := 0
	for n < len(d.pending) && !d.pending[n].At.After(now) {
		n++
	}
	due := make([]Alert, n)
	copy(due, d.pending[:n])
	d.pending = d.pending[n:]
	var next time.Time
	if len(d.pending) > 0 {
		next = d.pending[0].At
	}
	d.mu.Unlock()

	for _, a := range due {
		if err := d.sender.Send(ctx, a); err != nil {
			log.Error().Err(err).Str("id", a.ID).Str("title", a.Title).Msg("failed to deliver alert")
			continue
		}
		log.Info().
			Str("id", a.ID).
			Str("title", a.Title).
			Time("scheduled", a.At).
			Dur("delay", now.Sub(a.At)).
			Msg("alert delivered")
	}
	return next
}
