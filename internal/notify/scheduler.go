package notify

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/smokyabdulrahman/namaz/internal/prayer"
	"github.com/smokyabdulrahman/namaz/internal/prefs"
	"github.com/smokyabdulrahman/namaz/internal/timetable"
)

// LookaheadDays is the number of calendar days, starting today, that a
// rebuild covers. Six prayers with two alerts each over four days stays
// below MaxPendingAlerts.
const LookaheadDays = 4

// Table is the prayer data the scheduler reads.
type Table interface {
	prayer.Lookup
	HasCity(city string) bool
}

// Scheduler rebuilds the pending alerts from the stored preferences.
// Every rebuild cancels everything and starts over; concurrent rebuilds
// are ordered by their Token and the service discards the older one.
type Scheduler struct {
	prefs *prefs.Preferences
	table Table
	svc   Service
	now   func() time.Time
	load  func(ctx context.Context, city string) error
	seq   atomic.Uint64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces time.Now. The returned time's location decides the
// calendar days of the lookahead window.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithCityLoader sets a hook SetCity runs before rebuilding, so a table
// that holds only some cities' records can fetch the new city's.
func WithCityLoader(load func(ctx context.Context, city string) error) Option {
	return func(s *Scheduler) { s.load = load }
}

// NewScheduler wires a scheduler.
func NewScheduler(p *prefs.Preferences, table Table, svc Service, opts ...Option) *Scheduler {
	s := &Scheduler{
		prefs: p,
		table: table,
		svc:   svc,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Plan lists the alerts for city over the lookahead window, in time order
// per day. Only instants strictly after now are included.
func Plan(city string, now time.Time, settings prefs.Settings, table prayer.Lookup) []Alert {
	var alerts []Alert
	y, m, d := now.Date()

	for i := 0; i < LookaheadDays; i++ {
		date := time.Date(y, m, d+i, 0, 0, 0, 0, now.Location())
		rec, ok := table.Lookup(city, prayer.DateKey(date))
		if !ok {
			continue
		}

		for _, k := range prayer.Keys {
			ps, ok := settings[k]
			if !ok || !ps.Enabled {
				continue
			}
			at, ok := prayer.At(rec, k, date)
			if !ok {
				continue
			}

			if ps.MinutesBefore > 0 {
				reminder := at.Add(-time.Duration(ps.MinutesBefore) * time.Minute)
				if reminder.After(now) {
					alerts = append(alerts, newAlert(k, date, reminder, ps.MinutesBefore))
				}
			}
			if at.After(now) {
				alerts = append(alerts, newAlert(k, date, at, 0))
			}
		}
	}
	return alerts
}

// Rebuild cancels all pending alerts and, when notifications are enabled,
// schedules a fresh set. It returns the alerts the service accepted.
// Failures are logged and never returned.
func (s *Scheduler) Rebuild(ctx context.Context) []Alert {
	tok := Token(s.seq.Add(1))
	logger := log.With().Uint64("rebuild", uint64(tok)).Logger()

	if !s.prefs.NotificationsEnabled(ctx) {
		if err := s.svc.CancelAll(ctx, tok); err != nil && !errors.Is(err, ErrSuperseded) {
			logger.Warn().Err(err).Msg("failed to cancel alerts")
		}
		logger.Debug().Msg("notifications disabled, nothing scheduled")
		return nil
	}

	settings := s.prefs.Settings(ctx)
	city := s.prefs.SelectedCity(ctx)

	if err := s.svc.CancelAll(ctx, tok); err != nil {
		if errors.Is(err, ErrSuperseded) {
			logger.Debug().Msg("rebuild superseded before scheduling")
		} else {
			logger.Error().Err(err).Msg("failed to cancel alerts, skipping rebuild")
		}
		return nil
	}

	now := s.now()
	planned := Plan(city, now, settings, s.table)

	scheduled := make([]Alert, 0, len(planned))
	for _, a := range planned {
		if err := ctx.Err(); err != nil {
			logger.Warn().Err(err).Msg("rebuild interrupted")
			return scheduled
		}
		err := s.svc.ScheduleAt(ctx, tok, a)
		switch {
		case err == nil:
			scheduled = append(scheduled, a)
		case errors.Is(err, ErrSuperseded):
			logger.Debug().Int("scheduled", len(scheduled)).Msg("rebuild superseded, stopping")
			return scheduled
		default:
			logger.Warn().Err(err).
				Str("prayer", a.Key.Identifier()).
				Str("tag", string(a.Tag)).
				Time("at", a.At).
				Msg("failed to schedule alert")
		}
	}

	logger.Info().
		Str("city", city).
		Int("alerts", len(scheduled)).
		Int("days", LookaheadDays).
		Msg("scheduled prayer alerts")
	return scheduled
}

// Start performs the launch-time rebuild.
func (s *Scheduler) Start(ctx context.Context) []Alert {
	return s.Rebuild(ctx)
}

// Enable asks the service for permission and turns the global toggle on.
// When permission is refused the toggle is stored off and
// ErrPermissionDenied is returned.
func (s *Scheduler) Enable(ctx context.Context) ([]Alert, error) {
	granted, err := s.svc.RequestPermission(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("permission request failed")
	}
	if err != nil || !granted {
		if serr := s.prefs.SetNotificationsEnabled(ctx, false); serr != nil {
			return nil, serr
		}
		s.Rebuild(ctx)
		return nil, ErrPermissionDenied
	}

	if err := s.prefs.SetNotificationsEnabled(ctx, true); err != nil {
		return nil, err
	}
	return s.Rebuild(ctx), nil
}

// Disable turns the global toggle off and cancels everything.
func (s *Scheduler) Disable(ctx context.Context) error {
	if err := s.prefs.SetNotificationsEnabled(ctx, false); err != nil {
		return err
	}
	s.Rebuild(ctx)
	return nil
}

// SetPrayerEnabled toggles alerts for one prayer.
func (s *Scheduler) SetPrayerEnabled(ctx context.Context, k prayer.Key, enabled bool) ([]Alert, error) {
	if _, err := s.prefs.UpdatePrayer(ctx, k, func(ps *prefs.PrayerSetting) {
		ps.Enabled = enabled
	}); err != nil {
		return nil, err
	}
	return s.Rebuild(ctx), nil
}

// SetMinutesBefore changes the reminder lead for one prayer. The value is
// clamped to [0, prefs.MaxMinutesBefore].
func (s *Scheduler) SetMinutesBefore(ctx context.Context, k prayer.Key, minutes int) ([]Alert, error) {
	if _, err := s.prefs.UpdatePrayer(ctx, k, func(ps *prefs.PrayerSetting) {
		ps.MinutesBefore = minutes
	}); err != nil {
		return nil, err
	}
	return s.Rebuild(ctx), nil
}

// SetCity selects a city after checking it exists in the table.
func (s *Scheduler) SetCity(ctx context.Context, city string) ([]Alert, error) {
	if !s.table.HasCity(city) {
		return nil, fmt.Errorf("%w: %q", timetable.ErrCityNotFound, city)
	}
	if s.load != nil {
		if err := s.load(ctx, city); err != nil {
			return nil, fmt.Errorf("failed to load prayer times for %q: %w", city, err)
		}
	}
	if err := s.prefs.SetSelectedCity(ctx, city); err != nil {
		return nil, err
	}
	return s.Rebuild(ctx), nil
}
