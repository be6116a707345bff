// Package prefs reads and writes the user's preferences on top of a store.KV.
//
// Keys and encodings are stable across versions:
//
//	selectedCity          city name, default "София"
//	notificationsEnabled  "true" or "false", default false
//	prayerSettings        JSON object keyed by prayer source name
//
// Read failures never propagate: the affected value falls back to its
// default and a warning is logged.
package prefs

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/smokyabdulrahman/namaz/internal/prayer"
	"github.com/smokyabdulrahman/namaz/internal/store"
)

// Storage keys.
const (
	KeySelectedCity         = "selectedCity"
	KeyNotificationsEnabled = "notificationsEnabled"
	KeyPrayerSettings       = "prayerSettings"
)

const (
	// DefaultCity is used when no city has been selected.
	DefaultCity = "София"
	// DefaultMinutesBefore is the reminder lead for a fresh prayer setting.
	DefaultMinutesBefore = 5
	// MaxMinutesBefore bounds the reminder lead.
	MaxMinutesBefore = 60
)

// PrayerSetting is the per-prayer notification setting.
type PrayerSetting struct {
	Enabled       bool `json:"enabled"`
	MinutesBefore int  `json:"minutesBefore"`
}

// Settings holds one PrayerSetting per prayer key.
type Settings map[prayer.Key]PrayerSetting

// DefaultSettings returns every prayer disabled with the default lead.
func DefaultSettings() Settings {
	s := make(Settings, prayer.NumKeys)
	for _, k := range prayer.Keys {
		s[k] = PrayerSetting{Enabled: false, MinutesBefore: DefaultMinutesBefore}
	}
	return s
}

// ClampMinutes bounds m to [0, MaxMinutesBefore].
func ClampMinutes(m int) int {
	if m < 0 {
		return 0
	}
	if m > MaxMinutesBefore {
		return MaxMinutesBefore
	}
	return m
}

// normalize fills missing prayers with defaults and clamps every lead.
// It reports whether anything changed.
func (s Settings) normalize() bool {
	changed := false
	for _, k := range prayer.Keys {
		ps, ok := s[k]
		if !ok {
			s[k] = PrayerSetting{MinutesBefore: DefaultMinutesBefore}
			changed = true
			continue
		}
		if c := ClampMinutes(ps.MinutesBefore); c != ps.MinutesBefore {
			ps.MinutesBefore = c
			s[k] = ps
			changed = true
		}
	}
	return changed
}

// Clone returns an independent copy.
func (s Settings) Clone() Settings {
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Preferences is the typed accessor over a KV.
type Preferences struct {
	kv store.KV
}

// New wraps kv.
func New(kv store.KV) *Preferences {
	return &Preferences{kv: kv}
}

// SelectedCity returns the stored city, or DefaultCity when unset or unreadable.
func (p *Preferences) SelectedCity(ctx context.Context) string {
	v, ok, err := p.kv.Get(ctx, KeySelectedCity)
	if err != nil {
		log.Warn().Err(err).Str("key", KeySelectedCity).Msg("failed to read preference, using default")
		return DefaultCity
	}
	if !ok || v == "" {
		return DefaultCity
	}
	return v
}

// SetSelectedCity stores city.
func (p *Preferences) SetSelectedCity(ctx context.Context, city string) error {
	if err := p.kv.Set(ctx, KeySelectedCity, city); err != nil {
		return fmt.Errorf("failed to save selected city: %w", err)
	}
	return nil
}

// NotificationsEnabled reports the global toggle. Anything other than a
// stored "true" is off.
func (p *Preferences) NotificationsEnabled(ctx context.Context) bool {
	v, ok, err := p.kv.Get(ctx, KeyNotificationsEnabled)
	if err != nil {
		log.Warn().Err(err).Str("key", KeyNotificationsEnabled).Msg("failed to read preference, using default")
		return false
	}
	return ok && v == "true"
}

// SetNotificationsEnabled stores the global toggle.
func (p *Preferences) SetNotificationsEnabled(ctx context.Context, enabled bool) error {
	if err := p.kv.Set(ctx, KeyNotificationsEnabled, strconv.FormatBool(enabled)); err != nil {
		return fmt.Errorf("failed to save notification toggle: %w", err)
	}
	return nil
}

// Settings returns the per-prayer settings. When none are stored the
// defaults are persisted and returned. Stored settings missing a prayer
// get that prayer's default; out-of-range leads are clamped.
func (p *Preferences) Settings(ctx context.Context) Settings {
	raw, ok, err := p.kv.Get(ctx, KeyPrayerSettings)
	if err != nil {
		log.Warn().Err(err).Str("key", KeyPrayerSettings).Msg("failed to read preference, using defaults")
		return DefaultSettings()
	}

	if !ok || raw == "" {
		s := DefaultSettings()
		if err := p.SaveSettings(ctx, s); err != nil {
			log.Warn().Err(err).Msg("failed to persist default prayer settings")
		}
		return s
	}

	s, err := decodeSettings(raw)
	if err != nil {
		log.Warn().Err(err).Str("key", KeyPrayerSettings).Msg("stored prayer settings are invalid, using defaults")
		return DefaultSettings()
	}
	s.normalize()
	return s
}

// decodeSettings parses the stored JSON. Entries for unknown prayer names
// are dropped.
func decodeSettings(raw string) (Settings, error) {
	var byName map[string]PrayerSetting
	if err := json.Unmarshal([]byte(raw), &byName); err != nil {
		return nil, err
	}
	s := make(Settings, prayer.NumKeys)
	for name, ps := range byName {
		k, err := prayer.ParseKey(name)
		if err != nil {
			log.Debug().Str("prayer", name).Msg("ignoring unknown prayer in settings")
			continue
		}
		s[k] = ps
	}
	return s, nil
}

// SaveSettings stores s after clamping.
func (p *Preferences) SaveSettings(ctx context.Context, s Settings) error {
	cp := s.Clone()
	cp.normalize()

	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("failed to marshal prayer settings: %w", err)
	}
	if err := p.kv.Set(ctx, KeyPrayerSettings, string(data)); err != nil {
		return fmt.Errorf("failed to save prayer settings: %w", err)
	}
	return nil
}

// UpdatePrayer loads the settings, applies fn to the setting for k and
// saves the result.
func (p *Preferences) UpdatePrayer(ctx context.Context, k prayer.Key, fn func(*PrayerSetting)) (Settings, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid prayer key %d", int(k))
	}
	s := p.Settings(ctx)
	ps := s[k]
	fn(&ps)
	ps.MinutesBefore = ClampMinutes(ps.MinutesBefore)
	s[k] = ps
	if err := p.SaveSettings(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}
