package server

import (
	"github.com/smokyabdulrahman/namaz/internal/notify"
	"github.com/smokyabdulrahman/namaz/internal/prayer"
	"github.com/smokyabdulrahman/namaz/internal/prefs"
)

// SnapshotResponse is a countdown snapshot with display helpers.
type SnapshotResponse struct {
	prayer.Snapshot
	PreviousName    string  `json:"previous_name,omitempty"`
	NextName        string  `json:"next_name,omitempty"`
	Countdown       string  `json:"countdown,omitempty"`
	DisplayProgress float64 `json:"display_progress"`
}

// PreferencesResponse mirrors the stored preferences.
type PreferencesResponse struct {
	SelectedCity         string         `json:"selectedCity"`
	NotificationsEnabled bool           `json:"notificationsEnabled"`
	PrayerSettings       prefs.Settings `json:"prayerSettings"`
}

// CityRequest selects a city.
type CityRequest struct {
	City string `json:"city" binding:"required"`
}

// NotificationsRequest flips the global toggle.
type NotificationsRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// PrayerSettingRequest updates one prayer's setting; absent fields are
// left unchanged.
type PrayerSettingRequest struct {
	Enabled       *bool `json:"enabled"`
	MinutesBefore *int  `json:"minutesBefore"`
}

// ScheduleResponse reports the outcome of a rebuild.
type ScheduleResponse struct {
	Scheduled int            `json:"scheduled"`
	Alerts    []notify.Alert `json:"alerts"`
}

// PrayerSettingResponse is the stored setting after an update.
type PrayerSettingResponse struct {
	Prayer    prayer.Key          `json:"prayer"`
	Setting   prefs.PrayerSetting `json:"setting"`
	Scheduled int                 `json:"scheduled"`
}
