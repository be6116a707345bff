package tui

import (
	"errors"
	"fmt"
	"slices"

	"github.com/charmbracelet/huh"

	"github.com/smokyabdulrahman/namaz/internal/prayer"
	"github.com/smokyabdulrahman/namaz/internal/prefs"
)

// ErrAborted is returned when the user leaves a form without submitting.
var ErrAborted = errors.New("cancelled")

// minutePresets are the reminder offsets offered by the settings form.
var minutePresets = []int{0, 5, 10, 15, 20, 30, 45, 60}

// PickCity asks the user to choose one of cities, preselecting current.
func PickCity(cities []string, current string) (string, error) {
	if len(cities) == 0 {
		return "", errors.New("no cities available")
	}
	selected := current
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Изберете град").
				Options(huh.NewOptions(cities...)...).
				Height(min(len(cities)+2, 12)).
				Value(&selected),
		),
	)
	if err := runForm(form); err != nil {
		return "", err
	}
	return selected, nil
}

// settingsFields holds the form-bound values for one prayer.
type settingsFields struct {
	key     prayer.Key
	enabled bool
	minutes int
}

// EditSettings lets the user toggle every prayer and pick its reminder
// offset. The result is normalized.
func EditSettings(current prefs.Settings) (prefs.Settings, error) {
	fields := make([]*settingsFields, len(prayer.Keys))
	groups := make([]*huh.Group, len(prayer.Keys))
	for i, k := range prayer.Keys {
		s := current[k]
		f := &settingsFields{key: k, enabled: s.Enabled, minutes: s.MinutesBefore}
		fields[i] = f
		groups[i] = huh.NewGroup(
			huh.NewConfirm().
				Title(k.String()).
				Affirmative("Вкл.").
				Negative("Изкл.").
				Value(&f.enabled),
			huh.NewSelect[int]().
				Title("Напомняне преди").
				Options(minuteOptions(f.minutes)...).
				Value(&f.minutes),
		)
	}

	if err := runForm(huh.NewForm(groups...).WithShowHelp(true)); err != nil {
		return nil, err
	}
	return collectSettings(fields), nil
}

func collectSettings(fields []*settingsFields) prefs.Settings {
	out := prefs.DefaultSettings()
	for _, f := range fields {
		out[f.key] = prefs.PrayerSetting{
			Enabled:       f.enabled,
			MinutesBefore: prefs.ClampMinutes(f.minutes),
		}
	}
	return out
}

// minuteOptions returns the preset offsets plus current when it is not one
// of them, in ascending order.
func minuteOptions(current int) []huh.Option[int] {
	values := slices.Clone(minutePresets)
	current = prefs.ClampMinutes(current)
	if !slices.Contains(values, current) {
		values = append(values, current)
		slices.Sort(values)
	}
	opts := make([]huh.Option[int], len(values))
	for i, v := range values {
		label := fmt.Sprintf("%d мин.", v)
		if v == 0 {
			label = "без напомняне"
		}
		opts[i] = huh.NewOption(label, v)
	}
	return opts
}

func runForm(form *huh.Form) error {
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return err
	}
	return nil
}
