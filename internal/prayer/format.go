package prayer

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// Format constants for display modes.
const (
	FormatTimeRemaining      = "time-remaining"
	FormatModeCountdown      = "countdown"
	FormatNextPrayerTime     = "next-prayer-time"
	FormatNameAndTime        = "name-and-time"
	FormatNameAndRemaining   = "name-and-remaining"
	FormatShortNameAndTime   = "short-name-and-time"
	FormatShortNameAndRemain = "short-name-and-remaining"
	FormatFull               = "full"
)

// FormatData is the data passed to custom Go templates.
type FormatData struct {
	Name      string // Display name, e.g. "Следобедна"
	ShortName string // Two-letter abbreviation, e.g. "Сл"
	Key       string // ASCII identifier, e.g. "afternoon"
	Time      string // Formatted prayer time, e.g. "15:02" or "3:02 PM"
	Remaining string // Time remaining, e.g. "2h 15m"
	Countdown string // Time remaining as "HH:MM:SS"
	Hours     int    // Whole hours remaining
	Minutes   int    // Remaining minutes after hours
}

// ShortName abbreviates the display name to its first two letters.
func ShortName(k Key, date time.Time) string {
	r := []rune(DisplayName(k, date))
	if len(r) > 2 {
		r = r[:2]
	}
	return string(r)
}

// FormatOutput formats a prayer for display according to the chosen format mode.
// timeFormat should be "15:04" for 24h or "3:04 PM" for 12h.
//
// If mode contains "{{", it is treated as a custom Go template string.
// Available template fields: .Name, .ShortName, .Key, .Time, .Remaining,
// .Countdown, .Hours, .Minutes
//
// Example: "{{.Name}} in {{.Remaining}}" -> "Следобедна in 2h 15m"
func FormatOutput(p Prayer, now time.Time, mode string, timeFormat string) string {
	d := p.Time.Sub(now)
	if d < 0 {
		d = 0
	}
	remaining := FormatRemaining(d)
	countdown := FormatCountdown(int64(d / time.Second))
	timeStr := p.Time.Format(timeFormat)
	name := p.Name()
	short := ShortName(p.Key, p.Time)

	if strings.Contains(mode, "{{") {
		return formatCustom(mode, FormatData{
			Name:      name,
			ShortName: short,
			Key:       p.Key.Identifier(),
			Time:      timeStr,
			Remaining: remaining,
			Countdown: countdown,
			Hours:     int(d.Hours()),
			Minutes:   int(d.Minutes()) % 60,
		})
	}

	switch mode {
	case FormatTimeRemaining:
		return remaining
	case FormatModeCountdown:
		return countdown
	case FormatNextPrayerTime:
		return timeStr
	case FormatNameAndTime:
		return fmt.Sprintf("%s %s", name, timeStr)
	case FormatNameAndRemaining:
		return fmt.Sprintf("%s %s", name, remaining)
	case FormatShortNameAndTime:
		return fmt.Sprintf("%s %s", short, timeStr)
	case FormatShortNameAndRemain:
		return fmt.Sprintf("%s %s", short, remaining)
	case FormatFull:
		return fmt.Sprintf("%s %s (%s)", name, timeStr, remaining)
	default:
		return fmt.Sprintf("%s %s", name, timeStr)
	}
}

// formatCustom executes a user-provided Go template string against the FormatData.
func formatCustom(tmpl string, data FormatData) string {
	t, err := template.New("custom").Parse(tmpl)
	if err != nil {
		return fmt.Sprintf("template-err: %v", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Sprintf("template-err: %v", err)
	}

	return buf.String()
}
