// Package notify plans prayer alerts and hands them to a notification service.
package notify

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smokyabdulrahman/namaz/internal/prayer"
)

// Tag distinguishes the two alerts a prayer can produce.
type Tag string

const (
	TagReminder Tag = "reminder"
	TagExact    Tag = "exact"
	TagTest     Tag = "test"
)

// Alert is one scheduled notification.
type Alert struct {
	ID    string     `json:"id"`
	At    time.Time  `json:"at"`
	Title string     `json:"title"`
	Body  string     `json:"body"`
	Tag   Tag        `json:"tag"`
	Key   prayer.Key `json:"prayer"`
	Date  string     `json:"date"`
}

// Title returns the alert title for a prayer display name.
func Title(name string) string {
	return "🕌 " + name
}

// ReminderBody is the body of an alert fired minutes before a prayer.
func ReminderBody(name string, minutes int) string {
	return fmt.Sprintf("Молитвата %s започва след %d минути.", name, minutes)
}

// ExactBody is the body of an alert fired at the prayer instant.
func ExactBody(name string) string {
	return fmt.Sprintf("Молитвата %s започва сега.", name)
}

// newAlert builds an alert for prayer k on date, firing at at.
// A zero minutes value produces the exact alert.
func newAlert(k prayer.Key, date, at time.Time, minutes int) Alert {
	name := prayer.DisplayName(k, date)
	a := Alert{
		ID:    uuid.NewString(),
		At:    at,
		Title: Title(name),
		Key:   k,
		Date:  prayer.DateKey(date),
	}
	if minutes > 0 {
		a.Tag = TagReminder
		a.Body = ReminderBody(name, minutes)
	} else {
		a.Tag = TagExact
		a.Body = ExactBody(name)
	}
	return a
}

// TestAlert is the one-off alert used to verify delivery.
func TestAlert(now time.Time) Alert {
	return Alert{
		ID:    uuid.NewString(),
		At:    now,
		Title: "✅ Тест на известията",
		Body:  "Известията работят правилно! Ще получавате напомняния за молитвите.",
		Tag:   TagTest,
		Date:  prayer.DateKey(now),
	}
}
