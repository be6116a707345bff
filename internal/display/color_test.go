package display

import "testing"

func TestPaint(t *testing.T) {
	SetEnabled(true)
	defer SetEnabled(false)

	tests := []struct {
		name string
		fn   func(string) string
		want string
	}{
		{"Bold", Bold, "\033[1mЗора\033[0m"},
		{"Dim", Dim, "\033[2mЗора\033[0m"},
		{"Muted", Muted, "\033[90mЗора\033[0m"},
		{"Success", Success, "\033[32mЗора\033[0m"},
		{"Warning", Warning, "\033[33mЗора\033[0m"},
		{"Info", Info, "\033[36mЗора\033[0m"},
		{"Accent", Accent, "\033[1m\033[36mЗора\033[0m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn("Зора"); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestPaint_Disabled(t *testing.T) {
	SetEnabled(false)

	for _, fn := range []func(string) string{Bold, Dim, Muted, Success, Warning, Info, Accent} {
		if got := fn("Нощ"); got != "Нощ" {
			t.Errorf("got %q with colors disabled, want plain text", got)
		}
	}
}

func TestPaint_NoCodes(t *testing.T) {
	SetEnabled(true)
	defer SetEnabled(false)

	if got := Paint("x"); got != "x" {
		t.Errorf("Paint without codes = %q", got)
	}
}

func TestBoldf(t *testing.T) {
	SetEnabled(true)
	defer SetEnabled(false)

	if got := Boldf("%d мин.", 5); got != "\033[1m5 мин.\033[0m" {
		t.Errorf("Boldf = %q", got)
	}
}

func TestOnOff(t *testing.T) {
	SetEnabled(false)

	if OnOff(true) != "вкл." || OnOff(false) != "изкл." {
		t.Errorf("OnOff = %q / %q", OnOff(true), OnOff(false))
	}
}

func TestEnabled_ReportsState(t *testing.T) {
	SetEnabled(true)
	if !Enabled() {
		t.Error("Enabled() should be true after SetEnabled(true)")
	}
	SetEnabled(false)
	if Enabled() {
		t.Error("Enabled() should be false after SetEnabled(false)")
	}
}
