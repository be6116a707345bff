// Package display renders terminal output: colored text and aligned tables.
//
// Colors honor NO_COLOR (https://no-color.org/) and FORCE_COLOR, and are
// off when stdout is not a terminal.
package display

import (
	"fmt"
	"os"
)

// SGR codes.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
	gray   = "\033[90m"
)

var enabled = shouldEnable()

func shouldEnable() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if _, ok := os.LookupEnv("FORCE_COLOR"); ok {
		return true
	}
	return isTerminal(os.Stdout)
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// SetEnabled overrides the detected color state. --json turns it off.
func SetEnabled(b bool) {
	enabled = b
}

// Enabled reports whether color output is active.
func Enabled() bool {
	return enabled
}

// Paint wraps text in the given SGR codes when colors are enabled.
func Paint(text string, codes ...string) string {
	if !enabled || len(codes) == 0 {
		return text
	}
	out := ""
	for _, c := range codes {
		out += c
	}
	return out + text + reset
}

// Bold is used for headings.
func Bold(text string) string { return Paint(text, bold) }

// Dim is used for separators and hints.
func Dim(text string) string { return Paint(text, dim) }

// Muted marks prayers that have already passed today.
func Muted(text string) string { return Paint(text, gray) }

// Success marks enabled settings and completed actions.
func Success(text string) string { return Paint(text, green) }

// Warning marks disabled settings and soft failures.
func Warning(text string) string { return Paint(text, yellow) }

// Info marks cities and other neutral values.
func Info(text string) string { return Paint(text, cyan) }

// Accent highlights the next prayer and today's row.
func Accent(text string) string { return Paint(text, bold, cyan) }

// Boldf formats and bolds a string.
func Boldf(format string, a ...any) string {
	return Bold(fmt.Sprintf(format, a...))
}

// OnOff renders a boolean setting.
func OnOff(on bool) string {
	if on {
		return Success("вкл.")
	}
	return Warning("изкл.")
}
