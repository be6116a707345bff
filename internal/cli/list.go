package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/namaz/internal/display"
	"github.com/smokyabdulrahman/namaz/internal/prayer"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [days]",
		Short: "Show prayer times for multiple days",
		Long:  "Display a grid of prayer times for N days starting today (default: 7).",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args, 7)
		},
	}
}

func newWeekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "week",
		Short: "Show prayer times for the next 7 days",
		Long:  "Alias for 'list 7'.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, nil, 7)
		},
	}
}

// listDay is one row of list output.
type listDay struct {
	Date    string            `json:"date"`
	Timings map[string]string `json:"timings"`
}

func runList(cmd *cobra.Command, args []string, defaultDays int) error {
	days := defaultDays
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid number of days: %q (must be a positive integer)", args[0])
		}
		days = n
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	city, err := s.city(cmd.Context())
	if err != nil {
		return err
	}

	now := s.now()
	goTimeFmt := goTimeFormat(s.cfg)

	headers := []string{"Дата"}
	for _, k := range prayer.Keys {
		headers = append(headers, k.String())
	}
	tbl := display.NewTable(headers...)

	var rows []listDay
	for i := 0; i < days; i++ {
		date := calendarDay(now, i)
		rec, ok := s.table.Lookup(city, prayer.DateKey(date))
		if !ok {
			continue
		}

		timings := make(map[string]string, prayer.NumKeys)
		row := []string{dayLabel(date)}
		for _, k := range prayer.Keys {
			cell := "--:--"
			if t, ok := prayer.At(rec, k, date); ok {
				cell = t.Format(goTimeFmt)
				timings[k.Identifier()] = cell
			}
			row = append(row, cell)
		}
		if i == 0 {
			tbl.Highlight(tbl.Len())
		}
		tbl.AddRow(row...)
		rows = append(rows, listDay{Date: prayer.DateKey(date), Timings: timings})
	}

	if len(rows) == 0 {
		return fmt.Errorf("%s has no prayer times from %s", city, prayer.DateKey(now))
	}

	if FlagJSON {
		return printJSON(s.out, struct {
			City string    `json:"city"`
			Days []listDay `json:"days"`
		}{city, rows})
	}

	fmt.Fprintln(s.out)
	fmt.Fprintf(s.out, "  %s\n", display.Bold(fmt.Sprintf("Времена за молитва, %d дни", days)))
	fmt.Fprintf(s.out, "  %s\n", display.Info(city))
	fmt.Fprintln(s.out)
	fmt.Fprint(s.out, tbl.Render())
	if len(rows) < days {
		fmt.Fprintf(s.out, "\n  %s\n", display.Warning(fmt.Sprintf("Таблицата съдържа само %d от %d дни.", len(rows), days)))
	}
	fmt.Fprintln(s.out)
	return nil
}

// calendarDay returns midnight of the day offset days after t, in t's zone.
func calendarDay(t time.Time, offset int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+offset, 0, 0, 0, 0, t.Location())
}
