package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/namaz/internal/display"
	"github.com/smokyabdulrahman/namaz/internal/prayer"
)

var flagQueryDays string

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <prayer>",
		Short: "Query a specific prayer time",
		Long: "Query one prayer for today, or across several days with --days.\n\n" +
			"Prayer names: " + strings.Join(prayer.Identifiers(), ", ") + ", or the table names (Зора, Обяд, ...).",
		Args: cobra.ExactArgs(1),
		RunE: runQuery,
	}

	cmd.Flags().StringVar(&flagQueryDays, "days", "", "Number of days to show (or 'week')")

	return cmd
}

// parseDays reads the --days value.
func parseDays(v string) (int, error) {
	switch v {
	case "":
		return 1, nil
	case "week":
		return 7, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid --days value: %q (must be a positive integer or 'week')", v)
	}
	return n, nil
}

type queryRow struct {
	Date string `json:"date"`
	Name string `json:"name"`
	Time string `json:"time"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	k, err := prayer.ParseKey(args[0])
	if err != nil {
		return fmt.Errorf("%w; valid names: %s", err, strings.Join(prayer.Identifiers(), ", "))
	}
	days, err := parseDays(flagQueryDays)
	if err != nil {
		return err
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

	var rows []queryRow
	for i := 0; i < days; i++ {
		date := calendarDay(now, i)
		rec, ok := s.table.Lookup(city, prayer.DateKey(date))
		if !ok {
			continue
		}
		t, ok := prayer.At(rec, k, date)
		if !ok {
			continue
		}
		rows = append(rows, queryRow{
			Date: prayer.DateKey(date),
			Name: prayer.DisplayName(k, date),
			Time: t.Format(goTimeFmt),
		})
	}
	if len(rows) == 0 {
		return fmt.Errorf("no %s time for %s from %s", k.Identifier(), city, prayer.DateKey(now))
	}

	if FlagJSON {
		if days == 1 {
			return printJSON(s.out, rows[0])
		}
		return printJSON(s.out, rows)
	}

	if days == 1 {
		fmt.Fprintf(s.out, "%s %s\n", rows[0].Name, rows[0].Time)
		return nil
	}

	tbl := display.NewTable("Дата", "Молитва", "Час")
	for i, r := range rows {
		if r.Date == prayer.DateKey(now) {
			tbl.Highlight(i)
		}
		tbl.AddRow(r.Date, r.Name, r.Time)
	}
	fmt.Fprintln(s.out)
	fmt.Fprintf(s.out, "  %s\n\n", display.Info(city))
	fmt.Fprint(s.out, tbl.Render())
	fmt.Fprintln(s.out)
	return nil
}
