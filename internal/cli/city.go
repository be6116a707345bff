package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/namaz/internal/display"
	"github.com/smokyabdulrahman/namaz/internal/notify"
	"github.com/smokyabdulrahman/namaz/internal/timetable"
	"github.com/smokyabdulrahman/namaz/internal/tui"
)

func newCitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cities",
		Short: "List the cities in the prayer table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			cities := s.table.Cities()
			if FlagJSON {
				return printJSON(s.out, cities)
			}
			selected := s.prefs.SelectedCity(cmd.Context())
			for _, c := range cities {
				if c == selected {
					fmt.Fprintln(s.out, display.Accent("* "+c))
					continue
				}
				fmt.Fprintln(s.out, "  "+c)
			}
			return nil
		},
	}
}

func newCityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "city [name]",
		Short: "Show or change the selected city",
		Long: "Without arguments, print the selected city. With a name, select it and\n" +
			"reschedule notifications for the new city.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if len(args) == 0 {
				fmt.Fprintln(s.out, s.prefs.SelectedCity(cmd.Context()))
				return nil
			}
			return selectCity(cmd, s, strings.TrimSpace(args[0]))
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "pick",
		Short: "Choose the city from an interactive list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			city, err := tui.PickCity(s.table.Cities(), s.prefs.SelectedCity(cmd.Context()))
			if errors.Is(err, tui.ErrAborted) {
				return nil
			}
			if err != nil {
				return err
			}
			return selectCity(cmd, s, city)
		},
	})

	return cmd
}

// selectCity stores city and previews the resulting alert plan.
func selectCity(cmd *cobra.Command, s *session, city string) error {
	rec := &notify.Recorder{Granted: true}
	sched := notify.NewScheduler(s.prefs, s.table, rec,
		notify.WithClock(s.now), notify.WithCityLoader(s.ensureCity))

	alerts, err := sched.SetCity(cmd.Context(), city)
	if errors.Is(err, timetable.ErrCityNotFound) {
		return fmt.Errorf("%w (run `namaz cities` for the list)", err)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "Избран град: %s\n", display.Info(city))
	if s.prefs.NotificationsEnabled(cmd.Context()) {
		fmt.Fprintf(s.out, "Известия за следващите %d дни: %d\n", notify.LookaheadDays, len(alerts))
	}
	return nil
}
