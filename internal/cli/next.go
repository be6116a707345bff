package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/namaz/internal/prayer"
)

var flagFormat string

func newNextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the next prayer with countdown",
		Long: "Print the next upcoming prayer on one line, for status bars.\n" +
			"After the night prayer this is tomorrow's dawn.",
		RunE: runNext,
	}

	cmd.Flags().StringVar(&flagFormat, "format", prayer.FormatFull, "Display format: time-remaining, countdown, next-prayer-time, name-and-time, name-and-remaining, short-name-and-time, short-name-and-remaining, full, or a custom Go template")

	return cmd
}

func runNext(cmd *cobra.Command, args []string) error {
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
	snap := prayer.ComputeSnapshot(city, now, s.table)
	if snap.Next == nil {
		return fmt.Errorf("no upcoming prayer for %s after %s", city, now.Format("2006-01-02 15:04"))
	}

	if FlagJSON {
		return printJSON(s.out, newNextJSON(snap, goTimeFormat(s.cfg)))
	}
	fmt.Fprint(s.out, prayer.FormatOutput(*snap.Next, now, flagFormat, goTimeFormat(s.cfg)))
	return nil
}
