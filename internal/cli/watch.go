package cli

import (
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/namaz/internal/tui"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Live countdown to the next prayer",
		Long:  "Full-screen countdown to the next prayer, refreshed every second. Press q to quit.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			city, err := s.city(cmd.Context())
			if err != nil {
				return err
			}
			return tui.RunWatch(cmd.Context(), tui.NewWatch(city, s.table, s.now, goTimeFormat(s.cfg)))
		},
	}
}
