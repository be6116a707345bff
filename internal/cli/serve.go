package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/namaz/internal/notify"
	"github.com/smokyabdulrahman/namaz/internal/server"
)

var flagAddr string

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Deliver prayer alerts and serve the HTTP API",
		Long: "Run the notification dispatcher and the HTTP API (/times, /cities,\n" +
			"/snapshot, /preferences, /notifications) until interrupted.\n" +
			"Alerts are rebuilt at start and every rebuild_interval.",
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (overrides server_addr)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	sender, release, err := buildSender(s.cfg)
	if err != nil {
		return err
	}
	defer release()

	dispatcher := notify.NewDispatcher(sender)
	sched := notify.NewScheduler(s.prefs, s.table, dispatcher,
		notify.WithClock(s.now), notify.WithCityLoader(s.ensureCity))

	go dispatcher.Run(ctx)
	sched.Start(ctx)
	go rebuildLoop(ctx, s, sched, s.cfg.RebuildIntervalOrDefault())

	addr := s.cfg.ServerAddr
	if cmd.Flags().Changed("addr") {
		addr = flagAddr
	}
	router := server.NewRouter(server.Deps{
		Table:      s.table,
		Prefs:      s.prefs,
		Scheduler:  sched,
		Outbox:     dispatcher,
		EnsureCity: s.ensureCity,
		Now:        nowFunc,
		Location:   s.loc,
	})
	return server.Run(ctx, addr, router)
}

// rebuildLoop slides the alert window forward and picks up changes made
// by other processes. A remote table is refetched first.
func rebuildLoop(ctx context.Context, s *session, sched *notify.Scheduler, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.remote() {
				if err := s.fetchTable(ctx); err != nil {
					log.Warn().Err(err).Msg("failed to refresh prayer table, keeping the previous one")
				}
			}
			sched.Rebuild(ctx)
		}
	}
}
