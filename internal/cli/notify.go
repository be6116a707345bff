package cli

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/namaz/internal/config"
	"github.com/smokyabdulrahman/namaz/internal/display"
	"github.com/smokyabdulrahman/namaz/internal/notify"
	"github.com/smokyabdulrahman/namaz/internal/prayer"
	"github.com/smokyabdulrahman/namaz/internal/prefs"
	"github.com/smokyabdulrahman/namaz/internal/tui"
)

var (
	flagNotifyOn      bool
	flagNotifyOff     bool
	flagNotifyMinutes int
)

func newNotifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Show or change prayer notifications",
		Long: "Show the notification settings, or use subcommands to change them.\n" +
			"Alerts are delivered by `namaz serve`; changes made here are picked up\n" +
			"on its next rebuild.",
		RunE: runNotifyStatus,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show notification settings",
		Args:  cobra.NoArgs,
		RunE:  runNotifyStatus,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "enable",
		Short: "Turn notifications on",
		Args:  cobra.NoArgs,
		RunE:  runNotifyEnable,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "disable",
		Short: "Turn notifications off",
		Args:  cobra.NoArgs,
		RunE:  runNotifyDisable,
	})

	set := &cobra.Command{
		Use:   "set <prayer>",
		Short: "Change one prayer's notification",
		Long: "Turn one prayer's alerts on or off and set how many minutes before the\n" +
			"prayer the reminder fires (0-60, 0 means only the exact alert).\n\n" +
			"Examples:\n  namaz notify set midday --on --minutes 10\n  namaz notify set Нощ --off",
		Args: cobra.ExactArgs(1),
		RunE: runNotifySet,
	}
	set.Flags().BoolVar(&flagNotifyOn, "on", false, "Enable alerts for the prayer")
	set.Flags().BoolVar(&flagNotifyOff, "off", false, "Disable alerts for the prayer")
	set.Flags().IntVar(&flagNotifyMinutes, "minutes", 0, "Reminder lead in minutes (0-60)")
	set.MarkFlagsMutuallyExclusive("on", "off")
	cmd.AddCommand(set)

	cmd.AddCommand(&cobra.Command{
		Use:   "configure",
		Short: "Edit every prayer's notification in a form",
		Args:  cobra.NoArgs,
		RunE:  runNotifyConfigure,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "preview",
		Short: "List the alerts the next rebuild would schedule",
		Args:  cobra.NoArgs,
		RunE:  runNotifyPreview,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "test",
		Short: "Send a test notification through the configured notifier",
		Args:  cobra.NoArgs,
		RunE:  runNotifyTest,
	})

	return cmd
}

// buildSender creates the sender named by the notifier setting. The
// returned func releases it.
func buildSender(cfg *config.Config) (notify.Sender, func(), error) {
	switch cfg.Notifier {
	case "", "log":
		return notify.LogSender{}, func() {}, nil
	case "pushover":
		return notify.NewPushoverSender(cfg.PushoverToken, cfg.PushoverUser), func() {}, nil
	case "mqtt":
		if cfg.MQTTBroker == "" {
			return nil, nil, errors.New("notifier mqtt requires mqtt_broker")
		}
		s, err := notify.NewMQTTSender(cfg.MQTTBroker, cfg.MQTTTopic, "namaz-"+uuid.NewString()[:8])
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown notifier %q", cfg.Notifier)
	}
}

func runNotifyStatus(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	settings := s.prefs.Settings(ctx)
	enabled := s.prefs.NotificationsEnabled(ctx)

	if FlagJSON {
		return printJSON(s.out, struct {
			Enabled  bool           `json:"notificationsEnabled"`
			City     string         `json:"selectedCity"`
			Notifier string         `json:"notifier"`
			Settings prefs.Settings `json:"prayerSettings"`
		}{enabled, s.prefs.SelectedCity(ctx), s.cfg.Notifier, settings})
	}

	fmt.Fprintln(s.out)
	fmt.Fprintf(s.out, "  %s %s\n", display.Bold("Известия:"), display.OnOff(enabled))
	fmt.Fprintf(s.out, "  Град: %s, известител: %s\n\n", display.Info(s.prefs.SelectedCity(ctx)), s.cfg.Notifier)

	tbl := display.NewTable("Молитва", "Известие", "Напомняне")
	for _, k := range prayer.Keys {
		ps := settings[k]
		lead := "само в началото"
		if ps.MinutesBefore > 0 {
			lead = fmt.Sprintf("%d мин. преди", ps.MinutesBefore)
		}
		if !enabled {
			tbl.Mute(tbl.Len())
		}
		tbl.AddRow(k.String(), display.OnOff(ps.Enabled), lead)
	}
	fmt.Fprint(s.out, tbl.Render())
	fmt.Fprintln(s.out)
	return nil
}

func runNotifyEnable(cmd *cobra.Command, args []string) error {
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

	sched := notify.NewScheduler(s.prefs, s.table, notify.NewDispatcher(sender), notify.WithClock(s.now))
	alerts, err := sched.Enable(cmd.Context())
	if errors.Is(err, notify.ErrPermissionDenied) {
		return fmt.Errorf("notifications stay off: the %s notifier is not ready (check `namaz config`)", sender.Name())
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "Известията са включени. %d известия за следващите %d дни.\n", len(alerts), notify.LookaheadDays)
	return nil
}

func runNotifyDisable(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	sched := notify.NewScheduler(s.prefs, s.table, &notify.Recorder{}, notify.WithClock(s.now))
	if err := sched.Disable(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Известията са изключени.")
	return nil
}

func runNotifySet(cmd *cobra.Command, args []string) error {
	k, err := prayer.ParseKey(args[0])
	if err != nil {
		return err
	}
	minutesSet := cmd.Flags().Changed("minutes")
	if !flagNotifyOn && !flagNotifyOff && !minutesSet {
		return errors.New("nothing to change: pass --on, --off or --minutes")
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	rec := &notify.Recorder{Granted: true}
	sched := notify.NewScheduler(s.prefs, s.table, rec, notify.WithClock(s.now))

	var alerts []notify.Alert
	if flagNotifyOn || flagNotifyOff {
		if alerts, err = sched.SetPrayerEnabled(ctx, k, flagNotifyOn); err != nil {
			return err
		}
	}
	if minutesSet {
		if alerts, err = sched.SetMinutesBefore(ctx, k, flagNotifyMinutes); err != nil {
			return err
		}
	}

	ps := s.prefs.Settings(ctx)[k]
	fmt.Fprintf(s.out, "%s: %s, %d мин. преди\n", k.String(), display.OnOff(ps.Enabled), ps.MinutesBefore)
	if s.prefs.NotificationsEnabled(ctx) {
		fmt.Fprintf(s.out, "Известия за следващите %d дни: %d\n", notify.LookaheadDays, len(alerts))
	}
	return nil
}

func runNotifyConfigure(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	edited, err := tui.EditSettings(s.prefs.Settings(ctx))
	if errors.Is(err, tui.ErrAborted) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.prefs.SaveSettings(ctx, edited); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Настройките са запазени.")
	return nil
}

func runNotifyPreview(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	rec := &notify.Recorder{Granted: true}
	alerts := notify.NewScheduler(s.prefs, s.table, rec, notify.WithClock(s.now)).Rebuild(ctx)

	if FlagJSON {
		if alerts == nil {
			alerts = []notify.Alert{}
		}
		return printJSON(s.out, alerts)
	}

	if !s.prefs.NotificationsEnabled(ctx) {
		fmt.Fprintln(s.out, display.Warning("Известията са изключени. Включете ги с `namaz notify enable`."))
		return nil
	}
	if len(alerts) == 0 {
		fmt.Fprintln(s.out, "Няма предстоящи известия.")
		return nil
	}

	goTimeFmt := goTimeFormat(s.cfg)
	tbl := display.NewTable("Дата", "Час", "Заглавие", "Текст")
	for _, a := range alerts {
		at := a.At.In(s.loc)
		tbl.AddRow(dayLabel(at), at.Format(goTimeFmt), a.Title, a.Body)
	}
	fmt.Fprintln(s.out)
	fmt.Fprint(s.out, tbl.Render())
	fmt.Fprintln(s.out)
	return nil
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	cfg := effectiveConfig(cmd)
	sender, release, err := buildSender(cfg)
	if err != nil {
		return err
	}
	defer release()

	if err := notify.NewDispatcher(sender).SendTest(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Тестово известие изпратено чрез %s.\n", sender.Name())
	return nil
}
