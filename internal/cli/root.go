package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/smokyabdulrahman/namaz/internal/config"
	"github.com/smokyabdulrahman/namaz/internal/display"
	"github.com/smokyabdulrahman/namaz/internal/logging"
)

// Global flags shared across all subcommands.
var (
	FlagCity       string
	FlagJSON       bool
	FlagTimeFormat string
	FlagTable      string
	FlagVerbose    bool
)

// loadedConfig holds the config loaded during PersistentPreRunE.
var loadedConfig *config.Config

// nowFunc is the clock every command reads. Tests pin it.
var nowFunc = time.Now

// NewRootCmd creates the root command for the namaz CLI.
// The version parameter is set by the calling binary via ldflags.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "namaz",
		Short: "Prayer times for Bulgarian cities",
		Long: "Daily prayer times for cities in Bulgaria: today's schedule, a live countdown\n" +
			"to the next prayer, and alerts before and at each prayer.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			path, err := config.Path()
			if err != nil {
				return err
			}
			cfg, err := config.Effective(path)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			loadedConfig = cfg

			level := cfg.LogLevel
			if FlagVerbose {
				level = "debug"
			}
			logging.Setup(os.Stderr, level, cfg.LogFormat)
			if FlagJSON {
				display.SetEnabled(false)
			}
			return nil
		},
		// Default action: show today's prayer schedule.
		RunE:          runToday,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&FlagCity, "city", "", "City to show (overrides the selected city for this run)")
	pf.BoolVar(&FlagJSON, "json", false, "Output as JSON (where supported)")
	pf.StringVar(&FlagTimeFormat, "time-format", "", "Time format: 12h or 24h (overrides config)")
	pf.StringVar(&FlagTable, "table", "", "Prayer time data file (overrides table_path)")
	pf.BoolVarP(&FlagVerbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newNextCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newWeekCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newCitiesCmd())
	rootCmd.AddCommand(newCityCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newNotifyCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// PrintVersion prints the version string in the expected format.
func PrintVersion(version string) string {
	return fmt.Sprintf("namaz %s\n", version)
}

// effectiveConfig returns the merged configuration values,
// applying the priority: CLI flags > environment > config file > defaults.
func effectiveConfig(cmd *cobra.Command) *config.Config {
	cfg := loadedConfig
	if cfg == nil {
		d := config.Defaults()
		cfg = &d
	}

	flags := cmd.Flags()
	root := cmd.Root().PersistentFlags()

	if flagWasSet(flags, root, "table") {
		cfg.TablePath = FlagTable
		cfg.TableURL = ""
	}
	if flagWasSet(flags, root, "time-format") {
		cfg.TimeFormat = FlagTimeFormat
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = config.Defaults().TimeFormat
	}
	return cfg
}

// flagWasSet checks if a flag was explicitly set on either the local or persistent flag set.
func flagWasSet(local, persistent *pflag.FlagSet, name string) bool {
	if f := local.Lookup(name); f != nil && f.Changed {
		return true
	}
	if f := persistent.Lookup(name); f != nil && f.Changed {
		return true
	}
	return false
}

// goTimeFormat maps the time_format setting to a Go layout.
func goTimeFormat(cfg *config.Config) string {
	if cfg.TimeFormat == "12h" {
		return "3:04 PM"
	}
	return "15:04"
}
