package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/namaz/internal/config"
	"github.com/smokyabdulrahman/namaz/internal/display"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or modify configuration",
		Long:  "Display current configuration, or use subcommands to modify it.\nWhen run without subcommands, shows the current configuration.",
		RunE:  runConfigShow,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config value",
		Long: fmt.Sprintf("Set a configuration value. Valid keys: %s\n\nExamples:\n  namaz config set table_path ~/prayer_times.json\n  namaz config set time_format 12h\n  namaz config set store sqlite\n  namaz config set notifier pushover",
			strings.Join(config.ValidKeys, ", ")),
		Args: cobra.ExactArgs(2),
		RunE: runConfigSet,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Reset config to defaults",
		Long:  "Delete the config file and restore all settings to defaults.",
		Args:  cobra.NoArgs,
		RunE:  runConfigReset,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print config file path",
		Args:  cobra.NoArgs,
		RunE:  runConfigPath,
	})

	return cmd
}

// runConfigShow displays the effective configuration and where each
// value comes from.
func runConfigShow(cmd *cobra.Command, args []string) error {
	path, err := config.Path()
	if err != nil {
		return err
	}
	file, err := config.LoadFrom(path)
	if err != nil {
		return err
	}
	cfg := effectiveConfig(cmd)
	defaults := config.Defaults()
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "  Configuration (%s)\n\n", path)

	for _, key := range config.ValidKeys {
		val, _ := cfg.Get(key)
		shown := val
		switch {
		case val == "":
			shown = "(not set)"
		case config.Secret(key):
			shown = "********"
		}
		fmt.Fprintf(w, "  %-17s %s%s\n", key, shown, sourceNote(key, val, file, &defaults))
	}
	return nil
}

// sourceNote tells whether val came from the environment, the file or the
// defaults.
func sourceNote(key, val string, file, defaults *config.Config) string {
	if val == "" {
		return ""
	}
	if env, ok := os.LookupEnv(config.EnvVar(key)); ok && env == val {
		return display.Dim("  (" + config.EnvVar(key) + ")")
	}
	if fv, _ := file.Get(key); fv == val {
		return ""
	}
	if dv, _ := defaults.Get(key); dv == val {
		return display.Dim("  (default)")
	}
	return ""
}

// runConfigSet sets a config key to the given value.
func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := cfg.Set(key, value); err != nil {
		return err
	}

	if err := cfg.Save(); err != nil {
		return err
	}

	if config.Secret(key) {
		value = "********"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
	return nil
}

// runConfigReset deletes the config file.
func runConfigReset(cmd *cobra.Command, args []string) error {
	if err := config.Reset(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Configuration reset to defaults.")
	return nil
}

// runConfigPath prints the config file path.
func runConfigPath(cmd *cobra.Command, args []string) error {
	path, err := config.Path()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
