package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/abdul-hamid-achik/hookshot/packages/core/config"
	"github.com/abdul-hamid-achik/hookshot/packages/core/env"
	"github.com/abdul-hamid-achik/hookshot/packages/notify"
	"github.com/abdul-hamid-achik/hookshot/packages/output"
	"github.com/spf13/cobra"
)

// Persistent flags shared by every command
var (
	configFlag   string
	envFileFlag  string
	baseURLFlag  string
	databaseFlag string
	noColorFlag  bool
	verboseFlag  bool
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFlag, "config", "", "Path to config file (env: HOOKSHOT_CONFIG)")
	flags.StringVar(&envFileFlag, "env-file", env.String("ENV_FILE", ""), "Path to .env file loaded before anything else (env: HOOKSHOT_ENV_FILE)")
	flags.StringVar(&baseURLFlag, "base-url", "", "Development server URL (env: HOOKSHOT_BASE_URL, default "+config.DefaultBaseURL+")")
	flags.StringVar(&databaseFlag, "db", "", "Database connection string (env: HOOKSHOT_DATABASE, default "+config.DefaultDatabase+")")
	flags.BoolVar(&noColorFlag, "no-color", false, "Disable colored output (env: HOOKSHOT_NO_COLOR)")
	flags.BoolVarP(&verboseFlag, "verbose", "v", false, "Verbose output (env: HOOKSHOT_VERBOSE)")
}

// loadEnvFile exports the variables of --env-file. Variables already set in
// the environment win.
func loadEnvFile(cmd *cobra.Command, args []string) error {
	if envFileFlag == "" {
		return nil
	}
	if _, err := env.LoadAndExportDotEnv(envFileFlag); err != nil {
		return fmt.Errorf("%w: %v", errConfig, err)
	}
	return nil
}

// loadConfig resolves the effective configuration. Explicit flags win over
// HOOKSHOT_* variables, which win over the config file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(stringSetting(cmd, "config", configFlag, "CONFIG"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errConfig, err)
	}

	overrides := &config.Config{
		BaseURL:  stringSetting(cmd, "base-url", baseURLFlag, "BASE_URL"),
		Database: stringSetting(cmd, "db", databaseFlag, "DATABASE"),
	}
	if v, ok := boolSetting(cmd, "no-color", noColorFlag, "NO_COLOR"); ok {
		overrides.NoColor = &v
	}
	if v, ok := boolSetting(cmd, "verbose", verboseFlag, "VERBOSE"); ok {
		overrides.Verbose = &v
	}
	return cfg.Merge(overrides), nil
}

// stringSetting resolves a flag at run time, after --env-file is exported.
// An explicit flag wins, then the HOOKSHOT_ variable, then the flag default.
func stringSetting(cmd *cobra.Command, flag, value, envKey string) string {
	if cmd.Flags().Changed(flag) {
		return value
	}
	return env.String(envKey, value)
}

func intSetting(cmd *cobra.Command, flag string, value int, envKey string) int {
	if cmd.Flags().Changed(flag) {
		return value
	}
	return env.Int(envKey, value)
}

func boolSetting(cmd *cobra.Command, flag string, value bool, envKey string) (bool, bool) {
	if cmd.Flags().Changed(flag) {
		return value, true
	}
	if env.String(envKey, "") == "" {
		return false, false
	}
	return env.Bool(envKey, false), true
}

// parseTimeout reads a --timeout style value: a duration, or a bare number
// of milliseconds. Zero disables the timeout.
func parseTimeout(value string) (time.Duration, error) {
	if value == "" || value == "0" {
		return 0, nil
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid timeout value %q (use format like 30s, 1m, 500ms)", errUsage, value)
	}
	return d, nil
}

func newConsole(cmd *cobra.Command, cfg *config.Config) *output.Console {
	return output.NewConsole(
		output.WithWriter(cmd.OutOrStdout()),
		output.WithErrWriter(cmd.ErrOrStderr()),
		output.WithVerbose(cfg.GetVerbose()),
		output.WithNoColor(cfg.GetNoColor()),
	)
}

// newNotifier builds the notifiers announcing new bots. The console always
// hears about them.
func newNotifier(cmd *cobra.Command, cfg *config.Config) *notify.Manager {
	m := notify.NewManager(notify.NewWriterNotifier(cmd.OutOrStdout()))
	if cfg.Notify == nil {
		return m
	}
	if cfg.Notify.SlackWebhook != "" {
		var opts []notify.SlackOption
		if cfg.Notify.SlackChannel != "" {
			opts = append(opts, notify.WithSlackChannel(cfg.Notify.SlackChannel))
		}
		m.AddNotifier(notify.NewSlackNotifier(cfg.Notify.SlackWebhook, opts...))
	}
	if cfg.Notify.TeamsWebhook != "" {
		m.AddNotifier(notify.NewTeamsNotifier(cfg.Notify.TeamsWebhook))
	}
	return m
}
