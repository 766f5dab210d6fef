// Package cli provides the command-line interface for easymap.
// The root command runs the interactive options guide; the options
// subcommands print the catalogue without starting a session.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/anstrom/easymap/internal/config"
	"github.com/anstrom/easymap/internal/errors"
	"github.com/anstrom/easymap/internal/logging"
	"github.com/anstrom/easymap/internal/runner"
	"github.com/anstrom/easymap/internal/session"
)

const envPrefix = "EASYMAP"

var envKeyReplacer = strings.NewReplacer(".", "_")

// Viper keys that may be overridden by flags or environment variables.
const (
	keyBinary           = "scanner.binary"
	keyPrivilegeCommand = "scanner.privilege_command"
	keyMessageDelay     = "session.message_delay"
	keyShowBanner       = "session.show_banner"
	keyLogLevel         = "logging.level"
	keyLogFormat        = "logging.format"
	keyLogOutput        = "logging.output"
)

// flagKeys maps viper keys to the persistent flags bound to them.
var flagKeys = map[string]string{
	keyMessageDelay: "delay",
}

var (
	cfgFile  string
	verbose  bool
	noBanner bool
	noSudo   bool
)

// Resolved during initConfig and consumed by commands.
var (
	appConfig    *config.Config
	appConfigErr error
)

// Build information - these will be set by ldflags during build.
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "easymap",
	Short: "Interactive guide to nmap scan options",
	Long: `easymap explains twenty common nmap options, one at a time, and can run
the selected option against a target you type in. Run it without arguments
to start the interactive menu.`,
	Version:      getVersion(),
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runSession,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 for configuration that cannot be used and 1 otherwise.
func exitCode(err error) int {
	if errors.IsFatal(err) {
		return 2
	}
	return 1
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.Duration("delay", config.DefaultMessageDelay, "pause after status messages")
	flags.BoolVar(&noBanner, "no-banner", false, "do not print the banner")
	flags.BoolVar(&noSudo, "no-sudo", false, "run nmap without the privilege command")

	for key, name := range flagKeys {
		bindFlag(flags, key, name)
	}
}

func bindFlag(flags *pflag.FlagSet, key, name string) {
	if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to bind %s flag: %v\n", name, err)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	configureViper()
	appConfig, appConfigErr = resolveConfig()
	initLogging(appConfig)
}

func configureViper() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

// resolveConfig loads the config file found by viper and applies
// environment and flag overrides on top. A broken config file is only
// fatal when it was named explicitly with --config.
func resolveConfig() (*config.Config, error) {
	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); err != nil {
			return config.Default(), errors.WrapConfigError(errors.CodeFileNotFound,
				"config file "+cfgFile+" not accessible", err)
		}
	}

	cfg, err := config.Load(viper.ConfigFileUsed())
	if err != nil {
		if cfgFile != "" {
			return config.Default(), err
		}
		logging.Warn("Ignoring config file", "path", viper.ConfigFileUsed(), "error", err)
		cfg = config.Default()
	}

	applyOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return config.Default(), err
	}
	return cfg, nil
}

// overridden reports whether key was set through the environment or a
// changed flag. File values reach cfg through config.Load only, so an
// ignored config file contributes nothing.
func overridden(key string) bool {
	if name, ok := flagKeys[key]; ok && rootCmd.PersistentFlags().Changed(name) {
		return true
	}
	return os.Getenv(envPrefix+"_"+envKeyReplacer.Replace(strings.ToUpper(key))) != ""
}

// applyOverrides copies values set through the environment or flags.
func applyOverrides(cfg *config.Config) {
	if overridden(keyBinary) {
		cfg.Scanner.Binary = viper.GetString(keyBinary)
	}
	if overridden(keyPrivilegeCommand) {
		cfg.Scanner.PrivilegeCommand = viper.GetString(keyPrivilegeCommand)
	}
	if overridden(keyMessageDelay) {
		cfg.Session.MessageDelay = viper.GetDuration(keyMessageDelay)
	}
	if overridden(keyShowBanner) {
		cfg.Session.ShowBanner = viper.GetBool(keyShowBanner)
	}
	if overridden(keyLogLevel) {
		cfg.Logging.Level = viper.GetString(keyLogLevel)
	}
	if overridden(keyLogFormat) {
		cfg.Logging.Format = viper.GetString(keyLogFormat)
	}
	if overridden(keyLogOutput) {
		cfg.Logging.Output = viper.GetString(keyLogOutput)
	}

	if noBanner {
		cfg.Session.ShowBanner = false
	}
	if noSudo {
		cfg.Scanner.PrivilegeCommand = ""
	}
	if verbose {
		cfg.Logging.Level = string(logging.LevelDebug)
	}
}

// getVersion returns the version string.
func getVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime)
}

// SetVersion sets the version information (called from main).
func SetVersion(v, c, bt string) {
	version = v
	commit = c
	buildTime = bt
	rootCmd.Version = getVersion()
}

// initLogging initializes structured logging based on configuration.
func initLogging(cfg *config.Config) {
	if cfg == nil {
		logging.SetDefault(logging.NewDefault())
		return
	}

	logger, err := logging.New(cfg.LoggerConfig())
	if err != nil {
		logger = logging.NewDefault()
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}
	logging.SetDefault(logger)

	if verbose {
		logging.Info("Structured logging initialized", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	}
}

func runSession(cmd *cobra.Command, _ []string) error {
	if appConfigErr != nil {
		return appConfigErr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logging.Default()
	s := session.New(appConfig, cmd.InOrStdin(), cmd.OutOrStdout(), runner.NewExecRunner(log),
		session.WithLogger(log),
		session.WithVersion(version),
	)

	err := s.Run(ctx)
	if stderrors.Is(err, context.Canceled) {
		log.Info("Session interrupted")
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	}
	return err
}
