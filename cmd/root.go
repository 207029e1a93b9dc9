package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mt103perf/internal/banner"
	"mt103perf/internal/cli"
	"mt103perf/internal/probe"
	"mt103perf/internal/runner"
)

const envPrefix = "MT103PERF"

var (
	cfgFile string
	logger  = newLogger("info")
)

var rootCmd = newRootCmd()

// newRootCmd builds the root command with its flags. Flags still have to be
// bound to viper with bindFlags.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mt103perf",
		Short: "Performance harness for the MT103 transfer service",
		Long: `
mt103perf measures the latency of an MT103 transfer service.

A run issues, in order: one health check, sequential page loads,
sequential transfer submissions and a concurrent burst of page loads.
It then prints statistics, verdicts and recommendations.

Every flag can also be set in the config file or through an
environment variable, e.g. MT103PERF_PAGE_LOADS=20.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(); err != nil {
				return err
			}
			logger = newLogger(viper.GetString("log-level"))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromViper()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			_, err = cli.Start(ctx, cfg, cli.Options{
				Out:    viper.GetString("out"),
				TUI:    viper.GetBool("tui"),
				Stdout: cmd.OutOrStdout(),
				Logger: &logger,
			})
			return err
		},
	}

	defaults := runner.DefaultConfig()

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.mt103perf.yaml)")
	root.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")

	f := root.Flags()
	f.StringP("url", "u", defaults.BaseURL, "target base URL")
	f.Int("page-loads", defaults.PageLoads, "number of sequential page loads")
	f.Int("api-calls", defaults.APICalls, "number of sequential MT103 API calls")
	f.Int("concurrent-users", defaults.ConcurrentUsers, "number of concurrent users")
	f.Int("requests-per-user", defaults.RequestsPerUser, "requests issued by each concurrent user")
	f.String("http-version", "1.1", "HTTP version used by the probe (1.1, 2, 3); 2 and 3 need an https url")
	f.Duration("health-timeout", defaults.HealthTimeout, "health check timeout")
	f.Duration("page-timeout", defaults.PageTimeout, "page load timeout")
	f.Duration("api-timeout", defaults.APITimeout, "API call timeout")
	f.StringP("out", "o", "", "export the report to a .json, .yaml, .yml or .csv file")
	f.Bool("tui", false, "show a live progress view while the run executes")

	return root
}

// Execute runs the root command. Configuration errors exit with status 1;
// a completed run always exits 0.
func Execute() {
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), banner.GetString())
		_ = cmd.Usage()
	})

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	bindFlags(rootCmd)
}

// bindFlags makes every flag of cmd a viper key of the same name.
func bindFlags(cmd *cobra.Command) {
	_ = viper.BindPFlags(cmd.PersistentFlags())
	_ = viper.BindPFlags(cmd.Flags())
}

func initConfig() error {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".mt103perf")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	logger.Debug().Str("component", "config").Str("file", viper.ConfigFileUsed()).Msg("config loaded")
	return nil
}

func configFromViper() (runner.Config, error) {
	proto, err := probe.ParseProtocol(viper.GetString("http-version"))
	if err != nil {
		return runner.Config{}, err
	}

	cfg := runner.Config{
		BaseURL:         viper.GetString("url"),
		PageLoads:       viper.GetInt("page-loads"),
		APICalls:        viper.GetInt("api-calls"),
		ConcurrentUsers: viper.GetInt("concurrent-users"),
		RequestsPerUser: viper.GetInt("requests-per-user"),
		HealthTimeout:   viper.GetDuration("health-timeout"),
		PageTimeout:     viper.GetDuration("page-timeout"),
		APITimeout:      viper.GetDuration("api-timeout"),
		Protocol:        proto,
	}
	return cfg, cfg.Validate()
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(
		zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).Level(lvl).With().Timestamp().Logger()
}
