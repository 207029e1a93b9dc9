package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mt103perf/internal/mock"
)

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Run a local mock MT103 transfer service",
	Long: `Start a stand-in MT103 service exposing /, /health and
/api/send_mt103. Useful as a local target for the harness.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := mock.DefaultConfig()
		cfg.Port, _ = cmd.Flags().GetInt("port")
		cfg.Delay, _ = cmd.Flags().GetDuration("delay")
		cfg.FailRate, _ = cmd.Flags().GetFloat64("fail-rate")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		mockLog := logger.With().Str("component", "mock").Logger()
		if err := mock.NewServer(cfg, &mockLog).ListenAndServe(ctx); err != nil {
			mockLog.Error().Err(err).Msg("mock service stopped")
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mockCmd)

	defaults := mock.DefaultConfig()
	mockCmd.Flags().IntP("port", "p", defaults.Port, "port to listen on")
	mockCmd.Flags().Duration("delay", defaults.Delay, "simulated transfer processing time")
	mockCmd.Flags().Float64("fail-rate", 0, "fraction of page and API requests answered with 500")
}
