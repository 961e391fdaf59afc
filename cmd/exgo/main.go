package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/endurox-dev/exgo/internal/config"
	"github.com/endurox-dev/exgo/pkg/atmi/logging"
)

type cliConfig struct {
	LogLevel string `env:"EXGO_LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"EXGO_LOG_FILE"`
}

var (
	cfg    cliConfig
	zlog   *zap.Logger
	logger logging.Logger
)

var rootCmd = &cobra.Command{
	Use:           "exgo",
	Short:         "Inspect the Enduro/X bridge in this environment",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		zlog, err = newZapLogger(cfg.LogLevel, cfg.LogFile)
		if err != nil {
			return err
		}
		logger = logging.NewZap(zlog)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if zlog != nil {
			_ = zlog.Sync()
		}
	},
}

func main() {
	if err := config.ParseEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "exgo: %v\n", err)
		os.Exit(2)
	}

	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "write logs to a rotated file instead of stderr")
	rootCmd.AddCommand(versionCmd, catalogCmd, xaCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "exgo: %v\n", err)
		os.Exit(1)
	}
}
