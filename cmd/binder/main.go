// Command binder tracks which cards of a fixed list of sets you own.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ramonehamilton/card-binder/internal/config"
	"github.com/ramonehamilton/card-binder/internal/version"
)

var (
	// Global flags
	cfgPath string
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "binder",
		Short: "Card binder for a fixed list of Scryfall sets",
		Long: `binder loads every printing of the configured sets from Scryfall and
lets you mark which ones you own. Ownership is kept in a local SQLite file.

Run "binder serve" to open the browser page.`,
		Version:      version.GetVersion(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(cfgPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			zc := zap.NewProductionConfig()
			if verbose || cfg.App.DebugMode {
				zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err = zc.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Config file (default: ~/.card-binder/config.toml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(newServeCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newToggleCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newBackupCmd())

	return root
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
