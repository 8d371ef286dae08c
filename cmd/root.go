package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/balei-miktzoa/draftgen/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "draftgen",
	Short: "Deterministic Hebrew profile copy generator",
	Long:  "Generates marketing bios for home-service professionals: safety-filtered source text, per-trade phrasing variants with mutual exclusion, and multi-tone descriptions.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
