package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"captainhub.app/relay/common/logger"
	"captainhub.app/relay/core/config"
)

var (
	verbose bool
	cfg     config.Config
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "relay",
		Short: "Offline tools for relay event normalization and plan boards",
		Long: `relay runs the event normalizer and the plan merge against captured
payloads on disk, without a database or queue.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(config.ServiceTypeCLI)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			loaded.LogLevel = slog.LevelWarn
			if verbose {
				loaded.LogLevel = slog.LevelDebug
			}
			// stdout carries command output, so logs go to stderr
			slog.SetDefault(slog.New(logger.NewHandler(cmd.ErrOrStderr(), loaded)))
			cfg = loaded
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newNormalizeCmd(), newBoardCmd(), newSchemaCmd())
	return root
}

// readInput reads path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
