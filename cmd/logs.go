package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/che-incubator/che-plugins/internal/logger"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show the latest che-plugins log",
	Long: `Show the most recent che-plugins log of the workspace.
Use --follow to stream new lines in real time.`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

var flagFollow bool

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.Flags().BoolVarP(&flagFollow, "follow", "f", false, "follow log output (like tail -f)")
}

func runLogs(cmd *cobra.Command, args []string) error {
	dir, err := workspaceDir(cmd)
	if err != nil {
		return err
	}

	logPath := logger.LatestLogPath(dir)
	if logPath == "" {
		return fmt.Errorf("no logs found in %s", logger.LogsDir(dir))
	}

	f, err := os.Open(logPath)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	out := cmd.OutOrStdout()
	if _, err := io.Copy(out, f); err != nil {
		return err
	}
	if !flagFollow {
		return nil
	}

	// Follow mode: poll for new content until interrupted.
	ctx := cmd.Context()
	ticker := time.NewTicker(300 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := io.Copy(out, f); err != nil {
				return err
			}
		}
	}
}
