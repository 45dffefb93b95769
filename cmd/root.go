// Package cmd implements the che-plugins CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/che-incubator/che-plugins/internal/config"
)

// SetVersionInfo is called from main.go with values injected at build time via -ldflags.
// It must be called before Execute().
func SetVersionInfo(version, commit, date string) {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"che-plugins %s (commit %s, built %s)\n", version, commit, date,
	))
	rootCmd.Version = version
}

var rootCmd = &cobra.Command{
	Use:   "che-plugins [filter...]",
	Short: "Eclipse Che workspace plugin manager",
	Long: `che-plugins lists the plugins of an Eclipse Che plugin registry and
installs them into a workspace, and exports launch and task configurations
into the workspace's .theia directory.

Examples:
  che-plugins                        interactive plugin browser
  che-plugins @installed             browser showing installed plugins only
  che-plugins list @type:che_editor  list editors
  che-plugins install redhat/java/0.1
  che-plugins export launch.json     merge configurations into .theia/launch.json
  che-plugins registry set https://che-plugin-registry.example.com
  che-plugins status                 show workspace plugins
  che-plugins logs                   show the latest log`,
	RunE:         runBrowse,
	SilenceUsage: true,
}

var flagConfig string

// Execute is the main entry point called from main.go.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringP(config.KeyWorkspace, "w", "", "workspace directory (default: current directory)")
	pf.String(config.KeyRegistry, "", "plugin registry URI (overrides the workspace setting)")
	pf.String(config.KeyLogLevel, "info", "console log level: debug, info, warn, error")
	pf.Duration(config.KeyTimeout, 0, "registry request timeout (default 10s)")
	pf.StringVar(&flagConfig, "config", "", "config file (default: che-plugins.yaml in the user config dir or cwd)")
}
