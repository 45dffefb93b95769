package cmd

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/che-incubator/che-plugins/internal/manager"
	"github.com/che-incubator/che-plugins/internal/registry"
)

var installCmd = &cobra.Command{
	Use:   "install <key>...",
	Short: "Add plugins to the workspace",
	Long: `Add registry plugins to the workspace plugin list. Keys have the form
publisher/name/version as printed by "che-plugins list".
The workspace must be restarted to run the new plugins.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInstall,
}

var removeCmd = &cobra.Command{
	Use:     "remove <key>...",
	Aliases: []string{"uninstall"},
	Short:   "Remove plugins from the workspace",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runRemove,
}

var flagYes bool

func init() {
	rootCmd.AddCommand(installCmd, removeCmd)
	removeCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "do not ask for confirmation")
}

func runInstall(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd, envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	plugins, err := e.mgr.Find(cmd.Context(), args...)
	if err != nil {
		return err
	}
	return applyChanges(cmd, e.mgr, plugins, e.mgr.Install)
}

func runRemove(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd, envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	installed, err := e.mgr.InstalledKeys()
	if err != nil {
		return err
	}
	for _, key := range args {
		if !slices.Contains(installed, key) {
			return fmt.Errorf("%s is not installed in %s", key, e.dir)
		}
	}
	plugins := lookupPlugins(cmd.Context(), e.mgr, args)

	if !flagYes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Remove %d plugin(s) from the workspace? [Y/n] ", len(plugins))) {
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
		return nil
	}
	return applyChanges(cmd, e.mgr, plugins, e.mgr.Remove)
}

// lookupPlugins returns the registry metadata of keys. Plugins that are no
// longer in the registry can still be removed by key.
func lookupPlugins(ctx context.Context, mgr *manager.Manager, keys []string) []registry.Plugin {
	plugins, err := mgr.Find(ctx, keys...)
	if err == nil {
		return plugins
	}
	mgr.Log.Debugf("plugin metadata unavailable, removing by key: %v", err)
	plugins = make([]registry.Plugin, len(keys))
	for i, k := range keys {
		plugins[i] = registry.Plugin{Key: k}
	}
	return plugins
}

// applyChanges runs op for every plugin behind a spinner and prints the
// restart notice once something changed.
func applyChanges(cmd *cobra.Command, mgr *manager.Manager, plugins []registry.Plugin, op func(context.Context, registry.Plugin) error) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	var failed error
	for _, p := range plugins {
		sp := newSpinner(out, p.Key)
		mgr.OnStep = func(step, total int, label string) {
			sp.setLabel(fmt.Sprintf("[%d/%d] %s", step, total, label))
		}
		sp.start()
		err := op(ctx, p)
		sp.setLabel(p.Key)
		sp.stop(err)
		if err != nil {
			failed = errors.Join(failed, err)
		}
	}
	mgr.OnStep = nil

	if mgr.NeedsRestart() {
		notice := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
		fmt.Fprintf(out, "\n%s\n", notice.Render("Restart your workspace to apply changes"))
	}
	return failed
}
