package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/che-incubator/che-plugins/internal/manager"
	"github.com/che-incubator/che-plugins/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list [filter...]",
	Short: "List registry plugins and their install state",
	Long: `List the plugins of the current registry.

Filters combine: @installed keeps workspace plugins, @type:<type> keeps one
plugin type (lowercase, spaces as underscores, e.g. @type:che_editor), and
any other word must appear in the name, display name, description or
publisher.`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd, envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	plugins, err := e.mgr.GetPlugins(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	printPlugins(cmd.OutOrStdout(), plugins, e.mgr.State)
	return nil
}

func printPlugins(w io.Writer, plugins []registry.Plugin, state func(registry.Plugin) manager.State) {
	ok := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	off := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	if len(plugins) == 0 {
		fmt.Fprintln(w, off.Render("No plugins currently available"))
		return
	}
	for _, p := range plugins {
		mark := off.Render("○")
		switch {
		case p.Disabled:
			mark = off.Render("-")
		case state(p) == manager.Installed:
			mark = ok.Render("●")
		}
		fmt.Fprintf(w, "%s %s  %s\n", mark, p.Key, dimStr(p.Type))
		if desc := firstNonEmpty(p.Description, p.DisplayName); desc != "" {
			fmt.Fprintf(w, "    %s\n", desc)
		}
	}
}

func firstNonEmpty(s ...string) string {
	for _, v := range s {
		if v != "" {
			return v
		}
	}
	return ""
}

func dimStr(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(s)
}
