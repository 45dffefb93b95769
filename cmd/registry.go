package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Show the plugin registry of the workspace",
	Args:  cobra.NoArgs,
	RunE:  runRegistry,
}

var registrySetCmd = &cobra.Command{
	Use:   "set <uri>",
	Short: "Change the plugin registry of the workspace",
	Long: `Store uri as the workspace plugin registry. The URI is normalized to
end in /plugins/, so both https://host and https://host/plugins work.`,
	Args: cobra.ExactArgs(1),
	RunE: runRegistrySet,
}

func init() {
	registryCmd.AddCommand(registrySetCmd)
	rootCmd.AddCommand(registryCmd)
}

func runRegistry(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd, envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	def, err := e.mgr.DefaultRegistry()
	if err != nil {
		return err
	}
	cur, err := e.mgr.Registry()
	if err != nil {
		return err
	}

	label := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("8"))
	val := lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s  %s\n", label.Render("Workspace:"), val.Render(def.URI), dimStr(def.Name))
	if cur != def {
		fmt.Fprintf(out, "%s %s  %s\n", label.Render("Override: "), val.Render(cur.URI), dimStr("--registry"))
	}
	return nil
}

func runRegistrySet(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd, envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	reg, err := e.mgr.SetRegistry(args[0])
	if err != nil {
		return err
	}
	ok := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	fmt.Fprintf(cmd.OutOrStdout(), "%s Registry set to %s\n", ok.Render("✓"), reg.URI)
	return nil
}
