package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/che-incubator/che-plugins/internal/registry"
	"github.com/che-incubator/che-plugins/internal/workspace"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the workspace plugin state",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	dir, err := workspaceDir(cmd)
	if err != nil {
		return err
	}

	st, err := workspace.Read(afero.NewOsFs(), dir)
	if err != nil {
		return fmt.Errorf("%w (install a plugin or set a registry first)", err)
	}
	printStatus(cmd.OutOrStdout(), dir, st)
	return nil
}

func printStatus(w io.Writer, dir string, st *workspace.State) {
	label := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("8"))
	val := lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	ok := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	reg := registry.Resolve(st.RegistryURL)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s %s\n\n", label.Render("Workspace:"), val.Render(dir))
	fmt.Fprintf(w, "  %s %s\n", label.Render("State:    "), workspace.Path(dir))
	fmt.Fprintf(w, "  %s %s  %s\n", label.Render("Registry: "), reg.URI, dimStr(reg.Name))
	fmt.Fprintf(w, "  %s %s\n\n", label.Render("Updated:  "), st.UpdatedAt.Local().Format("2006-01-02 15:04"))

	fmt.Fprintf(w, "  %s\n", label.Render(fmt.Sprintf("Plugins (%d):", len(st.Plugins))))
	if len(st.Plugins) == 0 {
		fmt.Fprintf(w, "    %s\n", dimStr("none"))
	}
	for _, k := range st.Plugins {
		fmt.Fprintf(w, "    %s %s\n", ok.Render("●"), k)
	}
	fmt.Fprintln(w)
}
