package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/che-incubator/che-plugins/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export [file|-]",
	Short: "Merge a launch or task configuration into the workspace",
	Long: `Merge the configurations of a JSON (with comments) document into
.theia/launch.json or .theia/tasks.json of the workspace.

Entries are matched by "name": entries from the document replace existing
ones of the same name and come first; existing entries with other names are
kept after them. Comments and layout of the document are kept. A document
without a configurations array leaves the workspace file untouched.

The document is read from file, or from stdin when file is "-" or omitted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

var flagExportType string

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&flagExportType, "type", "t", export.Launch.Type, "configuration type: launch or tasks")
}

func runExport(cmd *cobra.Command, args []string) error {
	target, err := export.TargetByType(flagExportType)
	if err != nil {
		return err
	}
	content, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	e, err := setup(cmd, envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	ex := export.New(e.fs, target, e.log)
	outcome, err := ex.Export(content, e.dir)
	if err != nil {
		return fmt.Errorf("export %s: %w", target.Type, err)
	}
	printOutcome(cmd.OutOrStdout(), outcome, ex.ConfigPath(e.dir))
	return nil
}

func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(data), nil
}

func printOutcome(w io.Writer, o export.Outcome, path string) {
	ok := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	switch o {
	case export.Merged:
		fmt.Fprintf(w, "%s Merged into %s\n", ok.Render("✓"), path)
	case export.Replaced:
		fmt.Fprintf(w, "%s Wrote %s\n", ok.Render("✓"), path)
	case export.Unchanged:
		fmt.Fprintf(w, "%s %s already up to date\n", ok.Render("✓"), path)
	default:
		fmt.Fprintln(w, dimStr("Nothing to export"))
	}
}
