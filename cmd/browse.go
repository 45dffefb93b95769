package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/che-incubator/che-plugins/internal/browser"
)

func runBrowse(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd, envOptions{quiet: true})
	if err != nil {
		return err
	}
	defer e.Close()

	return browser.Run(cmd.Context(), e.mgr, browser.Options{Filter: strings.Join(args, " ")})
}
