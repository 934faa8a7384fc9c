package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "formlayout",
		Short:         "Convert, validate and edit form layout documents",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)
	root.PersistentFlags().StringVar(&a.configPath, "config", "formlayout.yaml", "configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(
		newConvertCommand(a),
		newNormalizeCommand(a),
		newValidateCommand(a),
		newTreeCommand(a),
		newQueryCommand(a),
		newDiffCommand(a),
		newDepthCommand(a),
		newAddCommand(a),
		newMoveCommand(a),
		newRemoveCommand(a),
		newSyncNavCommand(a),
		newPageCommand(a),
	)
	return root
}
