// Package cli is the offline command-line front end to the triage engine.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd wires the cobra root command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "acuity",
		Short: "Emergency-department triage rule engine",
		Long: "acuity suggests one of five ordered triage levels for a patient " +
			"presentation using a fixed, ordered rule table.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newEvaluateCommand())
	root.AddCommand(newRulesCommand())
	root.AddCommand(newVersionCommand())
	return root
}
