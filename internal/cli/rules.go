package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/linnemanlabs/acuity/internal/acuity"
	"github.com/linnemanlabs/acuity/internal/rulebook"
)

func newRulesCommand() *cobra.Command {
	var rulebookPath string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the rule table in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := rulebook.Engine(rulebookPath)
			if err != nil {
				return err
			}
			return renderRules(cmd.OutOrStdout(), engine.Rules())
		},
	}

	cmd.Flags().StringVar(&rulebookPath, "rulebook", "", "YAML file extending the marker vocabulary")
	return cmd
}

func renderRules(w io.Writer, rules []acuity.RuleGroup) error {
	for i, g := range rules {
		_, err := fmt.Fprintf(w, "%d. %s -> level %s (%s), confidence %.2f\n   when: %s\n   explanation: %s\n",
			i+1, g.Name, g.Level.Code(), g.Level, g.Confidence, g.When, g.Explanation)
		if err != nil {
			return err
		}
	}

	normals := acuity.NormalVitals()
	names := make([]string, 0, len(normals))
	for name := range normals {
		names = append(names, name)
	}
	sort.Strings(names)

	if _, err := fmt.Fprintln(w, "\nabsent vitals read as:"); err != nil {
		return err
	}
	for _, name := range names {
		if _, err := fmt.Fprintf(w, "   %s = %s\n", name, strconv.FormatFloat(normals[name], 'f', -1, 64)); err != nil {
			return err
		}
	}
	return nil
}
