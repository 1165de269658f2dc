package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/linnemanlabs/acuity/internal/acuity"
	"github.com/linnemanlabs/acuity/internal/rulebook"
)

type evaluateResult struct {
	acuity.Outcome
	SuggestedAcuity string   `json:"suggestedAcuity"`
	DefaultedVitals []string `json:"defaulted_vitals"`
}

func newEvaluateCommand() *cobra.Command {
	var (
		complaint    string
		age          int
		vitals       []string
		tags         []string
		rulebookPath string
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Suggest a triage level for one presentation",
		Example: `  acuity evaluate --complaint "đau ngực trái" --age 54
  acuity evaluate --complaint "mệt" --vital spo2=85 --vital temp=38.2 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if age < 0 {
				return fmt.Errorf("--age must be >= 0, got %d", age)
			}
			parsed, err := parseVitals(vitals)
			if err != nil {
				return err
			}
			engine, err := rulebook.Engine(rulebookPath)
			if err != nil {
				return err
			}

			n := acuity.Normalize(acuity.Input{
				ChiefComplaintText: complaint,
				AgeInYears:         age,
				Vitals:             parsed,
				ComplaintTypes:     tags,
			})
			res := evaluateResult{
				Outcome:         engine.EvaluateNormalized(&n),
				DefaultedVitals: n.Defaulted(),
			}
			res.SuggestedAcuity = res.Level.Code()

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				enc.SetEscapeHTML(false)
				return enc.Encode(res)
			}
			return renderOutcome(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVarP(&complaint, "complaint", "c", "", "chief complaint text")
	cmd.Flags().IntVarP(&age, "age", "a", 0, "age in years")
	cmd.Flags().StringArrayVar(&vitals, "vital", nil, "vital sign as name=value, repeatable (spo2, temp, sys_bp)")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "complaint type tag, repeatable")
	cmd.Flags().StringVar(&rulebookPath, "rulebook", "", "YAML file extending the marker vocabulary")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

// parseVitals turns name=value pairs into a vitals map. A later pair for
// the same name wins.
func parseVitals(pairs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		name, raw, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --vital %q: want name=value", p)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --vital %q: value is not a number", p)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("invalid --vital %q: value must be finite", p)
		}
		out[name] = f
	}
	return out, nil
}

func renderOutcome(w io.Writer, res evaluateResult) error {
	defaulted := "none"
	if len(res.DefaultedVitals) > 0 {
		defaulted = strings.Join(res.DefaultedVitals, ", ")
	}
	_, err := fmt.Fprintf(w,
		"level:       %s (%s)\nconfidence:  %.2f\nrule:        %s\ntrigger:     %s\nexplanation: %s\ndefaulted:   %s\n",
		res.SuggestedAcuity, res.Level, res.Confidence, res.Rule, res.Trigger, res.Explanation, defaulted,
	)
	return err
}
