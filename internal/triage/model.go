package triage

import (
	"time"

	"github.com/linnemanlabs/acuity/internal/acuity"
)

// Evaluation is one completed triage evaluation.
type Evaluation struct {
	ID              string         `json:"id"`
	Outcome         acuity.Outcome `json:"outcome"`
	AgeInYears      int            `json:"age_in_years"`
	DefaultedVitals []string       `json:"defaulted_vitals,omitempty"`
	EvaluatedAt     time.Time      `json:"evaluated_at"`
	Duration        float64        `json:"duration_seconds"`
}

// Critical reports whether the outcome is resuscitation level.
func (e *Evaluation) Critical() bool {
	return e.Outcome.Level == acuity.LevelResuscitation
}
