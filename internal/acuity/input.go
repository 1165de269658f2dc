package acuity

import (
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Vital sign keys read by the default rules.
const (
	VitalSpO2  = "spo2"
	VitalTemp  = "temp"
	VitalSysBP = "sys_bp"
)

// normalVitals is the absence policy: a rule vital the caller did not
// supply reads as this physiological-normal value. Absence is never
// evidence of abnormality.
var normalVitals = map[string]float64{
	VitalSpO2:  100,
	VitalTemp:  37.0,
	VitalSysBP: 120,
}

// NormalVital returns the default reading substituted when the caller omits
// the named vital.
func NormalVital(name string) (float64, bool) {
	v, ok := normalVitals[name]
	return v, ok
}

// NormalVitals returns a copy of the default vital table.
func NormalVitals() map[string]float64 {
	return maps.Clone(normalVitals)
}

// Input is a patient presentation as supplied by the caller.
type Input struct {
	ChiefComplaintText string
	AgeInYears         int
	Vitals             map[string]float64

	// ComplaintTypes is carried through normalization but no current rule
	// reads it.
	ComplaintTypes []string
}

// Normalized is the view of an Input the rules evaluate: complaint text
// canonicalised for matching, vitals resolved against the default table.
type Normalized struct {
	Complaint      string
	AgeInYears     int
	ComplaintTypes []string

	vitals map[string]float64
}

// Normalize builds the normalized view of in. It never fails; an empty
// complaint or missing vitals are valid input.
func Normalize(in Input) Normalized {
	n := Normalized{
		Complaint:      foldText(in.ChiefComplaintText),
		AgeInYears:     in.AgeInYears,
		ComplaintTypes: make([]string, 0, len(in.ComplaintTypes)),
		vitals:         maps.Clone(in.Vitals),
	}
	for _, t := range in.ComplaintTypes {
		n.ComplaintTypes = append(n.ComplaintTypes, foldText(t))
	}
	return n
}

// Vital returns the caller's reading for name, or its normal default when
// absent. Names with no default read as 0.
func (n *Normalized) Vital(name string) float64 {
	if v, ok := n.vitals[name]; ok {
		return v
	}
	return normalVitals[name]
}

// Supplied reports whether the caller provided a reading for name.
func (n *Normalized) Supplied(name string) bool {
	_, ok := n.vitals[name]
	return ok
}

// Defaulted lists, in sorted order, the default-table vitals the caller did
// not supply.
func (n *Normalized) Defaulted() []string {
	var out []string
	for name := range normalVitals {
		if !n.Supplied(name) {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// foldText canonicalises text for case-insensitive substring matching:
// trimmed, case-folded, NFC composed so precomposed and combining-mark
// spellings of the same Vietnamese word compare equal.
//
// A cases.Caser is not safe for concurrent use, so one is built per call.
func foldText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return norm.NFC.String(cases.Fold().String(s))
}
