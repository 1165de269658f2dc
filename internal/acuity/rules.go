package acuity

import (
	"strconv"
	"strings"
)

// Rule group names of the default table.
const (
	RuleResuscitation = "resuscitation"
	RuleEmergent      = "emergent"
	RuleUrgent        = "urgent"
	RuleMildSymptoms  = "mild_symptoms"
	RuleDefault       = "default"
)

// Predicate is one condition of a rule group.
type Predicate interface {
	// Match reports whether the predicate holds for n and, when it does,
	// a short label naming what fired.
	Match(n *Normalized) (trigger string, ok bool)
	String() string
}

// RuleGroup maps a predicate to a fixed outcome.
type RuleGroup struct {
	Name        string
	When        Predicate
	Level       Level
	Confidence  float64
	Explanation string
}

func (g RuleGroup) outcome(trigger string) Outcome {
	return Outcome{
		Level:       g.Level,
		Confidence:  g.Confidence,
		Explanation: g.Explanation,
		Rule:        g.Name,
		Trigger:     trigger,
	}
}

// DefaultRules returns the triage table in mandatory evaluation order,
// reading marker phrases from v. The mild-symptom group (level 5) sits
// ahead of the catch-all (level 4): a complaint naming a mild symptom is
// reported non-urgent rather than falling through to less-urgent.
func DefaultRules(v Vocabulary) []RuleGroup {
	return []RuleGroup{
		{
			Name: RuleResuscitation,
			When: AnyOf(
				Mentions(v.mustSet(MarkersCardiacArrest)),
				Mentions(v.mustSet(MarkersRespiratoryDistress)),
				VitalBelow(VitalSpO2, 90),
			),
			Level:       LevelResuscitation,
			Confidence:  0.98,
			Explanation: "Phát hiện dấu hiệu đe dọa tính mạng (đường thở/hô hấp/tuần hoàn).",
		},
		{
			Name: RuleEmergent,
			When: AnyOf(
				Mentions(v.mustSet(MarkersChestPain)),
				Mentions(v.mustSet(MarkersParalysis)),
				VitalAbove(VitalTemp, 39.5),
			),
			Level:       LevelEmergent,
			Confidence:  0.92,
			Explanation: "Triệu chứng nguy cơ cao cần can thiệp y tế khẩn cấp trong vòng 15 phút.",
		},
		{
			Name: RuleUrgent,
			When: AnyOf(
				VitalAbove(VitalSysBP, 160),
				Mentions(v.mustSet(MarkersSevereAbdominalPain)),
			),
			Level:       LevelUrgent,
			Confidence:  0.85,
			Explanation: "Tình trạng ổn định nhưng cần xét nghiệm và chẩn đoán hình ảnh phức tạp.",
		},
		{
			Name: RuleMildSymptoms,
			When: AnyOf(
				Mentions(v.mustSet(MarkersCough)),
				Mentions(v.mustSet(MarkersRunnyNose)),
				Mentions(v.mustSet(MarkersSoreThroat)),
			),
			Level:       LevelNonUrgent,
			Confidence:  0.95,
			Explanation: "Triệu chứng nhẹ, phù hợp chăm sóc sức khỏe ban đầu.",
		},
		{
			Name:        RuleDefault,
			When:        Always(),
			Level:       LevelLessUrgent,
			Confidence:  0.75,
			Explanation: "Dựa trên phân tích triệu chứng tổng quát, đề xuất mức độ ưu tiên trung bình.",
		},
	}
}

type mentions struct {
	set MarkerSet
}

// Mentions holds when the complaint contains any phrase of set.
func Mentions(set MarkerSet) Predicate {
	return mentions{set: set}
}

func (p mentions) Match(n *Normalized) (string, bool) {
	phrase, ok := p.set.Find(n.Complaint)
	if !ok {
		return "", false
	}
	return "marker:" + phrase, true
}

func (p mentions) String() string {
	return "complaint mentions " + p.set.Name + " [" + strings.Join(p.set.Phrases, ", ") + "]"
}

type vitalThreshold struct {
	vital     string
	threshold float64
	below     bool
}

// VitalBelow holds when the resolved vital is strictly less than threshold.
func VitalBelow(vital string, threshold float64) Predicate {
	return vitalThreshold{vital: vital, threshold: threshold, below: true}
}

// VitalAbove holds when the resolved vital is strictly greater than threshold.
func VitalAbove(vital string, threshold float64) Predicate {
	return vitalThreshold{vital: vital, threshold: threshold}
}

func (p vitalThreshold) Match(n *Normalized) (string, bool) {
	v := n.Vital(p.vital)
	if p.below && v < p.threshold || !p.below && v > p.threshold {
		return p.vital + p.op() + formatFloat(p.threshold), true
	}
	return "", false
}

func (p vitalThreshold) op() string {
	if p.below {
		return "<"
	}
	return ">"
}

func (p vitalThreshold) String() string {
	return p.vital + " " + p.op() + " " + formatFloat(p.threshold)
}

type anyOf []Predicate

// AnyOf holds when any of ps holds; ps are tried in order and the first
// match supplies the trigger.
func AnyOf(ps ...Predicate) Predicate {
	return anyOf(ps)
}

func (p anyOf) Match(n *Normalized) (string, bool) {
	for _, q := range p {
		if trigger, ok := q.Match(n); ok {
			return trigger, true
		}
	}
	return "", false
}

func (p anyOf) String() string {
	parts := make([]string, len(p))
	for i, q := range p {
		parts[i] = q.String()
	}
	return strings.Join(parts, " OR ")
}

type always struct{}

// Always holds unconditionally. An engine's last rule group must use it.
func Always() Predicate {
	return always{}
}

func (always) Match(*Normalized) (string, bool) { return RuleDefault, true }
func (always) String() string                   { return "always" }

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
