package acuity

import "strconv"

// Level is an ordinal triage acuity, 1 (most severe) through 5 (least severe).
type Level int

const (
	// LevelResuscitation needs immediate life-saving intervention.
	LevelResuscitation Level = 1

	// LevelEmergent is high risk and should be seen within minutes.
	LevelEmergent Level = 2

	// LevelUrgent is stable but needs several resources.
	LevelUrgent Level = 3

	// LevelLessUrgent needs one resource.
	LevelLessUrgent Level = 4

	// LevelNonUrgent can be handled by primary care.
	LevelNonUrgent Level = 5
)

var levelNames = [...]string{
	LevelResuscitation: "resuscitation",
	LevelEmergent:      "emergent",
	LevelUrgent:        "urgent",
	LevelLessUrgent:    "less_urgent",
	LevelNonUrgent:     "non_urgent",
}

// Valid reports whether l is one of the five defined levels.
func (l Level) Valid() bool {
	return l >= LevelResuscitation && l <= LevelNonUrgent
}

// Code is the wire form of the level: "1" through "5".
func (l Level) Code() string {
	return strconv.Itoa(int(l))
}

func (l Level) String() string {
	if !l.Valid() {
		return "level(" + strconv.Itoa(int(l)) + ")"
	}
	return levelNames[l]
}

// Outcome is the result of one evaluation. Level, Confidence and
// Explanation are fixed per rule group; Rule and Trigger record which group
// matched and which of its predicates fired.
type Outcome struct {
	Level       Level   `json:"level"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"explanation"`
	Rule        string  `json:"rule"`
	Trigger     string  `json:"trigger"`
}
