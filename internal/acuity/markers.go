package acuity

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Marker set names used by the default rules.
const (
	MarkersCardiacArrest       = "cardiac_arrest"
	MarkersRespiratoryDistress = "respiratory_distress"
	MarkersChestPain           = "chest_pain"
	MarkersParalysis           = "paralysis"
	MarkersSevereAbdominalPain = "severe_abdominal_pain"
	MarkersCough               = "cough"
	MarkersRunnyNose           = "runny_nose"
	MarkersSoreThroat          = "sore_throat"
)

// MarkerSet is a named group of phrases whose presence in complaint text
// triggers a predicate. Phrases are stored folded.
type MarkerSet struct {
	Name    string
	Phrases []string
}

// NewMarkerSet folds phrases the same way complaint text is folded.
// Phrases that fold to the empty string are dropped since they would match
// every complaint. Duplicates are dropped.
func NewMarkerSet(name string, phrases ...string) MarkerSet {
	m := MarkerSet{Name: name}
	for _, p := range phrases {
		m = m.with(p)
	}
	return m
}

func (m MarkerSet) with(phrase string) MarkerSet {
	f := foldText(phrase)
	if f == "" || slices.Contains(m.Phrases, f) {
		return m
	}
	m.Phrases = append(slices.Clip(m.Phrases), f)
	return m
}

// Find returns the first phrase of m contained in folded text.
func (m MarkerSet) Find(text string) (string, bool) {
	for _, p := range m.Phrases {
		if strings.Contains(text, p) {
			return p, true
		}
	}
	return "", false
}

// Vocabulary maps marker set names to their sets.
type Vocabulary map[string]MarkerSet

// DefaultVocabulary returns the built-in marker sets.
func DefaultVocabulary() Vocabulary {
	sets := []MarkerSet{
		NewMarkerSet(MarkersCardiacArrest, "ngừng tim"),
		NewMarkerSet(MarkersRespiratoryDistress, "khó thở"),
		NewMarkerSet(MarkersChestPain, "đau ngực"),
		NewMarkerSet(MarkersParalysis, "liệt"),
		NewMarkerSet(MarkersSevereAbdominalPain, "đau bụng dữ dội"),
		NewMarkerSet(MarkersCough, "ho"),
		NewMarkerSet(MarkersRunnyNose, "sổ mũi"),
		NewMarkerSet(MarkersSoreThroat, "đau họng"),
	}
	v := make(Vocabulary, len(sets))
	for _, s := range sets {
		v[s.Name] = s
	}
	return v
}

// Names returns the set names in sorted order.
func (v Vocabulary) Names() []string {
	return slices.Sorted(maps.Keys(v))
}

// Extend returns a copy of v with extra phrases appended to existing sets.
// Extending an unknown set, or adding a phrase that is blank after
// folding, is an error. v is not modified.
func (v Vocabulary) Extend(extra map[string][]string) (Vocabulary, error) {
	out := maps.Clone(v)
	for _, name := range slices.Sorted(maps.Keys(extra)) {
		set, ok := out[name]
		if !ok {
			return nil, fmt.Errorf("unknown marker set %q (known: %s)", name, strings.Join(v.Names(), ", "))
		}
		for i, p := range extra[name] {
			if foldText(p) == "" {
				return nil, fmt.Errorf("marker set %q: phrase %d is empty", name, i)
			}
			set = set.with(p)
		}
		out[name] = set
	}
	return out, nil
}

func (v Vocabulary) mustSet(name string) MarkerSet {
	s, ok := v[name]
	if !ok {
		panic(fmt.Sprintf("acuity: vocabulary has no marker set %q", name))
	}
	return s
}
