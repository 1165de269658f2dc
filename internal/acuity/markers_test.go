package acuity

import (
	"slices"
	"strings"
	"testing"
)

func TestNewMarkerSet_FoldsAndDedups(t *testing.T) {
	t.Parallel()

	m := NewMarkerSet("chest_pain", "Đau Ngực", "đau ngực", "  ", "", "TỨC NGỰC")
	if !slices.Equal(m.Phrases, []string{"đau ngực", "tức ngực"}) {
		t.Errorf("Phrases = %q", m.Phrases)
	}
}

func TestMarkerSet_Find(t *testing.T) {
	t.Parallel()

	m := NewMarkerSet("mild", "sổ mũi", "ho")

	if p, ok := m.Find("ho và sổ mũi"); !ok || p != "sổ mũi" {
		t.Errorf("Find = %q, %v; want first phrase in set order", p, ok)
	}
	if _, ok := m.Find("mệt"); ok {
		t.Error("Find matched unrelated text")
	}
	if _, ok := m.Find(""); ok {
		t.Error("Find matched empty text")
	}
}

func TestVocabulary_Extend(t *testing.T) {
	t.Parallel()

	base := DefaultVocabulary()
	ext, err := base.Extend(map[string][]string{
		MarkersChestPain: {"Tức ngực", "chest pain", "đau ngực"},
		MarkersCough:     {"cough"},
	})
	if err != nil {
		t.Fatalf("Extend: %v", err)
	}

	if got := ext[MarkersChestPain].Phrases; !slices.Equal(got, []string{"đau ngực", "tức ngực", "chest pain"}) {
		t.Errorf("chest_pain = %q", got)
	}
	if got := base[MarkersChestPain].Phrases; !slices.Equal(got, []string{"đau ngực"}) {
		t.Errorf("base vocabulary modified: %q", got)
	}

	e, err := New(ext)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := e.Evaluate(Input{ChiefComplaintText: "Chest pain since morning"}); got.Level != LevelEmergent {
		t.Errorf("extended phrase: level = %d, want %d", got.Level, LevelEmergent)
	}
	if got := Default().Evaluate(Input{ChiefComplaintText: "Chest pain since morning"}); got.Level != LevelLessUrgent {
		t.Errorf("default engine picked up extension: level = %d", got.Level)
	}
}

func TestVocabulary_ExtendErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		extra   map[string][]string
		wantErr string
	}{
		{"unknown set", map[string][]string{"fracture": {"gãy xương"}}, `unknown marker set "fracture"`},
		{"empty phrase", map[string][]string{MarkersCough: {"cough", ""}}, "phrase 1 is empty"},
		{"blank phrase", map[string][]string{MarkersCough: {"  "}}, "phrase 0 is empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := DefaultVocabulary().Extend(tt.extra)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestVocabulary_Names(t *testing.T) {
	t.Parallel()

	names := DefaultVocabulary().Names()
	if len(names) != 8 {
		t.Fatalf("len(Names()) = %d, want 8", len(names))
	}
	if !slices.IsSorted(names) {
		t.Errorf("Names() not sorted: %v", names)
	}
}
