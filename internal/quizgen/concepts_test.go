package quizgen

import (
	"reflect"
	"testing"
)

func TestParseKeyConcepts(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []KeyConcept
	}{
		{
			name:    "em dash bullets",
			content: "Overview:\nCells.\n\nKey Concepts:\n- Nucleus — contains DNA.\n- Mitochondria — produces ATP.\n\nDetailed Explanation:\nMore text.",
			want: []KeyConcept{
				{Term: "Nucleus", Description: "contains DNA"},
				{Term: "Mitochondria", Description: "produces ATP"},
			},
		},
		{
			name:    "numbered colon and hyphen",
			content: "key concepts:\n1. Osmosis: movement of water\n2) Cell-membrane - selective barrier",
			want: []KeyConcept{
				{Term: "Osmosis", Description: "movement of water"},
				{Term: "Cell-membrane", Description: "selective barrier"},
			},
		},
		{
			name:    "no delimiter uses placeholder description",
			content: "Key Concepts:\n• Photosynthesis",
			want:    []KeyConcept{{Term: "Photosynthesis", Description: DefaultConceptDescription}},
		},
		{
			name:    "stops at next header",
			content: "Key Concepts:\n- Enzyme — speeds reactions\nSummary:\n- Not a concept — ignored",
			want:    []KeyConcept{{Term: "Enzyme", Description: "speeds reactions"}},
		},
		{
			name:    "term punctuation removed",
			content: "Key Concepts:\n- Mendel's (first) law — segregation",
			want:    []KeyConcept{{Term: "Mendels first law", Description: "segregation"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseKeyConcepts(tt.content)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseKeyConcepts = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseKeyConcepts_Absent(t *testing.T) {
	if got := ParseKeyConcepts("Overview:\nJust prose about cells."); got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestLowInformation(t *testing.T) {
	scaffold := ParseKeyConcepts("Key Concepts:\n- Cell Structure — core idea and definitions.\n- Related subtopics and vocabulary that students must learn.")
	if len(scaffold) != 2 {
		t.Fatalf("expected 2 entries, got %+v", scaffold)
	}
	if !LowInformation(scaffold) {
		t.Error("expected scaffolding to be low information")
	}

	informative := []KeyConcept{{Term: "Nucleus", Description: "contains DNA"}}
	if LowInformation(informative) {
		t.Error("expected real concepts to be informative")
	}
	if LowInformation(nil) {
		t.Error("expected empty set to be informative")
	}
}
