package core

import "testing"

// ----------------------------------------------------------------------------
// FamilyCandidateKey Tests
// ----------------------------------------------------------------------------

func TestFamilyCandidateKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "no qualifier", input: "research", want: "research"},
		{name: "season abbreviation with year", input: "research_fa24", want: "research"},
		{name: "full season name", input: "research_fall", want: "research"},
		{name: "full season with 4-digit year", input: "research_fall2024", want: "research"},
		{name: "bare 4-digit year", input: "research_2024", want: "research"},
		{name: "bare 2-digit year", input: "research_24", want: "research"},
		{name: "stacked qualifiers", input: "research_fall_2024", want: "research"},
		{name: "qualifier mid-key untouched", input: "fall_cleaning", want: "fall_cleaning"},
		{name: "key that is only a qualifier", input: "fa24", want: "fa24"},
		{name: "multi-word base", input: "machine_learning_sp25", want: "machine_learning"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FamilyCandidateKey(tt.input); got != tt.want {
				t.Errorf("FamilyCandidateKey(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ClassifyFamily Tests
// ----------------------------------------------------------------------------

func TestClassifyFamily(t *testing.T) {
	existing := []string{"research", "machine_learning", "gym"}

	tests := []struct {
		name      string
		mergeKey  string
		wantKey   string
		wantIsNew bool
		wantType  string
	}{
		{
			name:      "exact match after qualifier strip",
			mergeKey:  "research_fa24",
			wantKey:   "research",
			wantIsNew: false,
		},
		{
			name:      "exact match unqualified",
			mergeKey:  "gym",
			wantKey:   "gym",
			wantIsNew: false,
		},
		{
			name:      "prefix match at underscore boundary",
			mergeKey:  "research_reading",
			wantKey:   "research",
			wantIsNew: false,
		},
		{
			name:      "no partial-word prefix match",
			mergeKey:  "researcher",
			wantKey:   "researcher",
			wantIsNew: true,
			wantType:  FamilyTypeOther,
		},
		{
			name:      "unmatched key proposes new family",
			mergeKey:  "pottery",
			wantKey:   "pottery",
			wantIsNew: true,
			wantType:  FamilyTypeOther,
		},
		{
			name:      "course code typed course",
			mergeKey:  "cogs_118c",
			wantKey:   "cogs_118c",
			wantIsNew: true,
			wantType:  FamilyTypeCourse,
		},
		{
			name:      "course code without separator",
			mergeKey:  "math20b",
			wantKey:   "math20b",
			wantIsNew: true,
			wantType:  FamilyTypeCourse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyFamily(tt.mergeKey, existing)
			if got.Key != tt.wantKey {
				t.Errorf("Key = %q, want %q", got.Key, tt.wantKey)
			}
			if got.IsNew != tt.wantIsNew {
				t.Errorf("IsNew = %v, want %v", got.IsNew, tt.wantIsNew)
			}
			if tt.wantIsNew && got.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", got.Type, tt.wantType)
			}
		})
	}
}

// TestClassifyFamilyLongestPrefixWins pins the tie-break rule: when
// more than one existing family is a prefix of the candidate key, the
// longest (most specific) family takes the category. Changing this
// ranking silently re-homes previously imported categories.
func TestClassifyFamilyLongestPrefixWins(t *testing.T) {
	existing := []string{"ml", "ml_research", "ml_research_vision"}

	got := ClassifyFamily("ml_research_vision_project_fa24", existing)
	if got.Key != "ml_research_vision" {
		t.Fatalf("Key = %q, want %q (longest prefix)", got.Key, "ml_research_vision")
	}
	if got.IsNew {
		t.Fatal("IsNew = true, want false")
	}

	// Order of the existing list must not matter.
	reversed := []string{"ml_research_vision", "ml_research", "ml"}
	got = ClassifyFamily("ml_research_vision_project_fa24", reversed)
	if got.Key != "ml_research_vision" {
		t.Fatalf("Key = %q with reversed list, want %q", got.Key, "ml_research_vision")
	}
}
