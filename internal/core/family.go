package core

// family.go links normalized categories to cross-term families.
//
// A family groups the same activity across terms: "research_fa24" and
// "research_sp25" are one Research family. The linkage is heuristic and
// runs in two stages: strip trailing term-qualifier tokens to get a
// candidate key, then match it against the families already on record.

import (
	"regexp"
	"strings"
)

// Family type values. The classifier only ever proposes course or
// other; research and personal are assigned manually.
const (
	FamilyTypeResearch = "research"
	FamilyTypeCourse   = "course"
	FamilyTypePersonal = "personal"
	FamilyTypeOther    = "other"
)

var (
	// termTokenRe matches one trailing term qualifier on a merge key: a
	// season name or abbreviation optionally followed by a 2- or
	// 4-digit year, or a bare 2- or 4-digit year.
	termTokenRe = regexp.MustCompile(`_((fall|winter|spring|summer|fa|wi|sp|su)(\d{2}|\d{4})?|\d{2}|\d{4})$`)
)

// FamilyProposal is the classifier's decision for one category.
type FamilyProposal struct {
	Key   string // family name to link or create
	Type  string // family_type for a new family
	IsNew bool   // true when no existing family matched
}

// FamilyCandidateKey strips trailing term-qualifier tokens from a merge
// key: "research_fa24" and "research_2024" both reduce to "research".
// A key that is nothing but qualifiers is returned unchanged.
func FamilyCandidateKey(mergeKey string) string {
	key := mergeKey
	for {
		stripped := termTokenRe.ReplaceAllString(key, "")
		if stripped == key || stripped == "" {
			return key
		}
		key = stripped
	}
}

// ClassifyFamily decides family linkage for one merge key against the
// families already on record.
//
// An exact match on the candidate key links to that family. Otherwise
// existing family names that are strict prefixes of the candidate at an
// underscore boundary are considered, and the longest one wins — the
// most specific family takes the category. With no match at all the
// candidate key becomes a new-family proposal, typed course when the
// merge key looks like a course code, other otherwise.
//
// The longest-prefix rule is a compatibility contract: categories
// already linked under it would migrate if the ranking changed.
func ClassifyFamily(mergeKey string, existing []string) FamilyProposal {
	candidate := FamilyCandidateKey(mergeKey)

	best := ""
	for _, name := range existing {
		if name == candidate {
			return FamilyProposal{Key: name}
		}
		if len(name) < len(candidate) &&
			strings.HasPrefix(candidate, name+"_") &&
			len(name) > len(best) {
			best = name
		}
	}
	if best != "" {
		return FamilyProposal{Key: best}
	}

	ftype := FamilyTypeOther
	if courseKeyRe.MatchString(mergeKey) {
		ftype = FamilyTypeCourse
	}
	return FamilyProposal{Key: candidate, Type: ftype, IsNew: true}
}
