package intake

import "strings"

const (
	// AllergyNone excludes every other allergy tag.
	AllergyNone = "NONE"
	// AllergyOther takes the free-text qualifier as part of its label.
	AllergyOther = "OTHER"
)

// legacy form values still sent by older copies of the form
var noneAliases = map[string]struct{}{
	AllergyNone: {},
	"NINGUNA":   {},
}

// NormalizeAllergies returns the canonical allergy list of a camper.
// NONE anywhere in the selection yields exactly [NONE]; an empty selection
// also yields [NONE]. Otherwise tags keep their submitted order without
// duplicates, and OTHER is relabelled "OTHER: <other>" when other is given.
func NormalizeAllergies(selected []string, other string) []string {
	other = strings.TrimSpace(other)

	out := make([]string, 0, len(selected))
	seen := make(map[string]struct{}, len(selected))
	for _, tag := range selected {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := noneAliases[strings.ToUpper(tag)]; ok {
			return []string{AllergyNone}
		}
		if strings.EqualFold(tag, AllergyOther) {
			tag = AllergyOther
			if other != "" {
				tag = AllergyOther + ": " + other
			}
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}

	if len(out) == 0 {
		return []string{AllergyNone}
	}
	return out
}
