package availability

import (
	"strings"
	"time"
	"unicode"

	"facilities/models"
)

// words lower-cases s and splits it on anything that is not a letter or digit.
func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// containsRun reports whether needle occurs as a contiguous run inside haystack.
func containsRun(haystack, needle []string) bool {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return false
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// TermsMatch is case-insensitive containment in either direction, on whole
// words: "AC Maintenance" and "maintenance" match, "HVAC" and "ac" do not.
func TermsMatch(a, b string) bool {
	wa, wb := words(a), words(b)
	return containsRun(wa, wb) || containsRun(wb, wa)
}

// SkillsMatch requires every required skill to match at least one offered skill.
func SkillsMatch(required, offered []string) bool {
	for _, need := range required {
		found := false
		for _, have := range offered {
			if TermsMatch(need, have) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Covers reports whether the slot window holds [start, start+duration) without stitching.
func Covers(slot models.AvailabilitySlot, start time.Time, duration time.Duration) bool {
	return !slot.WindowStart.After(start) && !slot.WindowEnd.Before(start.Add(duration))
}

// Eligible applies the full exact-match rule to one slot.
func Eligible(slot models.AvailabilitySlot, req models.ServiceRequirement, zone string, start time.Time, duration time.Duration) bool {
	return SkillsMatch(req.RequiredSkills, slot.Skillset) &&
		TermsMatch(zone, slot.Zone) &&
		Covers(slot, start, duration)
}
