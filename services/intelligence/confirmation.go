// File: services/intelligence/confirmation.go
package ai

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"facilities/models"
)

// ConfirmationDetector classifies a user turn as accepting an offered slot.
// It only classifies; booking is authorised elsewhere.
type ConfirmationDetector interface {
	Detect(text string) models.ConfirmationResult
}

// DefaultAffirmatives is the lexicon PatternDetector uses when none is given.
var DefaultAffirmatives = []string{
	"yes", "yeah", "yep", "sure", "ok", "okay", "confirm", "book",
	"schedule", "that works", "sounds good", "perfect", "great",
	"done", "let's do it", "go ahead", "that's fine", "that's good",
	"fine", "alright", "works for me",
}

// Tried in order, first match wins.
var spokenTimePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(\d{1,2}):?(\d{2})?\s*(am|pm|p\.?m\.?|a\.?m\.?)\b`),
	regexp.MustCompile(`\b(\d{1,2})\s*(am|pm|p\.?m\.?|a\.?m\.?)\b`),
	regexp.MustCompile(`\b(morning|afternoon|evening)\b`),
	regexp.MustCompile(`\b(\d{1,2}):\d{2}\b`),
}

// afternoonPattern rewrites "3 pm" or "3:30 pm" to 24-hour form.
var afternoonPattern = regexp.MustCompile(`(?:^|[^\d:])(\d{1,2})(?::(\d{2}))?\s*(pm|p\.?m\.?)\b`)

// PatternDetector matches a fixed affirmative lexicon and a small set of time shapes.
type PatternDetector struct {
	Terms []string
}

func NewPatternDetector() *PatternDetector {
	return &PatternDetector{Terms: DefaultAffirmatives}
}

// IsAffirmative reports whether text contains any lexicon term.
func (d *PatternDetector) IsAffirmative(text string) bool {
	lower := strings.ToLower(text)
	terms := d.Terms
	if len(terms) == 0 {
		terms = DefaultAffirmatives
	}
	for _, term := range terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func (d *PatternDetector) Detect(text string) models.ConfirmationResult {
	lower := strings.ToLower(strings.TrimSpace(text))
	result := models.ConfirmationResult{
		IsConfirmation:  d.IsAffirmative(lower),
		OriginalMessage: text,
	}

	for _, p := range spokenTimePatterns {
		if m := p.FindString(lower); m != "" {
			result.ExtractedTime = m
			break
		}
	}
	if m := afternoonPattern.FindStringSubmatch(lower); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour >= 1 && hour <= 12 && minute < 60 {
			if hour != 12 {
				hour += 12
			}
			result.ExtractedTime = fmt.Sprintf("%02d:%02d", hour, minute)
		}
	}

	switch {
	case result.IsConfirmation && result.ExtractedTime != "":
		result.Confidence = models.ConfidenceHigh
	case result.IsConfirmation:
		result.Confidence = models.ConfidenceMedium
	default:
		result.Confidence = models.ConfidenceLow
	}
	return result
}
