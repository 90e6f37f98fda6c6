package ai

import (
	"testing"

	"facilities/models"
)

func TestPatternDetector(t *testing.T) {
	d := NewPatternDetector()

	tests := []struct {
		name    string
		text    string
		confirm bool
		time    string
		conf    models.Confidence
	}{
		{name: "yes with pm hour", text: "Yes, 2 pm works", confirm: true, time: "14:00", conf: models.ConfidenceHigh},
		{name: "pm with minutes", text: "book it for 3:30 p.m.", confirm: true, time: "15:30", conf: models.ConfidenceHigh},
		{name: "noon stays noon", text: "12 pm is fine", confirm: true, time: "12:00", conf: models.ConfidenceHigh},
		{name: "day part", text: "Sure, in the morning", confirm: true, time: "morning", conf: models.ConfidenceHigh},
		{name: "24 hour clock", text: "ok 10:30", confirm: true, time: "10:30", conf: models.ConfidenceHigh},
		{name: "term only", text: "That works", confirm: true, conf: models.ConfidenceMedium},
		{name: "alternative acceptance", text: "alright, works for me", confirm: true, conf: models.ConfidenceMedium},
		{name: "time only", text: "10 am please", time: "10 am", conf: models.ConfidenceLow},
		{name: "nothing", text: "hmm, let me think", conf: models.ConfidenceLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Detect(tt.text)
			if got.IsConfirmation != tt.confirm {
				t.Errorf("IsConfirmation = %v, want %v", got.IsConfirmation, tt.confirm)
			}
			if got.ExtractedTime != tt.time {
				t.Errorf("ExtractedTime = %q, want %q", got.ExtractedTime, tt.time)
			}
			if got.Confidence != tt.conf {
				t.Errorf("Confidence = %q, want %q", got.Confidence, tt.conf)
			}
			if got.OriginalMessage != tt.text {
				t.Errorf("OriginalMessage = %q", got.OriginalMessage)
			}
		})
	}
}

func TestPatternDetectorCustomTerms(t *testing.T) {
	d := &PatternDetector{Terms: []string{"aywa"}}
	if !d.IsAffirmative("Aywa, tomorrow") {
		t.Error("custom term should confirm")
	}
	if d.IsAffirmative("yes") {
		t.Error("default lexicon should not apply when terms are set")
	}
}
