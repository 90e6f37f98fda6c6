package models

import "time"

const (
	ParseSuccess            = "success"
	ParseNeedsClarification = "needs_clarification"
)

// ParsedDateTime is the normalizer's reading of free-form date/time text.
type ParsedDateTime struct {
	Status         string     `json:"status"`
	OriginalInput  string     `json:"originalInput"`
	Zone           string     `json:"zone,omitempty"`
	Date           string     `json:"date,omitempty"` // YYYY-MM-DD
	Time           string     `json:"time,omitempty"` // HH:MM
	Instant        *time.Time `json:"instant,omitempty"`
	DayOfWeek      string     `json:"dayOfWeek,omitempty"`
	RelativeDate   string     `json:"relativeDate,omitempty"`
	Adjusted       bool       `json:"adjusted"`
	AdjustmentNote string     `json:"adjustmentNote,omitempty"`
	NonWorkingDay  bool       `json:"nonWorkingDay"`
	SuggestedTimes []string   `json:"suggestedTimes,omitempty"`
	Message        string     `json:"message,omitempty"`
	Today          string     `json:"today"`
}

// TimeSuggestion lists bookable start times for one day.
type TimeSuggestion struct {
	Date           string   `json:"date"`
	Zone           string   `json:"zone,omitempty"`
	DayOfWeek      string   `json:"dayOfWeek"`
	MorningSlots   []string `json:"morningSlots,omitempty"`
	AfternoonSlots []string `json:"afternoonSlots,omitempty"`
	SuggestedTimes []string `json:"suggestedTimes"`
	NonWorkingDay  bool     `json:"nonWorkingDay"`
	IsToday        bool     `json:"isToday"`
	Note           string   `json:"note"`
}
