package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04"
	DateTimeLayout = "2006-01-02T15:04"
)

// Instant is a point in time, or a whole day when DateOnly is set.
// It serialises as "YYYY-MM-DD" or "YYYY-MM-DDTHH:MM".
type Instant struct {
	At       time.Time
	DateOnly bool
}

// At returns a full instant.
func At(t time.Time) *Instant {
	return &Instant{At: t}
}

// OnDate returns a date-only instant at midnight of t's day.
func OnDate(t time.Time) *Instant {
	y, m, d := t.Date()
	return &Instant{At: time.Date(y, m, d, 0, 0, 0, 0, t.Location()), DateOnly: true}
}

func (i Instant) String() string {
	if i.DateOnly {
		return i.At.Format(DateLayout)
	}
	return i.At.Format(DateTimeLayout)
}

// Equal compares the canonical forms, so a date-only value never equals a timed one.
func (i *Instant) Equal(other *Instant) bool {
	if i == nil || other == nil {
		return i == nil && other == nil
	}
	return i.String() == other.String()
}

func (i Instant) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

func (i *Instant) UnmarshalText(b []byte) error {
	parsed, err := ParseInstant(string(b), time.UTC)
	if err != nil {
		return err
	}
	*i = *parsed
	return nil
}

var instantLayouts = []string{
	"2006-01-02T15:04:05",
	DateTimeLayout,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseInstant reads the canonical instant forms (plus RFC 3339) in loc.
func ParseInstant(s string, loc *time.Location) (*Instant, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty instant")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return At(t.In(loc)), nil
	}
	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return At(t), nil
		}
	}
	if t, err := time.ParseInLocation(DateLayout, s, loc); err == nil {
		return OnDate(t), nil
	}
	return nil, fmt.Errorf("unrecognised instant %q", s)
}

// CombineDateTime places the wall-clock time of clock on the calendar day of day.
func CombineDateTime(day, clock time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, day.Location())
}
