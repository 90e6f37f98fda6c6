package datetime

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"facilities/models"
)

// DefaultSuggestedTimes is offered whenever the input carries no usable time.
var DefaultSuggestedTimes = []string{"09:00", "10:00", "11:00", "14:00", "15:00", "16:00"}

var (
	isoDatePattern     = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})`)
	slashedDatePattern = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	monthDayPattern    = regexp.MustCompile(`\b(` + monthAlternation + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b(?:,?\s*(\d{4}))?`)
	dayMonthPattern    = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(` + monthAlternation + `)\b(?:,?\s*(\d{4}))?`)

	clockAmPmPattern = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\s*(a\.?m\.?|p\.?m\.?)\b`)
	hourAmPmPattern  = regexp.MustCompile(`\b(\d{1,2})\s*(a\.?m\.?|p\.?m\.?)\b`)
	clock24Pattern   = regexp.MustCompile(`(?:^|[^\d:])(\d{1,2}):(\d{2})\b`)
)

const monthAlternation = `january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec`

var monthNumbers = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may": time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sept": time.September, "sep": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// Normalizer turns free-form date/time text into canonical future dates.
// All parsing is relative to Now; a zero EpochYear means the year of Now.
type Normalizer struct {
	Now           func() time.Time
	Location      *time.Location
	EpochYear     int
	NonWorkingDay time.Weekday
}

// NewNormalizer returns a Normalizer on the wall clock.
func NewNormalizer(loc *time.Location, nonWorkingDay time.Weekday, epochYear int) *Normalizer {
	return &Normalizer{Now: time.Now, Location: loc, EpochYear: epochYear, NonWorkingDay: nonWorkingDay}
}

func (n *Normalizer) now() time.Time {
	loc := n.Location
	if loc == nil {
		loc = time.UTC
	}
	if n.Now == nil {
		return time.Now().In(loc)
	}
	return n.Now().In(loc)
}

func (n *Normalizer) referenceYear(now time.Time) int {
	if n.EpochYear > 0 {
		return n.EpochYear
	}
	return now.Year()
}

// dateResult is the outcome of one date pattern.
type dateResult struct {
	date     time.Time
	relative string
	adjusted string
}

// Parse reads text relative to now. It never fails: unreadable dates come back
// as needs_clarification with an example, missing times with a suggestion ladder.
func (n *Normalizer) Parse(text, referenceZone string) models.ParsedDateTime {
	now := n.now()
	input := strings.ToLower(strings.TrimSpace(text))
	result := models.ParsedDateTime{
		Status:        models.ParseSuccess,
		OriginalInput: text,
		Zone:          referenceZone,
		Today:         now.Format(models.DateLayout),
	}

	parsed, ok := n.parseDate(input, now)
	hour, minute, hasTime := ExtractTime(input)
	if hasTime {
		result.Time = fmt.Sprintf("%02d:%02d", hour, minute)
	} else {
		result.SuggestedTimes = append([]string(nil), DefaultSuggestedTimes...)
	}

	if !ok {
		tomorrow := now.AddDate(0, 0, 1)
		result.Status = models.ParseNeedsClarification
		result.Message = fmt.Sprintf(
			"I couldn't find a date in %q. Could you say it like %q or \"%s %d\"? Today is %s.",
			text, tomorrow.Format(models.DateLayout), tomorrow.Month(), tomorrow.Day(), now.Format("Monday, January 2, 2006"))
		return result
	}

	result.Date = parsed.date.Format(models.DateLayout)
	result.DayOfWeek = parsed.date.Weekday().String()
	result.RelativeDate = parsed.relative
	if parsed.adjusted != "" {
		result.Adjusted = true
		result.AdjustmentNote = parsed.adjusted
	}
	if parsed.date.Weekday() == n.NonWorkingDay {
		result.NonWorkingDay = true
		result.Message = fmt.Sprintf("%s is the regional weekend: service runs limited hours (9 AM - 12 PM).", result.DayOfWeek)
	}
	if hasTime {
		at := time.Date(parsed.date.Year(), parsed.date.Month(), parsed.date.Day(), hour, minute, 0, 0, now.Location())
		result.Instant = &at
	}
	return result
}

func (n *Normalizer) parseDate(input string, now time.Time) (dateResult, bool) {
	today := truncateDay(now)
	refYear := n.referenceYear(now)

	if m := isoDatePattern.FindStringSubmatch(input); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		if date, ok := makeDate(y, time.Month(mo), d, now.Location()); ok {
			return rollForward(date, today, refYear), true
		}
	}

	if m := slashedDatePattern.FindStringSubmatch(input); m != nil {
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		y, _ := strconv.Atoi(m[3])
		// MM/DD/YYYY first, DD/MM/YYYY when that is not a real date.
		if date, ok := makeDate(y, time.Month(a), b, now.Location()); ok {
			return rollForward(date, today, refYear), true
		}
		if date, ok := makeDate(y, time.Month(b), a, now.Location()); ok {
			return rollForward(date, today, refYear), true
		}
	}

	if month, day, year, ok := matchMonthName(input); ok {
		if year == 0 {
			// Feb 29 may need up to four years to land.
			for y := refYear; y <= refYear+4; y++ {
				date, ok := makeDate(y, month, day, now.Location())
				if !ok || date.Before(today) {
					continue
				}
				if y == refYear {
					return dateResult{date: date}, true
				}
				return dateResult{date: date, adjusted: fmt.Sprintf("Date moved to %d as the %d date has passed", y, refYear)}, true
			}
		} else if date, ok := makeDate(year, month, day, now.Location()); ok {
			return rollForward(date, today, refYear), true
		}
	}

	switch {
	case strings.Contains(input, "tomorrow"):
		return dateResult{date: today.AddDate(0, 0, 1), relative: "tomorrow"}, true
	case strings.Contains(input, "today"):
		return dateResult{date: today, relative: "today"}, true
	case strings.Contains(input, "next week"):
		ahead := (int(time.Monday) - int(today.Weekday()) + 7) % 7
		if ahead == 0 {
			ahead = 7
		}
		return dateResult{date: today.AddDate(0, 0, ahead), relative: "next week (Monday)"}, true
	case strings.Contains(input, "next month"):
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location()).AddDate(0, 1, 0)
		return dateResult{date: first, relative: "next month"}, true
	}
	return dateResult{}, false
}

func matchMonthName(input string) (time.Month, int, int, bool) {
	var monthName, dayStr, yearStr string
	if m := monthDayPattern.FindStringSubmatch(input); m != nil {
		monthName, dayStr, yearStr = m[1], m[2], m[3]
	} else if m := dayMonthPattern.FindStringSubmatch(input); m != nil {
		dayStr, monthName, yearStr = m[1], m[2], m[3]
	} else {
		return 0, 0, 0, false
	}
	month, ok := monthNumbers[monthName]
	if !ok {
		return 0, 0, 0, false
	}
	day, _ := strconv.Atoi(dayStr)
	year := 0
	if yearStr != "" {
		year, _ = strconv.Atoi(yearStr)
	}
	return month, day, year, true
}

// rollForward moves a past literal date into the future and says so.
// A date earlier in the reference year moves exactly one year; an older
// year is first moved into the reference year.
func rollForward(date, today time.Time, refYear int) dateResult {
	if !date.Before(today) {
		return dateResult{date: date}
	}
	literalYear := date.Year()
	if literalYear < refYear {
		if moved, ok := makeDate(refYear, date.Month(), date.Day(), date.Location()); ok && !moved.Before(today) {
			return dateResult{date: moved, adjusted: fmt.Sprintf("Year updated from %d to %d", literalYear, refYear)}
		}
		literalYear = refYear
	}
	next, ok := makeDate(literalYear+1, date.Month(), date.Day(), date.Location())
	if !ok || next.Before(today) {
		// Feb 29 into a non-leap year, or a reference year far behind now.
		next = today.AddDate(0, 0, 1)
	}
	return dateResult{date: next, adjusted: fmt.Sprintf("Date moved to %d as the requested date has passed", next.Year())}
}

// ExtractTime finds a clock time in lower-cased text: "2:30 pm", "2 pm", then 24-hour "14:30".
func ExtractTime(input string) (hour, minute int, ok bool) {
	if m := clockAmPmPattern.FindStringSubmatch(input); m != nil {
		h, _ := strconv.Atoi(m[1])
		mi, _ := strconv.Atoi(m[2])
		if h, ok := to24Hour(h, m[3]); ok && mi < 60 {
			return h, mi, true
		}
	}
	if m := hourAmPmPattern.FindStringSubmatch(input); m != nil {
		h, _ := strconv.Atoi(m[1])
		if h, ok := to24Hour(h, m[2]); ok {
			return h, 0, true
		}
	}
	if m := clock24Pattern.FindStringSubmatch(input); m != nil {
		h, _ := strconv.Atoi(m[1])
		mi, _ := strconv.Atoi(m[2])
		if h < 24 && mi < 60 {
			return h, mi, true
		}
	}
	return 0, 0, false
}

func to24Hour(hour int, meridiem string) (int, bool) {
	if hour < 1 || hour > 12 {
		return 0, false
	}
	pm := strings.HasPrefix(meridiem, "p")
	switch {
	case pm && hour != 12:
		hour += 12
	case !pm && hour == 12:
		hour = 0
	}
	return hour, true
}

func makeDate(year int, month time.Month, day int, loc *time.Location) (time.Time, bool) {
	if month < time.January || month > time.December || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ErrPastDate is returned when suggestions are asked for a day that has gone.
var ErrPastDate = errors.New("date is in the past")

// SuggestAppointmentTimes lists half-hour start times for date (YYYY-MM-DD).
// The non-working day gets a short morning ladder rather than nothing.
func (n *Normalizer) SuggestAppointmentTimes(date, zone string) (models.TimeSuggestion, error) {
	now := n.now()
	day, err := time.ParseInLocation(models.DateLayout, strings.TrimSpace(date), now.Location())
	if err != nil {
		return models.TimeSuggestion{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", date, err)
	}
	today := truncateDay(now)
	if day.Before(today) {
		return models.TimeSuggestion{}, fmt.Errorf("%s is before today (%s): %w", date, today.Format(models.DateLayout), ErrPastDate)
	}

	s := models.TimeSuggestion{
		Date:      day.Format(models.DateLayout),
		Zone:      zone,
		DayOfWeek: day.Weekday().String(),
		IsToday:   day.Equal(today),
	}
	if day.Weekday() == n.NonWorkingDay {
		s.NonWorkingDay = true
		s.SuggestedTimes = []string{"09:00", "10:00", "11:00"}
		s.MorningSlots = s.SuggestedTimes
		s.Note = fmt.Sprintf("%s service available with limited hours (9 AM - 12 PM)", s.DayOfWeek)
		return s, nil
	}

	s.MorningSlots = halfHourLadder(day, 9, 12, now)
	s.AfternoonSlots = halfHourLadder(day, 14, 17, now)
	s.SuggestedTimes = append(append([]string{}, s.MorningSlots...), s.AfternoonSlots...)
	switch {
	case len(s.SuggestedTimes) == 0:
		s.Note = "No more appointment times today. Please pick another day."
	case s.IsToday:
		s.Note = "Remaining times for today"
	default:
		s.Note = "Morning and afternoon times available"
	}
	return s, nil
}

// halfHourLadder yields HH:MM from fromHour up to (not including) toHour,
// dropping times not after now.
func halfHourLadder(day time.Time, fromHour, toHour int, now time.Time) []string {
	var out []string
	for h := fromHour; h < toHour; h++ {
		for _, m := range []int{0, 30} {
			at := time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, day.Location())
			if !at.After(now) {
				continue
			}
			out = append(out, at.Format(models.TimeLayout))
		}
	}
	return out
}
