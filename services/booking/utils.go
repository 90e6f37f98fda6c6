package booking

import (
	"fmt"
	"strings"
	"time"

	"facilities/models"

	"github.com/google/uuid"
)

const (
	displayLayout    = "Monday, January 02, 2006 at 03:04 PM"
	todayLayout      = "Monday, January 2, 2006"
	defaultClockHour = 9
)

// newWorkOrderID returns ids like WO_3F9A12BC.
func newWorkOrderID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "WO_" + strings.ToUpper(hex[:8])
}

// fallbackDurationMinutes is used when neither the service nor the config sets one.
const fallbackDurationMinutes = 120

// serviceDuration is the service's estimate, else fallback, else two hours.
func serviceDuration(req *models.ServiceRequirement, fallback int) int {
	if req.EstimatedDurationMinutes > 0 {
		return req.EstimatedDurationMinutes
	}
	if fallback > 0 {
		return fallback
	}
	return fallbackDurationMinutes
}

// formatDuration renders minutes as "2h 30m".
func formatDuration(minutes int) string {
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// inLocation reads t's wall clock as a time in loc. Stored instants keep only
// the wall clock, so they are rebased before any comparison.
func inLocation(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
}

func todayLine(now time.Time) string {
	return fmt.Sprintf("Today is %s.", now.Format(todayLayout))
}

func instantPtr(t time.Time) *time.Time {
	return &t
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func urgencyFor(bc *models.BookingContext, req *models.ServiceRequirement) models.Urgency {
	if bc.Urgency != "" {
		return bc.Urgency
	}
	if req.DefaultUrgency != "" {
		return req.DefaultUrgency
	}
	return models.UrgencyMedium
}

// checkHorizon rejects instants not strictly after now and years outside
// [epoch, epoch+horizonYears]. An epoch of 0 means the current year.
func checkHorizon(instant, now time.Time, epochYear, horizonYears int) *BookingError {
	if !instant.After(now) {
		return NewBookingError(InputError, string(models.BookingInvalidInstant),
			fmt.Sprintf("%s has already passed. Please choose a future date and time. %s", instant.Format(displayLayout), todayLine(now)))
	}
	if epochYear <= 0 {
		epochYear = now.Year()
	}
	if horizonYears < 0 {
		horizonYears = 0
	}
	if instant.Year() < epochYear || instant.Year() > epochYear+horizonYears {
		years := fmt.Sprintf("%d", epochYear)
		if horizonYears > 0 {
			years = fmt.Sprintf("%d or %d", epochYear, epochYear+horizonYears)
			if horizonYears > 1 {
				years = fmt.Sprintf("%d to %d", epochYear, epochYear+horizonYears)
			}
		}
		return NewBookingError(InputError, string(models.BookingInvalidInstant),
			fmt.Sprintf("Please provide a date in %s. The year %d is not valid for booking. %s", years, instant.Year(), todayLine(now)))
	}
	return nil
}
