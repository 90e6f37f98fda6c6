package availability

import (
	"context"
	"fmt"
	"time"

	"facilities/models"

	"go.uber.org/zap"
)

// DefaultHourLadder is tried on each candidate day, in order.
var DefaultHourLadder = []int{9, 10, 11, 14, 15, 16, 17}

const (
	DefaultHorizonDays = 7
	DefaultMaxResults  = 6
)

// SlotSource supplies the raw availability windows.
type SlotSource interface {
	ListAvailabilitySlots(ctx context.Context) ([]models.AvailabilitySlot, error)
}

// AlternativeOptions bounds the forward search; zero values take the defaults.
type AlternativeOptions struct {
	HorizonDays int
	MaxResults  int
}

// Resolver answers who is qualified and free. It holds no state of its own and
// is safe for concurrent use as long as the SlotSource is.
type Resolver struct {
	Slots         SlotSource
	NonWorkingDay time.Weekday
	HourLadder    []int
	Now           func() time.Time
	Logger        *zap.Logger
}

func NewResolver(slots SlotSource, nonWorkingDay time.Weekday, logger *zap.Logger) *Resolver {
	return &Resolver{
		Slots:         slots,
		NonWorkingDay: nonWorkingDay,
		HourLadder:    DefaultHourLadder,
		Now:           time.Now,
		Logger:        logger,
	}
}

func (r *Resolver) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r *Resolver) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// FindExact returns every slot that serves req in zone for the whole of
// [at, at+duration), in source order. No match is an empty slice, not an error.
func (r *Resolver) FindExact(ctx context.Context, req models.ServiceRequirement, zone string, at time.Time, durationMinutes int) ([]models.AvailabilitySlot, error) {
	slots, err := r.Slots.ListAvailabilitySlots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list availability slots: %w", err)
	}
	matches := match(slots, req, zone, at, minutes(durationMinutes))
	r.logger().Debug("Exact availability check",
		zap.String("serviceID", req.ServiceID),
		zap.String("zone", zone),
		zap.Time("at", at),
		zap.Int("matches", len(matches)))
	return matches, nil
}

// FindAlternatives walks forward one day at a time from the day after from,
// skipping the non-working day, and records the first ladder hour that has a
// qualified technician. At most one alternative is kept per day.
func (r *Resolver) FindAlternatives(ctx context.Context, req models.ServiceRequirement, zone string, from time.Time, durationMinutes int, opts AlternativeOptions) ([]models.AlternativeSlot, error) {
	if opts.HorizonDays <= 0 {
		opts.HorizonDays = DefaultHorizonDays
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	ladder := r.HourLadder
	if len(ladder) == 0 {
		ladder = DefaultHourLadder
	}

	slots, err := r.Slots.ListAvailabilitySlots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list availability slots: %w", err)
	}

	now := r.now()
	duration := minutes(durationMinutes)
	y, m, d := from.Date()
	base := time.Date(y, m, d, 0, 0, 0, 0, from.Location())

	alternatives := []models.AlternativeSlot{}
	for offset := 1; offset <= opts.HorizonDays && len(alternatives) < opts.MaxResults; offset++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		day := base.AddDate(0, 0, offset)
		if day.Weekday() == r.NonWorkingDay {
			continue
		}
		for _, hour := range ladder {
			candidate := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location())
			if !candidate.After(now) {
				continue
			}
			matches := match(slots, req, zone, candidate, duration)
			if len(matches) == 0 {
				continue
			}
			alternatives = append(alternatives, models.AlternativeSlot{
				Date:           candidate.Format(models.DateLayout),
				Time:           candidate.Format(models.TimeLayout),
				DateDisplay:    candidate.Format("Monday, January 02"),
				Instant:        candidate,
				TechnicianID:   matches[0].TechnicianID,
				TechnicianName: matches[0].TechnicianName,
				AvailableCount: len(matches),
			})
			break
		}
	}

	r.logger().Info("Alternative availability search",
		zap.String("serviceID", req.ServiceID),
		zap.String("zone", zone),
		zap.Time("from", from),
		zap.Int("found", len(alternatives)))
	return alternatives, nil
}

func match(slots []models.AvailabilitySlot, req models.ServiceRequirement, zone string, at time.Time, duration time.Duration) []models.AvailabilitySlot {
	out := []models.AvailabilitySlot{}
	for _, s := range slots {
		if Eligible(s, req, zone, at, duration) {
			out = append(out, s)
		}
	}
	return out
}

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}
