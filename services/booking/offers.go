package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	referenceRepo "facilities/database/repository/reference"
	"facilities/models"
	"facilities/services/availability"
	ai "facilities/services/intelligence"

	"go.uber.org/zap"
)

const maxOffers = 5

// ServiceCatalog resolves service types for availability checks.
type ServiceCatalog interface {
	GetServiceRequirement(ctx context.Context, idOrName string) (*models.ServiceRequirement, error)
	ListServices(ctx context.Context) ([]models.ServiceRequirement, error)
}

// AvailabilityRequest is one "can someone come at ..." question from the agent.
type AvailabilityRequest struct {
	SessionID          string `json:"sessionId"`
	CustomerID         string `json:"customerId"`
	PropertyID         string `json:"propertyId"`
	ServiceType        string `json:"serviceType" binding:"required"`
	ProblemDescription string `json:"problemDescription"`
	Zone               string `json:"zone" binding:"required"`
	Date               string `json:"date" binding:"required"` // YYYY-MM-DD
	Time               string `json:"time" binding:"required"` // HH:MM
	Urgency            string `json:"urgency"`
}

// AvailabilityService answers availability checks and remembers what was
// offered in the session's booking context.
type AvailabilityService struct {
	Contexts      ai.ContextStore
	Resolver      AvailabilityResolver
	Catalog       ServiceCatalog
	Logger        *zap.Logger
	Now           func() time.Time
	Location      *time.Location
	NonWorkingDay time.Weekday
	EpochYear     int
	HorizonYears  int
	// DefaultDurationMinutes applies to services without an estimate.
	DefaultDurationMinutes int
	Alternatives           availability.AlternativeOptions
}

func (s *AvailabilityService) now() time.Time {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	return now.In(s.location())
}

func (s *AvailabilityService) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

func (s *AvailabilityService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *AvailabilityService) invalid(now time.Time, msg string) models.AvailabilityResult {
	return models.AvailabilityResult{
		Status:  models.AvailabilityInvalid,
		Kind:    string(InputError),
		Message: msg,
		Today:   now.Format(models.DateLayout),
	}
}

// CheckAvailability looks for technicians free at exactly the requested
// instant and, only when there are none, for verified alternatives on the
// following days. Finding nothing is still a success.
func (s *AvailabilityService) CheckAvailability(ctx context.Context, in AvailabilityRequest) models.AvailabilityResult {
	now := s.now()
	loc := s.location()
	log := s.logger().With(zap.String("sessionID", in.SessionID), zap.String("serviceType", in.ServiceType), zap.String("zone", in.Zone))

	day, err := time.ParseInLocation(models.DateLayout, strings.TrimSpace(in.Date), loc)
	if err != nil {
		return s.invalid(now, fmt.Sprintf("Invalid date format '%s'. Please use YYYY-MM-DD format. Today is %s.", in.Date, now.Format(models.DateLayout)))
	}
	today := truncateDay(now)
	if day.Before(today) {
		daysAgo := int(today.Sub(day).Hours() / 24)
		return s.invalid(now, fmt.Sprintf("Cannot schedule appointments in the past. The date %s was %d days ago. Please choose a date on or after %s. %s",
			in.Date, daysAgo, now.Format(models.DateLayout), todayLine(now)))
	}

	req, err := s.Catalog.GetServiceRequirement(ctx, in.ServiceType)
	if errors.Is(err, referenceRepo.ErrNotFound) {
		names := s.serviceNames(ctx)
		return models.AvailabilityResult{
			Status:  models.AvailabilityUnknown,
			Kind:    string(NotFoundError),
			Message: fmt.Sprintf("Service type '%s' not found. Available services: %s", in.ServiceType, strings.Join(names, ", ")),
			Today:   now.Format(models.DateLayout),
		}
	}
	if err != nil {
		log.Error("Service lookup failed", zap.Error(err))
		return models.AvailabilityResult{
			Status:  models.AvailabilityError,
			Kind:    string(InternalError),
			Message: "Error checking availability. Please try again.",
			Today:   now.Format(models.DateLayout),
		}
	}

	clock, err := time.ParseInLocation(models.TimeLayout, strings.TrimSpace(in.Time), loc)
	if err != nil {
		return s.invalid(now, "Invalid time format. Please use HH:MM format (e.g., 14:30 or 09:00).")
	}
	at := models.CombineDateTime(day, clock)
	if !at.After(now) {
		if day.Equal(today) {
			return s.invalid(now, fmt.Sprintf("Cannot schedule appointments in the past. For today (%s), please choose a time after %s.",
				now.Format(models.DateLayout), now.Format(models.TimeLayout)))
		}
		return s.invalid(now, fmt.Sprintf("The requested datetime %s is in the past. Please choose a future date and time.", at.Format("2006-01-02 15:04")))
	}
	if berr := checkHorizon(at, now, s.EpochYear, s.HorizonYears); berr != nil {
		return s.invalid(now, berr.Message)
	}

	duration := serviceDuration(req, s.DefaultDurationMinutes)

	result := models.AvailabilityResult{
		Status:          models.AvailabilitySuccess,
		ServiceID:       req.ServiceID,
		ServiceName:     req.ServiceName,
		DurationMinutes: duration,
		RequestedAt:     instantPtr(at),
		NonWorkingDay:   at.Weekday() == s.NonWorkingDay,
		Today:           now.Format(models.DateLayout),
	}

	slots, err := s.Resolver.FindExact(ctx, *req, in.Zone, at, duration)
	if err != nil {
		log.Error("Exact availability search failed", zap.Error(err))
		return models.AvailabilityResult{
			Status:  models.AvailabilityError,
			Kind:    string(InternalError),
			Message: "Error checking availability. Please try again.",
			Today:   now.Format(models.DateLayout),
		}
	}

	if len(slots) > 0 {
		result.ExactMatch = true
		result.AvailableCount = len(slots)
		for i, slot := range slots {
			if i == maxOffers {
				break
			}
			result.Offers = append(result.Offers, offerFrom(slot))
		}
		result.Message = fmt.Sprintf("%d technicians available for %s in %s on %s at %s.",
			len(slots), req.ServiceName, in.Zone, at.Format(todayLayout), at.Format(models.TimeLayout))
		log.Info("Exact availability found", zap.Int("count", len(slots)))
		s.remember(ctx, in, req, slots[0].TechnicianID, slots[0].TechnicianName, at, log)
		return result
	}

	alternatives, err := s.Resolver.FindAlternatives(ctx, *req, in.Zone, at, duration, s.Alternatives)
	if err != nil {
		log.Error("Alternative search failed", zap.Error(err))
		return models.AvailabilityResult{
			Status:  models.AvailabilityError,
			Kind:    string(InternalError),
			Message: "Error checking availability. Please try again.",
			Today:   now.Format(models.DateLayout),
		}
	}
	result.Kind = string(NoAvailability)
	result.Alternatives = alternatives
	if len(alternatives) > 0 {
		result.Message = fmt.Sprintf("No availability for %s in %s on %s at %s. However, I have these available slots:",
			req.ServiceName, in.Zone, at.Format("Monday, January 02"), at.Format(models.TimeLayout))
	} else {
		result.Message = fmt.Sprintf("Unfortunately, no availability found for %s in %s for the next week. Please try a different area or contact us for emergency service.",
			req.ServiceName, in.Zone)
	}
	log.Info("No exact availability", zap.Int("alternatives", len(alternatives)))
	s.remember(ctx, in, req, "", "", at, log)
	return result
}

// remember records the check in the session's context, starting a new
// context when the session has none or asks about a different job.
func (s *AvailabilityService) remember(ctx context.Context, in AvailabilityRequest, req *models.ServiceRequirement, technicianID, technicianName string, at time.Time, log *zap.Logger) {
	if in.SessionID == "" || s.Contexts == nil {
		return
	}
	existing, err := s.Contexts.Get(ctx, in.SessionID)
	if err != nil && !errors.Is(err, ai.ErrContextNotFound) {
		log.Warn("Failed to read booking context", zap.Error(err))
		return
	}
	if existing == nil || existing.ServiceID != req.ServiceID || existing.Zone != in.Zone ||
		existing.CustomerID != in.CustomerID || existing.PropertyID != in.PropertyID {
		fresh := models.BookingContext{
			SessionID:          in.SessionID,
			CustomerID:         in.CustomerID,
			PropertyID:         in.PropertyID,
			ServiceType:        req.ServiceName,
			ServiceID:          req.ServiceID,
			ProblemDescription: in.ProblemDescription,
			Zone:               in.Zone,
			Urgency:            models.ParseUrgency(in.Urgency),
		}
		if in.Urgency == "" {
			fresh.Urgency = req.DefaultUrgency
		}
		if err := s.Contexts.Create(ctx, fresh); err != nil {
			log.Warn("Failed to create booking context", zap.Error(err))
			return
		}
	}
	if err := s.Contexts.Update(ctx, in.SessionID, technicianID, technicianName, models.At(at)); err != nil {
		log.Warn("Failed to record availability check", zap.Error(err))
	}
}

func (s *AvailabilityService) serviceNames(ctx context.Context) []string {
	services, err := s.Catalog.ListServices(ctx)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(services))
	for _, svc := range services {
		names = append(names, svc.ServiceName)
	}
	return names
}

// AcceptAlternative moves the session's preference to an offered
// alternative. The original request is never seeded from the alternative,
// which is how the executor later knows the alternative's date should win.
func (s *AvailabilityService) AcceptAlternative(ctx context.Context, sessionID string, alt models.AlternativeSlot, considered []models.AlternativeSlot) error {
	loc := s.location()
	at := alternativeInstant(alt, loc)
	if err := s.Contexts.Update(ctx, sessionID, alt.TechnicianID, alt.TechnicianName, nil); err != nil {
		return fmt.Errorf("failed to record accepted alternative: %w", err)
	}
	seen := make([]models.Instant, 0, len(considered))
	for _, c := range considered {
		seen = append(seen, *models.At(alternativeInstant(c, loc)))
	}
	if err := s.Contexts.SetPreferredDate(ctx, sessionID, models.At(at), seen); err != nil {
		return fmt.Errorf("failed to set preferred date: %w", err)
	}
	s.logger().Info("Alternative accepted",
		zap.String("sessionID", sessionID),
		zap.String("technicianID", alt.TechnicianID),
		zap.Time("instant", at))
	return nil
}

func alternativeInstant(alt models.AlternativeSlot, loc *time.Location) time.Time {
	if alt.Date != "" && alt.Time != "" {
		if in, err := models.ParseInstant(alt.Date+"T"+alt.Time, loc); err == nil {
			return in.At
		}
	}
	return alt.Instant.In(loc)
}

func offerFrom(slot models.AvailabilitySlot) models.SlotOffer {
	return models.SlotOffer{
		TechnicianID:   slot.TechnicianID,
		TechnicianName: slot.TechnicianName,
		Date:           slot.WindowStart.Format(models.DateLayout),
		WindowStart:    slot.WindowStart.Format(models.TimeLayout),
		WindowEnd:      slot.WindowEnd.Format(models.TimeLayout),
		Skillset:       strings.Join(slot.Skillset, ", "),
		Zone:           slot.Zone,
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
