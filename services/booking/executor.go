package booking

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	lockRepo "facilities/database/repository/locks"
	referenceRepo "facilities/database/repository/reference"
	workorderRepo "facilities/database/repository/workorder"
	"facilities/models"
	"facilities/services/datetime"
	ai "facilities/services/intelligence"

	"go.uber.org/zap"
)

const (
	defaultLockTTL  = 30 * time.Second
	defaultLockWait = 3 * time.Second
)

var embeddedDate = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// Executor commits a confirmed booking: it re-validates the slot, writes the
// work order once, then fires calendar and notification side effects.
type Executor struct {
	Contexts   ai.ContextStore
	Detector   ai.ConfirmationDetector
	Resolver   AvailabilityResolver
	Reference  ReferenceData
	WorkOrders workorderRepo.WorkOrderRepository
	Locks      lockRepo.SlotLocker
	Calendar   Calendar
	Notifier   Notifier
	Logger     *zap.Logger

	Now          func() time.Time
	Location     *time.Location
	EpochYear    int // 0 means the current year
	HorizonYears int
	LockTTL      time.Duration
	LockWait     time.Duration

	// DefaultDurationMinutes applies to services without an estimate.
	DefaultDurationMinutes int
}

func (e *Executor) now() time.Time {
	now := time.Now()
	if e.Now != nil {
		now = e.Now()
	}
	return now.In(e.location())
}

func (e *Executor) location() *time.Location {
	if e.Location == nil {
		return time.UTC
	}
	return e.Location
}

func (e *Executor) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// Execute books the slot held in the session's context. Every outcome,
// including failures, comes back as a BookingResult with a status and a
// message the agent can read out.
func (e *Executor) Execute(ctx context.Context, sessionID, confirmedInstantText, userUtterance string) models.BookingResult {
	now := e.now()
	log := e.logger().With(zap.String("sessionID", sessionID))

	// 1. The utterance itself must be a confirmation.
	detection := e.Detector.Detect(userUtterance)
	if !detection.IsConfirmation {
		return e.fail(now, NewBookingError(InputError, string(models.BookingNotConfirmation),
			"I didn't hear a clear confirmation. Would you like me to go ahead and book this appointment?"))
	}

	// 2. A pending booking must exist.
	bc, err := e.Contexts.Get(ctx, sessionID)
	if errors.Is(err, ai.ErrContextNotFound) {
		return e.fail(now, NewBookingError(NotFoundError, string(models.BookingNoContext),
			"I don't have a pending booking for this conversation. Let's check availability first."))
	}
	if err != nil {
		log.Error("Failed to load booking context", zap.Error(err))
		return e.fail(now, NewBookingError(InternalError, string(models.BookingInternalError),
			"Something went wrong while retrieving your booking. Please try again.").Wrap(err))
	}

	// 3. Settle on the instant, preferring an accepted alternative's date.
	instant, berr := e.reconcile(bc, confirmedInstantText)
	if berr != nil {
		return e.fail(now, berr)
	}
	log = log.With(zap.Time("instant", instant), zap.String("technicianID", bc.PreferredTechnicianID))

	req, customer, facility, technician, berr := e.lookups(ctx, bc)
	if berr != nil {
		log.Warn("Booking lookups failed", zap.Error(berr))
		return e.fail(now, berr)
	}
	duration := serviceDuration(req, e.DefaultDurationMinutes)
	end := instant.Add(time.Duration(duration) * time.Minute)

	// 4. Hold the technician, then re-check the slot. Bookings for one
	// technician are serialized from here until the work order is written.
	ttl := e.LockTTL
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	wait := e.LockWait
	if wait <= 0 {
		wait = defaultLockWait
	}
	release, err := lockRepo.AcquireWait(ctx, e.Locks, lockRepo.TechnicianKey(technician.TechnicianID), ttl, wait)
	if errors.Is(err, lockRepo.ErrLocked) {
		log.Info("Technician held by another booking")
		return e.fail(now, slotGone(technician.TechnicianName))
	}
	if err != nil {
		log.Error("Failed to reserve slot", zap.Error(err))
		return e.fail(now, NewBookingError(InternalError, string(models.BookingInternalError),
			"I couldn't reserve that slot just now. Please try again.").Wrap(err))
	}
	defer release()

	slots, err := e.Resolver.FindExact(ctx, *req, bc.Zone, instant, duration)
	if err != nil {
		log.Error("Final availability check failed", zap.Error(err))
		return e.fail(now, NewBookingError(InternalError, string(models.BookingInternalError),
			"I couldn't verify the technician's availability. Please try again.").Wrap(err))
	}
	if !containsTechnician(slots, technician.TechnicianID) {
		log.Info("Offered technician no longer free", zap.Int("otherMatches", len(slots)))
		return e.fail(now, slotGone(technician.TechnicianName))
	}
	busy, err := e.WorkOrders.HasConflict(ctx, technician.TechnicianID, instant, end)
	if err != nil {
		log.Error("Work order conflict check failed", zap.Error(err))
		return e.fail(now, NewBookingError(InternalError, string(models.BookingInternalError),
			"I couldn't verify the technician's schedule. Please try again.").Wrap(err))
	}
	if busy {
		log.Info("Technician already booked over the interval")
		return e.fail(now, slotGone(technician.TechnicianName))
	}

	// 5. Strictly future and inside the booking horizon.
	if berr := checkHorizon(instant, now, e.EpochYear, e.HorizonYears); berr != nil {
		return e.fail(now, berr)
	}

	// 6. Commit.
	wo := &models.WorkOrder{
		WorkOrderID:          newWorkOrderID(),
		CustomerID:           bc.CustomerID,
		PropertyID:           bc.PropertyID,
		ServiceID:            req.ServiceID,
		ProblemDescription:   firstNonEmpty(bc.ProblemDescription, req.ServiceName),
		Status:               models.WorkOrderScheduled,
		Urgency:              urgencyFor(bc, req),
		RequestedAt:          now,
		ScheduledAt:          instantPtr(instant),
		ScheduledEnd:         instantPtr(end),
		AssignedTechnicianID: technician.TechnicianID,
	}
	if _, err := e.WorkOrders.Create(ctx, wo); err != nil {
		log.Error("Failed to create work order", zap.Error(err))
		return e.fail(now, NewBookingError(InternalError, string(models.BookingInternalError),
			"I couldn't save your booking. Nothing was scheduled; please try again.").Wrap(err))
	}
	log = log.With(zap.String("workOrderID", wo.WorkOrderID))
	log.Info("Work order scheduled")

	display := instant.Format(displayLayout)
	result := models.BookingResult{
		Status:           models.BookingSuccess,
		WorkOrder:        wo,
		ScheduledAt:      instantPtr(instant),
		ScheduledDisplay: display,
		TechnicianID:     technician.TechnicianID,
		TechnicianName:   technician.TechnicianName,
		Today:            now.Format(models.DateLayout),
	}

	// Side effects are best-effort and only degrade flags.
	details := models.AppointmentDetails{
		WorkOrderID:       wo.WorkOrderID,
		ServiceName:       req.ServiceName,
		ScheduledAt:       instant,
		ScheduledDisplay:  display,
		Location:          facility.DisplayLocation(),
		TechnicianName:    technician.TechnicianName,
		DurationMinutes:   duration,
		EstimatedDuration: formatDuration(duration),
	}
	if e.Calendar != nil {
		eventID, err := e.Calendar.CreateAppointment(ctx, models.CalendarAppointment{
			Title:           fmt.Sprintf("%s - %s", req.ServiceName, customer.FullName),
			Description:     fmt.Sprintf("Work order %s\nTechnician: %s\nProblem: %s", wo.WorkOrderID, technician.TechnicianName, wo.ProblemDescription),
			Start:           instant,
			DurationMinutes: duration,
			Location:        facility.FullAddress,
		})
		if err != nil {
			log.Warn("Calendar appointment failed", zap.String("kind", string(SideEffectError)), zap.Error(err))
		} else {
			result.CalendarCreated = true
			result.CalendarEventID = eventID
		}
	}
	if e.Notifier != nil && customer.EmailAddress != "" {
		if err := e.Notifier.SendAppointmentConfirmation(ctx, customer.EmailAddress, customer.FullName, details); err != nil {
			log.Warn("Confirmation notification failed", zap.String("kind", string(SideEffectError)), zap.Error(err))
		} else {
			result.NotificationsSent = true
		}
	}

	// 7. One-shot: a repeated confirmation finds no context.
	if err := e.Contexts.Clear(ctx, sessionID); err != nil {
		log.Warn("Failed to clear booking context", zap.Error(err))
	}

	result.Message = fmt.Sprintf("Your %s is booked for %s with %s at %s. Your work order number is %s.",
		req.ServiceName, display, technician.TechnicianName, facility.DisplayLocation(), wo.WorkOrderID)
	if !result.NotificationsSent {
		result.Message += " I wasn't able to send the confirmation email, but your booking is saved."
	}
	return result
}

func (e *Executor) fail(now time.Time, be *BookingError) models.BookingResult {
	msg := be.Message
	if be.Code == string(models.BookingInvalidInstant) && !strings.Contains(msg, "Today is") {
		msg += " " + todayLine(now)
	}
	return models.BookingResult{
		Status:  models.BookingStatus(be.Code),
		Kind:    string(be.Kind),
		Message: msg,
		Today:   now.Format(models.DateLayout),
	}
}

func slotGone(technicianName string) *BookingError {
	name := firstNonEmpty(technicianName, "The technician")
	return NewBookingError(ConflictError, string(models.BookingSlotUnavailable),
		fmt.Sprintf("%s is no longer available at that time. Let me check other times for you.", name))
}

func containsTechnician(slots []models.AvailabilitySlot, technicianID string) bool {
	for _, s := range slots {
		if s.TechnicianID == technicianID {
			return true
		}
	}
	return false
}

// confirmedText is what could be read from the agent's confirmed instant.
type confirmedText struct {
	day          *time.Time
	hour, minute int
	hasClock     bool
}

func parseConfirmed(text string, loc *time.Location) confirmedText {
	text = strings.TrimSpace(text)
	var ct confirmedText
	if text == "" {
		return ct
	}
	if in, err := models.ParseInstant(text, loc); err == nil {
		day := inLocation(in.At, loc)
		ct.day = &day
		if !in.DateOnly {
			ct.hour, ct.minute, ct.hasClock = day.Hour(), day.Minute(), true
		}
		return ct
	}
	if clock, err := time.ParseInLocation(models.TimeLayout, text, loc); err == nil {
		ct.hour, ct.minute, ct.hasClock = clock.Hour(), clock.Minute(), true
		return ct
	}
	if d := embeddedDate.FindString(text); d != "" {
		if in, err := models.ParseInstant(d, loc); err == nil {
			day := in.At
			ct.day = &day
		}
	}
	ct.hour, ct.minute, ct.hasClock = datetime.ExtractTime(strings.ToLower(text))
	return ct
}

// reconcile picks the instant to book. Once an alternative was accepted its
// date wins over whatever date the confirmation text echoes; only the time of
// day is taken from the text.
func (e *Executor) reconcile(bc *models.BookingContext, text string) (time.Time, *BookingError) {
	loc := e.location()
	ct := parseConfirmed(text, loc)

	var day time.Time
	switch {
	case bc.AlternativeAccepted():
		day = inLocation(bc.CurrentPreferred.At, loc)
	case ct.day != nil:
		day = *ct.day
	case bc.CurrentPreferred != nil:
		day = inLocation(bc.CurrentPreferred.At, loc)
	default:
		return time.Time{}, NewBookingError(InputError, string(models.BookingInvalidInstant),
			fmt.Sprintf("I couldn't work out the date from %q. Please confirm the date and time, for example 2025-06-03 at 10:00.", text))
	}

	hour, minute := defaultClockHour, 0
	switch {
	case ct.hasClock:
		hour, minute = ct.hour, ct.minute
	case bc.CurrentPreferred != nil && !bc.CurrentPreferred.DateOnly:
		preferred := inLocation(bc.CurrentPreferred.At, loc)
		if sameDay(preferred, day) {
			hour, minute = preferred.Hour(), preferred.Minute()
		}
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc), nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (e *Executor) lookups(ctx context.Context, bc *models.BookingContext) (*models.ServiceRequirement, *models.Customer, *models.Facility, *models.Technician, *BookingError) {
	notFound := func(what string, err error) *BookingError {
		if errors.Is(err, referenceRepo.ErrNotFound) {
			return NewBookingError(NotFoundError, string(models.BookingNotFound),
				fmt.Sprintf("I couldn't find the %s for this booking.", what)).Wrap(err)
		}
		return NewBookingError(InternalError, string(models.BookingInternalError),
			"Something went wrong while preparing your booking. Please try again.").Wrap(err)
	}

	req, err := e.Reference.GetServiceRequirement(ctx, firstNonEmpty(bc.ServiceID, bc.ServiceType))
	if err != nil {
		return nil, nil, nil, nil, notFound("requested service", err)
	}
	customer, err := e.Reference.GetCustomer(ctx, bc.CustomerID)
	if err != nil {
		return nil, nil, nil, nil, notFound("customer account", err)
	}
	facility, err := e.Reference.GetFacility(ctx, bc.PropertyID)
	if err != nil {
		return nil, nil, nil, nil, notFound("property", err)
	}
	if bc.PreferredTechnicianID == "" {
		return nil, nil, nil, nil, NewBookingError(ConflictError, string(models.BookingSlotUnavailable),
			"No technician is being held for this time. Let me check availability again.")
	}
	technician, err := e.Reference.GetTechnician(ctx, bc.PreferredTechnicianID)
	if err != nil {
		return nil, nil, nil, nil, notFound("assigned technician", err)
	}
	return req, customer, facility, technician, nil
}
