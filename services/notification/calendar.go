package notification

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"facilities/models"

	ical "github.com/emersion/go-ical"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ICSCalendar books appointments as iCalendar files, one per event, in Dir.
// Any calendar client subscribed to the directory picks them up.
type ICSCalendar struct {
	Dir         string
	CompanyName string
	Now         func() time.Time
	Logger      *zap.Logger
}

func NewICSCalendar(dir, companyName string, logger *zap.Logger) *ICSCalendar {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ICSCalendar{Dir: dir, CompanyName: companyName, Now: time.Now, Logger: logger}
}

// CreateAppointment writes the event and returns its UID.
func (c *ICSCalendar) CreateAppointment(ctx context.Context, appt models.CalendarAppointment) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if appt.DurationMinutes <= 0 {
		return "", fmt.Errorf("appointment %q has no duration", appt.Title)
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create calendar dir: %w", err)
	}

	eventID := uuid.NewString()
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, eventID)
	event.Props.SetDateTime(ical.PropDateTimeStamp, now().UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, appt.Start.UTC())
	event.Props.SetDateTime(ical.PropDateTimeEnd, appt.Start.Add(time.Duration(appt.DurationMinutes)*time.Minute).UTC())
	event.Props.SetText(ical.PropSummary, appt.Title)
	if appt.Description != "" {
		event.Props.SetText(ical.PropDescription, appt.Description)
	}
	if appt.Location != "" {
		event.Props.SetText(ical.PropLocation, appt.Location)
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, fmt.Sprintf("-//%s//Service Booking//EN", c.CompanyName))
	cal.Children = append(cal.Children, event.Component)

	path := filepath.Join(c.Dir, eventID+".ics")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create event file: %w", err)
	}
	if err := ical.NewEncoder(f).Encode(cal); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to encode event: %w", err)
	}
	// Close reports write-back failures; the event may be truncated.
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write event file: %w", err)
	}

	c.Logger.Info("Calendar appointment created",
		zap.String("eventID", eventID),
		zap.String("title", appt.Title),
		zap.Time("start", appt.Start))
	return eventID, nil
}
