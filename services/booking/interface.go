package booking

import (
	"context"
	"time"

	"facilities/models"
	"facilities/services/availability"
)

// AvailabilityResolver is the exact and alternative search the booking flow trusts.
type AvailabilityResolver interface {
	FindExact(ctx context.Context, req models.ServiceRequirement, zone string, at time.Time, durationMinutes int) ([]models.AvailabilitySlot, error)
	FindAlternatives(ctx context.Context, req models.ServiceRequirement, zone string, from time.Time, durationMinutes int, opts availability.AlternativeOptions) ([]models.AlternativeSlot, error)
}

// ReferenceData is the subset of the reference repository the booking flow reads.
type ReferenceData interface {
	GetServiceRequirement(ctx context.Context, idOrName string) (*models.ServiceRequirement, error)
	GetTechnician(ctx context.Context, technicianID string) (*models.Technician, error)
	GetCustomer(ctx context.Context, customerID string) (*models.Customer, error)
	GetFacility(ctx context.Context, propertyID string) (*models.Facility, error)
}

// Calendar books the visit in the company calendar and returns its event id.
type Calendar interface {
	CreateAppointment(ctx context.Context, appt models.CalendarAppointment) (string, error)
}

// Notifier tells the customer about their booking.
type Notifier interface {
	SendAppointmentConfirmation(ctx context.Context, email, name string, details models.AppointmentDetails) error
	SendStatusUpdate(ctx context.Context, email, name string, wo models.WorkOrder, location string) error
}
