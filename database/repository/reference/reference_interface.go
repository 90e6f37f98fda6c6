package referenceRepo

import (
	"context"
	"errors"

	"facilities/models"
)

// ErrNotFound is returned when a lookup key matches nothing.
var ErrNotFound = errors.New("not found")

// ReferenceRepository exposes the read-only reference data the booking flow relies on.
type ReferenceRepository interface {
	ListAvailabilitySlots(ctx context.Context) ([]models.AvailabilitySlot, error)
	ListServices(ctx context.Context) ([]models.ServiceRequirement, error)
	// GetServiceRequirement accepts a service id ("SVC007") or a spoken name ("ac maintenance").
	GetServiceRequirement(ctx context.Context, idOrName string) (*models.ServiceRequirement, error)
	GetTechnician(ctx context.Context, technicianID string) (*models.Technician, error)
	GetCustomer(ctx context.Context, customerID string) (*models.Customer, error)
	FindCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error)
	FindCustomerByEmail(ctx context.Context, email string) (*models.Customer, error)
	GetFacility(ctx context.Context, propertyID string) (*models.Facility, error)
	CustomerFacilities(ctx context.Context, customerID string) ([]models.Facility, error)
}
