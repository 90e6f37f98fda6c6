package referenceRepo

import (
	"context"
	"fmt"
	"strings"

	"facilities/models"
)

// MemoryReferenceRepo serves reference data loaded once at startup. It is never
// written after construction, so reads need no locking.
type MemoryReferenceRepo struct {
	slots       []models.AvailabilitySlot
	services    []models.ServiceRequirement
	technicians map[string]models.Technician
	customers   []models.Customer
	facilities  []models.Facility
}

// Dataset is the raw material for a MemoryReferenceRepo.
type Dataset struct {
	Slots       []models.AvailabilitySlot
	Services    []models.ServiceRequirement
	Technicians []models.Technician
	Customers   []models.Customer
	Facilities  []models.Facility
}

func NewMemoryReferenceRepo(data Dataset) *MemoryReferenceRepo {
	services := data.Services
	if len(services) == 0 {
		services = DefaultServices
	}
	techs := make(map[string]models.Technician, len(data.Technicians))
	for _, t := range data.Technicians {
		techs[t.TechnicianID] = t
	}
	// Technicians only present in the availability sheet are still known by name.
	for _, s := range data.Slots {
		if _, ok := techs[s.TechnicianID]; !ok {
			techs[s.TechnicianID] = models.Technician{
				TechnicianID:   s.TechnicianID,
				TechnicianName: s.TechnicianName,
				Skillset:       s.Skillset,
				OperatingZones: []string{s.Zone},
				Status:         models.TechnicianAvailable,
			}
		}
	}
	return &MemoryReferenceRepo{
		slots:       data.Slots,
		services:    services,
		technicians: techs,
		customers:   data.Customers,
		facilities:  data.Facilities,
	}
}

func (r *MemoryReferenceRepo) ListAvailabilitySlots(_ context.Context) ([]models.AvailabilitySlot, error) {
	return r.slots, nil
}

func (r *MemoryReferenceRepo) ListServices(_ context.Context) ([]models.ServiceRequirement, error) {
	return append([]models.ServiceRequirement(nil), r.services...), nil
}

func (r *MemoryReferenceRepo) GetServiceRequirement(_ context.Context, idOrName string) (*models.ServiceRequirement, error) {
	s, ok := FindService(r.services, idOrName)
	if !ok {
		return nil, fmt.Errorf("service %q: %w", idOrName, ErrNotFound)
	}
	return &s, nil
}

func (r *MemoryReferenceRepo) GetTechnician(_ context.Context, technicianID string) (*models.Technician, error) {
	t, ok := r.technicians[technicianID]
	if !ok {
		return nil, fmt.Errorf("technician %s: %w", technicianID, ErrNotFound)
	}
	return &t, nil
}

func (r *MemoryReferenceRepo) GetCustomer(_ context.Context, customerID string) (*models.Customer, error) {
	for _, c := range r.customers {
		if c.CustomerID == customerID {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("customer %s: %w", customerID, ErrNotFound)
}

func (r *MemoryReferenceRepo) FindCustomerByEmail(_ context.Context, email string) (*models.Customer, error) {
	for _, c := range r.customers {
		if strings.EqualFold(c.EmailAddress, strings.TrimSpace(email)) {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("customer with email %s: %w", email, ErrNotFound)
}

// FindCustomerByPhone tolerates spoken-number noise: separators, a missing
// country code, a local leading zero, or extra leading digits.
func (r *MemoryReferenceRepo) FindCustomerByPhone(_ context.Context, phone string) (*models.Customer, error) {
	input := digitsOnly(phone)
	if len(input) < 7 {
		return nil, fmt.Errorf("phone number %q is too short", phone)
	}
	for _, c := range r.customers {
		if PhoneMatches(input, digitsOnly(c.PhoneNumber)) {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("customer with phone %s: %w", phone, ErrNotFound)
}

func (r *MemoryReferenceRepo) GetFacility(_ context.Context, propertyID string) (*models.Facility, error) {
	for _, f := range r.facilities {
		if f.PropertyID == propertyID {
			return &f, nil
		}
	}
	return nil, fmt.Errorf("facility %s: %w", propertyID, ErrNotFound)
}

func (r *MemoryReferenceRepo) CustomerFacilities(_ context.Context, customerID string) ([]models.Facility, error) {
	out := []models.Facility{}
	for _, f := range r.facilities {
		if f.CustomerID == customerID {
			out = append(out, f)
		}
	}
	return out, nil
}

// digitsOnly keeps digits, reading a spoken letter O as zero.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'o' || r == 'O':
			b.WriteByte('0')
		}
	}
	return b.String()
}

// PhoneMatches compares two digit strings the way a caller reads a UAE number aloud.
func PhoneMatches(input, stored string) bool {
	switch {
	case input == "" || stored == "":
		return false
	case input == stored:
		return true
	case len(input) >= 7 && strings.HasSuffix(stored, input):
		return true
	case len(stored) >= 7 && strings.HasSuffix(input, stored):
		return true
	case "971"+input == stored:
		return true
	case strings.HasPrefix(input, "0") && len(input) >= 8 && strings.HasSuffix(stored, input[1:]):
		return true
	case len(input) >= 8 && len(stored) >= 8 && input[len(input)-8:] == stored[len(stored)-8:]:
		return true
	}
	return false
}
