package referenceRepo

import (
	"strings"

	"facilities/models"
)

// DefaultServices is the service catalogue offered over the phone.
var DefaultServices = []models.ServiceRequirement{
	{ServiceID: "SVC001", ServiceName: "AC Routine Maintenance", Category: "HVAC", RequiredSkills: []string{"HVAC"}, EstimatedDurationMinutes: 120, DefaultUrgency: models.UrgencyRoutine},
	{ServiceID: "SVC002", ServiceName: "Emergency Plumbing Repair", Category: "Plumbing", RequiredSkills: []string{"Plumbing"}, EstimatedDurationMinutes: 90, DefaultUrgency: models.UrgencyEmergency},
	{ServiceID: "SVC003", ServiceName: "Electrical Repair", Category: "Electrical", RequiredSkills: []string{"Electrical"}, EstimatedDurationMinutes: 150, DefaultUrgency: models.UrgencyRoutine},
	{ServiceID: "SVC004", ServiceName: "General Maintenance", Category: "General Maintenance", RequiredSkills: []string{"General"}, EstimatedDurationMinutes: 100, DefaultUrgency: models.UrgencyRoutine},
	{ServiceID: "SVC005", ServiceName: "AC Repair", Category: "HVAC", RequiredSkills: []string{"HVAC"}, EstimatedDurationMinutes: 150, DefaultUrgency: models.UrgencyUrgent},
	{ServiceID: "SVC006", ServiceName: "Plumbing Repair", Category: "Plumbing", RequiredSkills: []string{"Plumbing"}, EstimatedDurationMinutes: 120, DefaultUrgency: models.UrgencyMedium},
	{ServiceID: "SVC007", ServiceName: "AC Maintenance", Category: "HVAC", RequiredSkills: []string{"HVAC"}, EstimatedDurationMinutes: 120, DefaultUrgency: models.UrgencyRoutine},
}

// FindService resolves an id or a loosely spoken name. Names are tried exact,
// then as a substring of a service name, then word by word in both directions.
func FindService(services []models.ServiceRequirement, idOrName string) (models.ServiceRequirement, bool) {
	query := strings.ToLower(strings.TrimSpace(idOrName))
	if query == "" {
		return models.ServiceRequirement{}, false
	}

	for _, s := range services {
		if strings.ToLower(s.ServiceID) == query || strings.ToLower(s.ServiceName) == query {
			return s, true
		}
	}
	for _, s := range services {
		if strings.Contains(strings.ToLower(s.ServiceName), query) {
			return s, true
		}
	}
	queryWords := strings.Fields(query)
	for _, s := range services {
		name := strings.ToLower(s.ServiceName)
		for _, w := range queryWords {
			if strings.Contains(name, w) {
				return s, true
			}
		}
	}
	for _, s := range services {
		for _, w := range strings.Fields(strings.ToLower(s.ServiceName)) {
			if strings.Contains(query, w) {
				return s, true
			}
		}
	}
	return models.ServiceRequirement{}, false
}
