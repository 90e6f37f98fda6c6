package models

import "time"

// BookingContext is the evolving request of one conversation, keyed by session.
type BookingContext struct {
	SessionID             string    `json:"sessionId"`
	CustomerID            string    `json:"customerId"`
	PropertyID            string    `json:"propertyId"`
	ServiceType           string    `json:"serviceType"`
	ServiceID             string    `json:"serviceId"`
	ProblemDescription    string    `json:"problemDescription"`
	Zone                  string    `json:"zone"`
	Urgency               Urgency   `json:"urgency"`
	PreferredTechnicianID string    `json:"preferredTechnicianId,omitempty"`
	PreferredTechnician   string    `json:"preferredTechnicianName,omitempty"`
	OriginalRequested     *Instant  `json:"originalRequestedInstant,omitempty"`
	CurrentPreferred      *Instant  `json:"currentPreferredInstant,omitempty"`
	LastChecked           *Instant  `json:"lastCheckedInstant,omitempty"`
	SuggestedAlternatives []Instant `json:"suggestedAlternatives,omitempty"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// AlternativeAccepted reports whether the preferred instant moved away from the original request.
func (c *BookingContext) AlternativeAccepted() bool {
	if c.CurrentPreferred == nil {
		return false
	}
	return !c.CurrentPreferred.Equal(c.OriginalRequested)
}
