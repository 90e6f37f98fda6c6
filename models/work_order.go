package models

import "time"

type WorkOrderStatus string

const (
	WorkOrderNew        WorkOrderStatus = "New"
	WorkOrderScheduled  WorkOrderStatus = "Scheduled"
	WorkOrderAssigned   WorkOrderStatus = "Assigned"
	WorkOrderDispatched WorkOrderStatus = "Dispatched"
	WorkOrderInProgress WorkOrderStatus = "In Progress"
	WorkOrderOnHold     WorkOrderStatus = "On Hold"
	WorkOrderCompleted  WorkOrderStatus = "Completed"
	WorkOrderCancelled  WorkOrderStatus = "Cancelled"
)

type Urgency string

const (
	UrgencyRoutine   Urgency = "Routine"
	UrgencyLow       Urgency = "Low"
	UrgencyMedium    Urgency = "Medium"
	UrgencyHigh      Urgency = "High"
	UrgencyUrgent    Urgency = "Urgent"
	UrgencyEmergency Urgency = "Emergency"
)

// ParseUrgency maps free text onto a known level, defaulting to Medium.
func ParseUrgency(s string) Urgency {
	for _, u := range []Urgency{UrgencyRoutine, UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyUrgent, UrgencyEmergency} {
		if string(u) == s {
			return u
		}
	}
	return UrgencyMedium
}

// WorkOrder is the durable record of a confirmed booking.
type WorkOrder struct {
	WorkOrderID          string          `bson:"workOrderId" json:"workOrderId"`
	CustomerID           string          `bson:"customerId" json:"customerId"`
	PropertyID           string          `bson:"propertyId" json:"propertyId"`
	ServiceID            string          `bson:"serviceId" json:"serviceId"`
	ProblemDescription   string          `bson:"problemDescription" json:"problemDescription"`
	Status               WorkOrderStatus `bson:"status" json:"status"`
	Urgency              Urgency         `bson:"urgency" json:"urgency"`
	RequestedAt          time.Time       `bson:"requestedAt" json:"requestedAt"`
	ScheduledAt          *time.Time      `bson:"scheduledAt,omitempty" json:"scheduledAt,omitempty"`
	ScheduledEnd         *time.Time      `bson:"scheduledEnd,omitempty" json:"scheduledEnd,omitempty"`
	AssignedTechnicianID string          `bson:"assignedTechnicianId,omitempty" json:"assignedTechnicianId,omitempty"`
	CompletedAt          *time.Time      `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CompletionNotes      string          `bson:"completionNotes,omitempty" json:"completionNotes,omitempty"`
}

// IsActive reports whether the order still holds its technician.
func (w WorkOrder) IsActive() bool {
	return w.Status != WorkOrderCompleted && w.Status != WorkOrderCancelled
}

// Overlaps reports whether an active order assigned to technicianID intersects [start, end).
func (w WorkOrder) Overlaps(technicianID string, start, end time.Time) bool {
	if !w.IsActive() || w.AssignedTechnicianID != technicianID || w.ScheduledAt == nil {
		return false
	}
	woEnd := *w.ScheduledAt
	if w.ScheduledEnd != nil {
		woEnd = *w.ScheduledEnd
	}
	return w.ScheduledAt.Before(end) && woEnd.After(start)
}
