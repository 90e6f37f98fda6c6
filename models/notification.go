package models

import "time"

// AppointmentDetails is the human-readable summary sent to the customer.
type AppointmentDetails struct {
	WorkOrderID       string    `json:"workOrderId"`
	ServiceName       string    `json:"serviceName"`
	ScheduledAt       time.Time `json:"scheduledAt"`
	ScheduledDisplay  string    `json:"scheduledDisplay"`
	Location          string    `json:"location"`
	TechnicianName    string    `json:"technicianName"`
	DurationMinutes   int       `json:"durationMinutes"`
	EstimatedDuration string    `json:"estimatedDuration"`
}

// CalendarAppointment is a company-calendar entry for a booked visit.
type CalendarAppointment struct {
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Start           time.Time `json:"start"`
	DurationMinutes int       `json:"durationMinutes"`
	Location        string    `json:"location"`
}

// NotificationPayload is queued for the notification worker.
type NotificationPayload struct {
	Kind           string             `json:"kind"` // "confirmation", "reminder" or "status"
	RecipientEmail string             `json:"recipientEmail"`
	RecipientName  string             `json:"recipientName"`
	Details        AppointmentDetails `json:"details"`
	WorkOrder      *WorkOrder         `json:"workOrder,omitempty"`
	Location       string             `json:"location,omitempty"`
}
