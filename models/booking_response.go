package models

import "time"

type BookingStatus string

const (
	BookingSuccess         BookingStatus = "success"
	BookingNotConfirmation BookingStatus = "notConfirmation"
	BookingNoContext       BookingStatus = "noContext"
	BookingInvalidInstant  BookingStatus = "invalidInstant"
	BookingNotFound        BookingStatus = "notFound"
	BookingSlotUnavailable BookingStatus = "slotNoLongerAvailable"
	BookingInternalError   BookingStatus = "error"
)

// BookingResult is the executor's structured answer; Message is safe to read to the caller.
type BookingResult struct {
	Status            BookingStatus `json:"status"`
	Kind              string        `json:"kind,omitempty"`
	Message           string        `json:"message"`
	WorkOrder         *WorkOrder    `json:"workOrder,omitempty"`
	ScheduledAt       *time.Time    `json:"scheduledAt,omitempty"`
	ScheduledDisplay  string        `json:"scheduledDisplay,omitempty"`
	TechnicianID      string        `json:"technicianId,omitempty"`
	TechnicianName    string        `json:"technicianName,omitempty"`
	CalendarEventID   string        `json:"calendarEventId,omitempty"`
	CalendarCreated   bool          `json:"calendarCreated"`
	NotificationsSent bool          `json:"notificationsSent"`
	Today             string        `json:"today"`
}

type AvailabilityStatus string

const (
	AvailabilitySuccess AvailabilityStatus = "success"
	AvailabilityInvalid AvailabilityStatus = "invalidInput"
	AvailabilityUnknown AvailabilityStatus = "notFound"
	AvailabilityError   AvailabilityStatus = "error"
)

// AvailabilityResult answers one availability check; an empty offer set is still success.
type AvailabilityResult struct {
	Status          AvailabilityStatus `json:"status"`
	Kind            string             `json:"kind,omitempty"`
	Message         string             `json:"message"`
	ServiceID       string             `json:"serviceId,omitempty"`
	ServiceName     string             `json:"serviceName,omitempty"`
	DurationMinutes int                `json:"durationMinutes,omitempty"`
	RequestedAt     *time.Time         `json:"requestedAt,omitempty"`
	ExactMatch      bool               `json:"exactMatch"`
	AvailableCount  int                `json:"availableCount"`
	Offers          []SlotOffer        `json:"offers,omitempty"`
	Alternatives    []AlternativeSlot  `json:"alternatives,omitempty"`
	NonWorkingDay   bool               `json:"nonWorkingDay"`
	Today           string             `json:"today"`
}
