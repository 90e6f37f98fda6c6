package models

import "time"

// AvailabilitySlot is one technician's free window, loaded once at startup.
type AvailabilitySlot struct {
	TechnicianID   string    `bson:"technicianId" json:"technicianId"`
	TechnicianName string    `bson:"technicianName" json:"technicianName"`
	Skillset       []string  `bson:"skillset" json:"skillset"`
	Zone           string    `bson:"zone" json:"zone"`
	WindowStart    time.Time `bson:"windowStart" json:"windowStart"`
	WindowEnd      time.Time `bson:"windowEnd" json:"windowEnd"`
}

// ServiceRequirement describes what a service type needs from a technician.
type ServiceRequirement struct {
	ServiceID                string   `bson:"serviceId" json:"serviceId"`
	ServiceName              string   `bson:"serviceName" json:"serviceName"`
	Category                 string   `bson:"category,omitempty" json:"category,omitempty"`
	RequiredSkills           []string `bson:"requiredSkills" json:"requiredSkills"`
	EstimatedDurationMinutes int      `bson:"estimatedDurationMinutes" json:"estimatedDurationMinutes"`
	DefaultUrgency           Urgency  `bson:"defaultUrgency" json:"defaultUrgency"`
}

type TechnicianStatus string

const (
	TechnicianAvailable TechnicianStatus = "Available"
	TechnicianOnJob     TechnicianStatus = "On Job"
	TechnicianOffline   TechnicianStatus = "Offline"
	TechnicianBreak     TechnicianStatus = "Break"
)

type Technician struct {
	TechnicianID   string           `bson:"technicianId" json:"technicianId"`
	TechnicianName string           `bson:"technicianName" json:"technicianName"`
	ContactNumber  string           `bson:"contactNumber" json:"contactNumber"`
	Skillset       []string         `bson:"skillset" json:"skillset"`
	OperatingZones []string         `bson:"operatingZones" json:"operatingZones"`
	Status         TechnicianStatus `bson:"status" json:"status"`
}

// AlternativeSlot is a verified free slot offered when the requested instant is taken.
type AlternativeSlot struct {
	Date           string    `json:"date"` // YYYY-MM-DD
	Time           string    `json:"time"` // HH:MM
	DateDisplay    string    `json:"dateDisplay"`
	Instant        time.Time `json:"instant"`
	TechnicianID   string    `json:"technicianId"`
	TechnicianName string    `json:"technicianName"`
	AvailableCount int       `json:"availableCount"` // technicians free at this instant
}

// SlotOffer is a technician free at exactly the requested instant.
type SlotOffer struct {
	TechnicianID   string `json:"technicianId"`
	TechnicianName string `json:"technicianName"`
	Date           string `json:"date"`
	WindowStart    string `json:"windowStart"`
	WindowEnd      string `json:"windowEnd"`
	Skillset       string `json:"skillset"`
	Zone           string `json:"zone"`
}
