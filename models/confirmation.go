package models

type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// ConfirmationResult classifies one user turn; it never authorizes a booking by itself.
type ConfirmationResult struct {
	IsConfirmation  bool       `json:"isConfirmation"`
	ExtractedTime   string     `json:"extractedTime,omitempty"`
	Confidence      Confidence `json:"confidence"`
	OriginalMessage string     `json:"originalMessage"`
}
