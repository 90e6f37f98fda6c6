package tasks

import (
	"testing"
	"time"

	"facilities/models"
)

func TestNewNotificationTask(t *testing.T) {
	tests := []struct {
		kind     string
		wantType string
		wantErr  bool
	}{
		{KindConfirmation, TypeSendConfirmation, false},
		{KindReminder, TypeSendReminder, false},
		{KindStatus, TypeSendStatusUpdate, false},
		{"fax", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			payload := models.NotificationPayload{
				Kind:           tt.kind,
				RecipientEmail: "sara@example.com",
				Details:        models.AppointmentDetails{WorkOrderID: "WO_1A2B3C4D"},
			}
			task, opts, err := NewNotificationTask(payload, time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewNotificationTask: %v", err)
			}
			if task.Type() != tt.wantType {
				t.Errorf("type = %s, want %s", task.Type(), tt.wantType)
			}
			if len(opts) != 2 {
				t.Errorf("opts = %d, want retry and process-at", len(opts))
			}
			back, err := ParseNotificationTask(task)
			if err != nil {
				t.Fatalf("ParseNotificationTask: %v", err)
			}
			if back.Details.WorkOrderID != "WO_1A2B3C4D" {
				t.Errorf("payload = %+v", back)
			}
		})
	}
}
