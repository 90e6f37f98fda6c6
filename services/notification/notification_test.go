package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"facilities/models"
	"facilities/services/tasks"

	ical "github.com/emersion/go-ical"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

var visit = models.AppointmentDetails{
	WorkOrderID:       "WO_1A2B3C4D",
	ServiceName:       "AC Maintenance",
	ScheduledAt:       time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC),
	ScheduledDisplay:  "Tuesday, June 03, 2025 at 10:00 AM",
	Location:          "Marina Heights, Unit 1203, Marina",
	TechnicianName:    "Omar Khalid",
	DurationMinutes:   120,
	EstimatedDuration: "2h 0m",
}

func TestICSCalendarCreateAppointment(t *testing.T) {
	dir := t.TempDir()
	cal := NewICSCalendar(dir, "Premium Facilities", zap.NewNop())
	cal.Now = func() time.Time { return time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC) }

	id, err := cal.CreateAppointment(context.Background(), models.CalendarAppointment{
		Title:           "AC Maintenance - Sara Ahmed",
		Description:     "Work order WO_1A2B3C4D",
		Start:           visit.ScheduledAt,
		DurationMinutes: 120,
		Location:        "Marina Heights, Dubai Marina",
	})
	if err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, id+".ics"))
	if err != nil {
		t.Fatalf("event file: %v", err)
	}
	defer f.Close()
	decoded, err := ical.NewDecoder(f).Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	events := decoded.Events()
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	ev := events[0]
	if uid, _ := ev.Props.Text(ical.PropUID); uid != id {
		t.Errorf("uid = %s, want %s", uid, id)
	}
	start, err := ev.DateTimeStart(nil)
	if err != nil || !start.Equal(visit.ScheduledAt) {
		t.Errorf("start = %v, %v", start, err)
	}
	end, err := ev.DateTimeEnd(nil)
	if err != nil || !end.Equal(visit.ScheduledAt.Add(2*time.Hour)) {
		t.Errorf("end = %v, %v", end, err)
	}
	if loc, _ := ev.Props.Text(ical.PropLocation); loc != "Marina Heights, Dubai Marina" {
		t.Errorf("location = %q", loc)
	}
}

func TestICSCalendarRejectsZeroDuration(t *testing.T) {
	cal := NewICSCalendar(t.TempDir(), "Premium Facilities", nil)
	if _, err := cal.CreateAppointment(context.Background(), models.CalendarAppointment{Title: "x", Start: visit.ScheduledAt}); err == nil {
		t.Error("expected an error for a zero duration")
	}
}

func TestICSCalendarWriteFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "calendar")
	if err := os.WriteFile(blocker, []byte("not a directory"), 0o644); err != nil {
		t.Fatal(err)
	}
	appt := models.CalendarAppointment{Title: "AC Maintenance", Start: visit.ScheduledAt, DurationMinutes: 60}

	for _, dir := range []string{blocker, filepath.Join(blocker, "events")} {
		cal := NewICSCalendar(dir, "Premium Facilities", nil)
		id, err := cal.CreateAppointment(context.Background(), appt)
		if err == nil {
			t.Errorf("dir %s: expected an error, got event %q", dir, id)
		}
		if id != "" {
			t.Errorf("dir %s: event ID %q returned with an error", dir, id)
		}
	}
}

type recordingProvider struct {
	messages   []string
	recipients []string
	err        error
}

func (p *recordingProvider) Send(_ context.Context, message, recipient string) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, message)
	p.recipients = append(p.recipients, recipient)
	return nil
}

func TestDirectNotifier(t *testing.T) {
	provider := &recordingProvider{}
	n := NewDirectNotifier(provider, "Premium Facilities", nil)
	ctx := context.Background()

	if err := n.SendAppointmentConfirmation(ctx, "sara@example.com", "Sara Ahmed", visit); err != nil {
		t.Fatalf("SendAppointmentConfirmation: %v", err)
	}
	msg := provider.messages[0]
	for _, want := range []string{"Dear Sara Ahmed", "WO_1A2B3C4D", "Omar Khalid", "Tuesday, June 03, 2025 at 10:00 AM"} {
		if !strings.Contains(msg, want) {
			t.Errorf("confirmation lacks %q:\n%s", want, msg)
		}
	}

	wo := models.WorkOrder{WorkOrderID: "WO_1A2B3C4D", Status: models.WorkOrderCompleted, CompletionNotes: "Filters replaced"}
	if err := n.SendStatusUpdate(ctx, "sara@example.com", "Sara Ahmed", wo, "Marina Heights"); err != nil {
		t.Fatalf("SendStatusUpdate: %v", err)
	}
	if !strings.Contains(provider.messages[1], "is now Completed") {
		t.Errorf("status message = %q", provider.messages[1])
	}

	if err := n.Dispatch(ctx, models.NotificationPayload{Kind: "fax", RecipientEmail: "a@b.c"}); err == nil {
		t.Error("unknown kind should fail")
	}
	if err := n.Dispatch(ctx, models.NotificationPayload{Kind: tasks.KindReminder}); err == nil {
		t.Error("missing recipient should fail")
	}

	provider.err = errors.New("smtp refused")
	if err := n.SendAppointmentConfirmation(ctx, "sara@example.com", "Sara Ahmed", visit); err == nil {
		t.Error("provider failure should surface")
	}
}

type fakeQueue struct {
	tasks []*asynq.Task
	err   error
}

func (q *fakeQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{ID: "task-" + task.Type()}, nil
}

func TestQueueNotifier(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		wantTypes []string
	}{
		{"reminder scheduled a day ahead", time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC), []string{tasks.TypeSendConfirmation, tasks.TypeSendReminder}},
		{"visit too close for a reminder", time.Date(2025, 6, 3, 8, 0, 0, 0, time.UTC), []string{tasks.TypeSendConfirmation}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &fakeQueue{}
			n := NewQueueNotifier(q, 24*time.Hour, nil)
			n.Now = func() time.Time { return tt.now }
			if err := n.SendAppointmentConfirmation(context.Background(), "sara@example.com", "Sara Ahmed", visit); err != nil {
				t.Fatalf("SendAppointmentConfirmation: %v", err)
			}
			if len(q.tasks) != len(tt.wantTypes) {
				t.Fatalf("queued %d tasks, want %d", len(q.tasks), len(tt.wantTypes))
			}
			for i, want := range tt.wantTypes {
				if q.tasks[i].Type() != want {
					t.Errorf("task %d = %s, want %s", i, q.tasks[i].Type(), want)
				}
			}
		})
	}

	q := &fakeQueue{err: errors.New("redis down")}
	n := NewQueueNotifier(q, 0, nil)
	if err := n.SendStatusUpdate(context.Background(), "sara@example.com", "Sara", models.WorkOrder{WorkOrderID: "WO_1"}, ""); err == nil {
		t.Error("enqueue failure should surface")
	}
}

func TestWebhookProvider(t *testing.T) {
	var got map[string]string
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	p := NewProvider("webhook", srv.URL, "secret", nil)
	if err := p.Send(context.Background(), "hello", "sara@example.com"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got["recipient"] != "sara@example.com" || got["message"] != "hello" {
		t.Errorf("payload = %v", got)
	}
	if auth != "Bearer secret" {
		t.Errorf("authorization = %q", auth)
	}

	rejecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer rejecting.Close()
	if err := NewProvider(rejecting.URL, "", "", nil).Send(context.Background(), "hello", "x"); err == nil {
		t.Error("a rejected webhook should fail")
	}
}

func TestNewProviderFallbacks(t *testing.T) {
	ctx := context.Background()
	if err := NewProvider("fail", "", "", nil).Send(ctx, "m", "r"); !errors.Is(err, ErrProviderFailure) {
		t.Errorf("fail provider = %v", err)
	}
	for _, kind := range []string{"", "log", "noop", "webhook", "carrier-pigeon"} {
		if err := NewProvider(kind, "", "", nil).Send(ctx, "m", "r"); err != nil {
			t.Errorf("%q provider = %v", kind, err)
		}
	}
}
