package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"facilities/models"
	"facilities/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const DefaultReminderLead = 24 * time.Hour

// DirectNotifier renders messages and hands them straight to a Provider.
type DirectNotifier struct {
	Provider    Provider
	CompanyName string
	Logger      *zap.Logger
}

func NewDirectNotifier(provider Provider, companyName string, logger *zap.Logger) *DirectNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectNotifier{Provider: provider, CompanyName: companyName, Logger: logger}
}

func (n *DirectNotifier) SendAppointmentConfirmation(ctx context.Context, email, name string, details models.AppointmentDetails) error {
	return n.Dispatch(ctx, models.NotificationPayload{Kind: tasks.KindConfirmation, RecipientEmail: email, RecipientName: name, Details: details})
}

func (n *DirectNotifier) SendStatusUpdate(ctx context.Context, email, name string, wo models.WorkOrder, location string) error {
	return n.Dispatch(ctx, models.NotificationPayload{Kind: tasks.KindStatus, RecipientEmail: email, RecipientName: name, WorkOrder: &wo, Location: location})
}

// Dispatch renders p by kind and sends it.
func (n *DirectNotifier) Dispatch(ctx context.Context, p models.NotificationPayload) error {
	if p.RecipientEmail == "" {
		return fmt.Errorf("notification %s has no recipient", p.Kind)
	}
	var message string
	switch p.Kind {
	case tasks.KindConfirmation:
		message = ConfirmationMessage(n.CompanyName, p.RecipientName, p.Details)
	case tasks.KindReminder:
		message = ReminderMessage(n.CompanyName, p.RecipientName, p.Details)
	case tasks.KindStatus:
		if p.WorkOrder == nil {
			return fmt.Errorf("status notification without a work order")
		}
		message = StatusMessage(n.CompanyName, p.RecipientName, *p.WorkOrder, p.Location)
	default:
		return fmt.Errorf("unknown notification kind %q", p.Kind)
	}
	if err := n.Provider.Send(ctx, message, p.RecipientEmail); err != nil {
		return fmt.Errorf("failed to send %s notification: %w", p.Kind, err)
	}
	n.Logger.Debug("Notification sent", zap.String("kind", p.Kind), zap.String("recipient", p.RecipientEmail))
	return nil
}

// Enqueuer is the part of *asynq.Client the queue notifier needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueNotifier defers delivery to the notification worker. A confirmation
// is queued immediately together with a reminder ReminderLead before the visit.
type QueueNotifier struct {
	Queue        Enqueuer
	ReminderLead time.Duration
	Now          func() time.Time
	Logger       *zap.Logger
}

func NewQueueNotifier(queue Enqueuer, reminderLead time.Duration, logger *zap.Logger) *QueueNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reminderLead <= 0 {
		reminderLead = DefaultReminderLead
	}
	return &QueueNotifier{Queue: queue, ReminderLead: reminderLead, Now: time.Now, Logger: logger}
}

func (n *QueueNotifier) enqueue(ctx context.Context, p models.NotificationPayload, fireAt time.Time) error {
	task, opts, err := tasks.NewNotificationTask(p, fireAt)
	if err != nil {
		return err
	}
	info, err := n.Queue.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return fmt.Errorf("failed to enqueue %s notification: %w", p.Kind, err)
	}
	n.Logger.Info("Notification queued", zap.String("kind", p.Kind), zap.String("taskID", info.ID), zap.Time("fireAt", fireAt))
	return nil
}

func (n *QueueNotifier) SendAppointmentConfirmation(ctx context.Context, email, name string, details models.AppointmentDetails) error {
	p := models.NotificationPayload{Kind: tasks.KindConfirmation, RecipientEmail: email, RecipientName: name, Details: details}
	if err := n.enqueue(ctx, p, time.Time{}); err != nil {
		return err
	}

	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	remindAt := details.ScheduledAt.Add(-n.ReminderLead)
	if !remindAt.After(now()) {
		return nil
	}
	p.Kind = tasks.KindReminder
	if err := n.enqueue(ctx, p, remindAt); err != nil {
		n.Logger.Warn("Failed to schedule reminder", zap.String("workOrderID", details.WorkOrderID), zap.Error(err))
	}
	return nil
}

func (n *QueueNotifier) SendStatusUpdate(ctx context.Context, email, name string, wo models.WorkOrder, location string) error {
	return n.enqueue(ctx, models.NotificationPayload{Kind: tasks.KindStatus, RecipientEmail: email, RecipientName: name, WorkOrder: &wo, Location: location}, time.Time{})
}

// ConfirmationMessage is the booking confirmation sent to the customer.
func ConfirmationMessage(company, name string, d models.AppointmentDetails) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Appointment Confirmation - %s\n\n", company)
	fmt.Fprintf(&b, "Dear %s,\n\n", name)
	fmt.Fprintf(&b, "Your service appointment has been confirmed with %s.\n\n", company)
	b.WriteString("Appointment Details:\n")
	fmt.Fprintf(&b, "- Service: %s\n", d.ServiceName)
	fmt.Fprintf(&b, "- Date & Time: %s\n", d.ScheduledDisplay)
	fmt.Fprintf(&b, "- Estimated Duration: %s\n", d.EstimatedDuration)
	fmt.Fprintf(&b, "- Location: %s\n", d.Location)
	fmt.Fprintf(&b, "- Technician: %s\n", orDefault(d.TechnicianName, "TBD"))
	fmt.Fprintf(&b, "- Work Order ID: %s\n\n", d.WorkOrderID)
	b.WriteString("Please ensure someone is available to provide access.\n")
	fmt.Fprintf(&b, "\nThank you for choosing %s!", company)
	return b.String()
}

// ReminderMessage is sent ahead of the visit.
func ReminderMessage(company, name string, d models.AppointmentDetails) string {
	return fmt.Sprintf("Reminder from %s\n\nDear %s,\n\nThis is a reminder of your %s appointment on %s at %s with %s (work order %s).",
		company, name, d.ServiceName, d.ScheduledDisplay, d.Location, orDefault(d.TechnicianName, "our technician"), d.WorkOrderID)
}

// StatusMessage tells the customer their work order changed state.
func StatusMessage(company, name string, wo models.WorkOrder, location string) string {
	msg := fmt.Sprintf("Work Order Update - %s\n\nDear %s,\n\nYour work order %s is now %s.", company, name, wo.WorkOrderID, wo.Status)
	if location != "" {
		msg += fmt.Sprintf("\nLocation: %s", location)
	}
	if wo.CompletionNotes != "" {
		msg += fmt.Sprintf("\nNotes: %s", wo.CompletionNotes)
	}
	return msg
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
