package notification

import (
	"context"

	"facilities/models"
)

// Provider delivers one rendered message to one recipient.
type Provider interface {
	Send(ctx context.Context, message, recipient string) error
}

// Dispatcher renders and delivers a queued notification. The queue worker
// hands every task payload to one.
type Dispatcher interface {
	Dispatch(ctx context.Context, p models.NotificationPayload) error
}
