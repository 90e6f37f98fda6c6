package workorderRepo

import (
	"context"
	"errors"
	"time"

	"facilities/models"
)

// ErrWorkOrderNotFound is returned when no work order has the given id.
var ErrWorkOrderNotFound = errors.New("work order not found")

// WorkOrderRepository persists work orders.
type WorkOrderRepository interface {
	Create(ctx context.Context, wo *models.WorkOrder) (string, error)
	GetByID(ctx context.Context, workOrderID string) (*models.WorkOrder, error)
	ListByCustomer(ctx context.Context, customerID string, activeOnly bool) ([]models.WorkOrder, error)
	UpdateStatus(ctx context.Context, workOrderID string, status models.WorkOrderStatus, notes string, at time.Time) (*models.WorkOrder, error)
	// HasConflict reports whether an active order already holds technicianID over [start, end).
	HasConflict(ctx context.Context, technicianID string, start, end time.Time) (bool, error)
}

func applyStatus(wo *models.WorkOrder, status models.WorkOrderStatus, notes string, at time.Time) {
	wo.Status = status
	if status == models.WorkOrderCompleted {
		done := at
		wo.CompletedAt = &done
		if notes != "" {
			wo.CompletionNotes = notes
		}
	}
}
