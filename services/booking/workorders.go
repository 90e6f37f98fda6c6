package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	workorderRepo "facilities/database/repository/workorder"
	"facilities/models"

	"go.uber.org/zap"
)

var workOrderStatuses = []models.WorkOrderStatus{
	models.WorkOrderNew,
	models.WorkOrderScheduled,
	models.WorkOrderAssigned,
	models.WorkOrderDispatched,
	models.WorkOrderInProgress,
	models.WorkOrderOnHold,
	models.WorkOrderCompleted,
	models.WorkOrderCancelled,
}

// ParseWorkOrderStatus accepts a known status name exactly.
func ParseWorkOrderStatus(s string) (models.WorkOrderStatus, bool) {
	for _, status := range workOrderStatuses {
		if string(status) == s {
			return status, true
		}
	}
	return "", false
}

// WorkOrderService reads booked work orders and moves them through their lifecycle.
type WorkOrderService struct {
	WorkOrders workorderRepo.WorkOrderRepository
	Reference  ReferenceData
	Notifier   Notifier
	Logger     *zap.Logger
	Now        func() time.Time
}

func (s *WorkOrderService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *WorkOrderService) GetWorkOrder(ctx context.Context, workOrderID string) (*models.WorkOrder, error) {
	wo, err := s.WorkOrders.GetByID(ctx, workOrderID)
	if errors.Is(err, workorderRepo.ErrWorkOrderNotFound) {
		return nil, NewBookingError(NotFoundError, string(models.BookingNotFound),
			fmt.Sprintf("Work order %s was not found.", workOrderID)).Wrap(err)
	}
	if err != nil {
		return nil, NewBookingError(InternalError, string(models.BookingInternalError),
			"Failed to retrieve the work order.").Wrap(err)
	}
	return wo, nil
}

func (s *WorkOrderService) CustomerWorkOrders(ctx context.Context, customerID string, activeOnly bool) ([]models.WorkOrder, error) {
	if customerID == "" {
		return nil, NewBookingError(InputError, "invalidInput", "A customer id is required.")
	}
	orders, err := s.WorkOrders.ListByCustomer(ctx, customerID, activeOnly)
	if err != nil {
		return nil, NewBookingError(InternalError, string(models.BookingInternalError),
			"Failed to retrieve work orders.").Wrap(err)
	}
	if orders == nil {
		orders = []models.WorkOrder{}
	}
	return orders, nil
}

// UpdateStatus changes a work order's status. When notify is set the
// customer is told about the change; a failed notification does not undo it.
func (s *WorkOrderService) UpdateStatus(ctx context.Context, workOrderID, status, notes string, notify bool) (*models.WorkOrder, error) {
	next, ok := ParseWorkOrderStatus(status)
	if !ok {
		return nil, NewBookingError(InputError, "invalidStatus",
			fmt.Sprintf("Unknown work order status %q.", status))
	}
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	wo, err := s.WorkOrders.UpdateStatus(ctx, workOrderID, next, notes, now)
	if errors.Is(err, workorderRepo.ErrWorkOrderNotFound) {
		return nil, NewBookingError(NotFoundError, string(models.BookingNotFound),
			fmt.Sprintf("Work order %s was not found.", workOrderID)).Wrap(err)
	}
	if err != nil {
		return nil, NewBookingError(InternalError, string(models.BookingInternalError),
			"Failed to update the work order.").Wrap(err)
	}
	log := s.logger().With(zap.String("workOrderID", workOrderID), zap.String("status", string(next)))
	log.Info("Work order status updated")

	if notify && s.Notifier != nil && s.Reference != nil {
		s.notifyStatus(ctx, *wo, log)
	}
	return wo, nil
}

func (s *WorkOrderService) notifyStatus(ctx context.Context, wo models.WorkOrder, log *zap.Logger) {
	customer, err := s.Reference.GetCustomer(ctx, wo.CustomerID)
	if err != nil || customer.EmailAddress == "" {
		log.Warn("No customer email for status update", zap.Error(err))
		return
	}
	location := ""
	if facility, err := s.Reference.GetFacility(ctx, wo.PropertyID); err == nil {
		location = facility.DisplayLocation()
	}
	if err := s.Notifier.SendStatusUpdate(ctx, customer.EmailAddress, customer.FullName, wo, location); err != nil {
		log.Warn("Status update notification failed", zap.String("kind", string(SideEffectError)), zap.Error(err))
	}
}
