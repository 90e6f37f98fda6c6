package workorderRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"facilities/models"
)

// MemoryWorkOrderRepo keeps work orders in process.
type MemoryWorkOrderRepo struct {
	mu     sync.RWMutex
	orders map[string]models.WorkOrder
}

func NewMemoryWorkOrderRepo() *MemoryWorkOrderRepo {
	return &MemoryWorkOrderRepo{orders: make(map[string]models.WorkOrder)}
}

func (r *MemoryWorkOrderRepo) Create(_ context.Context, wo *models.WorkOrder) (string, error) {
	if wo.WorkOrderID == "" {
		return "", fmt.Errorf("work order id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.orders[wo.WorkOrderID]; exists {
		return "", fmt.Errorf("work order %s already exists", wo.WorkOrderID)
	}
	r.orders[wo.WorkOrderID] = *wo
	return wo.WorkOrderID, nil
}

func (r *MemoryWorkOrderRepo) GetByID(_ context.Context, workOrderID string) (*models.WorkOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wo, ok := r.orders[workOrderID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", workOrderID, ErrWorkOrderNotFound)
	}
	return &wo, nil
}

func (r *MemoryWorkOrderRepo) ListByCustomer(_ context.Context, customerID string, activeOnly bool) ([]models.WorkOrder, error) {
	r.mu.RLock()
	out := []models.WorkOrder{}
	for _, wo := range r.orders {
		if wo.CustomerID != customerID || (activeOnly && !wo.IsActive()) {
			continue
		}
		out = append(out, wo)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.After(out[j].RequestedAt) })
	return out, nil
}

func (r *MemoryWorkOrderRepo) UpdateStatus(_ context.Context, workOrderID string, status models.WorkOrderStatus, notes string, at time.Time) (*models.WorkOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wo, ok := r.orders[workOrderID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", workOrderID, ErrWorkOrderNotFound)
	}
	applyStatus(&wo, status, notes, at)
	r.orders[workOrderID] = wo
	return &wo, nil
}

func (r *MemoryWorkOrderRepo) HasConflict(_ context.Context, technicianID string, start, end time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, wo := range r.orders {
		if wo.Overlaps(technicianID, start, end) {
			return true, nil
		}
	}
	return false, nil
}
