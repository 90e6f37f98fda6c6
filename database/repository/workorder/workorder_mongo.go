package workorderRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"facilities/config"
	"facilities/database"
	"facilities/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoWorkOrderRepo implements WorkOrderRepository using MongoDB.
type MongoWorkOrderRepo struct {
	coll *mongo.Collection
}

// NewMongoWorkOrderRepo uses the shared client from database.InitDB.
func NewMongoWorkOrderRepo() *MongoWorkOrderRepo {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &MongoWorkOrderRepo{coll: db.Collection("work_orders")}
}

func (r *MongoWorkOrderRepo) Create(ctx context.Context, wo *models.WorkOrder) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, wo); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("work order %s already exists: %w", wo.WorkOrderID, err)
		}
		return "", fmt.Errorf("error creating work order: %w", err)
	}
	return wo.WorkOrderID, nil
}

func (r *MongoWorkOrderRepo) GetByID(ctx context.Context, workOrderID string) (*models.WorkOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var wo models.WorkOrder
	err := r.coll.FindOne(ctx, bson.M{"workOrderId": workOrderID}).Decode(&wo)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s: %w", workOrderID, ErrWorkOrderNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching work order %s: %w", workOrderID, err)
	}
	return &wo, nil
}

func (r *MongoWorkOrderRepo) ListByCustomer(ctx context.Context, customerID string, activeOnly bool) ([]models.WorkOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"customerId": customerID}
	if activeOnly {
		filter["status"] = bson.M{"$nin": inactiveStatuses}
	}
	opts := options.Find().SetSort(bson.D{{Key: "requestedAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing work orders for %s: %w", customerID, err)
	}
	defer cursor.Close(ctx)

	out := []models.WorkOrder{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("error decoding work orders: %w", err)
	}
	return out, nil
}

func (r *MongoWorkOrderRepo) UpdateStatus(ctx context.Context, workOrderID string, status models.WorkOrderStatus, notes string, at time.Time) (*models.WorkOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var wo models.WorkOrder
	if err := r.coll.FindOne(ctx, bson.M{"workOrderId": workOrderID}).Decode(&wo); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", workOrderID, ErrWorkOrderNotFound)
		}
		return nil, fmt.Errorf("error fetching work order %s: %w", workOrderID, err)
	}
	applyStatus(&wo, status, notes, at)

	update := bson.M{"$set": bson.M{
		"status":          wo.Status,
		"completedAt":     wo.CompletedAt,
		"completionNotes": wo.CompletionNotes,
	}}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"workOrderId": workOrderID}, update); err != nil {
		return nil, fmt.Errorf("error updating work order %s: %w", workOrderID, err)
	}
	return &wo, nil
}

var inactiveStatuses = []models.WorkOrderStatus{models.WorkOrderCompleted, models.WorkOrderCancelled}

func (r *MongoWorkOrderRepo) HasConflict(ctx context.Context, technicianID string, start, end time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"assignedTechnicianId": technicianID,
		"status":               bson.M{"$nin": inactiveStatuses},
		"scheduledAt":          bson.M{"$lt": end},
		"scheduledEnd":         bson.M{"$gt": start},
	}
	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("error checking technician %s schedule: %w", technicianID, err)
	}
	return n > 0, nil
}

// EnsureIndexes creates the indexes the booking flow queries on.
func (r *MongoWorkOrderRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "workOrderId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_work_order_id"),
		},
		// Conflict checks.
		{
			Keys:    bson.D{{Key: "assignedTechnicianId", Value: 1}, {Key: "scheduledAt", Value: 1}},
			Options: options.Index().SetName("technician_scheduled_idx"),
		},
		{
			Keys:    bson.D{{Key: "customerId", Value: 1}, {Key: "requestedAt", Value: -1}},
			Options: options.Index().SetName("customer_requested_idx"),
		},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create work order indexes: %w", err)
	}
	return nil
}
