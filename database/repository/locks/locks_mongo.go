package lockRepo

import (
	"context"
	"fmt"
	"time"

	"facilities/config"
	"facilities/database"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// slotLock is the advisory lock document; the unique _id does the locking.
type slotLock struct {
	ID        string    `bson:"_id"`
	Owner     string    `bson:"owner"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

// MongoSlotLocker shares slot holds across processes through a collection
// with a TTL index on expires_at.
type MongoSlotLocker struct {
	coll *mongo.Collection
	Now  func() time.Time
}

func NewMongoSlotLocker() *MongoSlotLocker {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &MongoSlotLocker{coll: db.Collection("slot_locks"), Now: time.Now}
}

func (l *MongoSlotLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := l.Now()
	lock := slotLock{ID: key, Owner: uuid.NewString(), ExpiresAt: now.Add(ttl), CreatedAt: now}

	_, err := l.coll.InsertOne(ctx, lock)
	if mongo.IsDuplicateKeyError(err) {
		// The TTL monitor runs about once a minute, so clear a stale hold ourselves.
		res, delErr := l.coll.DeleteOne(ctx, bson.M{"_id": key, "expires_at": bson.M{"$lte": now}})
		if delErr != nil {
			return nil, fmt.Errorf("error clearing stale lock %s: %w", key, delErr)
		}
		if res.DeletedCount == 0 {
			return nil, ErrLocked
		}
		_, err = l.coll.InsertOne(ctx, lock)
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrLocked
		}
	}
	if err != nil {
		return nil, fmt.Errorf("error acquiring lock %s: %w", key, err)
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = l.coll.DeleteOne(ctx, bson.M{"_id": key, "owner": lock.Owner})
	}, nil
}

// EnsureIndexes lets MongoDB expire abandoned locks.
func (l *MongoSlotLocker) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := l.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0).SetName("expires_at_ttl"),
	})
	if err != nil {
		return fmt.Errorf("failed to create slot lock index: %w", err)
	}
	return nil
}
