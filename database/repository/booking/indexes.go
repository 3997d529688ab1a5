// FILE: database/repository/booking/indexes.go
package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the bookings collection.
func (repo *MongoBookingRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Overlap scan: provider + start, narrowed by state.
		{
			Keys:    bson.D{{Key: "providerId", Value: 1}, {Key: "startTime", Value: 1}},
			Options: options.Index().SetName("provider_start_idx"),
		},
		{
			Keys:    bson.D{{Key: "state", Value: 1}, {Key: "reminderFired", Value: 1}, {Key: "startTime", Value: 1}},
			Options: options.Index().SetName("reminder_scan_idx"),
		},
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "state", Value: 1}},
			Options: options.Index().SetName("client_state_idx"),
		},
	}

	_, err := repo.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}
