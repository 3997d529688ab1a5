package recordsRepo

import (
	"context"
	"fmt"
	"time"

	"bookwell/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Append inserts a new history record and returns its ID.
func (r *mongoHistoryRepo) Append(ctx context.Context, record models.HistoryRecord) (string, error) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	if _, err := r.coll.InsertOne(ctx, record); err != nil {
		return "", fmt.Errorf("append history record: %w", err)
	}
	return record.ID, nil
}

// ListByClient fetches all records for a client, newest first.
func (r *mongoHistoryRepo) ListByClient(ctx context.Context, clientID string) ([]models.HistoryRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"clientId": clientID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.HistoryRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
