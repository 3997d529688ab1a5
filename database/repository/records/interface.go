package recordsRepo

import (
	"context"

	"bookwell/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// HistoryRepository stores client history records emitted by the booking core.
type HistoryRepository interface {
	Append(ctx context.Context, record models.HistoryRecord) (string, error)
	ListByClient(ctx context.Context, clientID string) ([]models.HistoryRecord, error)
}

type mongoHistoryRepo struct {
	coll *mongo.Collection
}

// NewMongoHistoryRepo returns a new HistoryRepository instance using MongoDB.
func NewMongoHistoryRepo(db *mongo.Database) HistoryRepository {
	return &mongoHistoryRepo{
		coll: db.Collection("client_history"),
	}
}
