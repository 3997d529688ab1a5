package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookwell/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo constructs a repository over the "bookings" collection of db.
func NewMongoBookingRepo(db *mongo.Database) *MongoBookingRepo {
	return &MongoBookingRepo{coll: db.Collection("bookings")}
}

func (repo *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	if _, err := repo.coll.InsertOne(ctx, booking); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return storeErr("insert booking", err)
	}
	return nil
}

func (repo *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, storeErr(fmt.Sprintf("find booking %s", id), err)
	}
	return &booking, nil
}

func (repo *MongoBookingRepo) UpdateIfState(ctx context.Context, booking *models.Booking, expected models.BookingState) error {
	filter := bson.M{"id": booking.ID, "state": expected}
	update := bson.M{"$set": bson.M{
		"state":              booking.State,
		"updatedAt":          booking.UpdatedAt,
		"paymentState":       booking.PaymentState,
		"paymentDueAt":       booking.PaymentDueAt,
		"cancellationReason": booking.CancellationReason,
		"cancelledBy":        booking.CancelledBy,
		"cancelledAt":        booking.CancelledAt,
	}}
	// reminderFired is owned by MarkReminderFired and never written here.
	res, err := repo.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return storeErr("update booking state", err)
	}
	if res.MatchedCount == 0 {
		if _, err := repo.GetByID(ctx, booking.ID); err != nil {
			return err
		}
		return ErrStateChanged
	}
	return nil
}

func (repo *MongoBookingRepo) ListActiveByProvider(ctx context.Context, providerID string, from, to time.Time) ([]models.Booking, error) {
	filter := bson.M{
		"providerId": providerID,
		"state":      bson.M{"$in": models.ActiveStates},
		"startTime":  bson.M{"$lt": to},
		"endTime":    bson.M{"$gt": from},
	}
	opts := options.Find().SetSort(bson.D{{Key: "startTime", Value: 1}})
	return repo.find(ctx, filter, opts)
}

func (repo *MongoBookingRepo) ListReminderCandidates(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	filter := bson.M{
		"state":         bson.M{"$in": models.ActiveStates},
		"reminderFired": false,
		"startTime":     bson.M{"$gte": from, "$lt": to},
	}
	opts := options.Find().SetSort(bson.D{{Key: "startTime", Value: 1}})
	return repo.find(ctx, filter, opts)
}

func (repo *MongoBookingRepo) MarkReminderFired(ctx context.Context, id string, at time.Time) error {
	filter := bson.M{"id": id, "reminderFired": false}
	update := bson.M{"$set": bson.M{
		"reminderFired":   true,
		"reminderFiredAt": at,
		"updatedAt":       at,
	}}
	res, err := repo.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return storeErr("mark reminder fired", err)
	}
	if res.MatchedCount == 0 {
		if _, err := repo.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrAlreadyFired
	}
	return nil
}

func (repo *MongoBookingRepo) CountByClientAndState(ctx context.Context, clientID string, state models.BookingState) (int, error) {
	n, err := repo.coll.CountDocuments(ctx, bson.M{"clientId": clientID, "state": state})
	if err != nil {
		return 0, storeErr("count bookings", err)
	}
	return int(n), nil
}

func (repo *MongoBookingRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Booking, error) {
	cursor, err := repo.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, storeErr("find bookings", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, storeErr("decode bookings", err)
	}
	return bookings, nil
}

// storeErr marks network failures and timeouts as ErrUnavailable so callers fail closed.
func storeErr(op string, err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
