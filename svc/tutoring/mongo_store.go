package tutoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoStore reads users, bookings and payments owned by the marketplace API.
type MongoStore struct {
	users    *mongo.Collection
	bookings *mongo.Collection
	payments *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		users:    db.Collection("users"),
		bookings: db.Collection("bookings"),
		payments: db.Collection("payments"),
	}
}

// EnsureIndexes creates the indexes used by reminder scans and payment lookups.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	if _, err := s.bookings.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}, {Key: "date", Value: 1}},
	}); err != nil {
		return fmt.Errorf("failed to create booking index: %w", err)
	}
	if _, err := s.payments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "bookingId", Value: 1}, {Key: "createdAt", Value: -1}},
	}); err != nil {
		return fmt.Errorf("failed to create payment index: %w", err)
	}
	return nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter any, notFound error, opts ...options.Lister[options.FindOneOptions]) (T, error) {
	var v T
	err := coll.FindOne(ctx, filter, opts...).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return v, notFound
	}
	if err != nil {
		return v, fmt.Errorf("failed to query %s: %w", coll.Name(), err)
	}
	return v, nil
}

func (s *MongoStore) User(ctx context.Context, id string) (User, error) {
	return findOne[User](ctx, s.users, bson.M{"_id": id}, ErrUserNotFound)
}

func (s *MongoStore) Booking(ctx context.Context, id string) (Booking, error) {
	return findOne[Booking](ctx, s.bookings, bson.M{"_id": id}, ErrBookingNotFound)
}

func confirmedBetween(from, to time.Time) bson.M {
	return bson.M{
		"status": BookingConfirmed,
		"date":   bson.M{"$gte": from, "$lt": to},
	}
}

func (s *MongoStore) ConfirmedBetween(ctx context.Context, from, to time.Time) ([]Booking, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "date", Value: 1},
		{Key: "startTime", Value: 1},
		{Key: "_id", Value: 1},
	})
	cursor, err := s.bookings.Find(ctx, confirmedBetween(from, to), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}

	var bookings []Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to read bookings: %w", err)
	}
	return bookings, nil
}

func (s *MongoStore) CountConfirmedBetween(ctx context.Context, from, to time.Time) (int, error) {
	n, err := s.bookings.CountDocuments(ctx, confirmedBetween(from, to))
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return int(n), nil
}

func (s *MongoStore) Payment(ctx context.Context, id string) (Payment, error) {
	return findOne[Payment](ctx, s.payments, bson.M{"_id": id}, ErrPaymentNotFound)
}

func (s *MongoStore) PaymentForBooking(ctx context.Context, bookingID string) (Payment, error) {
	return findOne[Payment](ctx, s.payments, bson.M{"bookingId": bookingID}, ErrPaymentNotFound,
		options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
}
