package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// DefaultCollection is the MongoDB collection used by MongoStorage.
const DefaultCollection = "notifications"

// MongoStorage persists notifications in a MongoDB collection.
type MongoStorage struct {
	coll *mongo.Collection
}

// NewMongoStorage returns a storage backed by db.Collection(DefaultCollection).
func NewMongoStorage(db *mongo.Database) *MongoStorage {
	return &MongoStorage{coll: db.Collection(DefaultCollection)}
}

// EnsureIndexes creates the indexes used by list, count and cleanup queries.
func (s *MongoStorage) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "isRead", Value: 1}}},
		{Keys: bson.D{{Key: "isRead", Value: 1}, {Key: "createdAt", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create notification indexes: %w", err)
	}
	return nil
}

type mongoNotification struct {
	ID             string     `bson:"_id"`
	Recipient      string     `bson:"recipient"`
	Sender         string     `bson:"sender,omitempty"`
	Title          string     `bson:"title"`
	Message        string     `bson:"message"`
	Type           Type       `bson:"type"`
	Category       Category   `bson:"category"`
	Priority       Priority   `bson:"priority"`
	IsRead         bool       `bson:"isRead"`
	ActionRequired bool       `bson:"actionRequired"`
	ActionURL      string     `bson:"actionUrl,omitempty"`
	Data           bson.Raw   `bson:"data,omitempty"`
	EmailSent      bool       `bson:"emailSent"`
	CreatedAt      time.Time  `bson:"createdAt"`
	UpdatedAt      time.Time  `bson:"updatedAt"`
	ExpiresAt      *time.Time `bson:"expiresAt,omitempty"`
}

func toMongo(n Notification) (mongoNotification, error) {
	doc := mongoNotification{
		ID:             n.ID,
		Recipient:      n.Recipient,
		Sender:         n.Sender,
		Title:          n.Title,
		Message:        n.Message,
		Type:           n.Type,
		Category:       n.Category,
		Priority:       n.Priority,
		IsRead:         n.IsRead,
		ActionRequired: n.ActionRequired,
		ActionURL:      n.ActionURL,
		EmailSent:      n.EmailSent,
		CreatedAt:      n.CreatedAt,
		UpdatedAt:      n.UpdatedAt,
		ExpiresAt:      n.ExpiresAt,
	}
	if n.Data != nil {
		raw, err := bson.Marshal(n.Data)
		if err != nil {
			return doc, fmt.Errorf("failed to encode notification payload: %w", err)
		}
		doc.Data = raw
	}
	return doc, nil
}

func (d mongoNotification) notification() (Notification, error) {
	n := Notification{
		ID:             d.ID,
		Recipient:      d.Recipient,
		Sender:         d.Sender,
		Title:          d.Title,
		Message:        d.Message,
		Type:           d.Type,
		Category:       d.Category,
		Priority:       d.Priority,
		IsRead:         d.IsRead,
		ActionRequired: d.ActionRequired,
		ActionURL:      d.ActionURL,
		EmailSent:      d.EmailSent,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
		ExpiresAt:      d.ExpiresAt,
	}
	if len(d.Data) == 0 {
		return n, nil
	}
	data, err := decodePayload(d.Type, d.Data)
	if err != nil {
		return n, fmt.Errorf("failed to decode payload of notification %s: %w", d.ID, err)
	}
	n.Data = data
	return n, nil
}

func decodePayload(t Type, raw bson.Raw) (Payload, error) {
	switch t {
	case TypeBookingPending:
		return unmarshalPayload[BookingPendingData](raw)
	case TypeBookingApproved:
		return unmarshalPayload[BookingApprovedData](raw)
	case TypeBookingRejected:
		return unmarshalPayload[BookingRejectedData](raw)
	case TypePaymentReceived:
		return unmarshalPayload[PaymentReceivedData](raw)
	case TypePaymentRefunded:
		return unmarshalPayload[PaymentRefundedData](raw)
	case TypeClassReminder:
		return unmarshalPayload[ClassReminderData](raw)
	case TypeMessage:
		return unmarshalPayload[MessageData](raw)
	case TypeGeneral:
		return unmarshalPayload[GeneralData](raw)
	}
	return nil, fmt.Errorf("unknown notification type %q", t)
}

func unmarshalPayload[T Payload](raw bson.Raw) (Payload, error) {
	var v T
	if err := bson.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func filterDoc(recipient string, f Filter) bson.M {
	filter := bson.M{"recipient": recipient}
	if f.UnreadOnly {
		filter["isRead"] = false
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	return filter
}

func (s *MongoStorage) Create(ctx context.Context, notif Notification) error {
	doc, err := toMongo(notif)
	if err != nil {
		return err
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

func (s *MongoStorage) Get(ctx context.Context, recipient, notifID string) (*Notification, error) {
	var doc mongoNotification
	err := s.coll.FindOne(ctx, bson.M{"_id": notifID, "recipient": recipient}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find notification: %w", err)
	}

	n, err := doc.notification()
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *MongoStorage) List(ctx context.Context, recipient string, opts ListOptions) ([]Notification, error) {
	findOpts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if opts.Offset > 0 {
		findOpts.SetSkip(int64(opts.Offset))
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}

	cursor, err := s.coll.Find(ctx, filterDoc(recipient, opts.Filter), findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	var docs []mongoNotification
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to read notifications: %w", err)
	}

	result := make([]Notification, 0, len(docs))
	for _, doc := range docs {
		n, err := doc.notification()
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, nil
}

func (s *MongoStorage) Count(ctx context.Context, recipient string, filter Filter) (int, error) {
	count, err := s.coll.CountDocuments(ctx, filterDoc(recipient, filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return int(count), nil
}

func (s *MongoStorage) MarkRead(ctx context.Context, recipient string, notifIDs []string, at time.Time) error {
	if len(notifIDs) == 0 {
		return nil
	}
	_, err := s.coll.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": notifIDs}, "recipient": recipient, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true, "updatedAt": at}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

func (s *MongoStorage) MarkAllRead(ctx context.Context, recipient string, at time.Time) error {
	_, err := s.coll.UpdateMany(ctx,
		bson.M{"recipient": recipient, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true, "updatedAt": at}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark all notifications read: %w", err)
	}
	return nil
}

func (s *MongoStorage) MarkEmailSent(ctx context.Context, notifID string, at time.Time) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": notifID},
		bson.M{"$set": bson.M{"emailSent": true, "updatedAt": at}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification email sent: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *MongoStorage) Delete(ctx context.Context, recipient, notifID string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": notifID, "recipient": recipient}); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

func (s *MongoStorage) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{
		"isRead":    true,
		"createdAt": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete old notifications: %w", err)
	}
	return res.DeletedCount, nil
}
