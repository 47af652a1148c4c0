package audit

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	auditCollection    = "auditLogs"
	securityCollection = "securityEvents"
)

func newID() string { return uuid.NewString() }

// MongoStore persists audit data in mongo.
type MongoStore struct {
	db *mongo.Database
}

// NewMongoStore creates a MongoStore.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) InsertEntry(ctx context.Context, e Entry) error {
	_, err := s.db.Collection(auditCollection).InsertOne(ctx, e)
	return err
}

func (s *MongoStore) InsertSecurityEvent(ctx context.Context, e SecurityEvent) error {
	_, err := s.db.Collection(securityCollection).InsertOne(ctx, e)
	return err
}

// ListEntries returns matching audit entries, newest first, plus the total
// match count for pagination.
func (s *MongoStore) ListEntries(ctx context.Context, f ListFilter) ([]Entry, int64, error) {
	filter := bson.M{}
	if f.ActorUID != "" {
		filter["actorUid"] = f.ActorUID
	}
	if f.Action != "" {
		filter["action"] = f.Action
	}
	if f.TargetType != "" {
		filter["targetType"] = f.TargetType
	}
	if f.Severity != "" {
		filter["severity"] = f.Severity
	}
	if f.From != nil || f.To != nil {
		tf := bson.M{}
		if f.From != nil {
			tf["$gte"] = *f.From
		}
		if f.To != nil {
			tf["$lte"] = *f.To
		}
		filter["createdAt"] = tf
	}

	coll := s.db.Collection(auditCollection)
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(f.Offset)).
		SetLimit(int64(limit))

	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	entries := []Entry{}
	if err := cur.All(ctx, &entries); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (s *MongoStore) ListSecurityEvents(ctx context.Context, limit, offset int) ([]SecurityEvent, int64, error) {
	coll := s.db.Collection(securityCollection)
	total, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cur, err := coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	events := []SecurityEvent{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}
