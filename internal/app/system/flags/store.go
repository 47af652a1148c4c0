package flags

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	configCollection = "systemConfig"
	flagsDocID       = "featureFlags"
)

// MongoStore persists the flag config in the systemConfig collection.
type MongoStore struct {
	db *mongo.Database
}

// NewMongoStore creates a MongoStore.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

// Load reads the flag document. A missing document returns (nil, nil); the
// service substitutes the defaults.
func (s *MongoStore) Load(ctx context.Context) (*Config, error) {
	var cfg Config
	err := s.db.Collection(configCollection).
		FindOne(ctx, bson.M{"_id": flagsDocID}).
		Decode(&cfg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save merges updates for one role into the flag document, creating it from
// the defaults on first write.
func (s *MongoStore) Save(ctx context.Context, role string, updates map[string]Flag, updatedBy string) error {
	set := bson.M{
		"updatedAt": time.Now().UTC(),
		"updatedBy": updatedBy,
	}
	for feature, flag := range updates {
		set["roles."+role+"."+feature] = flag
	}
	_, err := s.db.Collection(configCollection).UpdateOne(ctx,
		bson.M{"_id": flagsDocID},
		bson.M{"$set": set},
		options.Update().SetUpsert(true),
	)
	return err
}
