package bootstrap

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	attendancestore "github.com/gsdta/schoolapi/internal/app/store/attendance"
	newspoststore "github.com/gsdta/schoolapi/internal/app/store/newsposts"
	studentstore "github.com/gsdta/schoolapi/internal/app/store/students"
	userstore "github.com/gsdta/schoolapi/internal/app/store/users"
)

// Deps bundles the backend clients BuildHandler needs.
type Deps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
}

// Connect dials MongoDB and verifies the connection.
func Connect(ctx context.Context, cfg *Config, logger *zap.Logger) (*Deps, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, err
	}

	logger.Info("mongo connected", zap.String("database", cfg.MongoDatabase))
	return &Deps{
		MongoClient:   client,
		MongoDatabase: client.Database(cfg.MongoDatabase),
	}, nil
}

// Close disconnects the database client.
func (d *Deps) Close(ctx context.Context) error {
	return d.MongoClient.Disconnect(ctx)
}

// EnsureIndexes creates every collection index the stores rely on.
func (d *Deps) EnsureIndexes(ctx context.Context) error {
	for _, ensure := range []func(context.Context) error{
		userstore.New(d.MongoDatabase).EnsureIndexes,
		studentstore.New(d.MongoDatabase).EnsureIndexes,
		newspoststore.New(d.MongoDatabase).EnsureIndexes,
		attendancestore.New(d.MongoDatabase).EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			return err
		}
	}
	return nil
}
