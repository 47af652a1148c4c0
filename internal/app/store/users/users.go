// Package users persists user accounts and profiles.
package users

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gsdta/schoolapi/internal/app/store/errs"
	"github.com/gsdta/schoolapi/internal/app/system/auth"
)

const usersCollection = "users"

// User is a stored account. UID doubles as the mongo document id.
type User struct {
	UID          string    `bson:"_id" json:"uid"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	Name         string    `bson:"name,omitempty" json:"name,omitempty"`
	FirstName    string    `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName     string    `bson:"lastName,omitempty" json:"lastName,omitempty"`
	Roles        []string  `bson:"roles" json:"roles"`
	Status       string    `bson:"status" json:"status"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Store handles user database operations.
type Store struct {
	db *mongo.Database
}

// New creates a user store.
func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

// EnsureIndexes creates the unique email index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// ByUID returns the user with the given uid.
func (s *Store) ByUID(ctx context.Context, uid string) (*User, error) {
	var u User
	err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"_id": uid}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ByEmail returns the user with the given email.
func (s *Store) ByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ProfileByUID satisfies auth.ProfileStore.
func (s *Store) ProfileByUID(ctx context.Context, uid string) (*auth.Profile, error) {
	u, err := s.ByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	return &auth.Profile{
		UID:       u.UID,
		Email:     u.Email,
		Name:      u.Name,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Roles:     u.Roles,
		Status:    u.Status,
	}, nil
}

// DisplayNameByUID returns the user's display name.
func (s *Store) DisplayNameByUID(ctx context.Context, uid string) (string, error) {
	p, err := s.ProfileByUID(ctx, uid)
	if err != nil {
		return "", err
	}
	return p.DisplayName(), nil
}

// Create inserts a new user. Duplicate emails come back as ErrAlreadyExists.
func (s *Store) Create(ctx context.Context, u *User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.Status == "" {
		u.Status = "active"
	}
	_, err := s.db.Collection(usersCollection).InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return errs.Wrap(errs.ErrAlreadyExists, "user with email %s", u.Email)
	}
	return err
}

// AddRole grants a role if not already present.
func (s *Store) AddRole(ctx context.Context, uid, role string) (*User, error) {
	return s.updateOne(ctx, uid, bson.M{
		"$addToSet": bson.M{"roles": role},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	})
}

// RemoveRole revokes a role.
func (s *Store) RemoveRole(ctx context.Context, uid, role string) (*User, error) {
	return s.updateOne(ctx, uid, bson.M{
		"$pull": bson.M{"roles": role},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

// SetStatus updates the account status (active/inactive).
func (s *Store) SetStatus(ctx context.Context, uid, status string) (*User, error) {
	return s.updateOne(ctx, uid, bson.M{
		"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()},
	})
}

func (s *Store) updateOne(ctx context.Context, uid string, update bson.M) (*User, error) {
	var u User
	err := s.db.Collection(usersCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": uid}, update,
			options.FindOneAndUpdate().SetReturnDocument(options.After)).
		Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListByRole returns users holding the given role, newest first.
func (s *Store) ListByRole(ctx context.Context, role string) ([]User, error) {
	cur, err := s.db.Collection(usersCollection).Find(ctx,
		bson.M{"roles": role},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	users := []User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
